package main

import (
	"fmt"
	"os"
	"strings"
)

// progressMode is the value of fmt --ui.
type progressMode string

const (
	progressAuto progressMode = "auto"
	progressOn   progressMode = "on"
	progressOff  progressMode = "off"
)

var progressModes = map[string]progressMode{
	"":     progressAuto,
	"auto": progressAuto,
	"on":   progressOn,
	"off":  progressOff,
}

func parseProgressMode(value string) (progressMode, error) {
	if mode, ok := progressModes[strings.ToLower(strings.TrimSpace(value))]; ok {
		return mode, nil
	}
	return "", fmt.Errorf("fmt: --ui must be auto, on or off, got %q", value)
}

// progressView reports whether fmt draws the interactive progress view.
// Output that is itself the product (stdout, JSON) or quieted never gets
// one; auto mode additionally needs a terminal.
func progressView(mode progressMode, paths int, textReport bool) bool {
	if !textReport {
		return false
	}
	switch mode {
	case progressOn:
		return true
	case progressOff:
		return false
	}
	return paths > 0 && isTerminal(os.Stdout)
}
