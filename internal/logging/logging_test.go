package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv("XDG_STATE_HOME", tempDir)

			SetupLogger(Options{Verbosity: tt.verbosity, NoColor: true, Console: &bytes.Buffer{}})

			if zerolog.GlobalLevel() != tt.wantLevel {
				t.Errorf("SetupLogger(%d) set level to %v, want %v", tt.verbosity, zerolog.GlobalLevel(), tt.wantLevel)
			}
			logPath := filepath.Join(tempDir, "reindent", "reindent.log")
			if _, err := os.Stat(logPath); os.IsNotExist(err) {
				t.Errorf("log file was not created at %s", logPath)
			}
		})
	}
}

func TestGetLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(func() { log.Logger = zerolog.New(os.Stderr) })
	SetupLogger(Options{Verbosity: 1, NoColor: true, Console: &buf, NoFile: true})

	logger := GetLogger("dispatch")
	logger.Info().Msg("hello")
	if !strings.Contains(buf.String(), "component=dispatch") {
		t.Fatalf("console output missing component field: %q", buf.String())
	}
}

func TestGetLogFilePath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/custom/state")
	if got, want := getLogFilePath(), filepath.Join("/custom/state", "reindent", "reindent.log"); got != want {
		t.Fatalf("getLogFilePath() = %s, want %s", got, want)
	}
}
