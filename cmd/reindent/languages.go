package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"reindent/internal/config"
	"reindent/internal/dispatch"
	"reindent/internal/lang"
)

type languageRow struct {
	Name       string   `json:"name"`
	Tiers      []string `json:"tiers"`
	Extensions []string `json:"extensions"`
	Configured bool     `json:"configured,omitempty"`
}

func newLanguagesCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List languages, their formatting tiers and extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := config.Discover(".", configPath)
			if err != nil {
				return err
			}
			rows := languageRows(cfg)
			switch format {
			case "text":
				renderLanguagesText(cmd.OutOrStdout(), rows)
				return nil
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			default:
				return fmt.Errorf("unsupported format %q (must be text or json)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (text|json)")
	return cmd
}

// languageRows lists builtin languages first, then configured ones by name.
func languageRows(cfg *config.Config) []languageRow {
	d := dispatch.New(dispatch.WithAdapters(cfg.Adapters), dispatch.WithRules(cfg.Rules))

	seen := make(map[lang.Language]bool)
	langs := append([]lang.Language(nil), lang.Builtins...)
	for _, l := range langs {
		seen[l] = true
	}
	var extra []lang.Language
	add := func(l lang.Language) {
		if !seen[l] {
			seen[l] = true
			extra = append(extra, l)
		}
	}
	for _, l := range cfg.Rules.Languages() {
		add(l)
	}
	for _, l := range cfg.Extensions {
		add(l)
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	langs = append(langs, extra...)

	rows := make([]languageRow, 0, len(langs))
	for _, l := range langs {
		rows = append(rows, languageRow{
			Name:       l.String(),
			Tiers:      d.Strategies(l).Names(),
			Extensions: cfg.Extensions.For(l),
			Configured: !l.IsBuiltin(),
		})
	}
	return rows
}

var configuredColor = color.New(color.Faint)

func renderLanguagesText(out io.Writer, rows []languageRow) {
	nameColor := color.New(color.Bold)
	width := 0
	for _, r := range rows {
		width = max(width, len(r.Name))
	}
	for _, r := range rows {
		exts := strings.Join(r.Extensions, " ")
		if exts == "" {
			exts = "-"
		}
		line := fmt.Sprintf("%s  %s  %s",
			nameColor.Sprintf("%-*s", width, r.Name),
			strings.Join(r.Tiers, " > "),
			exts)
		if r.Configured {
			line += configuredColor.Sprint("  (config)")
		}
		fmt.Fprintln(out, line)
	}
}
