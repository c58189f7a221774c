package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"reindent/internal/indent"
)

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	return executeWithCache(t, t.TempDir(), stdin, args...)
}

func executeWithCache(t *testing.T, cacheHome, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFmtRewritesFiles(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "a.java", "if(x){\nfoo();\n}\n")
	stdout, _, err := execute(t, "", "fmt", "--ui=off", "--width=2", path)
	if err != nil {
		t.Fatalf("fmt: %v", err)
	}
	if !strings.Contains(stdout, "reindented "+path) {
		t.Fatalf("stdout = %q", stdout)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "if(x){\n  foo();\n}\n" {
		t.Fatalf("file = %q", data)
	}

	// A second run has nothing to do.
	stdout, _, err = execute(t, "", "fmt", "--ui=off", "--width=2", path)
	if err != nil || stdout != "" {
		t.Fatalf("second run: stdout=%q err=%v", stdout, err)
	}
}

func TestFmtCheckReportsChanges(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "a.java", "if(x){\nfoo();\n}\n")
	stdout, _, err := execute(t, "", "fmt", "--check", "--ui=off", path)
	if err == nil || !strings.Contains(err.Error(), "indentation changes required") {
		t.Fatalf("err = %v", err)
	}
	if strings.TrimSpace(stdout) != path {
		t.Fatalf("stdout = %q", stdout)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "if(x){\nfoo();\n}\n" {
		t.Fatalf("--check modified the file: %q", data)
	}
}

func TestFmtCheckDiff(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "a.java", "if(x){\nfoo();\n}\n")
	stdout, _, _ := execute(t, "", "fmt", "--check", "--diff", "--width=2", "--ui=off", "--color=off", path)
	for _, want := range []string{"--- " + path, "@@ line 1 @@", " if(x){", "-foo();", "+  foo();"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("diff missing %q:\n%s", want, stdout)
		}
	}
}

func TestFmtStdin(t *testing.T) {
	stdout, _, err := execute(t, "if x:\nprint(x)\n", "fmt", "--lang=python", "-")
	if err != nil {
		t.Fatalf("fmt -: %v", err)
	}
	if stdout != "if x:\n    print(x)\n" {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestFmtFallbackNote(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "page.html", "plain text\n")
	_, stderr, err := execute(t, "", "fmt", "--check", "--ui=off", "--color=off", path)
	if err != nil {
		t.Fatalf("fmt: %v", err)
	}
	want := "note: " + path + ": using fallback formatter (adapter:markup"
	if !strings.Contains(stderr, want) {
		t.Fatalf("stderr = %q, want %q", stderr, want)
	}

	_, stderr, _ = execute(t, "", "--quiet", "fmt", "--check", "--ui=off", path)
	if strings.Contains(stderr, "note:") {
		t.Fatalf("--quiet still printed note: %q", stderr)
	}
}

func TestFmtJSON(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.java", "if(x){\nfoo();\n}\n")
	writeTestFile(t, dir, "b.py", "x = 1\n")
	stdout, _, err := execute(t, "", "--timings", "fmt", "--check", "--format=json", "--ui=off", dir)
	if err == nil {
		t.Fatal("expected check failure")
	}
	var payload jsonPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("decode %q: %v", stdout, err)
	}
	if len(payload.Files) != 2 {
		t.Fatalf("files = %+v", payload.Files)
	}
	a, b := payload.Files[0], payload.Files[1]
	if !a.Changed || a.Language != "java" || a.Strategy != "rules:java" || !a.CheckRun {
		t.Fatalf("a.java = %+v", a)
	}
	if b.Changed || b.Language != "python" {
		t.Fatalf("b.py = %+v", b)
	}
	if payload.Timings == nil || len(payload.Timings.Phases) == 0 {
		t.Fatalf("timings = %+v", payload.Timings)
	}
}

func TestFmtClearCache(t *testing.T) {
	cacheHome := t.TempDir()
	path := writeTestFile(t, t.TempDir(), "a.java", "if(x){\nfoo();\n}\n")
	run := func(extra ...string) jsonResult {
		t.Helper()
		args := append([]string{"fmt", "--check", "--format=json", "--ui=off"}, extra...)
		stdout, _, _ := executeWithCache(t, cacheHome, "", append(args, path)...)
		var payload jsonPayload
		if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
			t.Fatalf("decode %q: %v", stdout, err)
		}
		if len(payload.Files) != 1 {
			t.Fatalf("files = %+v", payload.Files)
		}
		return payload.Files[0]
	}

	if first := run(); first.Cached {
		t.Fatalf("first run hit the cache: %+v", first)
	}
	if second := run(); !second.Cached {
		t.Fatalf("second run missed the cache: %+v", second)
	}
	if cleared := run("--clear-cache"); cleared.Cached || !cleared.Changed {
		t.Fatalf("run after --clear-cache: %+v", cleared)
	}
	if _, err := os.Stat(filepath.Join(cacheHome, "reindent")); err != nil {
		t.Fatalf("cache dir missing after clear: %v", err)
	}
}

func TestFmtConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestFile(t, dir, "custom.toml", `
[indent]
style = "tab"

[[rules]]
name = "ruby"
extensions = [".rb"]
increase = ['^def\b']
decrease = ['^end$']
`)
	path := writeTestFile(t, dir, "a.rb", "def f\nx\nend\n")
	stdout, _, err := execute(t, "", "--config", cfgPath, "fmt", "--stdout", path)
	if err != nil {
		t.Fatalf("fmt: %v", err)
	}
	if stdout != "def f\n\tx\nend\n" {
		t.Fatalf("stdout = %q", stdout)
	}

	stdout, _, err = execute(t, "", "--config", cfgPath, "languages", "--format=json")
	if err != nil {
		t.Fatalf("languages: %v", err)
	}
	var rows []languageRow
	if err := json.Unmarshal([]byte(stdout), &rows); err != nil {
		t.Fatal(err)
	}
	last := rows[len(rows)-1]
	if last.Name != "ruby" || strings.Join(last.Tiers, ",") != "rules:ruby,brackets" || strings.Join(last.Extensions, ",") != ".rb" || !last.Configured {
		t.Fatalf("ruby row = %+v", last)
	}
	for _, row := range rows[:len(rows)-1] {
		if row.Configured {
			t.Fatalf("builtin row marked as configured: %+v", row)
		}
	}

	stdout, _, err = execute(t, "", "--color=never", "--config", cfgPath, "languages")
	if err != nil {
		t.Fatalf("languages: %v", err)
	}
	if !strings.Contains(stdout, ".rb  (config)") || strings.Contains(stdout, "java  (config)") {
		t.Fatalf("languages text = %q", stdout)
	}
}

func TestFmtErrors(t *testing.T) {
	if _, _, err := execute(t, "", "fmt", "--ui=off", t.TempDir()); err == nil || !strings.Contains(err.Error(), "no source files") {
		t.Fatalf("empty dir err = %v", err)
	}
	if _, _, err := execute(t, "", "fmt", "--ui=bogus", "x"); err == nil || !strings.Contains(err.Error(), "--ui") {
		t.Fatalf("bad ui err = %v", err)
	}
	if _, _, err := execute(t, "", "--color=sometimes", "version"); err == nil {
		t.Fatal("bad --color accepted")
	}
}

func TestValidateFmtFlags(t *testing.T) {
	cases := []struct {
		name    string
		flags   fmtFlags
		stdin   bool
		wantErr string
	}{
		{"defaults", fmtFlags{format: "text"}, false, ""},
		{"bad format", fmtFlags{format: "xml"}, false, "unsupported output format"},
		{"stdout with check", fmtFlags{format: "text", stdout: true, check: true}, false, "--stdout cannot be used with --check"},
		{"stdout json", fmtFlags{format: "json", stdout: true}, false, "only supported with text"},
		{"stdin check json", fmtFlags{format: "json", check: true}, true, ""},
		{"diff json", fmtFlags{format: "json", diff: true}, false, "--diff"},
		{"highlight without stdout", fmtFlags{format: "text", highlight: true}, false, "--highlight requires"},
		{"highlight stdin", fmtFlags{format: "text", highlight: true}, true, ""},
		{"negative width", fmtFlags{format: "text", width: -1}, false, "--width"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateFmtFlags(&tc.flags, tc.stdin)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err = %v, want %q", err, tc.wantErr)
			}
		})
	}
}

func TestResolveUnit(t *testing.T) {
	cases := []struct {
		name string
		base indent.Unit
		args []string
		want indent.Unit
	}{
		{"config only", indent.SpacesUnit(2), nil, indent.SpacesUnit(2)},
		{"width flag", indent.SpacesUnit(2), []string{"--width=8"}, indent.SpacesUnit(8)},
		{"tab flag", indent.SpacesUnit(2), []string{"--indent=tab", "--width=8"}, indent.TabUnit()},
		{"spaces over tab config", indent.TabUnit(), []string{"--indent=spaces"}, indent.SpacesUnit(4)},
		{"zero width defaults", indent.SpacesUnit(2), []string{"--width=0"}, indent.SpacesUnit(4)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := newFmtCmd()
			if err := cmd.ParseFlags(tc.args); err != nil {
				t.Fatal(err)
			}
			var f fmtFlags
			f.indent, _ = cmd.Flags().GetString("indent")
			f.width, _ = cmd.Flags().GetInt("width")
			got, err := resolveUnit(tc.base, cmd.Flags(), &f)
			if err != nil {
				t.Fatalf("resolveUnit: %v", err)
			}
			if got != tc.want {
				t.Fatalf("resolveUnit = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestRenderDiff(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	var buf bytes.Buffer
	renderDiff(&buf, "f", []byte("a\nb\nc\nd\ne\nf\ng\nh\ni\nj\n"), []byte("a\nb\nc\nd\ne\nf\ng\nh\ni\n  j\n"))
	want := "--- f\n+++ f (reindented)\n@@ line 7 @@\n g\n h\n i\n-j\n+  j\n"
	if buf.String() != want {
		t.Fatalf("renderDiff =\n%s\nwant\n%s", buf.String(), want)
	}

	buf.Reset()
	renderDiff(&buf, "f", []byte("same"), []byte("same"))
	if buf.Len() != 0 {
		t.Fatalf("equal inputs rendered %q", buf.String())
	}
}

func TestParseProgressMode(t *testing.T) {
	for in, want := range map[string]progressMode{"": progressAuto, "AUTO": progressAuto, "on": progressOn, " off ": progressOff} {
		got, err := parseProgressMode(in)
		if err != nil || got != want {
			t.Errorf("parseProgressMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := parseProgressMode("maybe"); err == nil {
		t.Error("parseProgressMode accepted an invalid value")
	}
}

func TestProgressView(t *testing.T) {
	if progressView(progressOff, 3, true) || !progressView(progressOn, 0, true) {
		t.Error("explicit ui modes not honored")
	}
	if progressView(progressOn, 3, false) {
		t.Error("progress view drawn over stdout or JSON output")
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := execute(t, "", "version", "--format=json", "--full")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Tool != "reindent" || payload.Version == "" || payload.GitCommit == "" {
		t.Fatalf("payload = %+v", payload)
	}
}
