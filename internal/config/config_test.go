package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reindent/internal/indent"
	"reindent/internal/lang"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("Find = %q, want %q", got, want)
	}
}

func TestDiscoverDefaults(t *testing.T) {
	cfg, err := Discover(t.TempDir(), "")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	// A config file above the temp dir would make this test meaningless.
	if cfg.Path != "" {
		t.Skipf("found unrelated config at %s", cfg.Path)
	}
	if cfg.Unit != indent.SpacesUnit(4) {
		t.Fatalf("Unit = %+v", cfg.Unit)
	}
	if l, ok := cfg.Extensions.Detect("x.java"); !ok || l != lang.Java {
		t.Fatalf("Detect(x.java) = %v, %v", l, ok)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[indent]
style = "spaces"
width = 2

[languages]
".jsx" = "script"

[adapters]
markup = false

[[rules]]
name = "ruby"
extensions = [".rb"]
increase = ['^(def|class|if)\b', '^else$']
decrease = ['^end$', '^else$']
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != path {
		t.Fatalf("Path = %q", cfg.Path)
	}
	if len(cfg.Digest) != 64 {
		t.Fatalf("Digest = %q", cfg.Digest)
	}
	if cfg.Unit != indent.SpacesUnit(2) {
		t.Fatalf("Unit = %+v", cfg.Unit)
	}
	if l, _ := cfg.Extensions.Detect("app.JSX"); l != lang.Script {
		t.Fatalf("Detect(app.JSX) = %v", l)
	}
	if _, ok := cfg.Adapters.Lookup(lang.Markup); ok {
		t.Fatal("markup adapter should be disabled")
	}
	if _, ok := cfg.Adapters.Lookup(lang.Stylesheet); !ok {
		t.Fatal("stylesheet adapter should stay enabled")
	}

	ruby := lang.Parse("ruby")
	if l, _ := cfg.Extensions.Detect("x.rb"); l != ruby {
		t.Fatalf("Detect(x.rb) = %v", l)
	}
	rs, ok := cfg.Rules.Lookup(ruby)
	if !ok {
		t.Fatal("ruby rule set not registered")
	}
	got := indent.Walk("def f\nif x\ny\nelse\nz\nend\nend", cfg.Unit, rs)
	want := "def f\n  if x\n    y\n  else\n    z\n  end\nend"
	if got != want {
		t.Fatalf("ruby walk = %q, want %q", got, want)
	}
}

func TestLoadTabs(t *testing.T) {
	cfg, err := Load(writeConfig(t, t.TempDir(), "[indent]\nstyle = \"tab\"\nwidth = 8\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Unit != indent.TabUnit() {
		t.Fatalf("Unit = %+v", cfg.Unit)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "[indent]\nsize = 2\n", "unknown keys: indent.size"},
		{"bad style", "[indent]\nstyle = \"dots\"\n", "[indent].style"},
		{"zero width", "[indent]\nwidth = 0\n", "[indent]"},
		{"bad regex", "[[rules]]\nname = \"x\"\nincrease = ['(']\n", "[[rules]] #1"},
		{"rule without name", "[[rules]]\nincrease = ['x']\n", "missing name"},
		{"enable missing adapter", "[adapters]\njava = true\n", "no structured formatter"},
		{"syntax", "[indent\n", "failed to parse TOML"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), tc.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not contain %q", err, tc.want)
			}
		})
	}
}
