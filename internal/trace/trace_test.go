package trace

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestStreamTracerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelFile, FormatText)

	run := Begin(tr, ScopeRun, "fmt", 0)
	file := Begin(tr, ScopeFile, "a.java", run.ID())
	tier := Begin(tr, ScopeTier, "tier:rules", file.ID())
	tier.End("")
	file.WithExtra("strategy", "rules").End("changed")
	run.End("")

	out := buf.String()
	if strings.Contains(out, "tier:rules") {
		t.Fatalf("tier span emitted at file level:\n%s", out)
	}
	for _, want := range []string{"→ fmt", "→ a.java", "← a.java (changed) {strategy=rules}", "← fmt"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestErrorLevelOnlyEmitsFailures(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelError, FormatNDJSON)

	span := Begin(tr, ScopeTier, "tier:adapter", 0)
	span.Fail(errors.New("markup: no root element"))
	span.End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected a single failure event, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"kind":"failure"`) || !strings.Contains(lines[0], "no root element") {
		t.Fatalf("unexpected event %s", lines[0])
	}
}

func TestRingTracerWraps(t *testing.T) {
	tr := NewRingTracer(3, LevelTier)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(tr, ScopeTier, name, "", 0)
	}
	snap := tr.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("len(snapshot) = %d, want 3", len(snap))
	}
	for i, want := range []string{"c", "d", "e"} {
		if snap[i].Name != want {
			t.Fatalf("snapshot[%d] = %q, want %q", i, snap[i].Name, want)
		}
	}
	var buf bytes.Buffer
	if err := tr.Dump(&buf, FormatText); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("Dump wrote %q", buf.String())
	}
}

func TestRingTracerBeforeWrap(t *testing.T) {
	tr := NewRingTracer(0, LevelTier)
	if got := len(tr.buf); got != DefaultRingSize {
		t.Fatalf("default size = %d, want %d", got, DefaultRingSize)
	}
	Point(tr, ScopeTier, "a", "", 0)
	Point(tr, ScopeTier, "b", "", 0)
	snap := tr.Snapshot()
	if len(snap) != 2 || snap[0].Name != "a" || snap[1].Name != "b" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestModeRoundTrip(t *testing.T) {
	for _, m := range []StorageMode{ModeStream, ModeRing, ModeBoth} {
		got, err := ParseMode(" " + strings.ToUpper(m.String()))
		if err != nil || got != m {
			t.Fatalf("ParseMode(%s) = %v, %v", m, got, err)
		}
	}
	if StorageMode(9).String() != "unknown" {
		t.Fatal("unexpected name for an unknown mode")
	}
}

func TestNewSelectsTracer(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("LevelOff should yield a disabled tracer, got %v, %v", tr, err)
	}

	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelRun, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	multi, ok := tr.(*MultiTracer)
	if !ok {
		t.Fatalf("ModeBoth returned %T", tr)
	}
	Begin(tr, ScopeRun, "fmt", 0).End("")
	ring, ok := multi.Ring()
	if !ok || len(ring.Snapshot()) != 2 {
		t.Fatalf("ring did not record both events")
	}
	if !strings.Contains(buf.String(), "fmt") {
		t.Fatalf("stream did not record the span: %q", buf.String())
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("empty context should carry Nop")
	}
	tr := NewRingTracer(8, LevelTier)
	ctx := WithTracer(context.Background(), tr)
	if FromContext(ctx) != Tracer(tr) {
		t.Fatalf("tracer not propagated")
	}
	span := Begin(tr, ScopeRun, "fmt", 0)
	ctx = WithSpan(ctx, span)
	if CurrentSpan(ctx) != span.ID() || span.ID() == 0 {
		t.Fatalf("CurrentSpan = %d, want %d", CurrentSpan(ctx), span.ID())
	}
}

func TestParse(t *testing.T) {
	for in, want := range map[string]Level{"off": LevelOff, "TIER": LevelTier, "file": LevelFile, "run": LevelRun, "error": LevelError} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("phase"); err == nil {
		t.Fatalf("ParseLevel(phase) should fail")
	}
	if _, err := ParseMode("tape"); err == nil {
		t.Fatalf("ParseMode(tape) should fail")
	}
	if f, err := ParseFormat("jsonl"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat(jsonl) = %v, %v", f, err)
	}
}
