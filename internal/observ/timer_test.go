package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	timer := NewTimer()
	collect := timer.Begin("collect")
	timer.End(collect, "3 files")
	format := timer.Begin("format")
	timer.End(format, "")
	timer.End(42, "ignored")

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("len(phases) = %d, want 2", len(report.Phases))
	}
	if report.Phases[0].Name != "collect" || report.Phases[0].Note != "3 files" {
		t.Fatalf("unexpected first phase %+v", report.Phases[0])
	}
	summary := timer.Summary()
	for _, want := range []string{"collect", "// 3 files", "format", "total"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestNilTimer(t *testing.T) {
	var timer *Timer
	idx := timer.Begin("x")
	timer.End(idx, "")
	if got := timer.Report(); len(got.Phases) != 0 {
		t.Fatalf("nil timer reported phases: %+v", got)
	}
}
