package observ

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestTimerMeasure(t *testing.T) {
	timer := NewTimer()
	if err := timer.Measure("load", func() error { return nil }); err != nil {
		t.Fatalf("Measure: %v", err)
	}
	boom := errors.New("boom")
	if err := timer.Measure("check", func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Measure должен вернуть ошибку fn, получили %v", err)
	}

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(report.Phases))
	}
	if report.Phases[1].Note != "failed" {
		t.Fatalf("note = %q, want failed", report.Phases[1].Note)
	}

	var buf bytes.Buffer
	if err := timer.WriteSummary(&buf); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"load", "check", "// failed", "total"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary misses %q:\n%s", want, out)
		}
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	timer := NewTimer()
	timer.End(3, "ignored")
	if got := timer.Report(); len(got.Phases) != 0 || got.TotalMS != 0 {
		t.Fatalf("empty timer report = %+v", got)
	}
}
