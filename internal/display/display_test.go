package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/lox/blackjacktrainer/internal/statistics"
)

func sampleStats() *statistics.Statistics {
	stats := &statistics.Statistics{}
	stats.Add(statistics.RoundResult{Net: 10, Wagered: 10})
	stats.Add(statistics.RoundResult{Net: -10, Wagered: 10})
	stats.Add(statistics.RoundResult{Net: 15, Wagered: 10, Blackjack: true})
	return stats
}

func TestDotsOutput(t *testing.T) {
	var buf bytes.Buffer
	d := NewDots(&buf)

	d.Start(300)
	for i := 0; i < 3; i++ {
		d.Progress((i+1)*100, sampleStats())
	}
	d.Finish(sampleStats(), 2*time.Second)

	out := buf.String()
	if !strings.Contains(out, "simulating 300 rounds") {
		t.Errorf("missing header in output:\n%s", out)
	}
	if !strings.Contains(out, "...") {
		t.Errorf("missing progress dots in output:\n%s", out)
	}
	if !strings.Contains(out, "=== RESULTS ===") {
		t.Errorf("missing summary in output:\n%s", out)
	}
	if !strings.Contains(out, "rounds:     3") {
		t.Errorf("missing round count in output:\n%s", out)
	}
	if !strings.Contains(out, "blackjacks: 1") {
		t.Errorf("missing blackjack tally in output:\n%s", out)
	}
}

func TestPrettyOutput(t *testing.T) {
	var buf bytes.Buffer
	p := NewPretty(&buf)

	p.Start(100)
	p.Progress(50, sampleStats())
	p.Finish(sampleStats(), time.Second)

	out := buf.String()
	if !strings.Contains(out, "simulating 100 rounds") {
		t.Errorf("missing header in output:\n%s", out)
	}
	if !strings.Contains(out, "50/100 rounds") {
		t.Errorf("missing progress line in output:\n%s", out)
	}
	if !strings.Contains(out, "=== RESULTS ===") {
		t.Errorf("missing summary in output:\n%s", out)
	}
}

func TestNopIsSilent(t *testing.T) {
	var m Monitor = Nop{}
	m.Start(10)
	m.Progress(5, sampleStats())
	m.Finish(sampleStats(), time.Second)
}
