package display

import (
	"fmt"
	"io"
	"time"

	"github.com/muesli/termenv"

	"github.com/lox/blackjacktrainer/internal/statistics"
)

// Pretty rewrites a single status line in place, colored to the
// terminal's capabilities via termenv.
type Pretty struct {
	W io.Writer

	output *termenv.Output
	total  int
	start  time.Time
}

func NewPretty(w io.Writer) *Pretty {
	return &Pretty{
		W:      w,
		output: termenv.NewOutput(w),
	}
}

func (p *Pretty) Start(totalRounds int) {
	p.total = totalRounds
	p.start = time.Now()
	header := p.output.String(fmt.Sprintf("simulating %d rounds", totalRounds)).Bold()
	fmt.Fprintln(p.W, header)
}

func (p *Pretty) Progress(done int, stats *statistics.Statistics) {
	pct := 0.0
	if p.total > 0 {
		pct = float64(done) / float64(p.total) * 100
	}
	rate := float64(done) / time.Since(p.start).Seconds()

	net := fmt.Sprintf("%+.1f", stats.Sum)
	styled := p.output.String(net)
	if stats.Sum >= 0 {
		styled = styled.Foreground(p.output.Color("2")) // green
	} else {
		styled = styled.Foreground(p.output.Color("1")) // red
	}

	fmt.Fprintf(p.W, "\r\033[K%6.2f%%  %d/%d rounds  net %s  %.0f rounds/s",
		pct, done, p.total, styled, rate)
}

func (p *Pretty) Finish(stats *statistics.Statistics, elapsed time.Duration) {
	fmt.Fprint(p.W, "\r\033[K")
	writeSummary(p.W, stats, elapsed, func(s string) string {
		return p.output.String(s).Bold().String()
	})
}

// writeSummary prints the final results block shared by all monitors.
// emph styles section labels for terminals that support it.
func writeSummary(w io.Writer, stats *statistics.Statistics, elapsed time.Duration, emph func(string) string) {
	low, high := stats.ConfidenceInterval95()
	rate := float64(stats.Rounds) / elapsed.Seconds()

	fmt.Fprintln(w, emph("=== RESULTS ==="))
	fmt.Fprintf(w, "rounds:     %d in %s (%.0f rounds/s)\n", stats.Rounds, elapsed.Round(time.Millisecond), rate)
	fmt.Fprintf(w, "net:        %+.1f units on %.0f wagered\n", stats.Sum, stats.Wagered)
	fmt.Fprintf(w, "edge:       %+.3f%%\n", stats.EdgePercent())
	fmt.Fprintf(w, "mean:       %+.4f units/round (95%% CI [%.4f, %.4f])\n", stats.Mean(), low, high)
	fmt.Fprintf(w, "std dev:    %.4f\n", stats.StdDev())
	fmt.Fprintf(w, "win rate:   %.1f%% (%d W / %d L / %d P)\n", stats.WinRate()*100, stats.Wins, stats.Losses, stats.Pushes)
	fmt.Fprintf(w, "blackjacks: %d\n", stats.Blackjacks)
	if stats.Rounds > 0 {
		fmt.Fprintf(w, "extremes:   best %+.1f, worst %+.1f\n", stats.MaxWin, stats.MaxLoss)
	}
}
