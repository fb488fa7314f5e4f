// Package display renders simulation progress to a terminal. Monitors
// receive periodic snapshots of the running statistics and a final
// summary; they never block the workers.
package display

import (
	"fmt"
	"io"
	"time"

	"github.com/lox/blackjacktrainer/internal/statistics"
)

// Monitor observes a simulation run.
type Monitor interface {
	Start(totalRounds int)
	Progress(done int, stats *statistics.Statistics)
	Finish(stats *statistics.Statistics, elapsed time.Duration)
}

// Nop is a Monitor that discards everything. Useful for tests and for
// running headless.
type Nop struct{}

func (Nop) Start(int)                                    {}
func (Nop) Progress(int, *statistics.Statistics)         {}
func (Nop) Finish(*statistics.Statistics, time.Duration) {}

// Dots prints one dot per progress tick, a hundred to a line. The
// cheapest output that still shows the run is alive, and safe for
// non-tty output like CI logs.
type Dots struct {
	W io.Writer

	printed int
}

func NewDots(w io.Writer) *Dots {
	return &Dots{W: w}
}

func (d *Dots) Start(totalRounds int) {
	fmt.Fprintf(d.W, "simulating %d rounds\n", totalRounds)
}

func (d *Dots) Progress(int, *statistics.Statistics) {
	fmt.Fprint(d.W, ".")
	d.printed++
	if d.printed%100 == 0 {
		fmt.Fprintln(d.W)
	}
}

func (d *Dots) Finish(stats *statistics.Statistics, elapsed time.Duration) {
	if d.printed%100 != 0 {
		fmt.Fprintln(d.W)
	}
	writeSummary(d.W, stats, elapsed, func(s string) string { return s })
}
