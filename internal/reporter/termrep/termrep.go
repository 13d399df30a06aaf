// Package termrep prints tournament progress to a terminal.
package termrep

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/programme-lv/dilemma/internal/compiler"
	"github.com/programme-lv/dilemma/internal/match"
	"github.com/programme-lv/dilemma/internal/tournament"
	"github.com/programme-lv/dilemma/internal/utils"
)

var (
	bold  = color.New(color.Bold)
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
	faint = color.New(color.Faint)
)

type TerminalReporter struct {
	StartedAt time.Time
	// Verbose also prints every finished match.
	Verbose bool

	mu  sync.Mutex
	out io.Writer
}

func New(verbose bool) *TerminalReporter {
	return NewWithWriter(os.Stdout, verbose)
}

func NewWithWriter(out io.Writer, verbose bool) *TerminalReporter {
	return &TerminalReporter{StartedAt: time.Now(), Verbose: verbose, out: out}
}

func (t *TerminalReporter) StartTournament(id uuid.UUID, entrants []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.StartedAt = time.Now()
	bold.Fprintf(t.out, "== Tournament %s started ==\n", id)
	fmt.Fprintf(t.out, "Entrants: %s\n", strings.Join(entrants, ", "))
}

func (t *TerminalReporter) StartCompile(sub compiler.Submission) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "-- Compiling %s (%s) --\n", sub.Name, sub.Lang)
}

func (t *TerminalReporter) FinishCompile(name string, art *compiler.Artifact, report *compiler.Report) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if art == nil {
		red.Fprintf(t.out, "-- Compilation of %s failed --\n", name)
	} else {
		green.Fprintf(t.out, "-- Compiled %s --\n", name)
	}
	if report == nil {
		return
	}
	fmt.Fprintf(t.out, "exit=%d wall=%dms\n", report.ExitCode, report.Duration.Milliseconds())
	if report.Output != "" && (art == nil || report.Suspicious()) {
		faint.Fprintln(t.out, utils.TrimStrToRect(report.Output, 20, 120))
	}
}

func (t *TerminalReporter) StartMatch(p tournament.Pairing) {}

func (t *TerminalReporter) FinishMatch(p tournament.Pairing, res *match.Result) {
	if !t.Verbose {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "<- %s %d : %d %s (%d turns, %s)\n",
		p.First, res.FirstScore, res.SecondScore, p.Second,
		res.Iterations, res.Duration.Round(time.Microsecond))
}

func (t *TerminalReporter) AbortMatch(p tournament.Pairing, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	red.Fprintf(t.out, "<- %s vs %s aborted: %v\n", p.First, p.Second, err)
}

func (t *TerminalReporter) FinishTournament(standings []tournament.Standing, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		red.Fprintf(t.out, "== Tournament failed: %v ==\n", err)
		return
	}
	WriteStandings(t.out, standings)
	dur := time.Since(t.StartedAt).Round(time.Millisecond)
	bold.Fprintf(t.out, "== Tournament finished in %s ==\n", dur)
}

// WriteStandings prints the standings as an aligned table.
func WriteStandings(out io.Writer, standings []tournament.Standing) {
	width := len("strategy")
	for _, s := range standings {
		width = max(width, len(s.Name))
	}
	bold.Fprintf(out, "%4s  %-*s  %10s  %7s  %7s  %10s\n", "#", width, "strategy", "score", "matches", "aborted", "violations")
	for i, s := range standings {
		line := fmt.Sprintf("%4d  %-*s  %10.3f  %7d  %7d  %10d", i+1, width, s.Name, s.Score, s.Matches, s.Aborted, s.Violations)
		if s.Violations > 0 {
			red.Fprintln(out, line)
		} else {
			fmt.Fprintln(out, line)
		}
	}
}
