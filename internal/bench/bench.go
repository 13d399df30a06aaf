// Package bench measures how fast the judge plays a strategy against
// itself.
package bench

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/programme-lv/dilemma/internal/compiler"
	"github.com/programme-lv/dilemma/internal/match"
)

type Compiler interface {
	MustCompile(ctx context.Context, sub compiler.Submission) (*compiler.Artifact, error)
}

type Comparer interface {
	Compare(ctx context.Context, first, second string, r match.IterRange) (*match.Result, error)
}

// Progress is called every tenth of the run with the number of matches
// played so far.
type Progress func(done, total int, elapsed time.Duration)

type Summary struct {
	Matches    int
	Iterations int
	Elapsed    time.Duration
}

// MatchesPerSecond is zero for an empty run.
func (s Summary) MatchesPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Matches) / s.Elapsed.Seconds()
}

func (s Summary) String() string {
	return fmt.Sprintf("%d matches (%d turns) in %v, %.1f matches/s",
		s.Matches, s.Iterations, s.Elapsed.Round(time.Millisecond), s.MatchesPerSecond())
}

type Runner struct {
	Compiler Compiler
	Judge    Comparer
	Progress Progress
	Logger   *slog.Logger
}

// Run compiles sub once and plays it against itself count times. The first
// failed match ends the run; the summary covers the matches played until
// then.
func (b *Runner) Run(ctx context.Context, sub compiler.Submission, count int, r match.IterRange) (Summary, error) {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if count < 1 {
		return Summary{}, fmt.Errorf("match count must be positive, got %d", count)
	}
	if err := r.Validate(); err != nil {
		return Summary{}, err
	}

	logger.Info("Compiling benchmark strategy...", "name", sub.Name, "lang", sub.Lang)
	art, err := b.Compiler.MustCompile(ctx, sub)
	if err != nil {
		return Summary{}, err
	}

	period := max(count/10, 1)
	var sum Summary
	start := time.Now()
	for i := 1; i <= count; i++ {
		res, err := b.Judge.Compare(ctx, art.ExecCmd, art.ExecCmd, r)
		sum.Elapsed = time.Since(start)
		if err != nil {
			return sum, fmt.Errorf("match %d of %d: %w", i, count, err)
		}
		sum.Matches++
		sum.Iterations += res.Iterations
		if i%period == 0 && b.Progress != nil {
			b.Progress(i, count, sum.Elapsed)
		}
	}
	logger.Info("Benchmark finished", "matches", sum.Matches, "elapsed", sum.Elapsed)
	return sum, nil
}
