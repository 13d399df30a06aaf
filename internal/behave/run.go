package behave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/programme-lv/dilemma/internal/compiler"
	"github.com/programme-lv/dilemma/internal/match"
	"github.com/programme-lv/dilemma/internal/sandbox"
)

type Compiler interface {
	Compile(ctx context.Context, sub compiler.Submission) (*compiler.Artifact, *compiler.Report, error)
}

type Comparer interface {
	Compare(ctx context.Context, first, second string, r match.IterRange) (*match.Result, error)
}

type Outcome struct {
	Case   Case
	Status string
	Result *match.Result
	Err    error
	// Mismatches lists every way the outcome differs from the expectation.
	Mismatches []string
}

func (o Outcome) Passed() bool {
	return len(o.Mismatches) == 0
}

type Runner struct {
	Compiler Compiler
	Judge    Comparer
	Logger   *slog.Logger

	compiled map[string]*compiler.Artifact
}

// Run plays every case in order. Each strategy is compiled at most once.
// Only infrastructure failures are returned as errors.
func (r *Runner) Run(ctx context.Context, suite *Suite) ([]Outcome, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r.compiled = make(map[string]*compiler.Artifact)

	outcomes := make([]Outcome, 0, len(suite.Cases))
	for _, c := range suite.Cases {
		logger.Debug("Running scenario", "id", c.ID, "name", c.Name)
		out, err := r.runCase(ctx, c)
		if err != nil {
			return outcomes, fmt.Errorf("scenario %q: %w", c.Name, err)
		}
		out.Mismatches = compare(c.Expect, out)
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

func (r *Runner) runCase(ctx context.Context, c Case) (Outcome, error) {
	out := Outcome{Case: c}

	firstCmd, err := r.execCmd(ctx, c.First)
	if err != nil {
		return out, err
	}
	secondCmd, err := r.execCmd(ctx, c.Second)
	if err != nil {
		return out, err
	}
	if firstCmd == "" || secondCmd == "" {
		out.Status = StatusCompileError
		return out, nil
	}

	out.Result, out.Err = r.Judge.Compare(ctx, firstCmd, secondCmd, c.Range)
	out.Status = Classify(out.Err)
	if out.Status == "" {
		return out, out.Err
	}
	return out, nil
}

// execCmd returns "" when the strategy does not compile.
func (r *Runner) execCmd(ctx context.Context, s SpecStrategy) (string, error) {
	if s.Exec != "" {
		return s.Exec, nil
	}
	if art, ok := r.compiled[s.Name]; ok {
		if art == nil {
			return "", nil
		}
		return art.ExecCmd, nil
	}
	art, _, err := r.Compiler.Compile(ctx, compiler.Submission{Name: s.Name, Lang: s.Lang, Source: s.Code})
	if err != nil {
		return "", err
	}
	r.compiled[s.Name] = art
	if art == nil {
		return "", nil
	}
	return art.ExecCmd, nil
}

// Classify maps the error of a match to a scenario status. It returns ""
// for errors that say nothing about the strategies.
func Classify(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, match.ErrProtocolViolation):
		return StatusViolation
	case errors.Is(err, match.ErrInvalidRange):
		return StatusInvalidRange
	case errors.Is(err, sandbox.ErrPeerExited):
		return StatusExited
	case errors.Is(err, sandbox.ErrPeerUnresponsive):
		return StatusUnresponsive
	}
	return ""
}

func compare(want SpecExpect, out Outcome) []string {
	var diffs []string
	if want.Status != out.Status {
		diffs = append(diffs, fmt.Sprintf("status: expected %s, got %s", want.Status, out.Status))
	}
	if want.ViolatingSide != 0 {
		var v *match.ViolationError
		if !errors.As(out.Err, &v) || v.Side != want.ViolatingSide {
			diffs = append(diffs, fmt.Sprintf("expected side %d to break the protocol", want.ViolatingSide))
		}
	}
	res := out.Result
	if res == nil {
		if want.FirstScore != nil || want.SecondScore != nil || want.FirstChoices != nil || want.SecondChoices != nil {
			diffs = append(diffs, "expected a match result, got none")
		}
		return diffs
	}
	if want.FirstScore != nil && *want.FirstScore != res.FirstScore {
		diffs = append(diffs, fmt.Sprintf("first score: expected %d, got %d", *want.FirstScore, res.FirstScore))
	}
	if want.SecondScore != nil && *want.SecondScore != res.SecondScore {
		diffs = append(diffs, fmt.Sprintf("second score: expected %d, got %d", *want.SecondScore, res.SecondScore))
	}
	if want.FirstChoices != nil && !slices.Equal(want.FirstChoices, res.FirstChoices) {
		diffs = append(diffs, fmt.Sprintf("first choices: expected %v, got %v", want.FirstChoices, res.FirstChoices))
	}
	if want.SecondChoices != nil && !slices.Equal(want.SecondChoices, res.SecondChoices) {
		diffs = append(diffs, fmt.Sprintf("second choices: expected %v, got %v", want.SecondChoices, res.SecondChoices))
	}
	return diffs
}
