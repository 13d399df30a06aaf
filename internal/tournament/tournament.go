// Package tournament compiles a set of strategies and plays every pair of
// them against each other.
package tournament

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/programme-lv/dilemma/internal/compiler"
	"github.com/programme-lv/dilemma/internal/match"
	"github.com/programme-lv/dilemma/internal/sandbox"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"
)

type Compiler interface {
	Compile(ctx context.Context, sub compiler.Submission) (*compiler.Artifact, *compiler.Report, error)
}

type Comparer interface {
	Compare(ctx context.Context, first, second string, r match.IterRange) (*match.Result, error)
}

type Config struct {
	Range match.IterRange
	// SelfPlay also pairs every strategy with itself.
	SelfPlay bool
	// Parallel caps concurrent compilations and matches. Zero means one.
	Parallel int
}

// Standing is one strategy's line in the final table. Score is the sum,
// over its finished matches, of the points it earned divided by the
// number of turns played.
type Standing struct {
	Name       string
	Score      float64
	Matches    int
	Aborted    int
	Violations int
}

type Tournament struct {
	compiler Compiler
	judge    Comparer
	reporter Reporter
	cfg      Config
	logger   *slog.Logger
}

func New(c Compiler, j Comparer, r Reporter, cfg Config, logger *slog.Logger) *Tournament {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	return &Tournament{compiler: c, judge: j, reporter: r, cfg: cfg, logger: logger}
}

// Run compiles subs and plays the round robin. Strategies that fail to
// compile do not take part. A failed match is reported and skipped; only
// failures of the judge itself end the tournament early.
func (t *Tournament) Run(ctx context.Context, subs []compiler.Submission) (standings []Standing, err error) {
	id := uuid.New()
	names := make([]string, len(subs))
	for i, s := range subs {
		names[i] = s.Name
	}
	if dup := firstDuplicate(names); dup != "" {
		return nil, fmt.Errorf("strategy %q entered twice", dup)
	}
	if err := t.cfg.Range.Validate(); err != nil {
		return nil, err
	}

	t.reporter.StartTournament(id, names)
	defer func() {
		t.reporter.FinishTournament(standings, err)
	}()

	arts, err := t.compileAll(ctx, subs)
	if err != nil {
		return nil, err
	}

	table := xsync.NewMapOf[string, Standing]()
	for _, a := range arts {
		table.Store(a.Name, Standing{Name: a.Name})
	}

	pairings := schedule(arts, t.cfg.SelfPlay)
	t.logger.Info("Starting round robin", "tournament", id, "strategies", len(arts), "matches", len(pairings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.cfg.Parallel)
	for _, p := range pairings {
		g.Go(func() error {
			return t.play(gctx, p, table)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	standings = make([]Standing, 0, table.Size())
	table.Range(func(_ string, s Standing) bool {
		standings = append(standings, s)
		return true
	})
	slices.SortFunc(standings, func(a, b Standing) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return standings, nil
}

func (t *Tournament) compileAll(ctx context.Context, subs []compiler.Submission) ([]*compiler.Artifact, error) {
	arts := make([]*compiler.Artifact, len(subs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.cfg.Parallel)
	for i, sub := range subs {
		g.Go(func() error {
			t.reporter.StartCompile(sub)
			art, report, err := t.compiler.Compile(gctx, sub)
			if err != nil {
				return fmt.Errorf("failed to compile %q: %w", sub.Name, err)
			}
			t.reporter.FinishCompile(sub.Name, art, report)
			arts[i] = art
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return slices.DeleteFunc(arts, func(a *compiler.Artifact) bool { return a == nil }), nil
}

func (t *Tournament) play(ctx context.Context, p pairing, table *xsync.MapOf[string, Standing]) error {
	t.reporter.StartMatch(p.Pairing)
	res, err := t.judge.Compare(ctx, p.first.ExecCmd, p.second.ExecCmd, t.cfg.Range)
	if err != nil {
		if errors.Is(err, sandbox.ErrResourceAcquisition) || ctx.Err() != nil {
			return fmt.Errorf("match %s against %s: %w", p.First, p.Second, err)
		}
		t.logger.Warn("match aborted", "first", p.First, "second", p.Second, "error", err)
		t.reporter.AbortMatch(p.Pairing, err)

		var v *match.ViolationError
		violator := ""
		if errors.As(err, &v) {
			violator = p.First
			if v.Side == 2 {
				violator = p.Second
			}
		}
		for _, name := range p.names() {
			table.Compute(name, func(s Standing, _ bool) (Standing, bool) {
				s.Aborted++
				if name == violator {
					s.Violations++
				}
				return s, false
			})
		}
		return nil
	}

	t.reporter.FinishMatch(p.Pairing, res)
	turns := float64(res.Iterations)
	update := func(name string, score int) {
		table.Compute(name, func(s Standing, _ bool) (Standing, bool) {
			s.Score += float64(score) / turns
			s.Matches++
			return s, false
		})
	}
	update(p.First, res.FirstScore)
	update(p.Second, res.SecondScore)
	return nil
}

type pairing struct {
	Pairing
	first, second *compiler.Artifact
}

// names lists each distinct participant once.
func (p pairing) names() []string {
	if p.First == p.Second {
		return []string{p.First}
	}
	return []string{p.First, p.Second}
}

func schedule(arts []*compiler.Artifact, selfPlay bool) []pairing {
	var ps []pairing
	for i := range arts {
		j0 := i + 1
		if selfPlay {
			j0 = i
		}
		for j := j0; j < len(arts); j++ {
			ps = append(ps, pairing{
				Pairing: Pairing{ID: uuid.New(), First: arts[i].Name, Second: arts[j].Name},
				first:   arts[i],
				second:  arts[j],
			})
		}
	}
	return ps
}

func firstDuplicate(names []string) string {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return n
		}
		seen[n] = struct{}{}
	}
	return ""
}

// lockedReporter serializes calls into a Reporter that is not safe for
// concurrent use.
type lockedReporter struct {
	mu sync.Mutex
	r  Reporter
}

// Serialized wraps r so that its methods are never called concurrently.
func Serialized(r Reporter) Reporter {
	return &lockedReporter{r: r}
}

func (l *lockedReporter) StartTournament(id uuid.UUID, entrants []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.StartTournament(id, entrants)
}

func (l *lockedReporter) StartCompile(sub compiler.Submission) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.StartCompile(sub)
}

func (l *lockedReporter) FinishCompile(name string, art *compiler.Artifact, report *compiler.Report) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.FinishCompile(name, art, report)
}

func (l *lockedReporter) StartMatch(p Pairing) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.StartMatch(p)
}

func (l *lockedReporter) FinishMatch(p Pairing, res *match.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.FinishMatch(p, res)
}

func (l *lockedReporter) AbortMatch(p Pairing, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.AbortMatch(p, err)
}

func (l *lockedReporter) FinishTournament(standings []Standing, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.FinishTournament(standings, err)
}
