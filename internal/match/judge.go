// Package match plays two compiled strategies against each other and
// scores the result.
package match

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/programme-lv/dilemma/internal/mailbox"
)

// Result of a finished match. Choices are in turn order.
type Result struct {
	ID            uuid.UUID
	Iterations    int
	FirstChoices  []int32
	SecondChoices []int32
	FirstScore    int
	SecondScore   int
	Duration      time.Duration
}

type Options struct {
	// TurnTimeout bounds every single receive. Zero waits forever.
	TurnTimeout time.Duration
	// Seed of the iteration scheduler. Zero picks a random seed.
	Seed   uint64
	Logger *slog.Logger
}

type Judge struct {
	spawner     Spawner
	sched       *Scheduler
	turnTimeout time.Duration
	logger      *slog.Logger
}

func NewJudge(spawner Spawner, opts Options) *Judge {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Judge{
		spawner:     spawner,
		sched:       NewScheduler(opts.Seed),
		turnTimeout: opts.TurnTimeout,
		logger:      logger,
	}
}

// Compare plays first against second for a number of turns drawn from r.
// When either side breaks the protocol the match has no result and the
// error is a *ViolationError.
func (j *Judge) Compare(ctx context.Context, first, second string, r IterRange) (*Result, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	iterations := j.sched.Draw(r)

	p1, err := j.spawner.Spawn(ctx, first)
	if err != nil {
		return nil, fmt.Errorf("failed to start first strategy: %w", err)
	}
	defer closePeer(j.logger, p1)

	p2, err := j.spawner.Spawn(ctx, second)
	if err != nil {
		return nil, fmt.Errorf("failed to start second strategy: %w", err)
	}
	defer closePeer(j.logger, p2)

	res := &Result{
		ID:            uuid.New(),
		Iterations:    iterations,
		FirstChoices:  make([]int32, 0, iterations),
		SecondChoices: make([]int32, 0, iterations),
	}
	j.logger.Debug("Starting match", "id", res.ID, "iterations", iterations)
	start := time.Now()

	for turn := 1; turn <= iterations; turn++ {
		a, err := j.receive(ctx, p1, 1, turn)
		if err != nil {
			return nil, err
		}
		b, err := j.receive(ctx, p2, 2, turn)
		if err != nil {
			return nil, err
		}

		toFirst, toSecond := b, a
		if turn == iterations {
			toFirst, toSecond = mailbox.EndOfIterations, mailbox.EndOfIterations
		}
		if err := p1.Send(toFirst); err != nil {
			return nil, fmt.Errorf("failed to send to first strategy: %w", err)
		}
		if err := p2.Send(toSecond); err != nil {
			return nil, fmt.Errorf("failed to send to second strategy: %w", err)
		}

		s1, s2 := Score(a, b)
		res.FirstScore += s1
		res.SecondScore += s2
		res.FirstChoices = append(res.FirstChoices, a)
		res.SecondChoices = append(res.SecondChoices, b)
	}

	res.Duration = time.Since(start)
	j.logger.Debug("Finished match", "id", res.ID,
		"first_score", res.FirstScore, "second_score", res.SecondScore, "duration", res.Duration)
	return res, nil
}

func (j *Judge) receive(ctx context.Context, p Peer, side, turn int) (int32, error) {
	if j.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.turnTimeout)
		defer cancel()
	}
	v, err := p.Receive(ctx)
	if err != nil {
		return 0, fmt.Errorf("side %d on turn %d: %w", side, turn, err)
	}
	if v != 0 && v != 1 {
		j.logger.Debug("Protocol violation", "side", side, "turn", turn, "value", v)
		return 0, &ViolationError{Side: side, Turn: turn, Value: v}
	}
	return v, nil
}

func closePeer(logger *slog.Logger, p Peer) {
	if err := p.Close(); err != nil {
		logger.Warn("failed to release strategy process", "error", err)
	}
}
