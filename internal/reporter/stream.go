// Package reporter turns tournament events into api messages and hands
// them to a Sink.
package reporter

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/programme-lv/dilemma/api"
	"github.com/programme-lv/dilemma/internal/compiler"
	"github.com/programme-lv/dilemma/internal/match"
	"github.com/programme-lv/dilemma/internal/tournament"
	"github.com/programme-lv/dilemma/internal/utils"
)

// Sink delivers one message. It must be safe for concurrent use.
type Sink interface {
	Send(msg any) error
}

// Streamer is a tournament.Reporter that streams every event to a Sink.
// Delivery errors are logged and otherwise ignored.
type Streamer struct {
	sink   Sink
	logger *slog.Logger

	// set by StartTournament
	id string
}

func NewStreamer(sink Sink, logger *slog.Logger) *Streamer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Streamer{sink: sink, logger: logger}
}

func (s *Streamer) send(msg any) {
	if err := s.sink.Send(msg); err != nil {
		s.logger.Error("failed to deliver tournament event", "error", err)
	}
}

func (s *Streamer) StartTournament(id uuid.UUID, entrants []string) {
	s.id = id.String()
	s.send(api.NewStartTournament(s.id, entrants))
}

func (s *Streamer) StartCompile(sub compiler.Submission) {
	s.send(api.NewStartCompile(s.id, sub.Name, sub.Lang))
}

func (s *Streamer) FinishCompile(name string, art *compiler.Artifact, report *compiler.Report) {
	s.send(api.NewFinishCompile(s.id, name, art != nil, compileData(report)))
}

func (s *Streamer) StartMatch(p tournament.Pairing) {
	s.send(api.NewStartMatch(s.id, p.ID.String(), p.First, p.Second))
}

func (s *Streamer) FinishMatch(p tournament.Pairing, res *match.Result) {
	tr, err := api.EncodeTranscript(res.FirstChoices, res.SecondChoices)
	if err != nil {
		s.logger.Error("failed to encode transcript", "match", p.ID, "error", err)
	}
	s.send(api.FinishMatch{
		Header:      api.NewHeader(s.id, api.FinishMatchMsg),
		MatchUuid:   p.ID.String(),
		Iterations:  res.Iterations,
		FirstScore:  res.FirstScore,
		SecondScore: res.SecondScore,
		WallMillis:  res.Duration.Milliseconds(),
		Transcript:  tr,
	})
}

func (s *Streamer) AbortMatch(p tournament.Pairing, err error) {
	var side *int
	var v *match.ViolationError
	if errors.As(err, &v) {
		side = &v.Side
	}
	s.send(api.NewAbortMatch(s.id, p.ID.String(), err.Error(), side))
}

func (s *Streamer) FinishTournament(standings []tournament.Standing, err error) {
	var msg *string
	if err != nil {
		m := err.Error()
		msg = &m
	}
	s.send(api.NewFinishTournament(s.id, Standings(standings), msg))
}

func Standings(standings []tournament.Standing) []api.Standing {
	res := make([]api.Standing, len(standings))
	for i, s := range standings {
		res[i] = api.Standing{
			Strategy:   s.Name,
			Score:      s.Score,
			Matches:    s.Matches,
			Aborted:    s.Aborted,
			Violations: s.Violations,
		}
	}
	return res
}

func compileData(r *compiler.Report) *api.CompileData {
	if r == nil {
		return nil
	}
	return &api.CompileData{
		Command:    r.Command,
		Output:     utils.TrimStrToRect(r.Output, api.MaxCompileOutputHeight, api.MaxCompileOutputWidth),
		Truncated:  r.Truncated,
		ExitCode:   int64(r.ExitCode),
		WallMillis: r.Duration.Milliseconds(),
	}
}
