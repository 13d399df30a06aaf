//go:generate mockgen -source=reporter.go -destination=mocks/reporter.go -package=mocks

package tournament

import (
	"github.com/google/uuid"
	"github.com/programme-lv/dilemma/internal/compiler"
	"github.com/programme-lv/dilemma/internal/match"
)

// Pairing is one scheduled match.
type Pairing struct {
	ID     uuid.UUID
	First  string
	Second string
}

// Reporter receives tournament events as they happen. Match events may
// arrive from several goroutines at once.
type Reporter interface {
	StartTournament(id uuid.UUID, entrants []string)

	StartCompile(sub compiler.Submission)
	FinishCompile(name string, art *compiler.Artifact, report *compiler.Report)

	StartMatch(p Pairing)
	FinishMatch(p Pairing, res *match.Result)
	AbortMatch(p Pairing, err error)

	FinishTournament(standings []Standing, err error)
}

type multiReporter []Reporter

// Multi forwards every event to each of rs in order.
func Multi(rs ...Reporter) Reporter {
	return multiReporter(rs)
}

func (m multiReporter) StartTournament(id uuid.UUID, entrants []string) {
	for _, r := range m {
		r.StartTournament(id, entrants)
	}
}

func (m multiReporter) StartCompile(sub compiler.Submission) {
	for _, r := range m {
		r.StartCompile(sub)
	}
}

func (m multiReporter) FinishCompile(name string, art *compiler.Artifact, report *compiler.Report) {
	for _, r := range m {
		r.FinishCompile(name, art, report)
	}
}

func (m multiReporter) StartMatch(p Pairing) {
	for _, r := range m {
		r.StartMatch(p)
	}
}

func (m multiReporter) FinishMatch(p Pairing, res *match.Result) {
	for _, r := range m {
		r.FinishMatch(p, res)
	}
}

func (m multiReporter) AbortMatch(p Pairing, err error) {
	for _, r := range m {
		r.AbortMatch(p, err)
	}
}

func (m multiReporter) FinishTournament(standings []Standing, err error) {
	for _, r := range m {
		r.FinishTournament(standings, err)
	}
}
