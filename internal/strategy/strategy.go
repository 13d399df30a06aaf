// Package strategy is the child side of the match protocol for strategies
// written in Go.
package strategy

import (
	"fmt"

	"github.com/programme-lv/dilemma/internal/mailbox"
)

// Strategy picks moves. Open is called once for the first move, Next with
// every move the opponent made after that.
type Strategy interface {
	Open() int32
	Next(opponent int32) int32
}

// Play runs the child loop: emit the opening move, then answer every
// received move until an out-of-domain value ends the match.
func Play(ep *mailbox.Endpoint, s Strategy) {
	ep.Send(s.Open())
	for {
		v := ep.Receive()
		if v != 0 && v != 1 {
			return
		}
		ep.Send(s.Next(v))
	}
}

// Main attaches to the mailbox named by the last argument, plays s and
// detaches.
func Main(args []string, s Strategy) error {
	seg, err := mailbox.AttachFromArgs(args)
	if err != nil {
		return err
	}
	Play(seg.Endpoint(mailbox.Child), s)
	if err := seg.Detach(); err != nil {
		return fmt.Errorf("failed to detach mailbox: %w", err)
	}
	return nil
}

type Always int32

func (a Always) Open() int32      { return int32(a) }
func (a Always) Next(int32) int32 { return int32(a) }

type TitForTat struct{}

func (TitForTat) Open() int32               { return 1 }
func (TitForTat) Next(opponent int32) int32 { return opponent }

// Grudger cooperates until the opponent defects once.
type Grudger struct {
	betrayed bool
}

func (g *Grudger) Open() int32 { return 1 }

func (g *Grudger) Next(opponent int32) int32 {
	if opponent == 0 {
		g.betrayed = true
	}
	if g.betrayed {
		return 0
	}
	return 1
}

// Builtin returns a fresh instance of a named strategy.
func Builtin(name string) (Strategy, bool) {
	switch name {
	case "always0":
		return Always(0), true
	case "always1":
		return Always(1), true
	case "titfortat":
		return TitForTat{}, true
	case "grudger":
		return &Grudger{}, true
	}
	return nil, false
}
