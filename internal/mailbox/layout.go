// Package mailbox defines the shared memory block through which the judge
// and one strategy process exchange moves.
//
// The block holds two one-directional single-slot channels. Each channel is
// a ready flag followed by a value, both 32-bit words. The judge and the
// child see the same words with the channel roles swapped; both views are
// derived from the slot table below so they cannot drift apart.
package mailbox

import "fmt"

const (
	WordSize = 4
	Words    = 4
	// Size is the number of bytes a mailbox segment must hold.
	Size = Words * WordSize
)

// EndOfIterations is sent instead of the opponent's move on the last turn.
const EndOfIterations int32 = -1

// Role selects which end of the mailbox a view belongs to.
type Role int

const (
	Judge Role = iota
	Child
)

func (r Role) String() string {
	switch r {
	case Judge:
		return "judge"
	case Child:
		return "child"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

type slot struct {
	ready int
	value int
}

var (
	judgeToChild = slot{ready: 0, value: 1}
	childToJudge = slot{ready: 2, value: 3}
)

func (r Role) outbound() slot {
	if r == Judge {
		return judgeToChild
	}
	return childToJudge
}

func (r Role) inbound() slot {
	if r == Judge {
		return childToJudge
	}
	return judgeToChild
}

// Field names one word of the mailbox as seen from a role.
type Field struct {
	Name   string
	Offset int
}

// Fields lists the words of the mailbox in memory order as seen by role.
func Fields(role Role) []Field {
	fields := make([]Field, Words)
	name := func(s slot, dir string) {
		fields[s.ready] = Field{Name: dir + "_ready", Offset: s.ready * WordSize}
		fields[s.value] = Field{Name: dir + "_value", Offset: s.value * WordSize}
	}
	name(role.inbound(), "input")
	name(role.outbound(), "output")
	return fields
}
