// Package sandboxtest lets tests use their own binary as a strategy
// process. Call Main from TestMain and build execution commands with
// Command.
package sandboxtest

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/programme-lv/dilemma/internal/mailbox"
	"github.com/programme-lv/dilemma/internal/strategy"
)

const envStrategy = "DILEMMA_TEST_STRATEGY"

// Main runs the requested strategy instead of the tests when the binary was
// started by Command.
func Main(m *testing.M) {
	if name := os.Getenv(envStrategy); name != "" {
		os.Exit(run(name, os.Args))
	}
	os.Exit(m.Run())
}

// Command returns an execution command that starts the current test binary
// as the named strategy. Besides the builtin strategies it knows:
//
//	silent   attaches and never writes
//	crash    exits at once with status 3
//	invalid3 plays 1, 1 and then the out-of-domain move 7
//	stale    opens with 1 if its inbound slot was already full, else 0
func Command(name string) string {
	return fmt.Sprintf("env %s=%s '%s'", envStrategy, name, strings.ReplaceAll(os.Args[0], "'", `'\''`))
}

// RequireShm skips the test when SysV shared memory cannot be used.
func RequireShm(t *testing.T) {
	t.Helper()
	seg, err := mailbox.Create(mailbox.PrivateKey)
	if err != nil {
		t.Skipf("SysV shared memory unavailable: %v", err)
	}
	_ = seg.Detach()
	_ = seg.Remove()
}

func run(name string, args []string) int {
	if name == "crash" {
		return 3
	}

	seg, err := mailbox.AttachFromArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer seg.Detach()
	ep := seg.Endpoint(mailbox.Child)

	switch name {
	case "silent":
		time.Sleep(time.Hour)
	case "invalid3":
		strategy.Play(ep, &scripted{moves: []int32{1, 1, 7}})
	case "stale":
		first := int32(0)
		if ep.In.Pending() {
			first = 1
		}
		strategy.Play(ep, &scripted{moves: []int32{first}})
	default:
		s, ok := strategy.Builtin(name)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown strategy %q\n", name)
			return 2
		}
		strategy.Play(ep, s)
	}
	return 0
}

// scripted plays its moves in order and then repeats the last one.
type scripted struct {
	moves []int32
	turn  int
}

func (s *scripted) Open() int32 {
	return s.move()
}

func (s *scripted) Next(int32) int32 {
	return s.move()
}

func (s *scripted) move() int32 {
	i := min(s.turn, len(s.moves)-1)
	s.turn++
	return s.moves[i]
}
