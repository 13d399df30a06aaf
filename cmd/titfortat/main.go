// Command titfortat is a strategy written in Go. The judge starts it with
// the mailbox id as the last argument.
package main

import (
	"fmt"
	"os"

	"github.com/programme-lv/dilemma/internal/strategy"
)

func main() {
	name := "titfortat"
	if len(os.Args) > 2 {
		name = os.Args[1]
	}
	s, ok := strategy.Builtin(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown strategy %q\n", name)
		os.Exit(2)
	}
	if err := strategy.Main(os.Args, s); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
