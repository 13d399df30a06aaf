package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/programme-lv/dilemma/internal/compiler"
	"github.com/programme-lv/dilemma/internal/match"
	"github.com/programme-lv/dilemma/internal/sandbox"
	"github.com/urfave/cli/v3"
)

var rangeFlags = []cli.Flag{
	&cli.IntFlag{Name: "min", Usage: "minimum number of turns (default from config)"},
	&cli.IntFlag{Name: "max", Usage: "maximum number of turns (default from config)"},
	&cli.Uint64Flag{Name: "seed", Usage: "seed of the turn count generator (0: from config or random)"},
	&cli.DurationFlag{Name: "turn-timeout", Usage: "bound on a single move (0: from config)"},
}

func (a *app) compiler() (*compiler.Compiler, error) {
	cat, err := a.cfg.Catalog()
	if err != nil {
		return nil, err
	}
	return compiler.New(a.cfg.StrategiesDir, cat,
		compiler.WithShell(a.cfg.Shell),
		compiler.WithLogger(a.logger))
}

func (a *app) judge(cmd *cli.Command) *match.Judge {
	spawner := &sandbox.Spawner{
		Keys:   a.cfg.KeyAllocator(),
		Prefix: a.cfg.SandboxPrefix(),
		Shell:  a.cfg.Shell,
		Logger: a.logger,
	}
	seed := a.cfg.Seed
	if s := cmd.Uint64("seed"); s != 0 {
		seed = s
	}
	timeout := time.Duration(a.cfg.TurnTimeout)
	if d := cmd.Duration("turn-timeout"); d != 0 {
		timeout = d
	}
	return match.NewJudge(match.Sandboxed(spawner), match.Options{
		TurnTimeout: timeout,
		Seed:        seed,
		Logger:      a.logger,
	})
}

func (a *app) iterRange(cmd *cli.Command) match.IterRange {
	r := a.cfg.Range
	if cmd.IsSet("min") {
		r.Min = int(cmd.Int("min"))
	}
	if cmd.IsSet("max") {
		r.Max = int(cmd.Int("max"))
	}
	return r
}

var langByExt = map[string]string{
	".c":    "c",
	".cpp":  "c++",
	".cc":   "c++",
	".cxx":  "c++",
	".py":   "python",
	".java": "java",
}

// readSubmission loads a source file. The language comes from lang or the
// file extension, the submission name from the file name.
func readSubmission(path, lang string) (compiler.Submission, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return compiler.Submission{}, fmt.Errorf("failed to read source: %w", err)
	}
	ext := filepath.Ext(path)
	if lang == "" {
		lang = langByExt[strings.ToLower(ext)]
		if lang == "" {
			return compiler.Submission{}, fmt.Errorf("cannot tell the language of %s, use --lang", path)
		}
	}
	return compiler.Submission{
		Name:   submissionName(strings.TrimSuffix(filepath.Base(path), ext)),
		Lang:   lang,
		Source: string(src),
	}, nil
}

func submissionName(s string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			return r
		}
		return '_'
	}, s)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		name = "strategy"
	}
	return name
}
