package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/nats-io/nats.go"
	"github.com/programme-lv/dilemma/internal/behave"
	"github.com/programme-lv/dilemma/internal/bench"
	"github.com/programme-lv/dilemma/internal/compiler"
	"github.com/programme-lv/dilemma/internal/mailbox"
	"github.com/programme-lv/dilemma/internal/reporter/natsrep"
	"github.com/programme-lv/dilemma/internal/reporter/sqsrep"
	"github.com/programme-lv/dilemma/internal/reporter/termrep"
	"github.com/programme-lv/dilemma/internal/tournament"
	"github.com/urfave/cli/v3"
)

var langFlag = &cli.StringFlag{
	Name:    "lang",
	Aliases: []string{"l"},
	Usage:   "language id (default: guessed from the file extension)",
}

func (a *app) compileCommand() *cli.Command {
	return &cli.Command{
		Name:      "compile",
		Usage:     "compile a strategy and print its execution command",
		ArgsUsage: "<source>",
		Flags:     []cli.Flag{langFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one source file")
			}
			sub, err := readSubmission(cmd.Args().First(), cmd.String("lang"))
			if err != nil {
				return err
			}
			c, err := a.compiler()
			if err != nil {
				return err
			}
			art, report, err := c.Compile(ctx, sub)
			if err != nil {
				return err
			}
			if report.Output != "" {
				fmt.Fprint(os.Stderr, report.Output)
			}
			if art == nil {
				return &compiler.CompileError{Name: sub.Name, Output: report.Output}
			}
			fmt.Println(art.ExecCmd)
			return nil
		},
	}
}

func (a *app) matchCommand() *cli.Command {
	return &cli.Command{
		Name:      "match",
		Usage:     "play two strategies against each other",
		ArgsUsage: "<first> <second>",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{Name: "exec", Usage: "arguments are execution commands, not source files"},
			&cli.BoolFlag{Name: "choices", Usage: "print every move"},
		}, rangeFlags...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 2 {
				return fmt.Errorf("expected two strategies")
			}
			first, second := cmd.Args().Get(0), cmd.Args().Get(1)
			if !cmd.Bool("exec") {
				c, err := a.compiler()
				if err != nil {
					return err
				}
				if first, err = compileFile(ctx, c, first); err != nil {
					return err
				}
				if second, err = compileFile(ctx, c, second); err != nil {
					return err
				}
			}

			res, err := a.judge(cmd).Compare(ctx, first, second, a.iterRange(cmd))
			if err != nil {
				return err
			}
			bold := color.New(color.Bold)
			bold.Printf("%d : %d", res.FirstScore, res.SecondScore)
			fmt.Printf(" after %d turns (%s)\n", res.Iterations, res.Duration.Round(time.Microsecond))
			if cmd.Bool("choices") {
				fmt.Println(formatChoices(res.FirstChoices))
				fmt.Println(formatChoices(res.SecondChoices))
			}
			return nil
		},
	}
}

func compileFile(ctx context.Context, c *compiler.Compiler, path string) (string, error) {
	sub, err := readSubmission(path, "")
	if err != nil {
		return "", err
	}
	art, err := c.MustCompile(ctx, sub)
	if err != nil {
		return "", err
	}
	return art.ExecCmd, nil
}

func formatChoices(cs []int32) string {
	var b strings.Builder
	for _, c := range cs {
		b.WriteByte(byte('0' + c))
	}
	return b.String()
}

func (a *app) benchmarkCommand() *cli.Command {
	return &cli.Command{
		Name:      "benchmark",
		Usage:     "play a strategy against itself many times and report throughput",
		ArgsUsage: "<source>",
		Flags: append([]cli.Flag{
			langFlag,
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: 1000, Usage: "number of matches"},
		}, rangeFlags...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one source file")
			}
			sub, err := readSubmission(cmd.Args().First(), cmd.String("lang"))
			if err != nil {
				return err
			}
			c, err := a.compiler()
			if err != nil {
				return err
			}
			runner := &bench.Runner{
				Compiler: c,
				Judge:    a.judge(cmd),
				Logger:   a.logger,
				Progress: func(done, total int, elapsed time.Duration) {
					fmt.Printf("%d/%d matches, %s\n", done, total, elapsed.Round(time.Millisecond))
				},
			}
			sum, err := runner.Run(ctx, sub, int(cmd.Int("count")), a.iterRange(cmd))
			if err != nil {
				return err
			}
			color.New(color.Bold).Println(sum.String())
			return nil
		},
	}
}

func (a *app) tournamentCommand() *cli.Command {
	return &cli.Command{
		Name:      "tournament",
		Usage:     "compile strategies and play a round robin",
		ArgsUsage: "<source>...",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{Name: "self-play", Usage: "also pair every strategy with itself"},
			&cli.IntFlag{Name: "parallel", Aliases: []string{"j"}, Usage: "concurrent matches (default from config)"},
			&cli.BoolFlag{Name: "matches", Usage: "print every finished match"},
			&cli.BoolFlag{Name: "nats", Usage: "stream events to NATS (nats.url in config)"},
			&cli.BoolFlag{Name: "sqs", Usage: "send events to SQS (sqs.queue_url in config)"},
		}, rangeFlags...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 2 {
				return fmt.Errorf("a tournament needs at least two strategies")
			}
			subs := make([]compiler.Submission, 0, cmd.Args().Len())
			for _, path := range cmd.Args().Slice() {
				sub, err := readSubmission(path, "")
				if err != nil {
					return err
				}
				subs = append(subs, sub)
			}

			reporters := []tournament.Reporter{termrep.New(cmd.Bool("matches"))}
			if cmd.Bool("nats") {
				if a.cfg.Nats.URL == "" {
					return fmt.Errorf("nats.url is not configured")
				}
				nc, rep, err := natsrep.Connect(a.cfg.Nats.URL, a.cfg.Nats.Subject, a.logger)
				if err != nil {
					return err
				}
				defer drain(nc)
				reporters = append(reporters, rep)
			}
			if cmd.Bool("sqs") {
				if a.cfg.Sqs.QueueURL == "" {
					return fmt.Errorf("sqs.queue_url is not configured")
				}
				rep, err := sqsrep.New(ctx, a.cfg.Sqs.Region, a.cfg.Sqs.QueueURL, a.cfg.Sqs.GroupID, a.logger)
				if err != nil {
					return err
				}
				reporters = append(reporters, rep)
			}

			c, err := a.compiler()
			if err != nil {
				return err
			}
			parallel := a.cfg.Parallel
			if cmd.IsSet("parallel") {
				parallel = int(cmd.Int("parallel"))
			}
			t := tournament.New(c, a.judge(cmd), tournament.Serialized(tournament.Multi(reporters...)), tournament.Config{
				Range:    a.iterRange(cmd),
				SelfPlay: cmd.Bool("self-play"),
				Parallel: parallel,
			}, a.logger)
			_, err = t.Run(ctx, subs)
			return err
		},
	}
}

func drain(nc *nats.Conn) {
	if err := nc.Drain(); err != nil {
		nc.Close()
	}
}

func (a *app) behaveCommand() *cli.Command {
	return &cli.Command{
		Name:      "behave",
		Usage:     "run behaviour scenarios from a TOML file",
		ArgsUsage: "<scenarios.toml>",
		Flags:     rangeFlags[2:],
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one scenario file")
			}
			suite, err := behave.Parse(cmd.Args().First())
			if err != nil {
				return err
			}
			a.cfg.Languages = append(a.cfg.Languages, suite.Languages...)
			c, err := a.compiler()
			if err != nil {
				return err
			}

			runner := &behave.Runner{Compiler: c, Judge: a.judge(cmd), Logger: a.logger}
			outcomes, err := runner.Run(ctx, suite)
			if err != nil {
				return err
			}

			green, red := color.New(color.FgGreen), color.New(color.FgRed)
			failed := 0
			for _, o := range outcomes {
				if o.Passed() {
					green.Printf("PASS ")
					fmt.Println(o.Case.Name)
					continue
				}
				failed++
				red.Printf("FAIL ")
				fmt.Println(o.Case.Name)
				for _, m := range o.Mismatches {
					fmt.Printf("     %s\n", m)
				}
				if o.Err != nil {
					fmt.Printf("     error: %v\n", o.Err)
				}
			}
			fmt.Printf("%d/%d scenarios passed\n", len(outcomes)-failed, len(outcomes))
			if failed > 0 {
				return errors.New("some scenarios failed")
			}
			return nil
		},
	}
}

func headerCommand() *cli.Command {
	return &cli.Command{
		Name:  "header",
		Usage: "print the C header describing the strategy side of the mailbox",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Print(mailbox.CHeader())
			return nil
		},
	}
}
