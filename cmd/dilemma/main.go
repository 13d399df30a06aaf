package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/programme-lv/dilemma/internal/environment"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		slog.Error("dilemma failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg    *environment.Config
	logger *slog.Logger
}

func newApp() *cli.Command {
	a := &app{}
	return &cli.Command{
		Name:  "dilemma",
		Usage: "compile strategies and judge iterated dilemma matches",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config.toml (default: $XDG_CONFIG_HOME/dilemma/config.toml)",
				Sources: cli.EnvVars("DILEMMA_CONFIG"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log debug messages",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := slog.LevelInfo
			if cmd.Bool("verbose") {
				level = slog.LevelDebug
			}
			a.logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
				Level:      level,
				TimeFormat: time.TimeOnly,
				NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
			}))
			slog.SetDefault(a.logger)

			cfg, err := environment.Load(cmd.String("config"))
			if err != nil {
				return ctx, fmt.Errorf("failed to load config: %w", err)
			}
			a.cfg = cfg
			return ctx, nil
		},
		Commands: []*cli.Command{
			a.compileCommand(),
			a.matchCommand(),
			a.benchmarkCommand(),
			a.tournamentCommand(),
			a.behaveCommand(),
			headerCommand(),
		},
	}
}
