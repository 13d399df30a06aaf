package compiler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"time"

	"github.com/programme-lv/dilemma/internal/langs"
	"github.com/programme-lv/dilemma/internal/mailbox"
	"github.com/programme-lv/dilemma/internal/utils"
)

const outputLimit = 4096

var validName = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9_.-]*$`)

type Submission struct {
	Name   string
	Lang   string
	Source string
}

// Artifact is a compiled strategy ready to be spawned.
type Artifact struct {
	Name    string
	Lang    string
	Path    string
	ExecCmd string
	// SourceSHA256 identifies the source the artifact was built from.
	SourceSHA256 string
}

// Report describes one toolchain run. It is returned whether or not
// compilation succeeded.
type Report struct {
	Command   string
	Output    string
	Truncated bool
	ExitCode  int
	Duration  time.Duration
}

// Suspicious reports a non-zero exit status. Together with an artifact it
// means the toolchain failed yet still produced output.
func (r *Report) Suspicious() bool {
	return r.ExitCode != 0
}

type Compiler struct {
	dir     string
	catalog *langs.Catalog
	shell   string
	logger  *slog.Logger
}

type Option func(*Compiler)

func WithShell(shell string) Option {
	return func(c *Compiler) { c.shell = shell }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) { c.logger = logger }
}

// New returns a compiler that keeps every submission in its own
// subdirectory of dir.
func New(dir string, catalog *langs.Catalog, opts ...Option) (*Compiler, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve strategies directory: %w", err)
	}
	if catalog == nil {
		catalog = langs.Default()
	}
	c := &Compiler{
		dir:     abs,
		catalog: catalog,
		shell:   "/bin/sh",
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Compiler) Dir() string {
	return c.dir
}

// Compile writes the submission's source and runs the language's
// toolchain on it. A nil artifact with a non-nil report means the
// submission did not compile; the error is reserved for problems that are
// not the submission's fault.
func (c *Compiler) Compile(ctx context.Context, sub Submission) (*Artifact, *Report, error) {
	if !validName.MatchString(sub.Name) {
		return nil, nil, fmt.Errorf("invalid submission name %q", sub.Name)
	}
	tmpl, err := c.catalog.Get(sub.Lang)
	if err != nil {
		return nil, nil, err
	}

	subDir := filepath.Join(c.dir, sub.Name)
	if err := os.MkdirAll(subDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create submission directory: %w", err)
	}
	inputPath := filepath.Join(subDir, tmpl.CodeFname)
	outputPath := filepath.Join(subDir, tmpl.CompiledFname)

	c.logger.Debug("Writing source code...", "name", sub.Name, "path", inputPath)
	if err := os.WriteFile(inputPath, []byte(sub.Source), 0644); err != nil {
		return nil, nil, fmt.Errorf("failed to write source code: %w", err)
	}
	if tmpl.Header {
		hdr := filepath.Join(subDir, mailbox.HeaderFname)
		if err := os.WriteFile(hdr, []byte(mailbox.CHeader()), 0644); err != nil {
			return nil, nil, fmt.Errorf("failed to write mailbox header: %w", err)
		}
	}
	if err := os.Remove(outputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("failed to remove stale artifact: %w", err)
	}

	report, err := c.run(ctx, subDir, tmpl.CompileCommand(inputPath, outputPath))
	if err != nil {
		return nil, nil, err
	}

	if _, err := os.Stat(outputPath); err != nil {
		c.logger.Debug("Compilation failed", "name", sub.Name, "exit_code", report.ExitCode)
		return nil, report, nil
	}
	if report.Suspicious() {
		c.logger.Warn("compiler exited with an error but produced an artifact",
			"name", sub.Name, "exit_code", report.ExitCode)
	}

	sum := sha256.Sum256([]byte(sub.Source))
	art := &Artifact{
		Name:         sub.Name,
		Lang:         tmpl.ID,
		Path:         outputPath,
		ExecCmd:      tmpl.ExecCommand(outputPath),
		SourceSHA256: hex.EncodeToString(sum[:]),
	}
	c.logger.Debug("Compiled submission", "name", sub.Name, "duration", report.Duration)
	return art, report, nil
}

// MustCompile is Compile for callers that treat a failed compilation as
// an error too.
func (c *Compiler) MustCompile(ctx context.Context, sub Submission) (*Artifact, error) {
	art, report, err := c.Compile(ctx, sub)
	if err != nil {
		return nil, err
	}
	if art == nil {
		return nil, &CompileError{Name: sub.Name, Output: report.Output}
	}
	return art, nil
}

func (c *Compiler) run(ctx context.Context, dir, cmdline string) (*Report, error) {
	out := utils.NewLimitedBuffer(outputLimit)
	cmd := exec.CommandContext(ctx, c.shell, "-c", cmdline)
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out

	c.logger.Debug("Running compile command...", "cmd", cmdline)
	start := time.Now()
	err := cmd.Run()
	report := &Report{
		Command:  cmdline,
		Duration: time.Since(start),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to run compile command: %w", err)
		}
		report.ExitCode = exitErr.ExitCode()
	}
	report.Output = out.String()
	report.Truncated = out.Truncated()
	return report, nil
}
