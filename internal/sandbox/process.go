package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/programme-lv/dilemma/internal/mailbox"
	"github.com/programme-lv/dilemma/internal/utils"
	"golang.org/x/sys/unix"
)

const (
	stderrLimit = 4096
	pollEvery   = 256
	reapTimeout = 5 * time.Second
)

// Spawner starts strategy processes, each with its own mailbox.
type Spawner struct {
	// Keys defaults to PrivateKeys.
	Keys KeyAllocator
	// Prefix is placed before every execution command, e.g. an nsjail
	// invocation ending in "--".
	Prefix string
	// Shell runs the assembled command line. Defaults to /bin/sh.
	Shell  string
	Logger *slog.Logger
}

func (s *Spawner) keys() KeyAllocator {
	if s.Keys == nil {
		return PrivateKeys{}
	}
	return s.Keys
}

func (s *Spawner) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Spawn creates a zeroed mailbox and starts execCmd with the mailbox id as
// its only extra argument. On error nothing is left behind.
func (s *Spawner) Spawn(ctx context.Context, execCmd string) (*Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keys := s.keys()
	key, err := keys.Acquire()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResourceAcquisition, err)
	}

	seg, err := mailbox.Create(key)
	if err != nil {
		keys.Release(key)
		return nil, fmt.Errorf("%w: %w", ErrResourceAcquisition, err)
	}

	shell := s.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	cmdline := "exec "
	if s.Prefix != "" {
		cmdline += s.Prefix + " "
	}
	cmdline += execCmd + " " + strconv.Itoa(seg.ID())

	stderr := utils.NewLimitedBuffer(stderrLimit)
	cmd := exec.Command(shell, "-c", cmdline)
	cmd.Stderr = stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		_ = seg.Detach()
		_ = seg.Remove()
		keys.Release(key)
		return nil, fmt.Errorf("%w: failed to start %q: %w", ErrResourceAcquisition, execCmd, err)
	}

	p := &Process{
		seg:    seg,
		ep:     seg.Endpoint(mailbox.Judge),
		key:    key,
		keys:   keys,
		cmd:    cmd,
		stderr: stderr,
		exited: make(chan struct{}),
		logger: s.logger(),
	}
	go func() {
		p.waitErr = cmd.Wait()
		close(p.exited)
	}()

	p.logger.Debug("spawned strategy process", "pid", p.Pid(), "mailbox", seg.ID(), "cmd", execCmd)
	return p, nil
}

// Process is one running strategy and the mailbox it talks through. Both
// belong to the Process until Close.
type Process struct {
	seg  *mailbox.Segment
	ep   *mailbox.Endpoint
	key  int
	keys KeyAllocator

	cmd     *exec.Cmd
	stderr  *utils.LimitedBuffer
	exited  chan struct{}
	waitErr error

	// mu is held shared while the mailbox is in use and exclusively while
	// Close unmaps it.
	mu        sync.RWMutex
	closing   atomic.Bool
	closeOnce sync.Once
	closeErr  error

	logger *slog.Logger
}

func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

func (p *Process) MailboxID() int {
	return p.seg.ID()
}

// Stderr returns what the child wrote to stderr so far, capped at 4 KiB.
func (p *Process) Stderr() string {
	return p.stderr.String()
}

// Send writes v into the outbound slot. The previous value must already
// have been consumed by the child; this is not checked.
func (p *Process) Send(v int32) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closing.Load() {
		return ErrClosed
	}
	p.ep.Send(v)
	return nil
}

// Receive spins until the child has written a value. It waits as long as
// ctx allows; without a deadline that is forever.
func (p *Process) Receive(ctx context.Context) (int32, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closing.Load() {
		return 0, ErrClosed
	}

	for i := 1; ; i++ {
		if v, ok := p.ep.TryReceive(); ok {
			return v, nil
		}
		if i%pollEvery != 0 {
			continue
		}
		if p.closing.Load() {
			return 0, ErrClosed
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return 0, fmt.Errorf("%w: pid %d: %w", ErrPeerUnresponsive, p.Pid(), ctx.Err())
			}
			return 0, ctx.Err()
		case <-p.exited:
			// the child may have written right before exiting
			if v, ok := p.ep.TryReceive(); ok {
				return v, nil
			}
			return 0, p.exitError()
		default:
		}
		runtime.Gosched()
	}
}

func (p *Process) exitError() error {
	err := fmt.Errorf("%w: pid %d: %v", ErrPeerExited, p.Pid(), p.waitErr)
	if p.waitErr == nil {
		err = fmt.Errorf("%w: pid %d without writing", ErrPeerExited, p.Pid())
	}
	if s := p.stderr.String(); s != "" {
		err = fmt.Errorf("%w; stderr: %s", err, utils.TrimStrToRect(s, 10, 200))
	}
	return err
}

// Close kills the child's process group and frees the mailbox. The exit
// status is not inspected. Calling Close more than once is harmless.
func (p *Process) Close() error {
	p.closeOnce.Do(func() {
		p.closing.Store(true)
		pid := p.Pid()

		if err := unix.Kill(-pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
			p.logger.Warn("failed to kill strategy process group", "pid", pid, "error", err)
			_ = p.cmd.Process.Kill()
		}

		select {
		case <-p.exited:
		case <-time.After(reapTimeout):
			p.logger.Warn("strategy process was not reaped in time", "pid", pid)
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		p.closeErr = errors.Join(p.seg.Detach(), p.seg.Remove())
		p.keys.Release(p.key)
		p.logger.Debug("closed strategy process", "pid", pid, "mailbox", p.seg.ID())
	})
	return p.closeErr
}
