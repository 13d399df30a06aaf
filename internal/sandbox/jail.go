package sandbox

import (
	"fmt"
	"strings"
)

// Constraints configure the nsjail prefix every strategy runs under. The
// judge never isolates anything itself; it only builds the command line.
type Constraints struct {
	TimeLimitSec  int    `toml:"time_limit_sec"`
	MemoryLimitMB int    `toml:"memory_limit_mb"`
	User          int    `toml:"user"`
	Group         int    `toml:"group"`
	Hostname      string `toml:"hostname"`
	MaxCPUs       int    `toml:"max_cpus"`
	Seccomp       string `toml:"seccomp"`
	// ReadOnlyMounts are bind mounted read only, usually the strategies
	// directory.
	ReadOnlyMounts []string `toml:"readonly_mounts"`
	Chroot         string   `toml:"chroot"`
}

func DefaultConstraints() Constraints {
	return Constraints{
		TimeLimitSec:  1,
		MemoryLimitMB: 128,
		User:          12345,
		Group:         12345,
		Hostname:      "playground",
		MaxCPUs:       1,
		Seccomp:       "ALLOW { write { fd == 1 } } DEFAULT ALLOW",
	}
}

func (c *Constraints) ToArgs() []string {
	args := []string{
		"-Mo",
		fmt.Sprintf("--user %d", c.User),
		fmt.Sprintf("--group %d", c.Group),
	}
	if c.Hostname != "" {
		args = append(args, "--hostname "+c.Hostname)
	}
	if c.Seccomp != "" {
		args = append(args, "--seccomp_string "+shellQuote(c.Seccomp))
	}
	if c.MaxCPUs > 0 {
		args = append(args, fmt.Sprintf("--max_cpus %d", c.MaxCPUs))
	}
	if c.TimeLimitSec > 0 {
		args = append(args, fmt.Sprintf("--time_limit %d", c.TimeLimitSec))
	}
	if c.MemoryLimitMB > 0 {
		args = append(args, fmt.Sprintf("--rlimit_as %d", c.MemoryLimitMB))
	}
	for _, m := range c.ReadOnlyMounts {
		args = append(args, "--bindmount_ro "+shellQuote(m))
	}
	if c.Chroot != "" {
		args = append(args, "--chroot "+shellQuote(c.Chroot))
	}
	return args
}

// NsjailPrefix is the opaque command prefix placed before every execution
// command.
func (c *Constraints) NsjailPrefix() string {
	return "nsjail " + strings.Join(c.ToArgs(), " ") + " --"
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
