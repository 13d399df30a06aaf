package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/dilemma/internal/langs"
	"github.com/programme-lv/dilemma/internal/match"
	"github.com/programme-lv/dilemma/internal/sandbox"
	"github.com/programme-lv/dilemma/internal/xdg"
)

const AppName = "dilemma"

type Config struct {
	// StrategiesDir holds one subdirectory per compiled submission.
	StrategiesDir string          `toml:"strategies_dir"`
	Shell         string          `toml:"shell"`
	Seed          uint64          `toml:"seed"`
	Range         match.IterRange `toml:"range"`
	// TurnTimeout bounds a single receive, e.g. "2s". Empty waits forever.
	TurnTimeout Duration `toml:"turn_timeout"`
	Parallel    int      `toml:"parallel"`

	Sandbox   SandboxConfig    `toml:"sandbox"`
	Nats      NatsConfig       `toml:"nats"`
	Sqs       SqsConfig        `toml:"sqs"`
	Languages []langs.Template `toml:"languages"`
}

type SandboxConfig struct {
	// Keys is "private" or "rotating".
	Keys     string `toml:"keys"`
	BaseKey  int    `toml:"base_key"`
	PoolSize int    `toml:"pool_size"`
	// Prefix is placed verbatim before every execution command.
	Prefix string `toml:"prefix"`
	// Nsjail builds the prefix from Jail when Prefix is empty.
	Nsjail bool                `toml:"nsjail"`
	Jail   sandbox.Constraints `toml:"jail"`
}

type NatsConfig struct {
	URL     string `toml:"url"`
	Subject string `toml:"subject"`
}

type SqsConfig struct {
	QueueURL string `toml:"queue_url"`
	Region   string `toml:"region"`
	GroupID  string `toml:"group_id"`
}

// Duration reads TOML strings such as "1.5s".
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func Default() *Config {
	dirs := xdg.NewXDGDirs()
	return &Config{
		StrategiesDir: filepath.Join(dirs.AppDataDir(AppName), "strategies"),
		Shell:         "/bin/sh",
		Range:         match.DefaultRange,
		Parallel:      1,
		Sandbox: SandboxConfig{
			Keys:     "private",
			BaseKey:  sandbox.DefaultBaseKey,
			PoolSize: sandbox.DefaultPoolSize,
			Jail:     sandbox.DefaultConstraints(),
		},
		Nats: NatsConfig{Subject: "dilemma.events"},
		Sqs:  SqsConfig{Region: "eu-central-1"},
	}
}

// DefaultPath is config.toml in the application's XDG config directory.
func DefaultPath() string {
	return filepath.Join(xdg.NewXDGDirs().AppConfigDir(AppName), "config.toml")
}

// Load reads .env if present, then the TOML file at path, then applies
// environment overrides. A missing file at the default path is not an
// error; a missing file named explicitly is.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	setStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setStr("DILEMMA_STRATEGIES_DIR", &c.StrategiesDir)
	setStr("DILEMMA_SHELL", &c.Shell)
	setStr("DILEMMA_SANDBOX_PREFIX", &c.Sandbox.Prefix)
	setStr("NATS_URL", &c.Nats.URL)
	setStr("NATS_SUBJECT", &c.Nats.Subject)
	setStr("SQS_QUEUE_URL", &c.Sqs.QueueURL)
	setStr("AWS_REGION", &c.Sqs.Region)

	if v := os.Getenv("DILEMMA_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid DILEMMA_SEED %q: %w", v, err)
		}
		c.Seed = seed
	}
	if v := os.Getenv("DILEMMA_TURN_TIMEOUT"); v != "" {
		if err := c.TurnTimeout.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("invalid DILEMMA_TURN_TIMEOUT %q: %w", v, err)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.StrategiesDir == "" {
		return fmt.Errorf("strategies_dir must be set")
	}
	if err := c.Range.Validate(); err != nil {
		return fmt.Errorf("config range: %w", err)
	}
	if c.TurnTimeout < 0 {
		return fmt.Errorf("turn_timeout must not be negative")
	}
	switch c.Sandbox.Keys {
	case "private":
	case "rotating":
		if c.Sandbox.PoolSize < 1 {
			return fmt.Errorf("sandbox pool_size must be positive")
		}
	default:
		return fmt.Errorf("unknown sandbox keys %q, want private or rotating", c.Sandbox.Keys)
	}
	return nil
}

// Catalog returns the built-in languages with the configured overrides.
func (c *Config) Catalog() (*langs.Catalog, error) {
	cat := langs.Default()
	if err := cat.Override(c.Languages); err != nil {
		return nil, err
	}
	return cat, nil
}

func (c *Config) KeyAllocator() sandbox.KeyAllocator {
	if c.Sandbox.Keys == "rotating" {
		return sandbox.NewRotatingKeys(c.Sandbox.BaseKey, c.Sandbox.PoolSize)
	}
	return sandbox.PrivateKeys{}
}

// SandboxPrefix is the command placed before every strategy execution.
func (c *Config) SandboxPrefix() string {
	if c.Sandbox.Prefix != "" {
		return c.Sandbox.Prefix
	}
	if c.Sandbox.Nsjail {
		return c.Sandbox.Jail.NsjailPrefix()
	}
	return ""
}
