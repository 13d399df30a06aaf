package environment_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/programme-lv/dilemma/internal/environment"
	"github.com/programme-lv/dilemma/internal/match"
	"github.com/programme-lv/dilemma/internal/sandbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the developer's own config and .env out of the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, key := range []string{
		"DILEMMA_STRATEGIES_DIR", "DILEMMA_SHELL", "DILEMMA_SANDBOX_PREFIX", "DILEMMA_SEED",
		"DILEMMA_TURN_TIMEOUT", "NATS_URL", "NATS_SUBJECT", "SQS_QUEUE_URL", "AWS_REGION",
	} {
		t.Setenv(key, "")
	}
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := environment.Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "dilemma", "strategies"), cfg.StrategiesDir)
	assert.Equal(t, match.DefaultRange, cfg.Range)
	assert.Zero(t, cfg.TurnTimeout)
	assert.Equal(t, "", cfg.SandboxPrefix())
	assert.IsType(t, sandbox.PrivateKeys{}, cfg.KeyAllocator())

	cat, err := cfg.Catalog()
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "c++", "java", "pypy", "python"}, cat.IDs())
}

func TestLoadFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "dilemma.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
strategies_dir = "/srv/strategies"
seed = 17
turn_timeout = "1500ms"
range = { min = 10, max = 20 }

[sandbox]
keys = "rotating"
pool_size = 4
nsjail = true

[sandbox.jail]
time_limit_sec = 5
readonly_mounts = ["/srv/strategies"]

[[languages]]
id = "c"
compile_cmd = "gcc -O2 -o {output} {input}"

[[languages]]
id = "go"
code_fname = "main.go"
compiled_fname = "main"
compile_cmd = "go build -o {output} {input}"
exec_cmd = "{output}"
`), 0644))

	cfg, err := environment.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/strategies", cfg.StrategiesDir)
	assert.Equal(t, uint64(17), cfg.Seed)
	assert.Equal(t, 1500*time.Millisecond, time.Duration(cfg.TurnTimeout))
	assert.Equal(t, match.IterRange{Min: 10, Max: 20}, cfg.Range)

	keys, ok := cfg.KeyAllocator().(*sandbox.RotatingKeys)
	require.True(t, ok)
	for i := 0; i < 4; i++ {
		_, err := keys.Acquire()
		require.NoError(t, err)
	}
	_, err = keys.Acquire()
	assert.ErrorIs(t, err, sandbox.ErrKeyPoolExhausted)

	prefix := cfg.SandboxPrefix()
	assert.Contains(t, prefix, "--time_limit 5")
	assert.Contains(t, prefix, "--user 12345", "unset jail fields keep their defaults")
	assert.Contains(t, prefix, "--bindmount_ro '/srv/strategies'")

	cat, err := cfg.Catalog()
	require.NoError(t, err)
	c, err := cat.Get("c")
	require.NoError(t, err)
	assert.Equal(t, "gcc -O2 -o {output} {input}", c.CompileCmd)
	assert.Equal(t, "a.c", c.CodeFname)
	_, err = cat.Get("go")
	assert.NoError(t, err)
}

func TestEnvOverrides(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DILEMMA_SEED=99\nNATS_URL=nats://queue:4222\n"), 0644))
	t.Setenv("DILEMMA_STRATEGIES_DIR", "/tmp/s")
	t.Setenv("DILEMMA_TURN_TIMEOUT", "2s")
	// godotenv does not override variables that are already set
	os.Unsetenv("DILEMMA_SEED")
	os.Unsetenv("NATS_URL")

	cfg, err := environment.Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/s", cfg.StrategiesDir)
	assert.Equal(t, uint64(99), cfg.Seed)
	assert.Equal(t, "nats://queue:4222", cfg.Nats.URL)
	assert.Equal(t, 2*time.Second, time.Duration(cfg.TurnTimeout))
}

func TestLoadErrors(t *testing.T) {
	dir := isolate(t)

	_, err := environment.Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err, "an explicitly named config must exist")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("range = { min = 0, max = 5 }\n"), 0644))
	_, err = environment.Load(bad)
	assert.ErrorIs(t, err, match.ErrInvalidRange)

	require.NoError(t, os.WriteFile(bad, []byte("[sandbox]\nkeys = \"random\"\n"), 0644))
	_, err = environment.Load(bad)
	assert.Error(t, err)

	t.Setenv("DILEMMA_SEED", "many")
	_, err = environment.Load("")
	assert.Error(t, err)
}
