package xdg_test

import (
	"path/filepath"
	"testing"

	"github.com/programme-lv/dilemma/internal/xdg"
	"github.com/stretchr/testify/assert"
)

func TestEnvironmentWins(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/srv/data")
	t.Setenv("XDG_CONFIG_HOME", "/srv/config")
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "/home/judge")

	d := xdg.NewXDGDirs()
	assert.Equal(t, "/srv/data/dilemma", d.AppDataDir("dilemma"))
	assert.Equal(t, "/srv/config/dilemma", d.AppConfigDir("dilemma"))
	assert.Equal(t, filepath.Join("/home/judge", ".cache", "dilemma"), d.AppCacheDir("dilemma"))
}
