package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
token = "abc-123"
api_url = "https://example.test/v2"

[lessons]
batch_size = 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "abc-123", cfg.Token)
	assert.Equal(t, "https://example.test/v2", cfg.APIURL)
	assert.Equal(t, 10, cfg.Lessons.BatchSize)
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Token)
	assert.Zero(t, cfg.Lessons.BatchSize)
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, `token = `)
	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `token = "from-file"`)
	t.Setenv("KODAMA_TOKEN", "from-env")
	t.Setenv("KODAMA_API_URL", "https://override.test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Token)
	assert.Equal(t, "https://override.test", cfg.APIURL)
}

func TestDefaultPathRespectsXDG(t *testing.T) {
	t.Setenv("KODAMA_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "kodama", "config.toml"), p)
}

func TestDefaultPathEnvOverride(t *testing.T) {
	t.Setenv("KODAMA_CONFIG", "/etc/kodama.toml")

	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/etc/kodama.toml", p)
}
