package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/chatwidget/internal/config"
)

func writeConfigFile(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, ".chatwidget")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0o600))
}

func TestConfigPath(t *testing.T) {
	home := isolateHome(t)
	deps, _, _ := testDeps(false)

	out, _, err := execute(t, deps, nil, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".chatwidget", "config.json"), strings.TrimSpace(out))
}

func TestConfigInit(t *testing.T) {
	home := isolateHome(t)
	deps, _, _ := testDeps(false)

	out, _, err := execute(t, deps, nil, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default config")

	cfg, err := config.LoadConfigFile()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)

	_, _, err = execute(t, deps, nil, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	writeConfigFile(t, home, `{broken`)
	_, _, err = execute(t, deps, nil, "config", "init", "--force")
	require.NoError(t, err)

	_, err = config.LoadConfigFile()
	assert.NoError(t, err)
}

func TestConfigSetAndShow(t *testing.T) {
	isolateHome(t)
	deps, _, _ := testDeps(false)

	out, _, err := execute(t, deps, nil, "config", "set", "send_history", "true")
	require.NoError(t, err)
	assert.Contains(t, out, "send_history = true")

	_, _, err = execute(t, deps, nil, "config", "set", "Model", "gpt-4o")
	require.NoError(t, err)

	out, _, err = execute(t, deps, nil, "config", "show")
	require.NoError(t, err)

	var shown config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.True(t, shown.SendHistory)
	assert.Equal(t, "gpt-4o", shown.Model)
	assert.Equal(t, 0.7, shown.Temperature)
}

func TestConfigSetDoesNotPersistEnv(t *testing.T) {
	isolateHome(t)
	deps, _, _ := testDeps(false)
	t.Setenv("CHATWIDGET_MODEL", "from-env")

	_, _, err := execute(t, deps, nil, "config", "set", "temperature", "1.0")
	require.NoError(t, err)

	cfg, err := config.LoadConfigFile()
	require.NoError(t, err)
	assert.Equal(t, "gpt-5", cfg.Model)
	assert.Equal(t, 1.0, cfg.Temperature)
}

func TestConfigSetRejectsInvalid(t *testing.T) {
	home := isolateHome(t)
	deps, _, _ := testDeps(false)

	_, _, err := execute(t, deps, nil, "config", "set", "nope", "x")
	assert.Error(t, err)
	_, _, err = execute(t, deps, nil, "config", "set", "temperature", "9")
	assert.Error(t, err)
	_, _, err = execute(t, deps, nil, "config", "set", "model")
	assert.Error(t, err)

	_, statErr := os.Stat(filepath.Join(home, ".chatwidget", "config.json"))
	assert.True(t, os.IsNotExist(statErr), "rejected values must not create a config file")
}

func TestConfigBypassesValidation(t *testing.T) {
	home := isolateHome(t)
	deps, _, _ := testDeps(false)
	writeConfigFile(t, home, `{"temperature": 5}`)

	// The chat itself refuses the config
	_, _, err := execute(t, deps, nil, "Hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	// but it can still be shown and repaired
	out, _, err := execute(t, deps, nil, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"temperature": 5`)

	_, _, err = execute(t, deps, nil, "config", "set", "temperature", "0.5")
	require.NoError(t, err)
	_, _, err = execute(t, deps, nil, "config", "show", "-m", "ignored")
	require.NoError(t, err)
}

func TestConfigShowBrokenFile(t *testing.T) {
	home := isolateHome(t)
	deps, _, _ := testDeps(false)
	writeConfigFile(t, home, `{nope`)

	_, _, err := execute(t, deps, nil, "config", "show")
	assert.Error(t, err)
}
