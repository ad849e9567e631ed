package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godock/dockerr"
)

func TestLoadDefaults(t *testing.T) {
	c, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "obabel", c.Obabel.Bin)
	assert.Equal(t, 1, c.Vina.CPU)
	assert.Equal(t, 8, c.Vina.Exhaustiveness)
	assert.Equal(t, 10*time.Minute, c.ToolTimeout)
	assert.Equal(t, "info", c.Log.Level)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "godock.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
vina:
  cpu: 4
  exhaustiveness: 16
targets_dir: /data/targets
tool_timeout: 5m
log:
  level: debug
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Vina.CPU)
	assert.Equal(t, 16, c.Vina.Exhaustiveness)
	assert.Equal(t, "/data/targets", c.TargetsDir)
	assert.Equal(t, 5*time.Minute, c.ToolTimeout)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "work", c.WorkDir)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("GODOCK_VINA_CPU", "3")
	t.Setenv("GODOCK_TARGETS_DIR", "/env/targets")

	c, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 3, c.Vina.CPU)
	assert.Equal(t, "/env/targets", c.TargetsDir)
}

func TestValidate(t *testing.T) {
	c, err := LoadFromEnv()
	require.NoError(t, err)

	c.Vina.CPU = 0
	err = c.Validate()
	require.Error(t, err)
	assert.True(t, dockerr.IsKind(err, dockerr.KindParse))

	c.Vina.CPU = 1
	c.TargetsDir = ""
	assert.Error(t, c.Validate())
}

func TestBuildLogger(t *testing.T) {
	c, err := LoadFromEnv()
	require.NoError(t, err)

	logger, err := c.BuildLogger()
	require.NoError(t, err)
	require.NotNil(t, logger)

	c.Log.Level = "nope"
	_, err = c.BuildLogger()
	assert.Error(t, err)
}
