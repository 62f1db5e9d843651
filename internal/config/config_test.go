package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geoview.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[render]
selection_color = 0xff8800
ghost_opacity = 3.0

[loader]
workers = 0

[sync]
enabled = true
listen = ":9000"
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int32(0xff8800), c.Render.SelectionColor)
	assert.Equal(t, float32(1), c.Render.GhostOpacity, "clamped")
	assert.Equal(t, 1, c.Loader.Workers, "clamped")
	assert.True(t, c.Sync.Enabled)
	assert.Equal(t, ":9000", c.Sync.Listen)
	assert.Equal(t, 1280, c.Window.Width, "untouched sections keep defaults")
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[render\nfps_limit = "), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	c := DefaultConfig()
	c.Log.Level = "debug"
	c.Camera.FOV = 70
	require.NoError(t, c.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestRuntimeSettings(t *testing.T) {
	defer SetFPSLimit(GetFPSLimit())
	defer SetWireframe(GetWireframe())

	SetFPSLimit(-5)
	assert.Equal(t, 0, GetFPSLimit())
	SetFPSLimit(5000)
	assert.Equal(t, 1000, GetFPSLimit())

	SetWireframe(false)
	assert.True(t, ToggleWireframe())
	assert.False(t, ToggleWireframe())

	c := DefaultConfig()
	c.Render.FPSLimit = 144
	c.Render.Wireframe = true
	Apply(c)
	assert.Equal(t, 144, GetFPSLimit())
	assert.True(t, GetWireframe())
}
