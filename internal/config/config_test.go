package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-labeler/internal/imageio"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labeler.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
editor:
  hit_radius: 8
export:
  format: webp
  auto_colors: true
pascal:
  root: /data/voc
server:
  read_timeout: 5s
redis:
  enabled: true
  ttl: 1h
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8.0, cfg.Editor.HitRadius)
	assert.Equal(t, 1.1, cfg.Editor.ZoomFactor)
	assert.Equal(t, imageio.FormatWebP, cfg.ExportFormat())
	assert.True(t, cfg.Export.AutoColors)
	assert.Equal(t, "/data/voc", cfg.Pascal.Root)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, 8.0, cfg.EditorOptions().HitRadius)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LABELER_SERVER_ADDR", ":9999")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestLoadInvalid(t *testing.T) {
	for name, body := range map[string]string{
		"radius":  "editor:\n  hit_radius: 0\n",
		"zoom":    "editor:\n  zoom_factor: 0.5\n",
		"range":   "editor:\n  min_zoom: 5\n  max_zoom: 2\n",
		"format":  "export:\n  format: gif\n",
		"quality": "export:\n  quality: 101\n",
		"theme":   "editor:\n  theme: neon\n",
		"accent":  "editor:\n  accent: teal\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestNewFallsBack(t *testing.T) {
	cfg := New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, Default(), cfg)
}
