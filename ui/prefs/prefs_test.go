package prefs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	p := LoadFrom(dir)
	assert.Equal(t, "", p.String(KeyLastImageDir))
	assert.True(t, p.Bool(KeyFitToWindow, true))

	p.SetString(KeyLastImageDir, "/data/images")
	p.SetFloat(KeyWindowWidth, 1280)
	p.SetBool(KeyShowMask, true)
	require.NoError(t, p.Save())

	q := LoadFrom(dir)
	assert.Equal(t, "/data/images", q.String(KeyLastImageDir))
	assert.Equal(t, 1280.0, q.FloatWithFallback(KeyWindowWidth, 0))
	assert.Equal(t, 600.0, q.FloatWithFallback(KeyWindowHeight, 600))
	assert.True(t, q.Bool(KeyShowMask, false))
}

func TestAddRecent(t *testing.T) {
	dir := t.TempDir()
	p := LoadFrom(dir)
	p.AddRecent("a")
	p.AddRecent("b")
	p.AddRecent("a")
	assert.Equal(t, []string{"a", "b"}, p.Strings(KeyRecentProjects))

	for i := 0; i < MaxRecent+2; i++ {
		p.AddRecent(fmt.Sprintf("p%d", i))
	}
	assert.Len(t, p.Strings(KeyRecentProjects), MaxRecent)
	require.NoError(t, p.Save())

	// after a JSON round trip the list decodes as []interface{}
	q := LoadFrom(dir)
	assert.Equal(t, p.Strings(KeyRecentProjects), q.Strings(KeyRecentProjects))
}

func TestMissingFile(t *testing.T) {
	p := LoadFrom(t.TempDir() + "/missing")
	assert.Nil(t, p.Strings(KeyRecentProjects))
}
