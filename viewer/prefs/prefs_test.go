package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"civictrack/viewer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadThemeDefaultsToDark(t *testing.T) {
	f := &File{Path: filepath.Join(t.TempDir(), "missing", "viewer.yaml")}

	theme, err := f.LoadTheme()
	require.NoError(t, err)
	assert.Equal(t, viewer.ThemeDark, theme)
}

func TestSaveThemeRoundTrip(t *testing.T) {
	f := &File{Path: filepath.Join(t.TempDir(), "civictrack", "viewer.yaml")}

	require.NoError(t, f.SaveTheme(viewer.ThemeLight))

	data, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "theme: light")

	theme, err := f.LoadTheme()
	require.NoError(t, err)
	assert.Equal(t, viewer.ThemeLight, theme)
}

func TestLoadThemeUnknownValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: sepia\n"), 0o644))

	theme, err := (&File{Path: path}).LoadTheme()
	require.NoError(t, err)
	assert.Equal(t, viewer.ThemeDark, theme)
}

func TestLoadThemeCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: [unterminated\n"), 0o644))

	theme, err := (&File{Path: path}).LoadTheme()
	assert.Error(t, err)
	assert.Equal(t, viewer.ThemeDark, theme)
}
