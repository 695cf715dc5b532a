package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matjam/glpaper/internal/types"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "glpaper.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	wallpapers := t.TempDir()

	flags := viper.New()
	flags.Set(KeyDirectory, wallpapers)

	p, err := New(flags, WithConfigFile(filepath.Join(t.TempDir(), "missing.toml")), WithLogger(log.New(&bytes.Buffer{})))
	require.NoError(t, err)

	assert.Equal(t, wallpapers, p.WallpaperDirectory())
	assert.Equal(t, types.Color{0.08, 0.08, 0.08, 1.0}, p.BackgroundColor())
	assert.Empty(t, p.EnabledTransitions())
	assert.Equal(t, 3*time.Second, p.TransitionDuration())
	assert.Equal(t, 120*time.Minute, p.DisplayDuration())
}

func TestMissingDirectoryIsFatal(t *testing.T) {
	_, err := New(viper.New(), WithConfigFile(filepath.Join(t.TempDir(), "missing.toml")), WithLogger(log.New(&bytes.Buffer{})))
	require.ErrorIs(t, err, ErrNoDirectory)
}

func TestNonexistentDirectoryIsIgnored(t *testing.T) {
	var buf bytes.Buffer
	flags := viper.New()
	flags.Set(KeyDirectory, filepath.Join(t.TempDir(), "nope"))

	_, err := New(flags, WithConfigFile(filepath.Join(t.TempDir(), "missing.toml")), WithLogger(log.New(&buf)))
	require.ErrorIs(t, err, ErrNoDirectory)
	assert.Contains(t, buf.String(), "does not exist")
}

func TestInvalidColorFlagKeepsDefault(t *testing.T) {
	var buf bytes.Buffer
	flags := viper.New()
	flags.Set(KeyDirectory, t.TempDir())
	flags.Set(KeyBGColor, []string{"0.1", "0.2", "0.3"})

	p, err := New(flags, WithConfigFile(filepath.Join(t.TempDir(), "missing.toml")), WithLogger(log.New(&buf)))
	require.NoError(t, err)

	assert.Equal(t, types.DefaultBackground, p.BackgroundColor())
	assert.Contains(t, buf.String(), "Invalid bg-color given")
}

func TestFileMergesIntoUnsetFields(t *testing.T) {
	wallpapers := t.TempDir()
	path := writeConfig(t, t.TempDir(), `
directory = "`+wallpapers+`"
bg-color = [0.5, 0.25, 0.0, 1.0]
transitions = ["fade", "swirl"]
duration = 1500
minutes = 5
`)

	flags := viper.New()
	flags.Set(KeyMinutes, 1)

	p, err := New(flags, WithConfigFile(path), WithLogger(log.New(&bytes.Buffer{})))
	require.NoError(t, err)

	assert.Equal(t, wallpapers, p.WallpaperDirectory())
	assert.Equal(t, types.Color{0.5, 0.25, 0, 1}, p.BackgroundColor())
	assert.Equal(t, []string{"fade", "swirl"}, p.EnabledTransitions())
	assert.Equal(t, 1500*time.Millisecond, p.TransitionDuration())
	assert.Equal(t, time.Minute, p.DisplayDuration(), "command line wins on initial load")
	assert.Equal(t, path, p.ConfigFileUsed())
}

func TestReloadOverwritesCommandLine(t *testing.T) {
	cliDir := t.TempDir()
	fileDir := t.TempDir()
	path := writeConfig(t, t.TempDir(), `
directory = "`+fileDir+`"
duration = 4000
`)

	flags := viper.New()
	flags.Set(KeyDirectory, cliDir)
	flags.Set(KeyDuration, 500)

	p, err := New(flags, WithConfigFile(path), WithLogger(log.New(&bytes.Buffer{})))
	require.NoError(t, err)
	assert.Equal(t, cliDir, p.WallpaperDirectory())
	assert.Equal(t, 500*time.Millisecond, p.TransitionDuration())

	require.NoError(t, p.Reload(true))
	assert.Equal(t, fileDir, p.WallpaperDirectory())
	assert.Equal(t, 4000*time.Millisecond, p.TransitionDuration())
}

func TestReloadPicksUpFileChanges(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	confDir := t.TempDir()
	path := writeConfig(t, confDir, `directory = "`+first+`"`)

	p, err := New(viper.New(), WithConfigFile(path), WithLogger(log.New(&bytes.Buffer{})))
	require.NoError(t, err)
	assert.Equal(t, first, p.WallpaperDirectory())

	writeConfig(t, confDir, `
directory = "`+second+`"
bg-color = [1.0, 1.0, 1.0]
`)
	var buf bytes.Buffer
	p.logger = log.New(&buf)
	require.NoError(t, p.Reload(true))
	assert.Equal(t, second, p.WallpaperDirectory())
	assert.Equal(t, types.DefaultBackground, p.BackgroundColor())
	assert.Contains(t, buf.String(), "Invalid bg-color in config")
}

func TestReloadMissingFile(t *testing.T) {
	confDir := t.TempDir()
	wallpapers := t.TempDir()
	path := writeConfig(t, confDir, `directory = "`+wallpapers+`"`)

	p, err := New(viper.New(), WithConfigFile(path), WithLogger(log.New(&bytes.Buffer{})))
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	require.Error(t, p.Reload(true))
	assert.Equal(t, wallpapers, p.WallpaperDirectory())
}

func TestConfigFlagSelectsFile(t *testing.T) {
	wallpapers := t.TempDir()
	path := writeConfig(t, t.TempDir(), `directory = "`+wallpapers+`"`)

	flags := viper.New()
	flags.Set(KeyConfig, path)

	p, err := New(flags, WithLogger(log.New(&bytes.Buffer{})))
	require.NoError(t, err)
	assert.Equal(t, path, p.ConfigFileUsed())
	assert.Equal(t, wallpapers, p.WallpaperDirectory())
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    types.Color
		wantErr bool
	}{
		{name: "string", raw: "0.1, 0.2, 0.3, 1", want: types.Color{0.1, 0.2, 0.3, 1}},
		{name: "strings", raw: []string{"0", "0", "0", "1"}, want: types.Color{0, 0, 0, 1}},
		{name: "floats", raw: []float64{1, 0.5, 0, 1}, want: types.Color{1, 0.5, 0, 1}},
		{name: "toml array", raw: []any{int64(1), 0.5, 0.0, 1.0}, want: types.Color{1, 0.5, 0, 1}},
		{name: "too short", raw: []float64{1, 1, 1}, wantErr: true},
		{name: "too long", raw: "1,1,1,1,1", wantErr: true},
		{name: "out of range", raw: []float64{2, 0, 0, 1}, wantErr: true},
		{name: "not a number", raw: []string{"a", "0", "0", "1"}, wantErr: true},
		{name: "unsupported", raw: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want[:], got[:], 1e-6)
		})
	}
}

func TestCanonicalPath(t *testing.T) {
	t.Setenv("HOME", "/home/someone")

	assert.Equal(t, "", CanonicalPath(""))
	assert.Equal(t, "/home/someone", CanonicalPath("~"))
	assert.Equal(t, "/home/someone/Pictures", CanonicalPath("~/Pictures"))
	assert.Equal(t, "/srv/walls", CanonicalPath("/srv/walls"))
}
