package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := &Config{
		RepeatPerFile: true,
		ConstEnum:     true,
		Header:        "// generated",
		Include:       []string{"include/**/*.h"},
		Exclude:       []string{"**/internal/**"},
		LogLevel:      "debug",
	}

	require.NoError(t, Save(cfg, path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("typedef_names: true\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.TypedefNames)
	assert.False(t, cfg.RepeatPerFile)
	assert.Equal(t, DefaultInclude, cfg.Include)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("include: [unterminated\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Resolve("", dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	require.NoError(t, os.WriteFile(ConfigPath(dir), []byte("const_enum: true\n"), 0644))
	cfg, err = Resolve("", dir)
	require.NoError(t, err)
	assert.True(t, cfg.ConstEnum)

	_, err = Resolve(filepath.Join(dir, "explicit.yaml"), dir)
	assert.ErrorIs(t, err, ErrNotFound)
}
