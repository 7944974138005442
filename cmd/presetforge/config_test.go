package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presetforge/cmd/presetforge/cubelut"
)

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("data-dir", ".", "")
	fs.Bool("debug", false, "")
	fs.Int("lut-size", 33, "")
	fs.String("title", "", "")
	fs.String("addr", ":8000", "")
	return fs
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, "PresetForge", cfg.ProjectName)
	assert.Equal(t, 33, cfg.LUTSize)
	assert.Equal(t, cubelut.DefaultTitle, cfg.LUTTitle)
	assert.NoError(t, cfg.validate())
}

func TestApplyEnv(t *testing.T) {
	cfg := defaultConfig()
	err := cfg.applyEnv(lookupMap(map[string]string{
		"PROJECT_NAME":         "Forge",
		"ENVIRONMENT":          "production",
		"DEBUG":                "true",
		"PRESETFORGE_DATA_DIR": "/srv/forge",
		"PRESETFORGE_LUT_SIZE": "17",
		"PRESETFORGE_ADDR":     "127.0.0.1:9000",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Forge", cfg.ProjectName)
	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/srv/forge", cfg.DataDir)
	assert.Equal(t, 17, cfg.LUTSize)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
}

func TestApplyEnvErrors(t *testing.T) {
	cfg := defaultConfig()
	assert.Error(t, cfg.applyEnv(lookupMap(map[string]string{"DEBUG": "maybe"})))
	assert.Error(t, cfg.applyEnv(lookupMap(map[string]string{"PRESETFORGE_LUT_SIZE": "big"})))
}

func TestFlagsOverrideEnv(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.applyEnv(lookupMap(map[string]string{"PRESETFORGE_LUT_SIZE": "17"})))

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--lut-size", "9", "--title", "Warm"}))
	require.NoError(t, cfg.applyFlags(fs))
	assert.Equal(t, 9, cfg.LUTSize)
	assert.Equal(t, "Warm", cfg.LUTTitle)
	assert.Equal(t, ".", cfg.DataDir, "unset flags keep the previous value")
}

func TestLoadConfigEnvFile(t *testing.T) {
	_, set := os.LookupEnv("PRESETFORGE_LUT_TITLE")
	if set {
		t.Skip("PRESETFORGE_LUT_TITLE already set in the environment")
	}
	t.Cleanup(func() { os.Unsetenv("PRESETFORGE_LUT_TITLE") })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PRESETFORGE_LUT_TITLE=From Dotenv\n"), 0644))

	cfg, err := loadConfig(path, testFlags())
	require.NoError(t, err)
	assert.Equal(t, "From Dotenv", cfg.LUTTitle)
}

func TestLoadConfigMissingEnvFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "absent.env"), nil)
	assert.NoError(t, err)
}

func TestLoadConfigRejectsSmallLUT(t *testing.T) {
	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--lut-size", "1"}))
	_, err := loadConfig("", fs)
	assert.True(t, errors.Is(err, cubelut.ErrInvalidGridSize))
}

func TestLoadConfigRejectsUnsafeTitle(t *testing.T) {
	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--title", "two\nlines"}))
	_, err := loadConfig("", fs)
	assert.True(t, errors.Is(err, cubelut.ErrInvalidTitle), "got %v", err)
}
