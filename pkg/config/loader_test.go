package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/modelbind/pkg/config"
)

type limitsConfig struct {
	MaxDepth  int  `env:"CONFIG_TEST_MAX_DEPTH" envDefault:"32"`
	MaxErrors int  `env:"CONFIG_TEST_MAX_ERRORS" envDefault:"200"`
	Strict    bool `env:"CONFIG_TEST_STRICT" envDefault:"true"`
}

type cachedConfig struct {
	Name string `env:"CONFIG_TEST_CACHED" envDefault:"default"`
}

type requiredConfig struct {
	Secret string `env:"CONFIG_TEST_REQUIRED,required"`
}

type fileConfig struct {
	Name string   `env:"CONFIG_TEST_FILE_NAME"`
	Size int      `env:"CONFIG_TEST_FILE_SIZE"`
	Tags []string `env:"CONFIG_TEST_FILE_TAGS" envSeparator:","`
}

// Tests here mutate the process environment and the shared cache, so they
// do not run in parallel.

func TestLoad(t *testing.T) {
	config.ResetCache()
	t.Setenv("CONFIG_TEST_MAX_DEPTH", "8")

	var cfg limitsConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, limitsConfig{MaxDepth: 8, MaxErrors: 200, Strict: true}, cfg)
}

func TestLoad_Cached(t *testing.T) {
	config.ResetCache()
	t.Setenv("CONFIG_TEST_CACHED", "first")

	var first cachedConfig
	require.NoError(t, config.Load(&first))

	t.Setenv("CONFIG_TEST_CACHED", "second")
	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Name)

	config.ResetCache()
	var reloaded cachedConfig
	require.NoError(t, config.Load(&reloaded))
	assert.Equal(t, "second", reloaded.Name)
}

func TestLoad_Errors(t *testing.T) {
	config.ResetCache()
	require.NoError(t, os.Unsetenv("CONFIG_TEST_REQUIRED"))

	var cfg requiredConfig
	require.ErrorIs(t, config.Load(&cfg), config.ErrParsingConfig)

	var nilCfg *limitsConfig
	require.ErrorIs(t, config.Load(nilCfg), config.ErrNilPointer)

	var n int
	require.ErrorIs(t, config.Load(&n), config.ErrInvalidConfigType)

	assert.Panics(t, func() { config.MustLoad(&cfg) })
}

func TestLoadEnv(t *testing.T) {
	config.ResetCache()
	for _, k := range []string{"CONFIG_TEST_FILE_NAME", "CONFIG_TEST_FILE_SIZE", "CONFIG_TEST_FILE_TAGS"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	require.NoError(t, config.LoadEnv("testdata/.env.test"))

	var cfg fileConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, fileConfig{Name: "tempdata", Size: 4096, Tags: []string{"a", "b", "c"}}, cfg)

	require.ErrorIs(t, config.LoadEnv("testdata/missing.env"), config.ErrLoadingEnvFile)
	assert.Panics(t, func() { config.MustLoadEnv("testdata/missing.env") })
}
