package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/useradmin/pkg/config"
)

type defaultsConfig struct {
	Addr    string        `env:"CFG_TEST_DEFAULT_ADDR" envDefault:":8080"`
	Workers int           `env:"CFG_TEST_DEFAULT_WORKERS" envDefault:"4"`
	Debug   bool          `env:"CFG_TEST_DEFAULT_DEBUG" envDefault:"true"`
	TTL     time.Duration `env:"CFG_TEST_DEFAULT_TTL" envDefault:"5s"`
}

type envConfig struct {
	Addr    string `env:"CFG_TEST_ENV_ADDR" envDefault:":8080"`
	Workers int    `env:"CFG_TEST_ENV_WORKERS"`
}

type cachedConfig struct {
	Value string `env:"CFG_TEST_CACHED" envDefault:"first"`
}

type requiredConfig struct {
	Value string `env:"CFG_TEST_REQUIRED,required"`
}

type fileConfig struct {
	Name  string `env:"CFG_TEST_FILE_NAME"`
	Extra string `env:"CFG_TEST_FILE_EXTRA"`
}

type yamlConfig struct {
	Backend string        `env:"CFG_TEST_YAML_BACKEND" envDefault:"memory" yaml:"backend"`
	Latency time.Duration `env:"CFG_TEST_YAML_LATENCY" envDefault:"1s" yaml:"latency"`
	Seed    string        `env:"CFG_TEST_YAML_SEED" yaml:"seed"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg defaultsConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 5*time.Second, cfg.TTL)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CFG_TEST_ENV_ADDR", "127.0.0.1:9000")
	t.Setenv("CFG_TEST_ENV_WORKERS", "12")

	var cfg envConfig
	require.NoError(t, config.ForceReload(&cfg))

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, 12, cfg.Workers)
}

func TestLoad_Cached(t *testing.T) {
	var first cachedConfig
	require.NoError(t, config.ForceReload(&first))
	assert.Equal(t, "first", first.Value)

	t.Setenv("CFG_TEST_CACHED", "second")

	var again cachedConfig
	require.NoError(t, config.Load(&again))
	assert.Equal(t, "first", again.Value)

	require.NoError(t, config.ForceReload(&again))
	assert.Equal(t, "second", again.Value)
}

func TestLoad_Required(t *testing.T) {
	var cfg requiredConfig
	err := config.Load(&cfg)
	require.ErrorIs(t, err, config.ErrParsingConfig)

	t.Setenv("CFG_TEST_REQUIRED", "set")
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "set", cfg.Value)
}

func TestLoad_NilPointer(t *testing.T) {
	var cfg *envConfig
	assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	assert.Panics(t, func() { config.MustLoad(cfg) })
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, ".env")
	override := filepath.Join(dir, ".env.local")
	require.NoError(t, os.WriteFile(base, []byte("CFG_TEST_FILE_NAME=base\nCFG_TEST_FILE_EXTRA=kept\n"), 0o600))
	require.NoError(t, os.WriteFile(override, []byte("CFG_TEST_FILE_NAME=\"local\"\n"), 0o600))

	// t.Setenv registers the restore; unset so the files can fill them.
	t.Setenv("CFG_TEST_FILE_NAME", "")
	t.Setenv("CFG_TEST_FILE_EXTRA", "")
	require.NoError(t, os.Unsetenv("CFG_TEST_FILE_NAME"))
	require.NoError(t, os.Unsetenv("CFG_TEST_FILE_EXTRA"))

	require.NoError(t, config.LoadEnv(base, override))

	var cfg fileConfig
	require.NoError(t, config.ForceReload(&cfg))
	assert.Equal(t, "local", cfg.Name)
	assert.Equal(t, "kept", cfg.Extra)
}

func TestLoadEnv_KeepsProcessEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CFG_TEST_FILE_NAME=file\n"), 0o600))
	t.Setenv("CFG_TEST_FILE_NAME", "process")

	require.NoError(t, config.LoadEnv(path))
	assert.Equal(t, "process", os.Getenv("CFG_TEST_FILE_NAME"))
}

func TestLoadEnv_Missing(t *testing.T) {
	err := config.LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Panics(t, func() { config.MustLoadEnv(filepath.Join(t.TempDir(), "missing.env")) })
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("CFG_TEST_YAML_SEED", "from-env.yaml")
	path := filepath.Join(t.TempDir(), "useradmin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: redis\nlatency: 250ms\n"), 0o600))

	var cfg yamlConfig
	require.NoError(t, config.LoadYAML(path, &cfg))

	assert.Equal(t, "redis", cfg.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.Latency)
	assert.Equal(t, "from-env.yaml", cfg.Seed)
}

func TestLoadYAML_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [unterminated\n"), 0o600))

	var cfg yamlConfig
	assert.ErrorIs(t, config.LoadYAML(path, &cfg), config.ErrParsingYAML)
}
