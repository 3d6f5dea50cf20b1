package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/storyline/internal/config"
	"github.com/aretw0/storyline/internal/logging"
	"github.com/aretw0/storyline/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storyline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.JournalEnabled())
	assert.Equal(t, domain.LaunchSpec{Name: "storyline", Mode: domain.ModeDefault}, cfg.LaunchSpec())
}

func TestLoad_FileOverDefaults(t *testing.T) {
	t.Setenv("STORYLINE_TEST_REDIS", "redis.internal:6379")
	path := writeFile(t, `
launch:
  name: nightly
  tags: [ci, smoke]
  mode: DEBUG
journal:
  redis_addr: ${STORYLINE_TEST_REDIS}
  redis_password: ${STORYLINE_TEST_UNSET:-secret}
  ttl: 90m
log:
  format: json
redact: [password, "^token$"]
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "nightly", cfg.Launch.Name)
	assert.Equal(t, []string{"ci", "smoke"}, cfg.Launch.Tags)
	assert.Equal(t, domain.ModeDebug, cfg.Launch.Mode)
	assert.Equal(t, "redis.internal:6379", cfg.Journal.RedisAddr)
	assert.Equal(t, "secret", cfg.Journal.RedisPassword)
	assert.Equal(t, 90*time.Minute, cfg.Journal.TTL)
	assert.Equal(t, "storyline:journal:", cfg.Journal.Prefix, "unset keys keep their default")
	assert.Equal(t, logging.FormatJSON, cfg.Log.Format)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"password", "^token$"}, cfg.Redact)
	assert.True(t, cfg.JournalEnabled())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "launch:\n  name: from-file\n")
	t.Setenv("STORYLINE_LAUNCH_NAME", "from-env")
	t.Setenv("STORYLINE_LAUNCH_TAGS", "a, b,,c")
	t.Setenv("STORYLINE_LAUNCH_MODE", "debug")
	t.Setenv("STORYLINE_REDIS_DB", "3")
	t.Setenv("STORYLINE_JOURNAL_TTL", "5s")
	t.Setenv("STORYLINE_LOG_LEVEL", "debug")
	t.Setenv("STORYLINE_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("STORYLINE_REDACT", "secret,pin")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Launch.Name)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Launch.Tags)
	assert.Equal(t, domain.ModeDebug, cfg.Launch.Mode)
	assert.Equal(t, 3, cfg.Journal.RedisDB)
	assert.Equal(t, 5*time.Second, cfg.Journal.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, []string{"secret", "pin"}, cfg.Redact)
}

func TestLoad_MissingDefaultFileIsFine(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default().Launch, cfg.Launch)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit file must exist")

	_, err = config.Load(writeFile(t, "launch: [not a map"))
	assert.Error(t, err)

	_, err = config.Load(writeFile(t, "launch:\n  name: \"\"\n"))
	assert.ErrorIs(t, err, config.ErrInvalid)

	t.Setenv("STORYLINE_REDIS_DB", "zero")
	_, err = config.Load(writeFile(t, "launch:\n  name: x\n"))
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty launch name", func(c *config.Config) { c.Launch.Name = "  " }},
		{"unknown mode", func(c *config.Config) { c.Launch.Mode = "LOUD" }},
		{"unknown level", func(c *config.Config) { c.Log.Level = "chatty" }},
		{"unknown format", func(c *config.Config) { c.Log.Format = "xml" }},
		{"negative db", func(c *config.Config) { c.Journal.RedisDB = -1 }},
		{"negative ttl", func(c *config.Config) { c.Journal.TTL = -time.Second }},
		{"bad redact pattern", func(c *config.Config) { c.Redact = []string{"("} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("STORYLINE_TEST_SET", "value")
	assert.Equal(t, "a=value b= c=fallback d=value",
		config.ExpandEnvVars("a=${STORYLINE_TEST_SET} b=${STORYLINE_TEST_NOPE} c=${STORYLINE_TEST_NOPE:-fallback} d=${STORYLINE_TEST_SET:-x}"))
}
