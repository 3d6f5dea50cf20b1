// Package config loads the storyline CLI configuration.
//
// Values are layered: built-in defaults, then an optional YAML file (with
// ${VAR} and ${VAR:-default} references expanded), then STORYLINE_*
// environment variables. Command-line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/storyline/internal/logging"
	"github.com/aretw0/storyline/pkg/domain"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STORYLINE_"

// DefaultFile is looked up in the working directory when no file is given.
const DefaultFile = "storyline.yaml"

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete CLI configuration.
type Config struct {
	Launch  LaunchConfig  `yaml:"launch"`
	Journal JournalConfig `yaml:"journal"`
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	// Redact lists regular expressions; description values whose key matches are masked.
	Redact []string `yaml:"redact"`
}

// LaunchConfig describes the launch opened for a run.
type LaunchConfig struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Tags        []string    `yaml:"tags"`
	Mode        domain.Mode `yaml:"mode"`
}

// JournalConfig points at the Redis journal. An empty address disables it.
type JournalConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	Prefix        string        `yaml:"prefix"`
	TTL           time.Duration `yaml:"ttl"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string         `yaml:"level"`
	Format logging.Format `yaml:"format"`
}

// ServerConfig configures `storyline serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Launch: LaunchConfig{
			Name: "storyline",
			Mode: domain.ModeDefault,
		},
		Journal: JournalConfig{
			Prefix: "storyline:journal:",
			TTL:    24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load builds the configuration from defaults, the file at path and the process environment.
// An empty path falls back to DefaultFile when it exists.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(ExpandEnvVarsBytes(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case explicit || !os.IsNotExist(err):
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from STORYLINE_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	str("LAUNCH_NAME", &c.Launch.Name)
	str("LAUNCH_DESCRIPTION", &c.Launch.Description)
	if v, ok := lookup(EnvPrefix + "LAUNCH_TAGS"); ok {
		c.Launch.Tags = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "LAUNCH_MODE"); ok {
		c.Launch.Mode = domain.Mode(strings.ToUpper(v))
	}

	str("REDIS_ADDR", &c.Journal.RedisAddr)
	str("REDIS_PASSWORD", &c.Journal.RedisPassword)
	if v, ok := lookup(EnvPrefix + "REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sREDIS_DB: %w", ErrInvalid, EnvPrefix, err)
		}
		c.Journal.RedisDB = db
	}
	str("JOURNAL_PREFIX", &c.Journal.Prefix)
	if v, ok := lookup(EnvPrefix + "JOURNAL_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %sJOURNAL_TTL: %w", ErrInvalid, EnvPrefix, err)
		}
		c.Journal.TTL = ttl
	}

	str("LOG_LEVEL", &c.Log.Level)
	if v, ok := lookup(EnvPrefix + "LOG_FORMAT"); ok {
		c.Log.Format = logging.Format(strings.ToLower(v))
	}
	str("SERVER_ADDR", &c.Server.Addr)
	if v, ok := lookup(EnvPrefix + "REDACT"); ok {
		c.Redact = splitList(v)
	}
	return nil
}

// Validate rejects configurations the CLI cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Launch.Name) == "" {
		errs = append(errs, errors.New("launch.name is required"))
	}
	if c.Launch.Mode != "" && !c.Launch.Mode.Valid() {
		errs = append(errs, fmt.Errorf("launch.mode %q is not DEFAULT or DEBUG", c.Launch.Mode))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "" && c.Log.Format != logging.FormatText && c.Log.Format != logging.FormatJSON {
		errs = append(errs, fmt.Errorf("log.format %q is not text or json", c.Log.Format))
	}
	if c.Journal.RedisDB < 0 {
		errs = append(errs, errors.New("journal.redis_db must not be negative"))
	}
	if c.Journal.TTL < 0 {
		errs = append(errs, errors.New("journal.ttl must not be negative"))
	}
	for _, p := range c.Redact {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("redact pattern %q: %w", p, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// LaunchSpec converts the launch block for the reporter.
func (c Config) LaunchSpec() domain.LaunchSpec {
	return domain.LaunchSpec{
		Name:        c.Launch.Name,
		Description: c.Launch.Description,
		Tags:        c.Launch.Tags,
		Mode:        c.Launch.Mode,
	}
}

// Logger builds the logger described by the log block.
func (c Config) Logger() *slog.Logger {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.New(level, c.Log.Format)
}

// JournalEnabled reports whether a Redis journal is configured.
func (c Config) JournalEnabled() bool {
	return c.Journal.RedisAddr != ""
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
