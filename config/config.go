// Package config loads cppguts settings from defaults, an optional TOML
// file and CPPGUTS_ environment variables, using koanf.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/cppguts/fs"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// EnvPrefix is the prefix of environment variables that override config
// keys. CPPGUTS_BATCH_WORKERS sets batch.workers.
const EnvPrefix = "CPPGUTS_"

// Report formats.
const (
	FormatText  = "text"
	FormatJSONL = "jsonl"
)

// Config represents the application configuration.
type Config struct {
	Parse struct {
		// LenientSemicolons accepts a class body closed by "}" alone.
		LenientSemicolons bool `koanf:"lenient_semicolons"`
	} `koanf:"parse"`

	Splice struct {
		// KeepOld keeps the replaced file as NAME_OLD.EXT.
		KeepOld bool `koanf:"keep_old"`
	} `koanf:"splice"`

	Batch struct {
		Workers int `koanf:"workers"`
	} `koanf:"batch"`

	Report struct {
		Format      string `koanf:"format"`
		Theme       string `koanf:"theme"`
		ChangedOnly bool   `koanf:"changed_only"`
	} `koanf:"report"`

	Cache struct {
		Enabled bool   `koanf:"enabled"`
		Dir     string `koanf:"dir"`
	} `koanf:"cache"`

	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"parse.lenient_semicolons": true,
		"splice.keep_old":          true,
		"batch.workers":            4,
		"report.format":            FormatText,
		"report.theme":             "dark",
		"report.changed_only":      false,
		"cache.enabled":            false,
		"cache.dir":                fs.DefaultCacheDir(),
		"log.level":                "warn",
	}
}

// DefaultPaths lists the files tried, in order, when no config path is
// given.
func DefaultPaths() []string {
	paths := []string{"./cppguts.toml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "cppguts", "config.toml"))
	}
	return paths
}

// Load builds the configuration. An explicit configPath must exist;
// otherwise the first existing file from DefaultPaths is used, if any. A
// file that fails to parse is an error either way.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	var k = koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		for _, path := range DefaultPaths() {
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("error loading config %s: %w", path, err)
			}
			break
		}
	}

	// CPPGUTS_SPLICE_KEEP_OLD -> splice.keep_old
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := Validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate validates the configuration.
func Validate(config *Config) error {
	if config.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1, got %d", config.Batch.Workers)
	}
	switch config.Report.Format {
	case FormatText, FormatJSONL:
	default:
		return fmt.Errorf("report.format must be %q or %q, got %q", FormatText, FormatJSONL, config.Report.Format)
	}
	switch config.Report.Theme {
	case "dark", "light":
	default:
		return fmt.Errorf("report.theme must be \"dark\" or \"light\", got %q", config.Report.Theme)
	}
	if _, err := config.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Sample is a commented configuration file with the default values.
const Sample = `# cppguts configuration

[parse]
# Accept a class, struct or union body closed by "}" without ";".
lenient_semicolons = true

[splice]
# Keep the replaced file as NAME_OLD.EXT instead of deleting it.
keep_old = true

[batch]
workers = 4

[report]
format = "text"  # text or jsonl
theme = "dark"   # dark or light
changed_only = false

[cache]
enabled = false

[log]
level = "warn"
`

// InitConfig writes Sample to configPath. It refuses to overwrite an
// existing file.
func InitConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(configPath, []byte(Sample), 0o644)
}
