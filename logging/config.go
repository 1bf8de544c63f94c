// Package logging builds zap loggers with the demystify enricher from a
// YAML configuration.
package logging

import (
	"errors"
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/tomoemon/demystify"
)

var (
	ErrInvalidLevel    = errors.New("invalid log level")
	ErrInvalidEncoding = errors.New("invalid log encoding")
	ErrInvalidFrames   = errors.New("maxFrames must not be negative")
)

// Config is the logger configuration.
type Config struct {
	// Level is the minimum enabled level (debug, info, warn, error).
	Level string `yaml:"level" default:"info"`
	// Encoding is json or console.
	Encoding string `yaml:"encoding" default:"json"`
	// Development enables zap's development mode.
	Development bool `yaml:"development"`
	// StacktraceLevel is the level from which zap captures a stack for
	// every entry.
	StacktraceLevel string `yaml:"stacktraceLevel" default:"error"`
	// OutputPaths are zap sink URLs or file paths.
	OutputPaths []string `yaml:"outputPaths" default:"[\"stderr\"]"`
	// Demystify configures the stack trace enricher.
	Demystify DemystifyConfig `yaml:"demystify"`
}

// DemystifyConfig configures the stack trace enricher.
type DemystifyConfig struct {
	Enabled         bool `yaml:"enabled" default:"true"`
	RuntimeFrames   bool `yaml:"runtimeFrames"`
	FullPackagePath bool `yaml:"fullPackagePath"`
	MaxFrames       int  `yaml:"maxFrames"`
	// EntryStack also rewrites the stack zap attaches at StacktraceLevel.
	EntryStack bool `yaml:"entryStack" default:"true"`
}

// Default returns the configuration with all defaults applied.
func Default() Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(err)
	}
	return c
}

// UnmarshalYAML applies defaults before decoding so that omitted keys keep
// their default values.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	if err := defaults.Set(c); err != nil {
		return err
	}
	type plain Config
	return value.Decode((*plain)(c))
}

// Parse decodes and validates a YAML configuration.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("failed to parse logging config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads the configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read logging config: %w", err)
	}
	return Parse(data)
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, c.Level)
	}
	if _, err := zapcore.ParseLevel(c.StacktraceLevel); err != nil {
		return fmt.Errorf("%w: stacktraceLevel %q", ErrInvalidLevel, c.StacktraceLevel)
	}
	switch c.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidEncoding, c.Encoding)
	}
	if c.Demystify.MaxFrames < 0 {
		return ErrInvalidFrames
	}
	return nil
}

// Options translates the enricher configuration.
func (c DemystifyConfig) Options() []demystify.Option {
	var opts []demystify.Option
	if c.RuntimeFrames {
		opts = append(opts, demystify.WithRuntimeFrames())
	}
	if c.FullPackagePath {
		opts = append(opts, demystify.WithFullPackagePath())
	}
	if c.MaxFrames > 0 {
		opts = append(opts, demystify.WithMaxFrames(c.MaxFrames))
	}
	if c.EntryStack {
		opts = append(opts, demystify.WithEntryStack())
	}
	return opts
}
