package logging

import (
	"io"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tomoemon/demystify"
)

// ZapConfig translates c into a zap.Config.
func (c Config) ZapConfig() zap.Config {
	var zapCfg zap.Config
	if c.Development {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	if c.Encoding != "" {
		zapCfg.Encoding = c.Encoding
	}
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if len(c.OutputPaths) > 0 {
		zapCfg.OutputPaths = c.OutputPaths
	}
	// Stacks are attached through zap.AddStacktrace in Build.
	zapCfg.DisableStacktrace = true
	return zapCfg
}

// Build creates a zap logger. Extra options are applied after the
// enricher, so a core wrapped by opts sees demystified events.
func (c Config) Build(opts ...zap.Option) (*zap.Logger, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c.ZapConfig().Build(append(c.options(), opts...)...)
}

// BuildWriter creates a zap logger that writes to w instead of the
// configured output paths.
func (c Config) BuildWriter(w io.Writer, opts ...zap.Option) (*zap.Logger, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	zapCfg := c.ZapConfig()
	var enc zapcore.Encoder
	if zapCfg.Encoding == "console" {
		enc = zapcore.NewConsoleEncoder(zapCfg.EncoderConfig)
	} else {
		enc = zapcore.NewJSONEncoder(zapCfg.EncoderConfig)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), zapCfg.Level)
	all := c.options()
	if !zapCfg.DisableCaller {
		all = append(all, zap.AddCaller())
	}
	return zap.New(core, append(all, opts...)...), nil
}

func (c Config) options() []zap.Option {
	stackLevel, _ := zapcore.ParseLevel(c.StacktraceLevel)
	opts := []zap.Option{zap.AddStacktrace(stackLevel)}
	if c.Demystify.Enabled {
		opts = append(opts, demystify.WithDemystifiedStackTraces(c.Demystify.Options()...))
	}
	return opts
}

// NewLogger creates a logr.Logger backed by zap.
func NewLogger(c Config) (logr.Logger, error) {
	zapLog, err := c.Build()
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zapLog), nil
}

// NewLoggerFromZap wraps an existing zap logger, for instance one built with
// custom cores in tests.
func NewLoggerFromZap(l *zap.Logger) logr.Logger {
	return zapr.NewLogger(l)
}
