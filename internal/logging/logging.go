// Package logging wires zap for the conversion engine: the CLI, the HTTP
// server, and the rate cache service all log through the same global
// logger so a correlation ID attached to one rate-cache fetch shows up
// consistently across every line it touches.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the process-wide structured logger, set by Initialize.
	Logger *zap.Logger

	// Sugar is Logger's sugared form, for call sites that don't need
	// strongly-typed fields.
	Sugar *zap.SugaredLogger
)

// Config controls where and how the engine logs. It is embedded in
// internal/config.Config and loaded the same way as everything else there.
type Config struct {
	// Level is the minimum level that reaches the sink: "debug", "info",
	// "warn", or "error".
	Level string `json:"level"`

	// Format selects the encoder: "console" for human-readable output
	// during development, "json" for anything ingested by log tooling.
	Format string `json:"format"`

	// Output is "stdout", "stderr", or a file path.
	Output string `json:"output"`

	// Development enables stack traces on Error and above.
	Development bool `json:"development"`
}

// DefaultConfig matches what a bare CLI invocation with no config file
// produces: human-readable, to stderr, at info level.
func DefaultConfig() Config {
	return Config{
		Level:       "info",
		Format:      "console",
		Output:      "stderr",
		Development: false,
	}
}

// Initialize builds the global Logger/Sugar from cfg. Called once from
// each entrypoint (cmd/cli/cmd's initConfig, cmd/server's main) before any
// detector, converter, or rate-cache call happens.
func Initialize(cfg Config) error {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var encoder zapcore.Encoder
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg.Format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	var writeSyncer zapcore.WriteSyncer
	switch cfg.Output {
	case "stdout":
		writeSyncer = zapcore.AddSync(os.Stdout)
	case "stderr":
		writeSyncer = zapcore.AddSync(os.Stderr)
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		writeSyncer = zapcore.AddSync(file)
	}

	core := zapcore.NewCore(encoder, writeSyncer, level)

	if cfg.Development {
		Logger = zap.New(core, zap.Development(), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		Logger = zap.New(core, zap.AddCaller())
	}

	Sugar = Logger.Sugar()
	return nil
}

// InitializeDefault sets up the logger before any config has loaded, so
// package-level Debug/Info/... calls never hit a nil Logger.
func InitializeDefault() {
	_ = Initialize(DefaultConfig())
}

// Sync flushes buffered log entries. Call before process exit.
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// With returns a logger scoped with additional fields, e.g. a rate-cache
// pair being fetched.
func With(fields ...zap.Field) *zap.Logger {
	return Logger.With(fields...)
}

// WithCorrelationID scopes a logger to a single rate-fetch attempt so its
// cache-miss, primary-failure, and fallback lines share one identifier
// across the call, per core/ratecache's per-fetch correlation ID.
func WithCorrelationID(id string) *zap.Logger {
	return With(zap.String("correlation_id", id))
}

// Debug logs at debug level on the global logger.
func Debug(msg string, fields ...zap.Field) {
	Logger.Debug(msg, fields...)
}

// Info logs at info level on the global logger.
func Info(msg string, fields ...zap.Field) {
	Logger.Info(msg, fields...)
}

// Warn logs at warn level on the global logger.
func Warn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, fields...)
}

// Error logs at error level on the global logger.
func Error(msg string, fields ...zap.Field) {
	Logger.Error(msg, fields...)
}

// Fatal logs at fatal level on the global logger and exits.
func Fatal(msg string, fields ...zap.Field) {
	Logger.Fatal(msg, fields...)
}

func init() {
	InitializeDefault()
}
