// Package log is the zap-backed structured logger shared by the planner
// components and the command line tools.
package log

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zeusync/strikeplan/internal/core/systems/physics"
)

var _ Log = (*Logger)(nil)

// Config selects the level and encoding.
type Config struct {
	Level string `json:"level" yaml:"level"`
	// Development switches to the human readable console encoder.
	Development bool `json:"development" yaml:"development"`
	// Sampled drops repeated messages after the first 100 per second. The
	// agent logs every tick, so this is on in production.
	Sampled bool     `json:"sampled" yaml:"sampled"`
	Outputs []string `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

func DefaultConfig() Config {
	return Config{Level: "info", Sampled: true}
}

type Logger struct {
	zapLogger *zap.Logger
	level     zap.AtomicLevel
}

// New builds a logger writing to stderr, or to cfg.Outputs when set.
func New(cfg Config) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	atomic := zap.NewAtomicLevelAt(toZapLevel(level))

	encoderConfig := zap.NewProductionEncoderConfig()
	encoding := "json"
	if cfg.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoding = "console"
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	outputs := cfg.Outputs
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	config := zap.Config{
		Level:            atomic,
		Development:      cfg.Development,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	if cfg.Sampled {
		config.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 100}
	}

	zapLogger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &Logger{zapLogger: zapLogger, level: atomic}, nil
}

// FromZap wraps an existing zap logger. Its level is fixed by the core the
// zap logger was built with; SetLevel can only raise it.
func FromZap(z *zap.Logger) *Logger {
	return &Logger{zapLogger: z, level: zap.NewAtomicLevelAt(zap.DebugLevel)}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zapLogger: zap.NewNop(), level: zap.NewAtomicLevelAt(zap.ErrorLevel)}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error { return l.zapLogger.Sync() }

// Zap exposes the underlying logger for libraries that take one.
func (l *Logger) Zap() *zap.Logger { return l.zapLogger }

func (l *Logger) Log(level Level, msg string, fields ...Field) {
	zl := toZapLevel(level)
	if !l.level.Enabled(zl) {
		return
	}
	l.zapLogger.Log(zl, msg, toZapFields(fields...)...)
}

func (l *Logger) Debug(msg string, fields ...Field) { l.Log(LevelDebug, msg, fields...) }

func (l *Logger) Info(msg string, fields ...Field) { l.Log(LevelInfo, msg, fields...) }

func (l *Logger) Warn(msg string, fields ...Field) { l.Log(LevelWarn, msg, fields...) }

func (l *Logger) Error(msg string, fields ...Field) { l.Log(LevelError, msg, fields...) }

// With returns a child logger sharing this logger's level.
func (l *Logger) With(fields ...Field) Log {
	return &Logger{
		zapLogger: l.zapLogger.With(toZapFields(fields...)...),
		level:     l.level,
	}
}

func (l *Logger) SetLevel(level Level) { l.level.SetLevel(toZapLevel(level)) }

func (l *Logger) GetLevel() Level { return fromZapLevel(l.level.Level()) }

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zap.DebugLevel
	case LevelWarn:
		return zap.WarnLevel
	case LevelError:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func fromZapLevel(level zapcore.Level) Level {
	switch level {
	case zap.DebugLevel:
		return LevelDebug
	case zap.WarnLevel:
		return LevelWarn
	case zap.ErrorLevel, zap.DPanicLevel, zap.PanicLevel, zap.FatalLevel:
		return LevelError
	default:
		return LevelInfo
	}
}

type vec physics.Vec3

func (v vec) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddFloat64("x", v.X)
	enc.AddFloat64("y", v.Y)
	enc.AddFloat64("z", v.Z)
	return nil
}

func toZapFields(fields ...Field) []zap.Field {
	zapFields := make([]zap.Field, len(fields))
	for i, f := range fields {
		switch f.Type {
		case BoolType:
			zapFields[i] = zap.Bool(f.Key, f.Value.(bool))
		case DurationType:
			zapFields[i] = zap.Duration(f.Key, f.Value.(time.Duration))
		case Float64Type:
			zapFields[i] = zap.Float64(f.Key, f.Value.(float64))
		case IntType:
			zapFields[i] = zap.Int(f.Key, f.Value.(int))
		case Int64Type:
			zapFields[i] = zap.Int64(f.Key, f.Value.(int64))
		case StringType:
			zapFields[i] = zap.String(f.Key, f.Value.(string))
		case Uint64Type:
			zapFields[i] = zap.Uint64(f.Key, f.Value.(uint64))
		case ErrorType:
			err, _ := f.Value.(error)
			zapFields[i] = zap.NamedError(f.Key, err)
		case VecType:
			zapFields[i] = zap.Object(f.Key, vec(f.Value.(physics.Vec3)))
		default:
			zapFields[i] = zap.Any(f.Key, f.Value)
		}
	}
	return zapFields
}
