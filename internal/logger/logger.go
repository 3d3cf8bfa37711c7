// Package logger builds the process-wide zap logger.
package logger

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"docfill/internal/config"
)

// New builds a logger writing to stdout and, when cfg.FilePath is set, to a rotated file.
// Timestamps are rendered in loc.
func New(cfg config.LogConfig, loc *time.Location) *zap.Logger {
	var sinks []io.Writer
	sinks = append(sinks, os.Stdout)
	if cfg.FilePath != "" {
		sinks = append(sinks, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
	}
	return NewWithWriter(io.MultiWriter(sinks...), cfg, loc)
}

// NewWithWriter builds a logger writing to w. Used by tests to capture output.
func NewWithWriter(w io.Writer, cfg config.LogConfig, loc *time.Location) *zap.Logger {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if cfg.Level != "" {
		if l, err := zapcore.ParseLevel(cfg.Level); err == nil {
			level.SetLevel(l)
		}
	}

	encCfg := EncoderConfig(loc)
	var enc zapcore.Encoder
	if cfg.JSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zap.New(core, zap.AddCaller())
}

// EncoderConfig uses ts/level/msg keys with RFC3339Nano timestamps in loc.
func EncoderConfig(loc *time.Location) zapcore.EncoderConfig {
	if loc == nil {
		loc = time.UTC
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.MessageKey = "msg"
	cfg.LevelKey = "level"
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.In(loc).Format(time.RFC3339Nano))
	}
	return cfg
}
