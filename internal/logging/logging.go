// Package logging builds the logger shared by the CLI and the web server.
// Records are written by zap; callers see a *slog.Logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps "debug", "info", "warn" and "error" to zap levels.
func ParseLevel(s string) (zapcore.Level, error) {
	l, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || l < zapcore.DebugLevel || l > zapcore.ErrorLevel {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// New returns a logger writing to w. format is "text" or "json".
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.MessageKey = "msg"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeDuration = zapcore.StringDurationEncoder

	var enc zapcore.Encoder
	switch strings.ToLower(format) {
	case "", "text":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), l)
	return slog.New(zapslog.NewHandler(core)), nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(zapslog.NewHandler(zapcore.NewNopCore()))
}
