// Package logger builds the logr.Logger used throughout gdbmi, backed by zap.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	zapr "github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Options configures New.
type Options struct {
	// Level is debug, info, warn or error. Debug also enables logr V(1)
	// and V(2) messages.
	Level string
	// Format is json, console or auto. Auto picks console when Output is a
	// terminal.
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New creates a logger, returning a flush function and error
func New(opts Options) (logr.Logger, func(), error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return logr.Discard(), func() {}, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var enc zapcore.Encoder
	switch format := resolveFormat(opts.Format, out); format {
	case "json":
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	case "console":
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if f, ok := out.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
			cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		enc = zapcore.NewConsoleEncoder(cfg)
	default:
		return logr.Discard(), func() {}, fmt.Errorf("unknown log format %q", format)
	}

	zapLogger := zap.New(zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(out)), level))
	flushFn := func() {
		_ = zapLogger.Sync() // Best effort
	}
	return zapr.NewLogger(zapLogger), flushFn, nil
}

func parseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		// logr V(n) maps to zap level -n.
		return zapcore.Level(-2), nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

func resolveFormat(format string, out io.Writer) string {
	format = strings.ToLower(format)
	if format != "" && format != "auto" {
		return format
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "console"
	}
	return "json"
}
