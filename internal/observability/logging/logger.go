package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const fileName = "resume_router.log"

type Options struct {
	Service string
	Level   string
	// Dir holds the rotating log file. Empty disables file output.
	Dir   string
	Debug bool
	// Stderr moves console output off stdout, for commands whose stdout is data.
	Stderr bool
}

// New tees a console core and a rotating JSON file core behind a slog front end.
// The returned func flushes buffered entries and should run before exit.
func New(opts Options) (*slog.Logger, func()) {
	level := parseLevel(opts.Level)
	if opts.Debug && level > zapcore.DebugLevel {
		level = zapcore.DebugLevel
	}
	enabler := zap.NewAtomicLevelAt(level)

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	console := os.Stdout
	if opts.Stderr {
		console = os.Stderr
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(console), enabler),
	}

	if dir := strings.TrimSpace(opts.Dir); dir != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(newRotatingFile(dir)),
			enabler,
		))
	}

	core := zapcore.NewTee(cores...)
	logger := slog.New(zapslog.NewHandler(core, zapslog.WithCaller(opts.Debug)))
	if opts.Service != "" {
		logger = logger.With("service", opts.Service)
	}
	return logger, func() { _ = core.Sync() }
}

func newRotatingFile(dir string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, fileName),
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		Compress:   false,
	}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
