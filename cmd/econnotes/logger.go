package main

import (
	"io"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger writes human-readable logs to w: info by default, debug with
// verbose, errors only with quiet. quiet wins.
func newLogger(w io.Writer, f commonFlags) *zap.Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	switch {
	case f.quiet:
		level.SetLevel(zapcore.ErrorLevel)
	case f.verbose:
		level.SetLevel(zapcore.DebugLevel)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}

// setMaxProcs matches GOMAXPROCS to the container CPU quota.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func setMaxProcs(log *zap.Logger) {
	_, _ = maxprocs.Set(maxprocs.Logger(log.Sugar().Debugf))
}
