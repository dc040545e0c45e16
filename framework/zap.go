package framework

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// loggerWriter adapts a Logger to the io.Writer that a zap core writes encoded entries to.
type loggerWriter struct {
	base Logger
}

func (w loggerWriter) Write(p []byte) (int, error) {
	w.base.Println(strings.TrimRight(string(p), "\r\n"))
	return len(p), nil
}

// NewZapLogger returns a zap logger whose entries are written, one message per entry, to the
// given Logger. Timestamps are left out because a CapturingLogger adds its own.
//
// Components such as the browser facade take a *zap.Logger; a test scope hands them one built
// from its debug logger, so that everything a component logs ends up in that test's output.
func NewZapLogger(base Logger, level zapcore.LevelEnabler) *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	encoderConfig.CallerKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(loggerWriter{base}),
		level,
	)
	return zap.New(core)
}
