package logging

import (
	"os"

	"go.uber.org/zap/zapcore"
)

// StderrWriter returns the console sink. Summaries go to stdout, so log lines
// are kept on stderr.
func StderrWriter() zapcore.WriteSyncer {
	return zapcore.Lock(os.Stderr)
}

// NewMultiCore tees console output with an optional JSON file core.
//
// The console uses the colored human-readable encoder in development mode and
// JSON otherwise. A nil fileWriter yields a console-only core.
func NewMultiCore(level zapcore.Level, consoleWriter, fileWriter zapcore.WriteSyncer, isDev bool) zapcore.Core {
	var consoleEncoder zapcore.Encoder
	if isDev {
		consoleEncoder = zapcore.NewConsoleEncoder(NewConsoleEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(NewEncoderConfig())
	}
	consoleCore := zapcore.NewCore(consoleEncoder, consoleWriter, level)

	if fileWriter == nil {
		return consoleCore
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(NewEncoderConfig()),
		fileWriter,
		level,
	)
	return zapcore.NewTee(consoleCore, fileCore)
}
