package logging

import (
	"go.uber.org/zap/zapcore"
)

// NewMultiCore tees entries to the console and, when file is non-nil, to a
// JSON file. The console uses coloured text in development and JSON
// otherwise; the file is always JSON.
func NewMultiCore(level zapcore.LevelEnabler, console, file zapcore.WriteSyncer, isDev bool) zapcore.Core {
	var consoleEncoder zapcore.Encoder
	if isDev {
		consoleEncoder = zapcore.NewConsoleEncoder(NewConsoleEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(NewEncoderConfig())
	}

	cores := []zapcore.Core{zapcore.NewCore(consoleEncoder, console, level)}
	if file != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(NewEncoderConfig()), file, level))
	}
	return zapcore.NewTee(cores...)
}
