package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CusTimeEncoder creates a time encoder that adds the prefix and formats the time.
func CusTimeEncoder(config Config) zapcore.TimeEncoder {
	return func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(config.Prefix + t.Format(config.TimeFormat))
	}
}

// GetEncoder returns a zapcore.Encoder based on the config format.
func GetEncoder(config Config) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    config.ZapEncodeLevel(),
		EncodeTime:     CusTimeEncoder(config),
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	if config.Format == "json" {
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}

// exactLevel enables only the given level so each file receives one level.
func exactLevel(level zapcore.Level) zap.LevelEnablerFunc {
	return func(l zapcore.Level) bool {
		return l == level
	}
}

// getZapCores builds the terminal core and, when Director is set, one file
// core per level at or above config.Level.
func getZapCores(config Config, terminal zapcore.WriteSyncer) []zapcore.Core {
	minLevel := config.TransportLevel()
	encoder := GetEncoder(config)

	cores := make([]zapcore.Core, 0, 8)
	if config.LogInTerminal && terminal != nil {
		cores = append(cores, zapcore.NewCore(encoder, terminal, minLevel))
	}
	if config.Director == "" {
		return cores
	}
	for level := minLevel; level <= zapcore.FatalLevel; level++ {
		w := newLevelWriter(config, level.String())
		registerWriter(w)
		cores = append(cores, zapcore.NewCore(encoder.Clone(), zapcore.AddSync(w), exactLevel(level)))
	}
	return cores
}
