package covlog

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// Conf contains log configuration.
type Conf struct {
	Level  string
	Format string
}

// Initialize sets the log level and output format for the whole process.
func Initialize(_ context.Context, conf *Conf) {
	switch conf.Level {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	case "warning":
		logrus.SetLevel(logrus.WarnLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}

	switch conf.Format {
	case "discard":
		logrus.SetOutput(io.Discard)
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
}

// IsDebug tells whether the debug level is active.
func IsDebug() bool {
	return logrus.GetLevel() >= logrus.DebugLevel
}
