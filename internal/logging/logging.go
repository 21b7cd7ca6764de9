// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Init sets the standard logger's output, level and formatter. Accepted
// levels are debug, info, warn and error; anything else means info. format
// is "json" or "text" (the default).
func Init(w io.Writer, level, format string) {
	logrus.SetOutput(w)
	logrus.SetLevel(ParseLevel(level))

	switch strings.ToLower(format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
		})
	}
}

// ParseLevel maps a config level name to a logrus level.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	}
	return logrus.InfoLevel
}
