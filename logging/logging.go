// Package logging provides the structured logging facility shared across the
// ETL pipeline. It is built on logrus, routing ERROR-level records to stderr
// and everything else to stdout so container log collectors can treat the
// two streams differently, following the same split the rest of the pack
// uses for its own services.
package logging

import (
	"bytes"
	"os"

	"github.com/sirupsen/logrus"
)

// streamSplitter routes already-formatted JSON log lines to stderr or stdout
// based on their level, without re-parsing the whole record.
type streamSplitter struct{}

func (streamSplitter) Write(p []byte) (int, error) {
	if bytes.Contains(p, []byte(`"level":"error"`)) {
		return os.Stderr.Write(p)
	}
	return os.Stdout.Write(p)
}

// New builds the package-wide logger. level is any logrus-parseable level
// string ("debug", "info", "warn", "error"); an unparseable value falls back
// to info.
func New(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "detail",
		},
	})
	logger.SetOutput(streamSplitter{})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	return logger
}

// ForSubprocess returns a logger entry pre-populated with the fields the
// subprocess framework attaches to every record per spec §6:
// category, subprocess, date.
func ForSubprocess(logger *logrus.Logger, category, subprocess, date string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"category":   category,
		"subprocess": subprocess,
		"date":       date,
	})
}
