// Package logger is the ambient structured-logging wrapper the rest of this
// module reports shutdown-protocol tracing and absorbed cleanup failures
// through, grounded on the teacher codebase's own logrus-backed logger.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus entry. Methods are safe for concurrent use, since
// they simply delegate to logrus's own locking.
type Logger struct {
	entry *logrus.Entry
}

// New returns a Logger writing text-formatted entries to stderr at info
// level.
func New() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &Logger{entry: logrus.NewEntry(l)}
}

// WithField returns a Logger that attaches key/value to every subsequent
// entry, without mutating the receiver.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }
