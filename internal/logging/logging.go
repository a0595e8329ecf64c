// Package logging sets up the logrus logger used for report narration.
// Narration lines are printed bare so they read like a report, not a log.
package logging

import (
	"bytes"
	"io"

	"github.com/sirupsen/logrus"
)

// MessageFormatter writes only the entry message and a newline. Entries at
// warning level or above are prefixed with the upper-case level name.
type MessageFormatter struct{}

// Format implements logrus.Formatter.
func (MessageFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	if e.Level <= logrus.WarnLevel {
		b.WriteString(levelPrefix(e.Level))
	}
	b.WriteString(e.Message)
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelPrefix(l logrus.Level) string {
	switch l {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		return "ERROR: "
	case logrus.WarnLevel:
		return "WARNING: "
	}
	return ""
}

// New returns a logger writing to w. verbose enables Debug entries.
func New(w io.Writer, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(MessageFormatter{})
	l.SetLevel(logrus.InfoLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	return New(io.Discard, false)
}
