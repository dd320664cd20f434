package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide diagnostic logger. User-facing progress goes to
// stderr directly; this logger carries warnings and debug detail.
var Log = New(os.Stderr)

// New returns a logger writing text records to w at info level.
func New(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLevel parses level ("debug", "info", "warn", ...) and applies it to Log.
// Unknown levels leave the current level untouched and return the parse error.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Log.SetLevel(lvl)
	return nil
}
