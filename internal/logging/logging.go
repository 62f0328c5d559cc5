// Package logging builds the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/config"
)

// zoneFormatter renders JSON lines with the timestamp in a fixed location, so access
// logs, migration logs and service logs share the same "ts" field.
type zoneFormatter struct {
	json *logrus.JSONFormatter
	loc  *time.Location
}

func (f *zoneFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.In(f.loc)
	return f.json.Format(e)
}

// New returns a JSON logger writing to stdout, or to a rotating file when cfg.File is set.
func New(cfg config.LogConfig, loc *time.Location) *logrus.Logger {
	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
	}
	return NewWithWriter(out, cfg.Level, loc)
}

// NewWithWriter is New with an explicit sink; tests use it with a buffer.
func NewWithWriter(w io.Writer, level string, loc *time.Location) *logrus.Logger {
	if loc == nil {
		loc = time.UTC
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&zoneFormatter{
		loc: loc,
		json: &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "ts",
			},
		},
	})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// Discard returns a logger that drops everything. Used as a default in constructors
// and tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
