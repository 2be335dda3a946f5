// Package log is a thin facade over logrus that stays silent unless logs.write is enabled.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/lectern-cli/lectern/filesystem"
	"github.com/lectern-cli/lectern/key"
	"github.com/lectern-cli/lectern/where"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	enabled bool
	logger  = logrus.New()
)

func init() {
	logger.SetOutput(io.Discard)
}

// Setup opens today's log file and applies the configured format and level.
// When logs.write is false every emission below is dropped.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	path := filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)

	if viper.GetBool(key.LogsJson) {
		logger.SetFormatter(&logrus.JSONFormatter{PrettyPrint: true})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	}

	level, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return nil
}

// Enabled reports whether log emissions reach the log file.
func Enabled() bool {
	return enabled
}

// Entry carries structured fields for a single emission.
type Entry struct {
	entry *logrus.Entry
}

// Fields is an alias kept so callers never import logrus directly.
type Fields = logrus.Fields

// WithField starts a structured entry.
func WithField(k string, v any) *Entry {
	return &Entry{entry: logger.WithField(k, v)}
}

// WithFields starts a structured entry with several fields.
func WithFields(fields Fields) *Entry {
	return &Entry{entry: logger.WithFields(fields)}
}

// WithError starts a structured entry carrying err.
func WithError(err error) *Entry {
	return &Entry{entry: logger.WithError(err)}
}

func (e *Entry) WithField(k string, v any) *Entry {
	return &Entry{entry: e.entry.WithField(k, v)}
}

func (e *Entry) WithError(err error) *Entry {
	return &Entry{entry: e.entry.WithError(err)}
}

func (e *Entry) Error(args ...any) {
	if enabled {
		e.entry.Error(args...)
	}
}

func (e *Entry) Warn(args ...any) {
	if enabled {
		e.entry.Warn(args...)
	}
}

func (e *Entry) Info(args ...any) {
	if enabled {
		e.entry.Info(args...)
	}
}

func (e *Entry) Debug(args ...any) {
	if enabled {
		e.entry.Debug(args...)
	}
}

func (e *Entry) Infof(format string, args ...any) {
	if enabled {
		e.entry.Infof(format, args...)
	}
}

func (e *Entry) Debugf(format string, args ...any) {
	if enabled {
		e.entry.Debugf(format, args...)
	}
}

func Error(args ...any) {
	if enabled {
		logger.Error(args...)
	}
}

func Errorf(format string, args ...any) {
	if enabled {
		logger.Errorf(format, args...)
	}
}

func Warn(args ...any) {
	if enabled {
		logger.Warn(args...)
	}
}

func Warnf(format string, args ...any) {
	if enabled {
		logger.Warnf(format, args...)
	}
}

func Info(args ...any) {
	if enabled {
		logger.Info(args...)
	}
}

func Infof(format string, args ...any) {
	if enabled {
		logger.Infof(format, args...)
	}
}

func Debug(args ...any) {
	if enabled {
		logger.Debug(args...)
	}
}

func Debugf(format string, args ...any) {
	if enabled {
		logger.Debugf(format, args...)
	}
}

func Tracef(format string, args ...any) {
	if enabled {
		logger.Tracef(format, args...)
	}
}
