package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger implements utils.ExtendedLogger on top of logrus.
// Stdout is never used as a sink: it carries the JSON result document.
type Logger struct {
	logger *logrus.Logger
	file   *os.File
}

// CreateLogger creates a new logger instance with specified configuration.
// When logFile is empty, log lines go to out (stderr when out is nil).
func CreateLogger(logFile string, level string, format string, out io.Writer) (Logger, error) {
	logrusLogger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return Logger{}, fmt.Errorf("invalid log level: %w", err)
	}
	logrusLogger.SetLevel(logLevel)

	callerPrettyfier := func(f *runtime.Frame) (string, string) {
		filename := filepath.Base(f.File)
		return "", fmt.Sprintf("%s:%d", filename, f.Line)
	}

	switch strings.ToLower(format) {
	case "json":
		logrusLogger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:  time.RFC3339,
			CallerPrettyfier: callerPrettyfier,
		})
	case "text":
		logrusLogger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			TimestampFormat:  time.RFC3339,
			CallerPrettyfier: callerPrettyfier,
		})
	default:
		return Logger{}, fmt.Errorf("unsupported log format: %s", format)
	}

	logrusLogger.SetReportCaller(true)

	var file *os.File
	if logFile != "" {
		logDir := filepath.Dir(logFile)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return Logger{}, fmt.Errorf("failed to create log directory: %w", err)
		}

		//nolint:gosec // G304: logFile comes from configuration, not request input
		file, err = os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return Logger{}, fmt.Errorf("failed to open log file: %w", err)
		}
		logrusLogger.SetOutput(file)
	} else {
		if out == nil {
			out = os.Stderr
		}
		logrusLogger.SetOutput(out)
	}

	return Logger{
		logger: logrusLogger,
		file:   file,
	}, nil
}

// CreateDefaultLogger creates an info-level text logger on stderr.
func CreateDefaultLogger() Logger {
	logger, err := CreateLogger("", "info", "text", os.Stderr)
	if err != nil {
		return CreateDiscardLogger()
	}
	return logger
}

// CreateDiscardLogger returns a logger that drops everything. Used by tests.
func CreateDiscardLogger() Logger {
	logrusLogger := logrus.New()
	logrusLogger.SetOutput(io.Discard)
	return Logger{logger: logrusLogger}
}

func (l Logger) Infof(format string, v ...any) {
	l.logger.Infof(format, v...)
}

func (l Logger) Errorf(format string, v ...any) {
	l.logger.Errorf(format, v...)
}

func (l Logger) Info(args ...interface{}) {
	l.logger.Info(args...)
}

func (l Logger) Error(args ...interface{}) {
	l.logger.Error(args...)
}

func (l Logger) Debug(args ...interface{}) {
	l.logger.Debug(args...)
}

func (l Logger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

func (l Logger) Warn(args ...interface{}) {
	l.logger.Warn(args...)
}

func (l Logger) Warnf(format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

func (l Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.logger.WithField(key, value)
}

func (l Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.logger.WithFields(fields)
}

func (l Logger) WithError(err error) *logrus.Entry {
	return l.logger.WithError(err)
}

// Close closes the log file, if any.
func (l Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// IsInitialized returns true if the logger has been properly initialized
func (l Logger) IsInitialized() bool {
	return l.logger != nil
}
