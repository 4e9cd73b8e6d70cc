package utils

import "github.com/sirupsen/logrus"

// ExtendedLogger is the logging surface shared by every package in this module.
// pkg/logger provides the logrus-backed implementation.
type ExtendedLogger interface {
	Infof(format string, v ...any)
	Errorf(format string, v ...any)

	Info(args ...interface{})
	Error(args ...interface{})
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	// Structured logging methods
	WithField(key string, value interface{}) *logrus.Entry
	WithFields(fields logrus.Fields) *logrus.Entry
	WithError(err error) *logrus.Entry

	Close() error
}
