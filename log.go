package ble

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the leveled logger the stack writes to. Components derive child
// loggers tagged with their subsystem via ChildLogger.
type Logger interface {
	Info(...interface{})
	Debug(...interface{})
	Error(...interface{})
	Warn(...interface{})

	Infof(string, ...interface{})
	Debugf(string, ...interface{})
	Errorf(string, ...interface{})
	Warnf(string, ...interface{})

	ChildLogger(tags map[string]interface{}) Logger
}

var (
	logger   Logger
	loggerMu sync.Mutex
)

// SetLogger replaces the package logger.
func SetLogger(l Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

// GetLogger returns the package logger, building the logrus-backed default
// on first use.
func GetLogger() Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		logger = newDefaultLogger(logrus.InfoLevel)
	}
	return logger
}

// SetLogLevelDebug raises the default logger to debug level.
func SetLogLevelDebug() {
	l := GetLogger()
	if lg, ok := l.(*defaultLogger); ok {
		lg.Entry.Logger.SetLevel(logrus.DebugLevel)
		return
	}
	l.Error("non-default logger, don't know how to set level")
}

type defaultLogger struct {
	*logrus.Entry
}

func newDefaultLogger(level logrus.Level) Logger {
	l := &logrus.Logger{
		Formatter: &logrus.TextFormatter{DisableTimestamp: true},
		Level:     level,
		Out:       os.Stderr,
		Hooks:     make(logrus.LevelHooks),
	}
	return &defaultLogger{Entry: l.WithFields(map[string]interface{}{})}
}

func (d *defaultLogger) ChildLogger(tags map[string]interface{}) Logger {
	return &defaultLogger{d.Entry.WithFields(tags)}
}
