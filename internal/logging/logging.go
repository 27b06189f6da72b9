package logging

import (
	"github.com/pion/logging"
)

var loggerFactory logging.LoggerFactory = logging.NewDefaultLoggerFactory()

// NewLogger returns a scoped logger from the current factory.
func NewLogger(scope string) logging.LeveledLogger {
	return loggerFactory.NewLogger(scope)
}

// SetLoggerFactory replaces the factory used for new scopes. Loggers already
// handed out keep their original factory.
func SetLoggerFactory(factory logging.LoggerFactory) {
	if factory == nil {
		return
	}
	loggerFactory = factory
}
