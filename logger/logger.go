package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	projectLogger *logrus.Logger
	once          sync.Once
)

// GetProjectLogger returns the shared project logger.
func GetProjectLogger() *logrus.Logger {
	once.Do(func() {
		projectLogger = logrus.New()
		projectLogger.Out = os.Stderr
		projectLogger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	})
	return projectLogger
}

// SetLevel adjusts the verbosity of the project logger.
func SetLevel(level logrus.Level) {
	GetProjectLogger().SetLevel(level)
}
