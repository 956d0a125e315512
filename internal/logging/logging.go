package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a configured logger. Verbose mode uses human readable text
// output at debug level, otherwise JSON at info level. Logs go to stderr
// so stdout stays reserved for command output.
func New(verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.Out = os.Stderr

	if verbose {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}
