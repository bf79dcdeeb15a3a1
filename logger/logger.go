package logger

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

const application = "formwizard"

// New builds the service logger. Output goes to outputFile when it can be
// opened, stderr otherwise. Production environments log JSON.
func New(level, outputFile, environment string) logrus.FieldLogger {
	logger := logrus.New()

	if outputFile != "" {
		if file, err := os.OpenFile(filepath.Clean(outputFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640); err == nil {
			logger.SetOutput(file)
		} else {
			logger.Infof("Failed to open output file %s. Will use stderr. %s", outputFile, err.Error())
		}
	}

	if environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if lvl, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	} else if level != "" {
		logger.Warnf("Unknown log level %q, using %s", level, logger.GetLevel())
	}

	return logger.WithFields(logrus.Fields{
		"application": application,
		"environment": environment,
	})
}
