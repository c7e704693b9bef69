package helpers

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a configured Logrus logger
func NewLogger(appName, env string) *logrus.Logger {
	return newLogger(os.Stdout, appName, env)
}

func newLogger(out io.Writer, appName, env string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logger.WithFields(logrus.Fields{"app": appName, "env": env}).Info("logger initialized")
	return logger
}

// LogError logs msg at error level with err attached under "error".
func LogError(logger logrus.FieldLogger, msg string, err error, fields logrus.Fields) {
	entry(logger, err, fields).Error(msg)
}

// LogWarn is LogError for best-effort failures that do not fail the request.
func LogWarn(logger logrus.FieldLogger, msg string, err error, fields logrus.Fields) {
	entry(logger, err, fields).Warn(msg)
}

func LogInfo(logger logrus.FieldLogger, msg string, fields logrus.Fields) {
	entry(logger, nil, fields).Info(msg)
}

func entry(logger logrus.FieldLogger, err error, fields logrus.Fields) logrus.FieldLogger {
	if fields == nil {
		fields = logrus.Fields{}
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	return logger.WithFields(fields)
}
