// Package logs configures where node logs are written.
package logs

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const logFilePermissions = 0600

func addLogWriter(w io.Writer) {
	mw := io.MultiWriter(logrus.StandardLogger().Out, w)
	logrus.SetOutput(mw)
}

// ConfigurePersistentLogging appends every log line to logFileName as well as to the
// current output.
func ConfigurePersistentLogging(logFileName string) error {
	logrus.WithField("logFileName", logFileName).Info("Logs will be made persistent")
	f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermissions) // #nosec G304
	if err != nil {
		return err
	}
	addLogWriter(f)
	logrus.Info("File logging initialized")
	return nil
}
