package core

// Structured logging setup, adapted from the teacher's main()
// bootstrap (virtual_machine.go), which installs a JSON formatter for
// production and a text formatter otherwise.

import "github.com/sirupsen/logrus"

// ConfigureLogging installs the engine-wide logrus formatter/level. json
// selects the production JSON formatter; otherwise a human-readable text
// formatter is used.
func ConfigureLogging(level string, json bool) {
	if json {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}
