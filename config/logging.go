package config

import (
	"github.com/sirupsen/logrus"
)

func SetupLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		DisableQuote:     true,
		DisableSorting:   false,
		PadLevelText:     true,
		QuoteEmptyFields: true,
	})
	return nil
}
