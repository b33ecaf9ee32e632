package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Dua logger terpisah: info ke stdout, error ke stderr, supaya log toko
// gampang dipilah di supervisor/systemd.
var (
	InfoLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

// InitLogger menyiapkan kedua logger. Level bisa dinaikkan lewat env
// LOG_LEVEL (debug/info/warn); default info.
func InitLogger() {
	InfoLogger = logrus.New()
	InfoLogger.SetOutput(os.Stdout)

	ErrorLogger = logrus.New()
	ErrorLogger.SetOutput(os.Stderr)
	ErrorLogger.SetLevel(logrus.ErrorLevel)

	formatter := &logrus.TextFormatter{FullTimestamp: true}
	InfoLogger.SetFormatter(formatter)
	ErrorLogger.SetFormatter(formatter)

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if level, err := logrus.ParseLevel(raw); err == nil {
			InfoLogger.SetLevel(level)
			return
		}
	}
	InfoLogger.SetLevel(logrus.InfoLevel)
}
