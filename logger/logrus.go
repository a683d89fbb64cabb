package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	rotateMaxSize    = 30 // MB
	rotateMaxAge     = 365
	rotateMaxBackups = 10
)

// Config for the process logger.
type Config struct {
	File  string
	Level string
}

// New builds the logrus logger. When a file is configured the output goes
// to stdout and a size-rotated file, otherwise stdout only.
func New(cfg Config) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})

	if cfg.File != "" {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    rotateMaxSize,
			MaxAge:     rotateMaxAge,
			MaxBackups: rotateMaxBackups,
			LocalTime:  true,
			Compress:   true,
		}))
	}
	return log
}
