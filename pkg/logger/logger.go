package logger

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log   *zap.SugaredLogger
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	log = newLogger(level).Sugar()
}

func newLogger(lvl zap.AtomicLevel) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		lvl,
	)
	return zap.New(core)
}

func SetDebug() {
	level.SetLevel(zapcore.DebugLevel)
}

// SetLevel parses a level name such as "debug" or "warn". Unknown names leave the level unchanged.
func SetLevel(name string) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return errors.Wrapf(err, "invalid log level %q", name)
	}
	level.SetLevel(lvl)
	return nil
}

// With returns a child logger carrying the given key/value pairs.
func With(args ...interface{}) *zap.SugaredLogger {
	return log.With(args...)
}

func Debug(msg string) {
	log.Debug(msg)
}

func Debugf(template string, args ...interface{}) {
	log.Debugf(template, args...)
}

func Info(msg string) {
	log.Info(msg)
}

func Infof(template string, args ...interface{}) {
	log.Infof(template, args...)
}

func Warnf(template string, args ...interface{}) {
	log.Warnf(template, args...)
}

func Error(err error) {
	log.Error(err.Error())
}

func Errorf(template string, args ...interface{}) {
	log.Errorf(template, args...)
}

func Sync() {
	_ = log.Sync()
}
