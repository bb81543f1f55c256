package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu     sync.RWMutex
	global = zap.NewNop()
)

// Init строит глобальный логгер. Если задан LOG_FILE, логи дополнительно
// пишутся в файл с ротацией.
func Init(isDev bool) error {
	return InitWithFile(isDev, os.Getenv("LOG_FILE"))
}

func InitWithFile(isDev bool, filename string) error {
	var cfg zap.Config
	if isDev {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return err
	}

	if filename != "" {
		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   filename,
				MaxSize:    64,
				MaxBackups: 7,
				MaxAge:     30,
				Compress:   true,
			}),
			cfg.Level,
		)
		l = l.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, fileCore)
		}))
	}

	mu.Lock()
	global = l
	mu.Unlock()
	zap.ReplaceGlobals(l)
	return nil
}

func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func Sync() {
	_ = L().Sync()
}
