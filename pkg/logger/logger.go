package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var log = zap.NewNop()

// Options controla nivel y salida opcional a fichero rotado.
type Options struct {
	Level      string // debug, info, warn, error
	FilePath   string // vacío = solo stdout
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init inicializa el logger global
func Init(opts Options) error {
	level := zap.NewAtomicLevel()
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return err
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts" // timestamp
	encCfg.MessageKey = "msg"
	encCfg.LevelKey = "level"
	encCfg.CallerKey = "caller"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
	}

	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o755); err != nil {
			return err
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    valueOr(opts.MaxSizeMB, 100),
			MaxBackups: valueOr(opts.MaxBackups, 10),
			MaxAge:     valueOr(opts.MaxAgeDays, 30),
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotator), level))
	}

	log = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return nil
}

func valueOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// Sugar retorna un logger más “friendly” para usar con printf-like
func Sugar() *zap.SugaredLogger {
	return log.Sugar()
}

// Logger retorna el logger estructurado
func Logger() *zap.Logger {
	return log
}

// Sync vacía los buffers pendientes; llamar al salir.
func Sync() {
	_ = log.Sync()
}
