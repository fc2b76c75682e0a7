// Package applog builds the application's zap logger: a console core for
// interactive use plus an optional daily file core under the configured
// log directory.
package applog

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLogDirPerm = 0o755

// TodayFilename returns the daily log filename.
func TodayFilename(now time.Time) string {
	return "paragraf_" + now.Format("2006-01-02") + ".log"
}

// New builds the logger. dir may be empty to disable file logging;
// dev switches to the development encoder and debug level.
func New(dir string, dev bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if dev {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleEnc := zapcore.NewConsoleEncoder(encCfg)
	if !dev {
		consoleEnc = zapcore.NewJSONEncoder(encCfg)
	}
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEnc, zapcore.Lock(os.Stdout), level),
	}

	if strings.TrimSpace(dir) != "" {
		if err := os.MkdirAll(dir, defaultLogDirPerm); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(filepath.Join(dir, TodayFilename(time.Now())),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.Lock(f), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}
