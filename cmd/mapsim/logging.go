package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logDir      = "logs"
	logFileName = "mapsim.log"
	maxLogSize  = 10 * 1024 * 1024
)

// setupLogging returns a Nop logger unless debug is set
// The terminal owns stdout and stderr in raw mode, so output only ever goes to logs/mapsim.log
// The returned file is nil when logging is disabled or the file could not be opened
func setupLogging(debug bool) (*zap.Logger, *os.File) {
	if !debug {
		return zap.NewNop(), nil
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return zap.NewNop(), nil
	}

	logPath := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(logDir, fmt.Sprintf("mapsim-%s.log", time.Now().Format("20060102-150405")))
		_ = os.Rename(logPath, rotated)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zap.NewNop(), nil
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), zap.DebugLevel)
	return zap.New(core, zap.AddCaller()), f
}
