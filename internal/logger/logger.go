package logger

import (
	"fmt"

	"go.uber.org/zap"
)

func InitLogger(logLevel string) {
	cfg := zap.NewDevelopmentConfig()

	// 无法识别的等级一律回退到 info
	lvl, err := zap.ParseAtomicLevel(logLevel)
	if err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cfg.Level = lvl

	lgr, err := cfg.Build()
	if err != nil {
		panic(fmt.Errorf("构建日志器失败: %w", err))
	}

	zap.ReplaceGlobals(lgr)
}
