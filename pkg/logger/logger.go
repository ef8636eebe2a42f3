package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 创建全局 zap Logger
// debug 为 true 时输出开发格式（彩色、可读），否则输出生产 JSON 格式
func New(debug bool) *zap.Logger {
	if debug {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		l, err := cfg.Build()
		if err != nil {
			panic(err)
		}
		return l
	}

	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return l
}
