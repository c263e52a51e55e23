// Package logger 提供基于zap的结构化日志
//
// 设计说明：
// 1. 统一使用SugaredLogger（支持printf风格，消费者循环里写起来简洁）
// 2. debug模式输出console格式（开发友好），release模式输出JSON（采集友好）
// 3. 进程级单例，组件通过With挂上自己的标识字段
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global *zap.SugaredLogger = zap.NewNop().Sugar()

// Init 初始化全局日志器
// level: debug | info | warn | error
// format: console | json
func Init(level, format string) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	global = l.Sugar()
	return global, nil
}

// L 获取全局日志器（Init之前返回Nop，不会panic）
func L() *zap.SugaredLogger {
	return global
}

// Named 获取带组件名的日志器
// 示例：logger.Named("order-consumer").Infow("消息已转发", "channel", ch)
func Named(name string) *zap.SugaredLogger {
	return global.Named(name)
}

// Sync 刷新缓冲区（进程退出前调用）
func Sync() {
	_ = global.Sync()
}
