package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 抽取日志统一用json，时间用ISO8601，方便和存储的记录对齐
func DefaultEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}

func DefaultEncoder() zapcore.Encoder {
	return zapcore.NewJSONEncoder(DefaultEncoderConfig())
}

// 只有DPanic以上才带堆栈，字段错误按Warn记录不需要
func DefaultOption() []zap.Option {
	stackTraceLevel := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
		return level >= zapcore.DPanicLevel
	})
	return []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(stackTraceLevel),
	}
}

// 一次抽取任务的日志量不大：
// 1.单文件20mb后切割并压缩
// 2.保留5个backup，最长30天
func DefaultLumberjackLogger() *lumberjack.Logger {
	return &lumberjack.Logger{
		MaxSize:    20,
		MaxBackups: 5,
		MaxAge:     30,
		LocalTime:  true,
		Compress:   true,
	}
}
