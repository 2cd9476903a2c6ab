package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Plugin = zapcore.Core

// NOTE: 一些option选项是无法覆盖的
func NewLogger(plugin zapcore.Core, options ...zap.Option) *zap.Logger {
	return zap.New(plugin, append(DefaultOption(), options...)...)
}

func NewPlugin(writer zapcore.WriteSyncer, enabler zapcore.LevelEnabler) Plugin {
	return zapcore.NewCore(DefaultEncoder(), writer, enabler)
}

func NewStdoutPlugin(enabler zapcore.LevelEnabler) Plugin {
	return NewPlugin(zapcore.Lock(zapcore.AddSync(os.Stdout)), enabler)
}

func NewStderrPlugin(enabler zapcore.LevelEnabler) Plugin {
	return NewPlugin(zapcore.Lock(zapcore.AddSync(os.Stderr)), enabler)
}

// Lumberjack logger虽然持有File但没有暴露sync方法，所以没办法利用zap的sync特性
// 所以额外返回一个closer，需要保证在进程退出前close以保证写入的内容可以全部刷到到磁盘
func NewFilePlugin(
	filePath string, enabler zapcore.LevelEnabler) (Plugin, io.Closer) {
	var writer = DefaultLumberjackLogger()
	writer.Filename = filePath

	return NewPlugin(zapcore.AddSync(writer), enabler), writer
}

// ParseLevel accepts zap level names in any case: debug, INFO, Warn ...
func ParseLevel(name string) (zapcore.Level, error) {
	l, err := zapcore.ParseLevel(strings.ToLower(name))
	if err != nil {
		return l, fmt.Errorf("parse log level:%w", err)
	}

	return l, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the command line logger. Records go to stderr, stdout is left
// for extraction output. A non-empty filePath adds a rotating file.
func New(level, filePath string) (*zap.Logger, io.Closer, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	plugin := NewStderrPlugin(l)
	if filePath == "" {
		return NewLogger(plugin), nopCloser{}, nil
	}

	file, closer := NewFilePlugin(filePath, l)

	return NewLogger(zapcore.NewTee(plugin, file)), closer, nil
}
