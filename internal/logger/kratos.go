package logger

import (
	"fmt"

	klog "github.com/go-kratos/kratos/v2/log"
	"github.com/sirupsen/logrus"
)

// KratosLogger 将 kratos 的日志接口适配到 logrus
type KratosLogger struct {
	log *logrus.Logger
}

var _ klog.Logger = (*KratosLogger)(nil)

// NewKratosLogger 创建 kratos 日志适配器，l 为 nil 时使用全局 Log
func NewKratosLogger(l *logrus.Logger) *KratosLogger {
	if l == nil {
		l = Log
	}
	return &KratosLogger{log: l}
}

// Log 实现 kratos log.Logger
func (k *KratosLogger) Log(level klog.Level, keyvals ...any) error {
	if len(keyvals) == 0 {
		return nil
	}
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "KEYVALS UNPAIRED")
	}

	var msg string
	fields := make(logrus.Fields, len(keyvals)/2)
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		if key == klog.DefaultMessageKey {
			msg = fmt.Sprint(keyvals[i+1])
			continue
		}
		fields[key] = keyvals[i+1]
	}

	entry := k.log.WithFields(fields)
	switch level {
	case klog.LevelDebug:
		entry.Debug(msg)
	case klog.LevelWarn:
		entry.Warn(msg)
	case klog.LevelError, klog.LevelFatal:
		entry.Error(msg)
	default:
		entry.Info(msg)
	}
	return nil
}
