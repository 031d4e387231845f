package util

import (
	"time"

	"go.uber.org/zap"
)

// Trace 记录一段代码的耗时
//
//	defer util.Trace(logger, "prettify")()
func Trace(logger *zap.Logger, msg string, fields ...zap.Field) func() {
	start := time.Now()
	return func() {
		if logger == nil {
			return
		}
		logger.Info(msg, append(fields, zap.Duration("took", time.Since(start)))...)
	}
}
