// Package testkit 提供 dsorch 各包测试共用的依赖：日志、SQLite 数据源、内存协调中心。
package testkit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ceyewan/dsorch/clog"
)

// NewLogger 返回测试用 logger
//
// 默认丢弃输出，设置 DSORCH_TEST_LOG=1 时以开发格式输出到 stdout。
func NewLogger() clog.Logger {
	if !verbose() {
		return clog.Discard()
	}
	logger, err := clog.New(clog.NewDevDefaultConfig())
	if err != nil {
		return clog.Discard()
	}
	return logger
}

// NewContext 返回一个带有超时的测试上下文，随测试结束取消
func NewContext(t *testing.T, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// NewID 返回一个唯一的测试 ID (UUID v4 前 8 位)
//
// 用于内存库名称与编排实例名称，避免测试间数据冲突。
func NewID() string {
	return uuid.New().String()[0:8]
}
