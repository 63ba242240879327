// Package clog 为 dsorch 提供基于 slog 的结构化日志组件。
//
// 各组件通过 WithLogger 注入 Logger，并追加自己的命名空间，
// 例如 boot、factory、orchestration、connector。
//
// 基本使用：
//
//	logger, _ := clog.New(&clog.Config{
//	    Level:  "info",
//	    Format: "console",
//	    Output: "stdout",
//	})
//	logger.Info("datasource constructed", clog.String("name", "ds0"))
//
// 子 Logger：
//
//	bootLogger := logger.WithNamespace("boot")
//	dsLogger := bootLogger.With(clog.String("datasource", "ds0"))
package clog

import "context"

// Logger 日志接口
//
// 支持 Debug、Info、Warn、Error 四个级别，每个级别都有带 Context 的版本。
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	DebugContext(ctx context.Context, msg string, fields ...Field)
	InfoContext(ctx context.Context, msg string, fields ...Field)
	WarnContext(ctx context.Context, msg string, fields ...Field)
	ErrorContext(ctx context.Context, msg string, fields ...Field)

	// With 创建一个带有预设字段的子 Logger
	With(fields ...Field) Logger

	// WithNamespace 创建一个扩展命名空间的子 Logger
	//
	// 命名空间以 "." 连接：
	//   logger.WithNamespace("dsorch").WithNamespace("boot") // namespace=dsorch.boot
	WithNamespace(parts ...string) Logger

	// SetLevel 动态调整日志级别
	SetLevel(level Level) error

	// Enabled 判断指定级别是否会被输出
	//
	// 用于跳过构造代价较高的日志，例如 SQL 日志。
	Enabled(ctx context.Context, level Level) bool
}
