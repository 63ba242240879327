package connector

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/ceyewan/dsorch/clog"
)

type options struct {
	logger clog.Logger
	tracer trace.TracerProvider
}

// Option 配置连接器的选项
type Option func(*options)

// WithLogger 设置日志记录器
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger.WithNamespace("connector")
		}
	}
}

// WithTracer 为数据库连接器注册 otelgorm 插件，每条 SQL 生成一个 span
//
// 对 Etcd 连接器无效。
func WithTracer(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracer = tp
	}
}

func applyOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = clog.Discard()
	}
	return o
}
