package orchestration

import (
	"context"

	"github.com/ceyewan/dsorch/clog"
)

// Option 配置协调中心的选项
type Option func(*options)

type options struct {
	logger clog.Logger
}

// WithLogger 设置日志记录器，自动添加 "orchestration" 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger.WithNamespace("orchestration")
		}
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

// EtcdOpener 返回使用 Open 的 Opener
func EtcdOpener(opts ...Option) Opener {
	return func(ctx context.Context, cfg *Config) (Center, error) {
		return Open(ctx, cfg, opts...)
	}
}
