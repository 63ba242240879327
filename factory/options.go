package factory

import (
	"github.com/ceyewan/dsorch/clog"
	"github.com/ceyewan/dsorch/orchestration"
)

// Option 配置工厂的选项
type Option func(*options)

type options struct {
	logger clog.Logger
	opener orchestration.Opener
}

// WithLogger 设置日志记录器，自动添加 "factory" 命名空间
//
// 同一 Logger 也会传给默认的协调中心。
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger.WithNamespace("factory")
		}
	}
}

// WithOpener 替换协调中心的打开方式，测试中使用内存实现
func WithOpener(opener orchestration.Opener) Option {
	return func(o *options) {
		if opener != nil {
			o.opener = opener
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
	if o.opener == nil {
		o.opener = orchestration.EtcdOpener(orchestration.WithLogger(o.logger))
	}
	return o
}
