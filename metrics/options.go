package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ceyewan/dsorch/clog"
)

// Option 配置 Meter 的选项
type Option func(*options)

type options struct {
	logger     clog.Logger
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
}

// WithLogger 注入日志记录器，自动添加 "metrics" 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger.WithNamespace("metrics")
		}
	}
}

// WithRegistry 使用独立的 Prometheus Registry 替代默认 Registry
//
// 多个 Meter 共存（例如测试）时需要各自的 Registry。
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		if reg != nil {
			o.registerer = reg
			o.gatherer = reg
		}
	}
}
