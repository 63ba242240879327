package boot

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/ceyewan/dsorch/clog"
	"github.com/ceyewan/dsorch/datasource"
	"github.com/ceyewan/dsorch/metrics"
)

// Option 配置 Binder 的选项
type Option func(*options)

type options struct {
	base        clog.Logger
	types       *datasource.Types
	sharding    ShardingFactory
	masterSlave MasterSlaveFactory
	meter       metrics.Meter
	tracer      trace.TracerProvider
}

// WithLogger 设置日志记录器，Binder 自身追加 "boot" 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.base = logger
		}
	}
}

// WithTypes 替换数据源类型注册表，默认为 datasource.BuiltinTypes()
func WithTypes(types *datasource.Types) Option {
	return func(o *options) {
		if types != nil {
			o.types = types
		}
	}
}

// WithShardingFactory 替换分片工厂，默认为 factory.NewSharding
func WithShardingFactory(f ShardingFactory) Option {
	return func(o *options) {
		if f != nil {
			o.sharding = f
		}
	}
}

// WithMasterSlaveFactory 替换读写分离工厂，默认为 factory.NewMasterSlave
func WithMasterSlaveFactory(f MasterSlaveFactory) Option {
	return func(o *options) {
		if f != nil {
			o.masterSlave = f
		}
	}
}

// WithMetrics 记录数据源构造与装配指标
func WithMetrics(meter metrics.Meter) Option {
	return func(o *options) {
		if meter != nil {
			o.meter = meter
		}
	}
}

// WithTracer 为 Bind 与 BuildDataSource 生成 span
//
// 未通过 WithTypes 指定类型注册表时，内置连接器同样注册 SQL 追踪。
func WithTracer(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracer = tp
		}
	}
}
