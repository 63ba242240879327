// Package metrics 为 dsorch 提供基于 OpenTelemetry 的指标收集能力。
//
// 指标通过 OpenTelemetry Prometheus Exporter 暴露，Config.Port 大于 0 时
// 启动内置的 HTTP 服务器。
//
// 快速开始：
//
//	meter, err := metrics.New(&metrics.Config{
//	    Enabled:     true,
//	    ServiceName: "order-service",
//	    Port:        9090,
//	    Path:        "/metrics",
//	})
//	if err != nil {
//	    return err
//	}
//	defer meter.Shutdown(ctx)
//
//	binder := boot.New(boot.WithMetrics(meter))
package metrics

import "context"

// Counter 计数器接口，只能增加
type Counter interface {
	// Inc 将计数器增加 1
	Inc(ctx context.Context, labels ...Label)

	// Add 将计数器增加给定的值
	Add(ctx context.Context, val float64, labels ...Label)
}

// Histogram 直方图接口，记录值的分布
type Histogram interface {
	Record(ctx context.Context, val float64, labels ...Label)
}

// Meter 指标创建工厂接口
//
// 创建的指标是并发安全的。
type Meter interface {
	// Counter 创建计数器，name 应符合 Prometheus 命名规范
	Counter(name string, desc string, opts ...MetricOption) (Counter, error)

	// Histogram 创建直方图
	Histogram(name string, desc string, opts ...MetricOption) (Histogram, error)

	// Shutdown 关闭 Meter，刷新所有指标
	Shutdown(ctx context.Context) error
}

// Label 指标标签
//
// 标签值应保持低基数，例如数据源类型、规则类型、结果。
type Label struct {
	Key   string
	Value string
}

// L 便捷构造函数
//
//	counter.Inc(ctx, metrics.L("type", "mysql"), metrics.L("result", "ok"))
func L(key, value string) Label {
	return Label{Key: key, Value: value}
}

// MetricOption 指标配置选项
type MetricOption func(*MetricOptions)

// MetricOptions 指标配置
type MetricOptions struct {
	Unit string
}

// WithUnit 设置指标单位，例如 "s"、"ms"
func WithUnit(unit string) MetricOption {
	return func(o *MetricOptions) {
		o.Unit = unit
	}
}
