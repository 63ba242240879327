package metrics

import (
	"context"
	"time"
)

// 指标名称
const (
	MetricDataSourceConstructed = "dsorch_datasource_constructed_total"
	MetricDataSourceBuild       = "dsorch_datasource_build_total"
	MetricDataSourceBuildTime   = "dsorch_datasource_build_duration_seconds"
)

// 结果标签取值
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Instruments 数据源装配过程使用的一组指标
//
// 零值与 nil 均可安全调用，此时不记录任何指标。
type Instruments struct {
	constructed Counter
	build       Counter
	buildTime   Histogram
}

// NewInstruments 在 meter 上创建装配指标
func NewInstruments(meter Meter) (*Instruments, error) {
	if meter == nil {
		meter = Discard()
	}
	constructed, err := meter.Counter(MetricDataSourceConstructed, "Number of data source construction attempts")
	if err != nil {
		return nil, err
	}
	build, err := meter.Counter(MetricDataSourceBuild, "Number of data source assembly attempts")
	if err != nil {
		return nil, err
	}
	buildTime, err := meter.Histogram(MetricDataSourceBuildTime, "Data source assembly latency", WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &Instruments{constructed: constructed, build: build, buildTime: buildTime}, nil
}

// DataSourceConstructed 记录一次数据源构造
func (i *Instruments) DataSourceConstructed(ctx context.Context, typ string, err error) {
	if i == nil || i.constructed == nil {
		return
	}
	i.constructed.Inc(ctx, L("type", typ), L("result", result(err)))
}

// DataSourceBuilt 记录一次工厂装配及其耗时
func (i *Instruments) DataSourceBuilt(ctx context.Context, kind string, elapsed time.Duration, err error) {
	if i == nil || i.build == nil {
		return
	}
	labels := []Label{L("kind", kind), L("result", result(err))}
	i.build.Inc(ctx, labels...)
	i.buildTime.Record(ctx, elapsed.Seconds(), labels...)
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
