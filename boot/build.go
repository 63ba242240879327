package boot

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ceyewan/dsorch/clog"
	"github.com/ceyewan/dsorch/datasource"
	"github.com/ceyewan/dsorch/factory"
	"github.com/ceyewan/dsorch/orchestration"
	"github.com/ceyewan/dsorch/rule"
	"github.com/ceyewan/dsorch/xerrors"
)

// ShardingFactory 装配分片数据源
type ShardingFactory interface {
	CreateDataSource(ctx context.Context, registry *datasource.Registry, r rule.ShardingRule,
		orch *orchestration.Config, configMap map[string]any, props rule.Props) (datasource.Handle, error)
}

// MasterSlaveFactory 装配读写分离数据源
type MasterSlaveFactory interface {
	CreateDataSource(ctx context.Context, registry *datasource.Registry, r rule.MasterSlaveRule,
		orch *orchestration.Config, configMap map[string]any) (datasource.Handle, error)
}

// ShardingFactoryFunc 函数形式的 ShardingFactory
type ShardingFactoryFunc func(ctx context.Context, registry *datasource.Registry, r rule.ShardingRule,
	orch *orchestration.Config, configMap map[string]any, props rule.Props) (datasource.Handle, error)

func (f ShardingFactoryFunc) CreateDataSource(ctx context.Context, registry *datasource.Registry, r rule.ShardingRule,
	orch *orchestration.Config, configMap map[string]any, props rule.Props) (datasource.Handle, error) {
	return f(ctx, registry, r, orch, configMap, props)
}

// MasterSlaveFactoryFunc 函数形式的 MasterSlaveFactory
type MasterSlaveFactoryFunc func(ctx context.Context, registry *datasource.Registry, r rule.MasterSlaveRule,
	orch *orchestration.Config, configMap map[string]any) (datasource.Handle, error)

func (f MasterSlaveFactoryFunc) CreateDataSource(ctx context.Context, registry *datasource.Registry, r rule.MasterSlaveRule,
	orch *orchestration.Config, configMap map[string]any) (datasource.Handle, error) {
	return f(ctx, registry, r, orch, configMap)
}

// defaultSharding 将 factory.Sharding 适配为 ShardingFactory
func defaultSharding(opts ...factory.Option) ShardingFactory {
	f := factory.NewSharding(opts...)
	return ShardingFactoryFunc(func(ctx context.Context, registry *datasource.Registry, r rule.ShardingRule,
		orch *orchestration.Config, configMap map[string]any, props rule.Props) (datasource.Handle, error) {
		ds, err := f.CreateDataSource(ctx, registry, r, orch, configMap, props)
		if err != nil {
			return nil, err
		}
		return ds, nil
	})
}

// defaultMasterSlave 将 factory.MasterSlave 适配为 MasterSlaveFactory
func defaultMasterSlave(opts ...factory.Option) MasterSlaveFactory {
	f := factory.NewMasterSlave(opts...)
	return MasterSlaveFactoryFunc(func(ctx context.Context, registry *datasource.Registry, r rule.MasterSlaveRule,
		orch *orchestration.Config, configMap map[string]any) (datasource.Handle, error) {
		ds, err := f.CreateDataSource(ctx, registry, r, orch, configMap)
		if err != nil {
			return nil, err
		}
		return ds, nil
	})
}

// BuildDataSource 按规则选择调用且只调用一个工厂
//
// 读写分离分支不使用 overrides。工厂返回的错误原样返回。
func (b *Binder) BuildDataSource(ctx context.Context, registry *datasource.Registry, sel rule.Selection,
	orch *orchestration.Config, overrides rule.Props) (datasource.Handle, error) {
	if sel == nil {
		return nil, xerrors.Wrap(ErrConfiguration, "rule selection is nil")
	}
	ctx, span := b.tracer.Start(ctx, "boot.BuildDataSource",
		trace.WithAttributes(attribute.String("dsorch.rule.kind", string(sel.Kind()))))
	defer span.End()

	start := time.Now()
	var (
		handle datasource.Handle
		err    error
	)
	switch s := sel.(type) {
	case rule.MasterSlave:
		handle, err = b.opts.masterSlave.CreateDataSource(ctx, registry, s.Rule, orch, s.ConfigMap)
	case rule.Sharding:
		handle, err = b.opts.sharding.CreateDataSource(ctx, registry, s.Rule, orch, s.ConfigMap, overrides)
	default:
		err = xerrors.Wrapf(ErrConfiguration, "unknown rule selection %T", sel)
	}

	b.metrics.DataSourceBuilt(ctx, string(sel.Kind()), time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		b.logger.ErrorContext(ctx, "failed to build datasource",
			clog.String("kind", string(sel.Kind())), clog.Error(err))
		return nil, err
	}
	b.logger.InfoContext(ctx, "datasource built",
		clog.String("kind", string(sel.Kind())),
		clog.Duration("elapsed", time.Since(start)))
	return handle, nil
}
