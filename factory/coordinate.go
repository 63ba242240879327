package factory

import (
	"context"
	"errors"

	"github.com/ceyewan/dsorch/clog"
	"github.com/ceyewan/dsorch/orchestration"
	"github.com/ceyewan/dsorch/xerrors"
)

// coordination 一次装配中与协调中心交互的结果
type coordination struct {
	center     orchestration.Center
	instanceID string
	snapshot   orchestration.Snapshot
}

// close 关闭协调中心，center 为 nil 时无操作
func (c *coordination) close() error {
	if c == nil || c.center == nil {
		return nil
	}
	return c.center.Close()
}

// coordinate 持久化本地快照，读回中心快照并登记实例
//
// cfg 为 nil 时不使用协调中心，直接返回本地快照。
// 读回的快照规则类型与本地不一致时返回错误。
func coordinate(ctx context.Context, o *options, cfg *orchestration.Config, local orchestration.Snapshot) (*coordination, error) {
	if cfg == nil {
		o.logger.Warn("orchestration not configured, running without coordination center")
		return &coordination{snapshot: local}, nil
	}

	center, err := o.opener(ctx, cfg)
	if err != nil {
		return nil, xerrors.Tag(ErrFactory, err, "open orchestration %q", cfg.Name)
	}
	co := &coordination{center: center, snapshot: local}

	fail := func(err error) (*coordination, error) {
		if cerr := center.Close(); cerr != nil {
			o.logger.Warn("failed to close orchestration center", clog.Error(cerr))
		}
		return nil, err
	}

	if err := center.Persist(ctx, local, cfg.Overwrite); err != nil {
		return fail(xerrors.Tag(ErrFactory, err, "persist snapshot"))
	}

	stored, err := center.Load(ctx)
	switch {
	case errors.Is(err, orchestration.ErrNotFound):
	case err != nil:
		return fail(xerrors.Tag(ErrFactory, err, "load snapshot"))
	default:
		if stored.Kind != local.Kind {
			return fail(xerrors.Wrapf(ErrFactory, "stored rule kind %q does not match local %q", stored.Kind, local.Kind))
		}
		co.snapshot = adopt(local, *stored)
	}

	id, err := center.RegisterInstance(ctx)
	if err != nil {
		return fail(xerrors.Tag(ErrFactory, err, "register instance"))
	}
	co.instanceID = id

	o.logger.Info("orchestration ready",
		clog.String("orchestration", cfg.Name),
		clog.String("instance_id", id),
		clog.Bool("overwrite", cfg.Overwrite))
	return co, nil
}

// adopt 采用中心保存的规则、ConfigMap 与 Props
//
// 数据源已经由本地配置构造完成，中心中的描述是脱敏后的副本，不参与装配。
func adopt(local, stored orchestration.Snapshot) orchestration.Snapshot {
	out := local
	if stored.Sharding != nil {
		out.Sharding = stored.Sharding
	}
	if stored.MasterSlave != nil {
		out.MasterSlave = stored.MasterSlave
	}
	if stored.ConfigMap != nil {
		out.ConfigMap = stored.ConfigMap
	}
	if stored.Props != nil {
		out.Props = stored.Props
	}
	return out
}
