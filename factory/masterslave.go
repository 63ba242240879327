package factory

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/ceyewan/dsorch/clog"
	"github.com/ceyewan/dsorch/datasource"
	"github.com/ceyewan/dsorch/orchestration"
	"github.com/ceyewan/dsorch/rule"
	"github.com/ceyewan/dsorch/xerrors"
)

// MasterSlave 读写分离数据源工厂
type MasterSlave struct {
	opts *options
}

// NewMasterSlave 创建读写分离数据源工厂
func NewMasterSlave(opts ...Option) *MasterSlave {
	return &MasterSlave{opts: applyOptions(opts...)}
}

// CreateDataSource 由注册表与读写分离规则装配数据源
//
// 返回的句柄拥有 registry 与协调中心，失败时 registry 由调用方关闭。
func (f *MasterSlave) CreateDataSource(ctx context.Context, registry *datasource.Registry, r rule.MasterSlaveRule,
	orch *orchestration.Config, configMap map[string]any) (*MasterSlaveDataSource, error) {
	if registry == nil {
		return nil, xerrors.Wrap(ErrFactory, "registry is nil")
	}
	if err := r.Validate(registry.Names()); err != nil {
		return nil, xerrors.Tag(ErrFactory, err, "master-slave rule")
	}

	local := orchestration.NewSnapshot(registry.Descriptors(), rule.MasterSlave{Rule: r, ConfigMap: configMap}, nil)
	co, err := coordinate(ctx, f.opts, orch, local)
	if err != nil {
		return nil, err
	}

	effective := *co.snapshot.MasterSlave
	if err := effective.Validate(registry.Names()); err != nil {
		if cerr := co.close(); cerr != nil {
			f.opts.logger.Warn("failed to close orchestration center", clog.Error(cerr))
		}
		return nil, xerrors.Tag(ErrFactory, err, "stored master-slave rule")
	}

	master, _ := registry.Get(effective.MasterDataSourceName)
	slaves := make([]datasource.DataSource, 0, len(effective.SlaveDataSourceNames))
	for _, name := range effective.SlaveDataSourceNames {
		ds, _ := registry.Get(name)
		slaves = append(slaves, ds)
	}

	f.opts.logger.Info("master-slave datasource created",
		clog.String("name", effective.Name),
		clog.String("master", effective.MasterDataSourceName),
		clog.Strings("slaves", effective.SlaveDataSourceNames),
		clog.String("algorithm", string(effective.Algorithm())))

	return &MasterSlaveDataSource{
		registry:  registry,
		rule:      effective,
		configMap: co.snapshot.ConfigMap,
		master:    master,
		slaves:    slaves,
		algorithm: effective.Algorithm(),
		co:        co,
		logger:    f.opts.logger,
	}, nil
}

// MasterSlaveDataSource 读写分离数据源句柄
//
// 默认路由到主库，ReadOnly 标记的 ctx 按负载均衡算法选择从库。
type MasterSlaveDataSource struct {
	registry  *datasource.Registry
	rule      rule.MasterSlaveRule
	configMap map[string]any
	master    datasource.DataSource
	slaves    []datasource.DataSource
	algorithm rule.LoadBalanceAlgorithm
	next      atomic.Uint64
	co        *coordination
	logger    clog.Logger

	closeOnce sync.Once
	closeErr  error
}

// DB 按 ctx 上的路由标记返回主库或从库会话
func (m *MasterSlaveDataSource) DB(ctx context.Context) *gorm.DB {
	return m.route(ctx).DB(ctx)
}

// Route 返回 ctx 将使用的成员数据源名称
func (m *MasterSlaveDataSource) Route(ctx context.Context) string {
	return m.route(ctx).Name()
}

func (m *MasterSlaveDataSource) route(ctx context.Context) datasource.DataSource {
	if routeFrom(ctx) != routeReadOnly {
		return m.master
	}
	return m.slaves[m.pick()]
}

func (m *MasterSlaveDataSource) pick() int {
	n := len(m.slaves)
	if m.algorithm == rule.LoadBalanceRandom {
		return rand.IntN(n)
	}
	return int((m.next.Add(1) - 1) % uint64(n))
}

// Ping 并发检查主库与全部从库
func (m *MasterSlaveDataSource) Ping(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, ds := range append([]datasource.DataSource{m.master}, m.slaves...) {
		g.Go(func() error {
			if err := ds.Ping(ctx); err != nil {
				return xerrors.Wrapf(err, "ping datasource %q", ds.Name())
			}
			return nil
		})
	}
	return g.Wait()
}

// Rule 返回生效的读写分离规则
func (m *MasterSlaveDataSource) Rule() rule.MasterSlaveRule { return m.rule }

// ConfigMap 返回生效的 ConfigMap
func (m *MasterSlaveDataSource) ConfigMap() map[string]any { return m.configMap }

// InstanceID 返回协调中心登记的实例 ID，未使用协调中心时为空
func (m *MasterSlaveDataSource) InstanceID() string { return m.co.instanceID }

// Close 先关闭成员数据源再关闭协调中心，幂等
func (m *MasterSlaveDataSource) Close() error {
	m.closeOnce.Do(func() {
		m.closeErr = xerrors.Combine(m.registry.Close(), m.co.close())
		m.logger.Info("master-slave datasource closed")
	})
	return m.closeErr
}
