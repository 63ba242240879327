package factory

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/sharding"

	"github.com/ceyewan/dsorch/clog"
	"github.com/ceyewan/dsorch/datasource"
	"github.com/ceyewan/dsorch/orchestration"
	"github.com/ceyewan/dsorch/rule"
	"github.com/ceyewan/dsorch/xerrors"
)

// Sharding 分片数据源工厂
type Sharding struct {
	opts *options
}

// NewSharding 创建分片数据源工厂
func NewSharding(opts ...Option) *Sharding {
	return &Sharding{opts: applyOptions(opts...)}
}

// CreateDataSource 由注册表与分片规则装配分片数据源
//
// 每个成员数据源都注册同一个 gorm sharding 中间件，逻辑表按分片列路由到
// 本库内的物理表 <table>_<n>。返回的句柄拥有 registry 与协调中心。
// 失败时 registry 由调用方关闭。
func (f *Sharding) CreateDataSource(ctx context.Context, registry *datasource.Registry, r rule.ShardingRule,
	orch *orchestration.Config, configMap map[string]any, props rule.Props) (*ShardingDataSource, error) {
	if registry == nil {
		return nil, xerrors.Wrap(ErrFactory, "registry is nil")
	}
	if err := r.Validate(registry.Names()); err != nil {
		return nil, xerrors.Tag(ErrFactory, err, "sharding rule")
	}

	local := orchestration.NewSnapshot(registry.Descriptors(), rule.Sharding{Rule: r, ConfigMap: configMap}, props)
	co, err := coordinate(ctx, f.opts, orch, local)
	if err != nil {
		return nil, err
	}

	ds, err := f.assemble(registry, co)
	if err != nil {
		if cerr := co.close(); cerr != nil {
			f.opts.logger.Warn("failed to close orchestration center", clog.Error(cerr))
		}
		return nil, err
	}

	f.opts.logger.Info("sharding datasource created",
		clog.Strings("datasources", registry.Names()),
		clog.Strings("tables", ds.rule.TableNames()),
		clog.String("default", ds.defaultName),
		clog.Int("executor_size", ds.executorSize),
		clog.Bool("sql_show", ds.sqlShow))
	return ds, nil
}

func (f *Sharding) assemble(registry *datasource.Registry, co *coordination) (*ShardingDataSource, error) {
	snap := co.snapshot
	r := *snap.Sharding
	if err := r.Validate(registry.Names()); err != nil {
		return nil, xerrors.Tag(ErrFactory, err, "stored sharding rule")
	}

	sqlShow, err := snap.Props.SQLShow()
	if err != nil {
		return nil, xerrors.Tag(ErrFactory, err, "props")
	}
	executorSize, err := snap.Props.ExecutorSize()
	if err != nil {
		return nil, xerrors.Tag(ErrFactory, err, "props")
	}

	if len(r.Tables) > 0 {
		for _, name := range registry.Names() {
			ds, _ := registry.Get(name)
			if err := registerSharding(ds, r); err != nil {
				return nil, xerrors.Tag(ErrFactory, err, "datasource %q", name)
			}
		}
	}

	return &ShardingDataSource{
		registry:     registry,
		rule:         r,
		configMap:    snap.ConfigMap,
		defaultName:  r.DefaultDataSource(registry.Names()),
		sqlShow:      sqlShow,
		executorSize: executorSize,
		co:           co,
		logger:       f.opts.logger,
	}, nil
}

// shardingKey 决定哪些逻辑表可以共用一个 gorm sharding 配置
type shardingKey struct {
	column string
	count  uint
	keyGen rule.KeyGenerator
}

// registerSharding 在成员数据源上注册分片中间件
//
// gorm 按名称注册插件，一个连接只能有一个 gorm:sharding，
// 因此所有逻辑表必须共享同一组分片列、分片数与主键策略。
func registerSharding(ds datasource.DataSource, r rule.ShardingRule) error {
	db := ds.DB(context.Background())
	if db == nil {
		return xerrors.New("datasource is not connected")
	}

	var (
		key    shardingKey
		tables []any
	)
	for i, name := range r.TableNames() {
		t := r.Tables[name]
		k := shardingKey{column: t.ShardingColumn, count: t.ShardingCount, keyGen: t.KeyGenerator}
		if k.keyGen == "" {
			k.keyGen = rule.KeyGeneratorSnowflake
		}
		if i == 0 {
			key = k
		} else if k != key {
			return fmt.Errorf("table %q: sharding config differs from %q, one connection supports a single sharding config",
				name, r.TableNames()[0])
		}
		tables = append(tables, name)
	}

	cfg := sharding.Config{
		ShardingKey:    key.column,
		NumberOfShards: key.count,
	}
	switch key.keyGen {
	case rule.KeyGeneratorSequence:
		if dialect := db.Dialector.Name(); dialect != "postgres" {
			return fmt.Errorf("key-generator %q requires postgres, got %s", key.keyGen, dialect)
		}
		cfg.PrimaryKeyGenerator = sharding.PKPGSequence
	case rule.KeyGeneratorNone:
		// 主键由应用写入，插入语句缺少主键时写 0
		cfg.PrimaryKeyGenerator = sharding.PKCustom
		cfg.PrimaryKeyGeneratorFn = func(int64) int64 { return 0 }
	default:
		cfg.PrimaryKeyGenerator = sharding.PKSnowflake
	}

	if err := db.Use(sharding.Register(cfg, tables...)); err != nil {
		return xerrors.Wrapf(err, "register sharding middleware for tables %v", tables)
	}
	return nil
}

// ShardingDataSource 分片数据源句柄
type ShardingDataSource struct {
	registry     *datasource.Registry
	rule         rule.ShardingRule
	configMap    map[string]any
	defaultName  string
	sqlShow      bool
	executorSize int
	co           *coordination
	logger       clog.Logger

	closeOnce sync.Once
	closeErr  error
}

// DB 返回默认数据源上的会话
func (s *ShardingDataSource) DB(ctx context.Context) *gorm.DB {
	db, _ := s.Using(ctx, s.defaultName)
	return db
}

// Using 返回指定成员数据源上的会话
func (s *ShardingDataSource) Using(ctx context.Context, name string) (*gorm.DB, bool) {
	ds, ok := s.registry.Get(name)
	if !ok {
		return nil, false
	}
	db := ds.DB(ctx)
	if db == nil {
		return nil, false
	}
	if s.sqlShow {
		db = db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Info)})
	}
	return db, true
}

// Ping 并发检查全部成员，并发度为 executor.size
func (s *ShardingDataSource) Ping(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.executorSize)
	for _, name := range s.registry.Names() {
		ds, _ := s.registry.Get(name)
		g.Go(func() error {
			if err := ds.Ping(ctx); err != nil {
				return xerrors.Wrapf(err, "ping datasource %q", name)
			}
			return nil
		})
	}
	return g.Wait()
}

// Rule 返回生效的分片规则，协调中心中已有配置时为中心的版本
func (s *ShardingDataSource) Rule() rule.ShardingRule { return s.rule }

// ConfigMap 返回生效的 ConfigMap
func (s *ShardingDataSource) ConfigMap() map[string]any { return s.configMap }

// ExecutorSize 返回生效的 executor.size
func (s *ShardingDataSource) ExecutorSize() int { return s.executorSize }

// InstanceID 返回协调中心登记的实例 ID，未使用协调中心时为空
func (s *ShardingDataSource) InstanceID() string { return s.co.instanceID }

// Close 先关闭成员数据源再关闭协调中心，幂等
func (s *ShardingDataSource) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = xerrors.Combine(s.registry.Close(), s.co.close())
		s.logger.Info("sharding datasource closed")
	})
	return s.closeErr
}
