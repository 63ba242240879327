package boot_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/gorm"

	"github.com/ceyewan/dsorch/boot"
	"github.com/ceyewan/dsorch/clog"
	"github.com/ceyewan/dsorch/config"
	"github.com/ceyewan/dsorch/datasource"
	"github.com/ceyewan/dsorch/factory"
	"github.com/ceyewan/dsorch/metrics"
	"github.com/ceyewan/dsorch/orchestration"
	"github.com/ceyewan/dsorch/rule"
	"github.com/ceyewan/dsorch/testkit"
	"github.com/ceyewan/dsorch/xerrors"
)

// registryHandle 持有 registry 的简单句柄
type registryHandle struct {
	registry *datasource.Registry
}

func (h *registryHandle) DB(ctx context.Context) *gorm.DB { return nil }
func (h *registryHandle) Ping(ctx context.Context) error  { return nil }
func (h *registryHandle) Close() error                    { return h.registry.Close() }

// recorder 记录两个工厂的调用
type recorder struct {
	shardingCalls    int
	masterSlaveCalls int
	registry         *datasource.Registry
	sharding         rule.ShardingRule
	masterSlave      rule.MasterSlaveRule
	orch             *orchestration.Config
	configMap        map[string]any
	props            rule.Props
	err              error
}

func (r *recorder) options() []boot.Option {
	return []boot.Option{
		boot.WithLogger(testkit.NewLogger()),
		boot.WithShardingFactory(boot.ShardingFactoryFunc(func(_ context.Context, registry *datasource.Registry,
			sr rule.ShardingRule, orch *orchestration.Config, configMap map[string]any, props rule.Props) (datasource.Handle, error) {
			r.shardingCalls++
			r.registry, r.sharding, r.orch, r.configMap, r.props = registry, sr, orch, configMap, props
			if r.err != nil {
				return nil, r.err
			}
			return &registryHandle{registry: registry}, nil
		})),
		boot.WithMasterSlaveFactory(boot.MasterSlaveFactoryFunc(func(_ context.Context, registry *datasource.Registry,
			mr rule.MasterSlaveRule, orch *orchestration.Config, configMap map[string]any) (datasource.Handle, error) {
			r.masterSlaveCalls++
			r.registry, r.masterSlave, r.orch, r.configMap = registry, mr, orch, configMap
			if r.err != nil {
				return nil, r.err
			}
			return &registryHandle{registry: registry}, nil
		})),
	}
}

func newBinder(t *testing.T, rec *recorder, extra ...boot.Option) *boot.Binder {
	t.Helper()
	b, err := boot.New(append(rec.options(), extra...)...)
	require.NoError(t, err)
	return b
}

// sqliteProps 返回 names 与每个数据源分组
func sqliteProps(names ...string) map[string]any {
	props := map[string]any{boot.KeyDataSourceNames: strings.Join(names, ",")}
	for _, name := range names {
		props[boot.KeyDataSourcePrefix+"."+name] = testkit.SQLiteProperties(name)
	}
	return props
}

func TestBindShardingPath(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	b := newBinder(t, rec)

	handle, err := b.Bind(ctx, config.FromMap(sqliteProps("ds0", "ds1")))
	require.NoError(t, err)
	defer handle.Close()

	assert.Equal(t, 1, rec.shardingCalls)
	assert.Equal(t, 0, rec.masterSlaveCalls)
	require.NotNil(t, rec.registry)
	assert.Equal(t, []string{"ds0", "ds1"}, rec.registry.Names())
	assert.Nil(t, rec.orch, "未配置协调中心时应为 nil")
	assert.Empty(t, rec.props)
	assert.Equal(t, boot.Configured, b.State())
	assert.Same(t, handle, b.Handle())
}

func TestBindEmptyGroup(t *testing.T) {
	rec := &recorder{}
	b := newBinder(t, rec)

	_, err := b.Bind(context.Background(), config.FromMap(map[string]any{
		boot.KeyDataSourceNames:           "ds0",
		boot.KeyDataSourcePrefix + ".ds0": map[string]any{},
	}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, boot.ErrConfiguration))
	assert.ErrorContains(t, err, "missing datasource properties")
	assert.ErrorContains(t, err, "ds0")
	assert.Equal(t, boot.CodeConfiguration, xerrors.GetCode(err))
	assert.Equal(t, 0, rec.shardingCalls+rec.masterSlaveCalls, "失败时不应调用工厂")
	assert.Equal(t, boot.Failed, b.State())
	assert.Nil(t, b.Handle())
}

func TestResolveOverrides(t *testing.T) {
	b := newBinder(t, &recorder{})
	key := func(k string) string { return boot.KeyShardingProps + "." + k }

	got := b.ResolveOverrides(config.FromMap(map[string]any{key("executor.size"): 16}))
	assert.Equal(t, rule.Props{"executor.size": "16"}, got)

	got = b.ResolveOverrides(config.FromMap(map[string]any{
		key("executor.size"): "8",
		key("sql.show"):      true,
	}))
	assert.Equal(t, rule.Props{"executor.size": "8", "sql.show": "true"}, got)

	got = b.ResolveOverrides(config.FromMap(map[string]any{
		key("sql.show"):      "   ",
		key("executor.size"): "not-a-number",
	}))
	assert.Equal(t, rule.Props{"executor.size": "not-a-number"}, got, "空白值被忽略，格式不在此处校验")

	assert.Empty(t, b.ResolveOverrides(config.FromMap(map[string]any{"other": "x"})))
}

func TestBindMasterSlavePath(t *testing.T) {
	rec := &recorder{}
	b := newBinder(t, rec)

	props := sqliteProps("ds0", "ds1")
	props[boot.KeyMasterSlave+".name"] = "ms"
	props[boot.KeyMasterSlaveMaster] = "ds0"
	props[boot.KeyMasterSlave+".slave-data-source-names"] = "ds1"
	props[boot.KeyMasterSlaveConfigMap+".region"] = "east"
	props[boot.KeySharding+".default-data-source-name"] = "ds1"
	props[boot.KeyShardingProps+".sql.show"] = "true"

	handle, err := b.Bind(context.Background(), config.FromMap(props))
	require.NoError(t, err)
	defer handle.Close()

	assert.Equal(t, 1, rec.masterSlaveCalls)
	assert.Equal(t, 0, rec.shardingCalls, "配置主库名称时不应调用分片工厂")
	assert.Equal(t, "ms", rec.masterSlave.Name)
	assert.Equal(t, "ds0", rec.masterSlave.MasterDataSourceName)
	assert.Equal(t, []string{"ds1"}, rec.masterSlave.SlaveDataSourceNames)
	assert.Equal(t, "east", rec.configMap["region"])
}

func TestBindUnknownType(t *testing.T) {
	rec := &recorder{}
	b := newBinder(t, rec)

	_, err := b.Bind(context.Background(), config.FromMap(map[string]any{
		boot.KeyDataSourceNames:                "ds0",
		boot.KeyDataSourcePrefix + ".ds0.type": "oracle",
		boot.KeyDataSourcePrefix + ".ds0.host": "db0",
	}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, boot.ErrConstruction))
	assert.True(t, errors.Is(err, datasource.ErrUnknownType))
	assert.ErrorContains(t, err, "oracle")
	assert.Equal(t, 0, rec.shardingCalls)
}

// trackedSource 记录是否被关闭
type trackedSource struct {
	desc   datasource.Descriptor
	closed bool
}

func (s *trackedSource) Name() string                      { return s.desc.Name }
func (s *trackedSource) Type() string                      { return s.desc.Type }
func (s *trackedSource) Descriptor() datasource.Descriptor { return s.desc }
func (s *trackedSource) DB(ctx context.Context) *gorm.DB   { return nil }
func (s *trackedSource) Ping(ctx context.Context) error    { return nil }

func (s *trackedSource) Close() error {
	s.closed = true
	return nil
}

func trackedTypes(t *testing.T, built *[]*trackedSource, cause error) *datasource.Types {
	t.Helper()
	types := datasource.NewTypes()
	require.NoError(t, types.Register("tracked", func(_ context.Context, desc datasource.Descriptor, _ clog.Logger) (datasource.DataSource, error) {
		s := &trackedSource{desc: desc}
		*built = append(*built, s)
		return s, nil
	}))
	require.NoError(t, types.Register("broken", func(context.Context, datasource.Descriptor, clog.Logger) (datasource.DataSource, error) {
		return nil, cause
	}))
	return types
}

func TestBindConstructorFailureClosesBuilt(t *testing.T) {
	var built []*trackedSource
	cause := errors.New("connection refused")
	rec := &recorder{}
	b := newBinder(t, rec, boot.WithTypes(trackedTypes(t, &built, cause)))

	_, err := b.Bind(context.Background(), config.FromMap(map[string]any{
		boot.KeyDataSourceNames:                "ds0,ds1",
		boot.KeyDataSourcePrefix + ".ds0.type": "tracked",
		boot.KeyDataSourcePrefix + ".ds1.type": "broken",
	}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, boot.ErrConstruction))
	assert.True(t, errors.Is(err, cause), "应保留构造失败的原因")
	assert.ErrorContains(t, err, "broken")
	assert.Equal(t, boot.CodeConstruction, xerrors.GetCode(err))

	require.Len(t, built, 1)
	assert.True(t, built[0].closed, "已构造的数据源应被关闭")
}

func TestBindFactoryErrorPropagates(t *testing.T) {
	var built []*trackedSource
	cause := errors.New("rule rejected")
	rec := &recorder{err: cause}
	b := newBinder(t, rec, boot.WithTypes(trackedTypes(t, &built, nil)))

	_, err := b.Bind(context.Background(), config.FromMap(map[string]any{
		boot.KeyDataSourceNames:                "ds0",
		boot.KeyDataSourcePrefix + ".ds0.type": "tracked",
	}))
	assert.Same(t, cause, err, "工厂错误应原样返回")
	assert.Empty(t, xerrors.GetCode(err), "工厂错误不附加错误码")
	require.Len(t, built, 1)
	assert.True(t, built[0].closed)
	assert.Equal(t, boot.Failed, b.State())
}

func TestBuildDataSourceRejectsInvalidSelection(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	b := newBinder(t, rec)
	registry := testkit.NewSQLiteRegistry(t, "ds0")

	_, err := b.BuildDataSource(ctx, registry, nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boot.ErrConfiguration))
	assert.ErrorContains(t, err, "rule selection is nil")

	_, err = b.BuildDataSource(ctx, registry, &rule.Sharding{}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boot.ErrConfiguration), "未知的选择类型应返回配置错误")
	assert.Equal(t, 0, rec.shardingCalls+rec.masterSlaveCalls)
}

func TestBindTwice(t *testing.T) {
	rec := &recorder{}
	b := newBinder(t, rec)
	props := config.FromMap(sqliteProps("ds0"))

	handle, err := b.Bind(context.Background(), props)
	require.NoError(t, err)
	defer handle.Close()

	_, err = b.Bind(context.Background(), props)
	assert.True(t, errors.Is(err, boot.ErrAlreadyConfigured))
	assert.Equal(t, 1, rec.shardingCalls)
	assert.Equal(t, boot.CodeAlreadyConfigured, xerrors.GetCode(err))

	failed := newBinder(t, &recorder{})
	_, err = failed.Bind(context.Background(), config.FromMap(map[string]any{"other": "x"}))
	require.Error(t, err)
	_, err = failed.Bind(context.Background(), props)
	assert.True(t, errors.Is(err, boot.ErrAlreadyConfigured), "失败后同样拒绝再次装配")
}

func TestResolveDataSourcesNames(t *testing.T) {
	ctx := context.Background()
	b := newBinder(t, &recorder{})

	tests := []struct {
		name  string
		props map[string]any
		want  string
	}{
		{"缺少 names", map[string]any{"other": "x"}, boot.KeyDataSourceNames},
		{"names 为空白", map[string]any{boot.KeyDataSourceNames: " , "}, boot.KeyDataSourceNames},
		{"names 重复", map[string]any{boot.KeyDataSourceNames: "ds0,ds0"}, "listed twice"},
		{"缺少 type", map[string]any{
			boot.KeyDataSourceNames:                "ds0",
			boot.KeyDataSourcePrefix + ".ds0.host": "db0",
		}, "missing type"},
		{"分组缺失", map[string]any{boot.KeyDataSourceNames: "ds0"}, "ds0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry, err := b.ResolveDataSources(ctx, config.FromMap(tt.props))
			assert.Nil(t, registry)
			assert.True(t, errors.Is(err, boot.ErrConfiguration))
			assert.ErrorContains(t, err, tt.want)
		})
	}

	props := sqliteProps("ds0", "ds1")
	props[boot.KeyDataSourceNames] = []any{"ds1", " ds0 "}
	registry, err := b.ResolveDataSources(ctx, config.FromMap(props))
	require.NoError(t, err)
	defer registry.Close()
	assert.Equal(t, []string{"ds0", "ds1"}, registry.Names(), "应支持列表写法")

	ds, ok := registry.Get("ds0")
	require.True(t, ok)
	assert.Equal(t, datasource.TypeSQLite, ds.Type())
	_, hasType := ds.Descriptor().Properties["type"]
	assert.False(t, hasType, "构造属性中不应包含 type")
}

func TestResolveSelection(t *testing.T) {
	b := newBinder(t, &recorder{})

	sel, err := b.ResolveSelection(config.FromMap(map[string]any{
		boot.KeySharding + ".default-data-source-name":           "ds0",
		boot.KeySharding + ".tables.orders.sharding-column":      "user_id",
		boot.KeySharding + ".tables.orders.sharding-count":       "4",
		boot.KeySharding + ".tables.orders.key-generator":        "snowflake",
		boot.KeySharding + ".tables.order_items.sharding-column": "user_id",
		boot.KeySharding + ".tables.order_items.sharding-count":  4,
		boot.KeySharding + ".binding-tables":                     []string{"orders,order_items"},
		boot.KeyShardingConfigMap + ".owner":                     "trade",
		boot.KeyShardingProps + ".sql.show":                      "true",
	}))
	require.NoError(t, err)
	sharding, ok := sel.(rule.Sharding)
	require.True(t, ok)
	assert.Equal(t, rule.KindSharding, sel.Kind())
	assert.Equal(t, "ds0", sharding.Rule.DefaultDataSourceName)
	assert.Equal(t, rule.TableRule{ShardingColumn: "user_id", ShardingCount: 4, KeyGenerator: rule.KeyGeneratorSnowflake},
		sharding.Rule.Tables["orders"])
	assert.Equal(t, uint(4), sharding.Rule.Tables["order_items"].ShardingCount)
	assert.Equal(t, [][]string{{"orders", "order_items"}}, sharding.Rule.BindingGroups())
	assert.Equal(t, "trade", sharding.ConfigMap["owner"])

	sel, err = b.ResolveSelection(config.FromMap(map[string]any{"other": "x"}))
	require.NoError(t, err)
	assert.Equal(t, rule.KindSharding, sel.Kind(), "未配置任何规则时为空分片规则")

	sel, err = b.ResolveSelection(config.FromMap(map[string]any{
		boot.KeyMasterSlaveMaster:                            "ds0",
		boot.KeyMasterSlave + ".slave-data-source-names":     "ds1, ds2 ,",
		boot.KeyMasterSlave + ".load-balance-algorithm-type": "random",
	}))
	require.NoError(t, err)
	ms, ok := sel.(rule.MasterSlave)
	require.True(t, ok)
	assert.Equal(t, []string{"ds1", "ds2"}, ms.Rule.SlaveDataSourceNames, "从库名称应去除空白")
	assert.Equal(t, rule.LoadBalanceRandom, ms.Rule.Algorithm())
}

func TestResolveOrchestration(t *testing.T) {
	b := newBinder(t, &recorder{})

	cfg, err := b.ResolveOrchestration(config.FromMap(map[string]any{"other": "x"}))
	require.NoError(t, err)
	assert.Nil(t, cfg)

	cfg, err = b.ResolveOrchestration(config.FromMap(map[string]any{
		boot.KeyOrchestration + ".name":           "order-service",
		boot.KeyOrchestration + ".overwrite":      "true",
		boot.KeyOrchestration + ".ttl":            "10s",
		boot.KeyOrchestration + ".etcd.endpoints": "10.0.0.1:2379,10.0.0.2:2379",
	}))
	require.NoError(t, err)
	assert.Equal(t, "order-service", cfg.Name)
	assert.True(t, cfg.Overwrite)
	assert.Equal(t, 10*time.Second, cfg.TTL)
	assert.Equal(t, []string{"10.0.0.1:2379", "10.0.0.2:2379"}, cfg.Etcd.Endpoints)
	assert.Equal(t, "/dsorch", cfg.Namespace)

	cfg, err = b.ResolveOrchestration(config.FromMap(map[string]any{
		boot.KeyOrchestration + ".name":                    "order-service",
		boot.KeyOrchestration + ".etcd.endpoints":          "10.0.0.1:2379",
		boot.KeyOrchestration + ".etcd.dial-timeout":       "2s",
		boot.KeyOrchestration + ".etcd.keep-alive-time":    "7s",
		boot.KeyOrchestration + ".etcd.keep_alive_timeout": "1s",
	}))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Etcd.DialTimeout, "kebab-case 键应绑定到 dial_timeout")
	assert.Equal(t, 7*time.Second, cfg.Etcd.KeepAliveTime)
	assert.Equal(t, time.Second, cfg.Etcd.KeepAliveTimeout)

	_, err = b.ResolveOrchestration(config.FromMap(map[string]any{
		boot.KeyOrchestration + ".etcd.endpoints": "10.0.0.1:2379",
	}))
	assert.True(t, errors.Is(err, boot.ErrConfiguration))
	assert.True(t, errors.Is(err, orchestration.ErrInvalidConfig))
}

func TestBindPassesOrchestrationAndOverrides(t *testing.T) {
	rec := &recorder{}
	b := newBinder(t, rec)

	props := sqliteProps("ds0")
	props[boot.KeyOrchestration+".name"] = "order-service"
	props[boot.KeyOrchestration+".etcd.endpoints"] = "127.0.0.1:2379"
	props[boot.KeyShardingProps+".executor.size"] = "16"

	handle, err := b.Bind(context.Background(), config.FromMap(props))
	require.NoError(t, err)
	defer handle.Close()

	require.NotNil(t, rec.orch)
	assert.Equal(t, "order-service", rec.orch.Name)
	assert.Equal(t, rule.Props{"executor.size": "16"}, rec.props)
}

func TestBindWithDefaultFactory(t *testing.T) {
	ctx := context.Background()
	b, err := boot.New(boot.WithLogger(testkit.NewLogger()))
	require.NoError(t, err)

	props := sqliteProps("ds0", "ds1")
	props[boot.KeyShardingProps+".executor.size"] = "2"

	handle, err := b.Bind(ctx, config.FromMap(props))
	require.NoError(t, err)
	defer handle.Close()

	sharding, ok := handle.(*factory.ShardingDataSource)
	require.True(t, ok, "默认工厂应返回分片数据源")
	assert.Equal(t, 2, sharding.ExecutorSize())
	require.NoError(t, handle.Ping(ctx))
	require.NotNil(t, handle.DB(ctx))
}

func TestBindWithOrchestrationCenter(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewMemoryStore()
	ms := factory.NewMasterSlave(factory.WithOpener(store.Opener()))

	b, err := boot.New(
		boot.WithLogger(testkit.NewLogger()),
		boot.WithMasterSlaveFactory(boot.MasterSlaveFactoryFunc(func(ctx context.Context, registry *datasource.Registry,
			r rule.MasterSlaveRule, orch *orchestration.Config, configMap map[string]any) (datasource.Handle, error) {
			h, err := ms.CreateDataSource(ctx, registry, r, orch, configMap)
			if err != nil {
				return nil, err
			}
			return h, nil
		})),
	)
	require.NoError(t, err)

	name := "ms-" + testkit.NewID()
	props := sqliteProps("ds0", "ds1")
	props[boot.KeyMasterSlaveMaster] = "ds0"
	props[boot.KeyMasterSlave+".slave-data-source-names"] = "ds1"
	props[boot.KeyOrchestration+".name"] = name
	props[boot.KeyOrchestration+".etcd.endpoints"] = "127.0.0.1:2379"

	handle, err := b.Bind(ctx, config.FromMap(props))
	require.NoError(t, err)

	snap, ok := store.Snapshot(name)
	require.True(t, ok)
	assert.Equal(t, rule.KindMasterSlave, snap.Kind)
	assert.Len(t, snap.DataSources, 2)
	assert.Equal(t, 1, store.Instances(name))

	require.NoError(t, handle.Close())
	assert.Equal(t, 0, store.Instances(name))
}

func TestBindRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	meter, err := metrics.New(&metrics.Config{Enabled: true, ServiceName: "boot-test"}, metrics.WithRegistry(reg))
	require.NoError(t, err)
	defer meter.Shutdown(context.Background())

	rec := &recorder{}
	b := newBinder(t, rec, boot.WithMetrics(meter))
	handle, err := b.Bind(context.Background(), config.FromMap(sqliteProps("ds0")))
	require.NoError(t, err)
	defer handle.Close()

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, strings.Join(names, " "), "dsorch_datasource_constructed")
	assert.Contains(t, strings.Join(names, " "), "dsorch_datasource_build")
}

func TestBindRecordsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	rec := &recorder{}
	b := newBinder(t, rec, boot.WithTracer(tp))
	handle, err := b.Bind(context.Background(), config.FromMap(sqliteProps("ds0")))
	require.NoError(t, err)
	defer handle.Close()

	spans := exporter.GetSpans()
	byName := make(map[string]tracetest.SpanStub)
	for _, s := range spans {
		byName[s.Name] = s
	}
	bind, ok := byName["boot.Bind"]
	require.True(t, ok, "应记录 Bind span")
	build, ok := byName["boot.BuildDataSource"]
	require.True(t, ok, "应记录 BuildDataSource span")
	assert.Equal(t, bind.SpanContext.SpanID(), build.Parent.SpanID(), "BuildDataSource 应是 Bind 的子 span")
	assert.Equal(t, bind.SpanContext.TraceID(), build.SpanContext.TraceID())

	t.Run("失败时记录错误状态", func(t *testing.T) {
		exporter.Reset()
		failed := newBinder(t, &recorder{err: errors.New("boom")}, boot.WithTracer(tp))
		_, err := failed.Bind(context.Background(), config.FromMap(sqliteProps("ds0")))
		require.Error(t, err)

		var statuses []codes.Code
		for _, s := range exporter.GetSpans() {
			statuses = append(statuses, s.Status.Code)
		}
		require.Len(t, statuses, 2)
		assert.Equal(t, []codes.Code{codes.Error, codes.Error}, statuses)
	})
}

const poolYAML = `
sharding:
  jdbc:
    datasource:
      names: ds0, ds1
      ds0:
        type: sqlite
        path: "file:yaml_ds0?mode=memory&cache=shared"
        max-open-conns: 4
      ds1:
        type: sqlite
        path: "file:yaml_ds1?mode=memory&cache=shared"
        max-open-conns: 2
        conn-max-lifetime: 10m
    config:
      sharding:
        default-data-source-name: ds1
        tables:
          orders:
            sharding-column: user_id
            sharding-count: 2
        props:
          executor.size: 3
`

func TestBindFromYAMLWithPoolSettings(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "application.yaml"), []byte(poolYAML), 0o644))

	loader, err := config.New(&config.Config{Name: "application", Paths: []string{dir}})
	require.NoError(t, err)
	require.NoError(t, loader.Load(ctx))

	b, err := boot.New(boot.WithLogger(testkit.NewLogger()))
	require.NoError(t, err)
	handle, err := b.Bind(ctx, loader)
	require.NoError(t, err, "仅设置 max-open-conns 的数据源应能构造")
	defer handle.Close()

	sharding, ok := handle.(*factory.ShardingDataSource)
	require.True(t, ok)
	assert.Equal(t, 3, sharding.ExecutorSize())
	assert.Equal(t, []string{"orders"}, sharding.Rule().TableNames())
	require.NoError(t, handle.Ping(ctx))

	db, ok := sharding.Using(ctx, "ds1")
	require.True(t, ok)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 2, sqlDB.Stats().MaxOpenConnections)
}
