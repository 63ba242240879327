package boot

import (
	"context"
	"slices"
	"strings"

	"github.com/spf13/cast"

	"github.com/ceyewan/dsorch/clog"
	"github.com/ceyewan/dsorch/config"
	"github.com/ceyewan/dsorch/datasource"
	"github.com/ceyewan/dsorch/orchestration"
	"github.com/ceyewan/dsorch/rule"
	"github.com/ceyewan/dsorch/xerrors"
)

// ResolveDataSources 按 names 列表构造全部数据源
//
// 任何一个数据源失败时，已构造的数据源全部关闭，不返回注册表。
func (b *Binder) ResolveDataSources(ctx context.Context, props Properties) (*datasource.Registry, error) {
	names, err := dataSourceNames(props)
	if err != nil {
		return nil, err
	}

	descs := make([]datasource.Descriptor, 0, len(names))
	for _, name := range names {
		desc, err := dataSourceDescriptor(props, name)
		if err != nil {
			return nil, err
		}
		descs = append(descs, desc)
	}

	sources := make([]datasource.DataSource, 0, len(descs))
	for _, desc := range descs {
		ds, err := b.opts.types.Construct(ctx, desc, b.opts.base)
		b.metrics.DataSourceConstructed(ctx, desc.Type, err)
		if err != nil {
			b.closeAll(sources)
			b.logger.ErrorContext(ctx, "failed to construct datasource",
				clog.String("datasource", desc.Name), clog.String("type", desc.Type), clog.Error(err))
			return nil, xerrors.Tag(ErrConstruction, err, "datasource %q of type %q", desc.Name, desc.Type)
		}
		b.logger.DebugContext(ctx, "datasource constructed",
			clog.String("datasource", desc.Name), clog.String("type", desc.Type))
		sources = append(sources, ds)
	}

	registry, err := datasource.NewRegistry(sources...)
	if err != nil {
		b.closeAll(sources)
		return nil, xerrors.Tag(ErrConfiguration, err, "%s", KeyDataSourceNames)
	}
	b.logger.InfoContext(ctx, "datasources resolved", clog.Strings("names", registry.Names()))
	return registry, nil
}

func (b *Binder) closeAll(sources []datasource.DataSource) {
	for _, ds := range sources {
		if err := ds.Close(); err != nil {
			b.logger.Warn("failed to close datasource", clog.String("datasource", ds.Name()), clog.Error(err))
		}
	}
}

// dataSourceNames 读取 names，支持 "ds0,ds1" 与列表两种写法
func dataSourceNames(props Properties) ([]string, error) {
	var raw []string
	switch v := props.Get(KeyDataSourceNames).(type) {
	case nil:
	case string:
		raw = strings.Split(v, ",")
	default:
		list, err := cast.ToStringSliceE(v)
		if err != nil {
			return nil, xerrors.Tag(ErrConfiguration, err, "%s", KeyDataSourceNames)
		}
		raw = list
	}

	names := make([]string, 0, len(raw))
	for _, n := range raw {
		if n = strings.TrimSpace(n); n == "" {
			continue
		}
		if slices.Contains(names, n) {
			return nil, xerrors.Wrapf(ErrConfiguration, "%s: datasource %q listed twice", KeyDataSourceNames, n)
		}
		names = append(names, n)
	}
	if len(names) == 0 {
		return nil, xerrors.Wrapf(ErrConfiguration, "%s is required", KeyDataSourceNames)
	}
	return names, nil
}

// dataSourceDescriptor 读取 <prefix>.<name> 分组并转换为 Descriptor
func dataSourceDescriptor(props Properties, name string) (datasource.Descriptor, error) {
	key := KeyDataSourcePrefix + "." + name
	group, err := cast.ToStringMapE(props.Get(key))
	if err != nil || len(group) == 0 {
		return datasource.Descriptor{}, xerrors.Wrapf(ErrConfiguration, "missing datasource properties for %q (%s)", name, key)
	}

	var typ string
	for k, v := range group {
		if strings.EqualFold(k, KeyDataSourceType) {
			typ = strings.TrimSpace(cast.ToString(v))
		}
	}
	if typ == "" {
		return datasource.Descriptor{}, xerrors.Wrapf(ErrConfiguration, "missing type for datasource %q (%s.%s)", name, key, KeyDataSourceType)
	}
	return datasource.NewDescriptor(name, typ, group), nil
}

// ResolveOverrides 复制显式给出且非空的 sql.show 与 executor.size，不会失败
//
// 值不做解析，格式与默认值由工厂处理。
func (b *Binder) ResolveOverrides(props Properties) rule.Props {
	out := rule.Props{}
	for _, k := range overrideKeys {
		key := KeyShardingProps + "." + k
		if !props.IsSet(key) {
			continue
		}
		if v := strings.TrimSpace(props.GetString(key)); v != "" {
			out[k] = v
		}
	}
	return out
}

// ResolveSelection 按是否配置主库名称选择读写分离或分片规则
func (b *Binder) ResolveSelection(props Properties) (rule.Selection, error) {
	if strings.TrimSpace(props.GetString(KeyMasterSlaveMaster)) != "" {
		var r rule.MasterSlaveRule
		if err := props.UnmarshalKey(KeyMasterSlave, &r); err != nil {
			return nil, xerrors.Tag(ErrConfiguration, err, "%s", KeyMasterSlave)
		}
		r.SlaveDataSourceNames = trimNames(r.SlaveDataSourceNames)
		configMap, err := configMap(props, KeyMasterSlaveConfigMap)
		if err != nil {
			return nil, err
		}
		return rule.MasterSlave{Rule: r, ConfigMap: configMap}, nil
	}

	var r rule.ShardingRule
	if props.IsSet(KeySharding) {
		if err := props.UnmarshalKey(KeySharding, &r); err != nil {
			return nil, xerrors.Tag(ErrConfiguration, err, "%s", KeySharding)
		}
	}
	configMap, err := configMap(props, KeyShardingConfigMap)
	if err != nil {
		return nil, err
	}
	return rule.Sharding{Rule: r, ConfigMap: configMap}, nil
}

func trimNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func configMap(props Properties, key string) (map[string]any, error) {
	if !props.IsSet(key) {
		return nil, nil
	}
	m, err := cast.ToStringMapE(props.Get(key))
	if err != nil {
		return nil, xerrors.Tag(ErrConfiguration, err, "%s", key)
	}
	return m, nil
}

// ResolveOrchestration 读取协调中心配置，未配置时返回 nil
//
// 键名宽松匹配，etcd.dial-timeout 与 etcd.dial_timeout 等价。
func (b *Binder) ResolveOrchestration(props Properties) (*orchestration.Config, error) {
	if !props.IsSet(KeyOrchestration) {
		return nil, nil
	}
	raw, err := cast.ToStringMapE(props.Get(KeyOrchestration))
	if err != nil {
		return nil, xerrors.Tag(ErrConfiguration, err, "%s", KeyOrchestration)
	}
	var cfg orchestration.Config
	if err := config.Decode(raw, &cfg); err != nil {
		return nil, xerrors.Tag(ErrConfiguration, err, "%s", KeyOrchestration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, xerrors.Tag(ErrConfiguration, err, "%s", KeyOrchestration)
	}
	return &cfg, nil
}
