// Package rule 定义分片规则、读写分离规则以及二者的选择。
//
// 一个应用实例只会激活其中一种规则，Selection 在加载时确定，运行期不可变。
package rule

import (
	"maps"
	"slices"
	"strings"

	"github.com/ceyewan/dsorch/xerrors"
)

// ErrInvalidRule 规则与数据源不一致或字段非法
var ErrInvalidRule = xerrors.New("rule: invalid rule")

// Kind 规则类型
type Kind string

const (
	KindSharding    Kind = "sharding"
	KindMasterSlave Kind = "masterslave"
)

// Selection 已激活的规则，只有 Sharding 与 MasterSlave 两种实现
type Selection interface {
	Kind() Kind
	selection()
}

// Sharding 分片规则选择
type Sharding struct {
	Rule      ShardingRule
	ConfigMap map[string]any
}

func (Sharding) Kind() Kind { return KindSharding }
func (Sharding) selection() {}

// MasterSlave 读写分离规则选择
type MasterSlave struct {
	Rule      MasterSlaveRule
	ConfigMap map[string]any
}

func (MasterSlave) Kind() Kind { return KindMasterSlave }
func (MasterSlave) selection() {}

// KeyGenerator 分片表主键生成策略
type KeyGenerator string

const (
	KeyGeneratorSnowflake KeyGenerator = "snowflake"
	KeyGeneratorSequence  KeyGenerator = "sequence"
	KeyGeneratorNone      KeyGenerator = "none"
)

// TableRule 单张逻辑表的分片规则
type TableRule struct {
	ShardingColumn string       `mapstructure:"sharding-column" json:"shardingColumn"`
	ShardingCount  uint         `mapstructure:"sharding-count" json:"shardingCount"`
	KeyGenerator   KeyGenerator `mapstructure:"key-generator" json:"keyGenerator,omitempty"`
}

// ShardingRule 分片规则
//
// Tables 的 key 为逻辑表名。配置经 viper 读取时 key 会被转为小写。
type ShardingRule struct {
	DefaultDataSourceName string               `mapstructure:"default-data-source-name" json:"defaultDataSourceName,omitempty"`
	Tables                map[string]TableRule `mapstructure:"tables" json:"tables,omitempty"`
	BindingTables         []string             `mapstructure:"binding-tables" json:"bindingTables,omitempty"`
}

// DefaultDataSource 返回默认数据源名称
//
// 未配置时取排序后的第一个数据源。
func (r ShardingRule) DefaultDataSource(names []string) string {
	if r.DefaultDataSourceName != "" {
		return r.DefaultDataSourceName
	}
	if len(names) == 0 {
		return ""
	}
	sorted := slices.Sorted(slices.Values(names))
	return sorted[0]
}

// TableNames 返回排序后的逻辑表名
func (r ShardingRule) TableNames() []string {
	return slices.Sorted(maps.Keys(r.Tables))
}

// BindingGroups 将 "t_order,t_order_item" 形式的绑定表拆分为分组
func (r ShardingRule) BindingGroups() [][]string {
	var groups [][]string
	for _, raw := range r.BindingTables {
		var group []string
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				group = append(group, t)
			}
		}
		if len(group) > 0 {
			groups = append(groups, group)
		}
	}
	return groups
}

// Validate 检查规则引用的数据源都存在，表规则字段合法
func (r ShardingRule) Validate(names []string) error {
	if r.DefaultDataSourceName != "" && !slices.Contains(names, r.DefaultDataSourceName) {
		return xerrors.Wrapf(ErrInvalidRule, "default-data-source-name %q does not exist", r.DefaultDataSourceName)
	}

	for _, name := range r.TableNames() {
		t := r.Tables[name]
		if t.ShardingColumn == "" {
			return xerrors.Wrapf(ErrInvalidRule, "table %q: sharding-column is required", name)
		}
		if t.ShardingCount == 0 {
			return xerrors.Wrapf(ErrInvalidRule, "table %q: sharding-count must be positive", name)
		}
		switch t.KeyGenerator {
		case "", KeyGeneratorSnowflake, KeyGeneratorSequence, KeyGeneratorNone:
		default:
			return xerrors.Wrapf(ErrInvalidRule, "table %q: unknown key-generator %q", name, t.KeyGenerator)
		}
	}

	for _, group := range r.BindingGroups() {
		var count uint
		for i, name := range group {
			t, ok := r.Tables[name]
			if !ok {
				return xerrors.Wrapf(ErrInvalidRule, "binding table %q is not a sharding table", name)
			}
			if i == 0 {
				count = t.ShardingCount
			} else if t.ShardingCount != count {
				return xerrors.Wrapf(ErrInvalidRule, "binding tables %v must share sharding-count", group)
			}
		}
	}
	return nil
}

// LoadBalanceAlgorithm 从库负载均衡算法
type LoadBalanceAlgorithm string

const (
	LoadBalanceRoundRobin LoadBalanceAlgorithm = "round_robin"
	LoadBalanceRandom     LoadBalanceAlgorithm = "random"
)

// MasterSlaveRule 读写分离规则
type MasterSlaveRule struct {
	Name                 string               `mapstructure:"name" json:"name,omitempty"`
	MasterDataSourceName string               `mapstructure:"master-data-source-name" json:"masterDataSourceName"`
	SlaveDataSourceNames []string             `mapstructure:"slave-data-source-names" json:"slaveDataSourceNames"`
	LoadBalanceAlgorithm LoadBalanceAlgorithm `mapstructure:"load-balance-algorithm-type" json:"loadBalanceAlgorithmType,omitempty"`
}

// Algorithm 返回负载均衡算法，未配置时为 round_robin
func (r MasterSlaveRule) Algorithm() LoadBalanceAlgorithm {
	if r.LoadBalanceAlgorithm == "" {
		return LoadBalanceRoundRobin
	}
	return LoadBalanceAlgorithm(strings.ToLower(string(r.LoadBalanceAlgorithm)))
}

// Validate 检查主库与从库都存在且互不相同
func (r MasterSlaveRule) Validate(names []string) error {
	if r.MasterDataSourceName == "" {
		return xerrors.Wrap(ErrInvalidRule, "master-data-source-name is required")
	}
	if !slices.Contains(names, r.MasterDataSourceName) {
		return xerrors.Wrapf(ErrInvalidRule, "master data source %q does not exist", r.MasterDataSourceName)
	}
	if len(r.SlaveDataSourceNames) == 0 {
		return xerrors.Wrap(ErrInvalidRule, "slave-data-source-names is required")
	}
	seen := make(map[string]struct{}, len(r.SlaveDataSourceNames))
	for _, s := range r.SlaveDataSourceNames {
		if s == r.MasterDataSourceName {
			return xerrors.Wrapf(ErrInvalidRule, "data source %q cannot be both master and slave", s)
		}
		if !slices.Contains(names, s) {
			return xerrors.Wrapf(ErrInvalidRule, "slave data source %q does not exist", s)
		}
		if _, dup := seen[s]; dup {
			return xerrors.Wrapf(ErrInvalidRule, "slave data source %q listed twice", s)
		}
		seen[s] = struct{}{}
	}
	switch r.Algorithm() {
	case LoadBalanceRoundRobin, LoadBalanceRandom:
	default:
		return xerrors.Wrapf(ErrInvalidRule, "unknown load-balance-algorithm-type %q", r.LoadBalanceAlgorithm)
	}
	return nil
}
