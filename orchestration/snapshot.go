package orchestration

import (
	"maps"
	"strings"

	"github.com/ceyewan/dsorch/datasource"
	"github.com/ceyewan/dsorch/rule"
)

// MaskedValue 敏感属性在中心中的取值
const MaskedValue = "******"

// Snapshot 一个编排实例的完整配置
type Snapshot struct {
	DataSources []datasource.Descriptor `json:"dataSources"`
	Kind        rule.Kind               `json:"kind"`
	Sharding    *rule.ShardingRule      `json:"sharding,omitempty"`
	MasterSlave *rule.MasterSlaveRule   `json:"masterSlave,omitempty"`
	ConfigMap   map[string]any          `json:"configMap,omitempty"`
	Props       rule.Props              `json:"props,omitempty"`
}

// NewSnapshot 由数据源描述与规则选择构造快照
func NewSnapshot(descs []datasource.Descriptor, sel rule.Selection, props rule.Props) Snapshot {
	snap := Snapshot{DataSources: descs, Kind: sel.Kind(), Props: props.Clone()}
	switch s := sel.(type) {
	case rule.Sharding:
		r := s.Rule
		snap.Sharding = &r
		snap.ConfigMap = maps.Clone(s.ConfigMap)
	case rule.MasterSlave:
		r := s.Rule
		snap.MasterSlave = &r
		snap.ConfigMap = maps.Clone(s.ConfigMap)
	}
	return snap
}

// Masked 返回密码类属性被替换为 MaskedValue 的副本
func (s Snapshot) Masked() Snapshot {
	out := s
	out.DataSources = make([]datasource.Descriptor, len(s.DataSources))
	for i, d := range s.DataSources {
		c := d.Clone()
		for k := range c.Properties {
			if isSecretKey(k) {
				c.Properties[k] = MaskedValue
			}
		}
		out.DataSources[i] = c
	}
	return out
}

func isSecretKey(k string) bool {
	k = strings.ToLower(k)
	return strings.Contains(k, "password") || strings.Contains(k, "passwd") || k == "dsn"
}
