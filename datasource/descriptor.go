package datasource

import (
	"maps"
	"strings"

	"github.com/ceyewan/dsorch/config"
	"github.com/ceyewan/dsorch/xerrors"
)

// Descriptor 描述一个具名数据源：名称、类型与构造属性
//
// 解析后不可变，Properties 是独立的副本，不包含 type。
type Descriptor struct {
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

// NewDescriptor 创建 Descriptor，复制 props 并丢弃其中的 type
func NewDescriptor(name, typ string, props map[string]any) Descriptor {
	cp := make(map[string]any, len(props))
	for k, v := range props {
		if strings.EqualFold(k, "type") {
			continue
		}
		cp[k] = v
	}
	return Descriptor{Name: name, Type: typ, Properties: cp}
}

// Property 按宽松规则查找属性：忽略大小写，"-" 与 "_" 等价
func (d Descriptor) Property(key string) (any, bool) {
	want := config.NormalizeKey(key)
	for k, v := range d.Properties {
		if config.NormalizeKey(k) == want {
			return v, true
		}
	}
	return nil, false
}

// Clone 返回属性的深拷贝（一层 map 嵌套）
func (d Descriptor) Clone() Descriptor {
	cp := Descriptor{Name: d.Name, Type: d.Type, Properties: make(map[string]any, len(d.Properties))}
	for k, v := range d.Properties {
		if m, ok := v.(map[string]any); ok {
			v = maps.Clone(m)
		}
		cp.Properties[k] = v
	}
	return cp
}

// Decode 将构造属性解码到 target
//
// 键名先做宽松归一化（小写，"-" 替换为 "_"），因此 max-open-conns、
// MAX_OPEN_CONNS 与 max_open_conns 绑定到同一个字段。
// 支持弱类型输入（"8" -> 8）、时长字符串（"30s"）与逗号分隔的切片。
func (d Descriptor) Decode(target any) error {
	if err := config.Decode(d.Properties, target); err != nil {
		return xerrors.Tag(ErrInvalidProperties, err, "datasource %q", d.Name)
	}
	return nil
}
