package orchestration

import (
	"strings"
	"time"

	"github.com/ceyewan/dsorch/connector"
	"github.com/ceyewan/dsorch/xerrors"
)

// TypeEtcd 目前唯一支持的协调中心类型
const TypeEtcd = "etcd"

// Config 协调中心配置
//
//	sharding.jdbc.config.orchestration:
//	  name: order-service
//	  overwrite: false
//	  type: etcd
//	  namespace: /dsorch
//	  ttl: 30s
//	  etcd:
//	    endpoints: 127.0.0.1:2379
type Config struct {
	Name      string               `mapstructure:"name" json:"name"`           // [必填] 编排实例名称，同名实例共享配置
	Overwrite bool                 `mapstructure:"overwrite" json:"overwrite"` // 本地配置是否覆盖中心配置 (默认: false)
	Type      string               `mapstructure:"type" json:"type"`           // 中心类型 (默认: etcd)
	Namespace string               `mapstructure:"namespace" json:"namespace"` // key 前缀 (默认: /dsorch)
	TTL       time.Duration        `mapstructure:"ttl" json:"ttl"`             // 实例租约 (默认: 30s)
	Etcd      connector.EtcdConfig `mapstructure:"etcd" json:"-"`
}

// SetDefaults 设置默认值
func (c *Config) SetDefaults() {
	if c.Type == "" {
		c.Type = TypeEtcd
	}
	c.Type = strings.ToLower(c.Type)
	if c.Namespace == "" {
		c.Namespace = "/dsorch"
	}
	c.Namespace = "/" + strings.Trim(c.Namespace, "/")
	if c.TTL == 0 {
		c.TTL = 30 * time.Second
	}
	if c.Etcd.Name == "" {
		c.Etcd.Name = "orchestration"
	}
}

// Validate 设置默认值并检查配置
func (c *Config) Validate() error {
	c.SetDefaults()
	if strings.TrimSpace(c.Name) == "" {
		return xerrors.Wrap(ErrInvalidConfig, "name is required")
	}
	if strings.Contains(c.Name, "/") {
		return xerrors.Wrapf(ErrInvalidConfig, "name %q must not contain '/'", c.Name)
	}
	if c.Type != TypeEtcd {
		return xerrors.Wrapf(ErrInvalidConfig, "unsupported type %q", c.Type)
	}
	if c.TTL < time.Second {
		return xerrors.Wrapf(ErrInvalidConfig, "ttl %s must be at least 1s", c.TTL)
	}
	if len(c.Etcd.Endpoints) == 0 {
		return xerrors.Wrap(ErrInvalidConfig, "etcd.endpoints is required")
	}
	return nil
}
