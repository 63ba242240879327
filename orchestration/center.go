// Package orchestration 将数据源与规则配置同步到协调中心，并登记运行实例。
//
// 同一 Name 下的所有实例共享一份配置快照：
//
//	<namespace>/<name>/config/datasource
//	<namespace>/<name>/config/rule
//	<namespace>/<name>/config/configmap
//	<namespace>/<name>/config/props
//	<namespace>/<name>/state/instances/<id>   （随租约过期）
//
// Overwrite 为 false 时只写入中心尚不存在的 key，已有配置优先。
package orchestration

import (
	"context"

	"github.com/ceyewan/dsorch/xerrors"
)

var (
	// ErrNotFound 中心尚未保存任何配置
	ErrNotFound = xerrors.Wrap(xerrors.ErrNotFound, "orchestration: snapshot")

	// ErrInvalidConfig 协调中心配置非法
	ErrInvalidConfig = xerrors.Wrap(xerrors.ErrInvalidInput, "orchestration: invalid config")

	// ErrClosed 中心已关闭
	ErrClosed = xerrors.New("orchestration: center closed")
)

// Center 协调中心
type Center interface {
	// Persist 写入配置快照，overwrite 为 false 时已存在的 key 保持不变
	Persist(ctx context.Context, snap Snapshot, overwrite bool) error

	// Load 读取配置快照，未保存时返回 ErrNotFound
	Load(ctx context.Context) (*Snapshot, error)

	// RegisterInstance 登记当前实例，租约在 Close 前持续续约
	RegisterInstance(ctx context.Context) (string, error)

	// Close 撤销实例租约并释放连接
	Close() error
}

// Opener 由配置打开协调中心，factory 通过它获取 Center
type Opener func(ctx context.Context, cfg *Config) (Center, error)
