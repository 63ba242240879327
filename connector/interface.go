// Package connector 为 dsorch 提供统一的连接管理能力。
//
// 核心特性：
//   - 统一抽象：通过 Connector 接口提供一致的连接管理 API
//   - 类型安全：通过 TypedConnector[T] 泛型接口确保编译时类型检查
//   - 多数据源支持：MySQL、PostgreSQL、SQLite（基于 GORM）以及 Etcd
//   - 延迟连接：NewXXX() 只校验配置，Connect() 时才建立连接
//   - 幂等：Connect() 与 Close() 均可安全重复调用
//
// 基本使用：
//
//	conn, err := connector.NewMySQL(&connector.MySQLConfig{
//		Host:     "127.0.0.1",
//		Username: "root",
//		Database: "orders_0",
//	}, connector.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	if err := conn.Connect(ctx); err != nil {
//		return err
//	}
//	db := conn.GetClient()
//
// 资源所有权：
//
//	Connector 拥有底层连接的生命周期。datasource 包中的数据源持有 Connector，
//	并在自身 Close 时关闭它。
package connector

import (
	"context"

	clientv3 "go.etcd.io/etcd/client/v3"
	"gorm.io/gorm"
)

// Connector 定义所有连接器的通用行为
//
// 接口方法均为并发安全。
type Connector interface {
	// Connect 建立连接，幂等
	//
	// 返回错误：
	//   - ErrConnection: 连接建立失败
	Connect(ctx context.Context) error

	// Close 关闭连接并释放资源，幂等
	Close() error

	// HealthCheck 检查连接健康状态，并更新 IsHealthy 的缓存结果
	//
	// 返回错误：
	//   - ErrClientNil: 客户端未初始化或已关闭
	//   - ErrHealthCheck: 健康检查失败
	HealthCheck(ctx context.Context) error

	// IsHealthy 返回最后一次检查的健康状态，无阻塞
	IsHealthy() bool

	// Name 返回连接实例名称，用于日志
	Name() string
}

// TypedConnector 提供类型安全的客户端访问
//
// 在 Connect() 之前或 Close() 之后 GetClient() 返回 nil。
type TypedConnector[T any] interface {
	Connector
	GetClient() T
}

// DatabaseConnector 基于 GORM 的关系型数据库连接器
//
// MySQL、PostgreSQL、SQLite 共用此接口。
type DatabaseConnector interface {
	TypedConnector[*gorm.DB]

	// Dialect 返回方言名称：mysql、postgres 或 sqlite
	Dialect() string
}

// EtcdConnector Etcd 连接器接口
type EtcdConnector interface {
	TypedConnector[*clientv3.Client]
}
