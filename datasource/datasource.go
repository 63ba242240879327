// Package datasource 定义具名数据源、构造器注册表与数据源注册表。
//
// 数据源由 Descriptor 描述，通过 Types 中按类型名注册的 Constructor 构造，
// 构造完成的数据源集中放入 Registry，交给 factory 包装配为最终的 Handle。
package datasource

import (
	"context"

	"gorm.io/gorm"

	"github.com/ceyewan/dsorch/connector"
)

// Handle 宿主应用使用的数据源句柄
type Handle interface {
	// DB 返回绑定了 ctx 的 GORM 会话
	DB(ctx context.Context) *gorm.DB

	// Ping 检查底层连接
	Ping(ctx context.Context) error

	// Close 释放句柄持有的全部资源
	Close() error
}

// DataSource 一个已构造并连接的具名数据源
type DataSource interface {
	Handle

	Name() string
	Type() string
	Descriptor() Descriptor
}

// gormDataSource 基于 connector.DatabaseConnector 的数据源
type gormDataSource struct {
	desc Descriptor
	conn connector.DatabaseConnector
}

// FromConnector 由已连接的 connector 包装出数据源，Close 时关闭 connector
func FromConnector(desc Descriptor, conn connector.DatabaseConnector) DataSource {
	return &gormDataSource{desc: desc, conn: conn}
}

func (d *gormDataSource) Name() string           { return d.desc.Name }
func (d *gormDataSource) Type() string           { return d.desc.Type }
func (d *gormDataSource) Descriptor() Descriptor { return d.desc.Clone() }

func (d *gormDataSource) DB(ctx context.Context) *gorm.DB {
	db := d.conn.GetClient()
	if db == nil {
		return nil
	}
	return db.WithContext(ctx)
}

func (d *gormDataSource) Ping(ctx context.Context) error {
	return d.conn.HealthCheck(ctx)
}

func (d *gormDataSource) Close() error {
	return d.conn.Close()
}
