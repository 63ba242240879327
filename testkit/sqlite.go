package testkit

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ceyewan/dsorch/datasource"
)

// SQLitePath 返回一个进程内共享的独立内存库路径
//
// 同一路径的多个连接看到同一个库，最后一个连接关闭后数据被清理。
func SQLitePath(name string) string {
	return fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, NewID())
}

// SQLiteProperties 返回 sqlite 数据源的配置属性，包含 type
func SQLiteProperties(name string) map[string]any {
	return map[string]any{
		"type": datasource.TypeSQLite,
		"path": SQLitePath(name),
	}
}

// SQLiteDescriptor 返回一个内存 sqlite 数据源描述
func SQLiteDescriptor(name string) datasource.Descriptor {
	return datasource.NewDescriptor(name, datasource.TypeSQLite, SQLiteProperties(name))
}

// NewSQLiteDataSource 构造并连接内存 sqlite 数据源，生命周期由 t.Cleanup 管理
func NewSQLiteDataSource(t *testing.T, name string) datasource.DataSource {
	t.Helper()
	ds, err := datasource.NewSQLite(context.Background(), SQLiteDescriptor(name), NewLogger())
	require.NoError(t, err, "failed to construct sqlite datasource")
	t.Cleanup(func() {
		_ = ds.Close()
	})
	return ds
}

// NewSQLiteRegistry 构造由多个内存 sqlite 数据源组成的注册表
func NewSQLiteRegistry(t *testing.T, names ...string) *datasource.Registry {
	t.Helper()
	sources := make([]datasource.DataSource, 0, len(names))
	for _, name := range names {
		sources = append(sources, NewSQLiteDataSource(t, name))
	}
	registry, err := datasource.NewRegistry(sources...)
	require.NoError(t, err)
	return registry
}

// Exec 在数据源上执行建表等准备语句
func Exec(t *testing.T, db *gorm.DB, statements ...string) {
	t.Helper()
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error, "exec %q", stmt)
	}
}
