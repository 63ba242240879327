package datasource

import (
	"context"

	"github.com/ceyewan/dsorch/clog"
	"github.com/ceyewan/dsorch/connector"
)

// 内置类型名
const (
	TypeMySQL      = "mysql"
	TypePostgres   = "postgres"
	TypePostgreSQL = "postgresql"
	TypeSQLite     = "sqlite"
)

// MySQLConstructor 返回 mysql 构造器，opts 追加到每个连接器上，例如 connector.WithTracer
func MySQLConstructor(opts ...connector.Option) Constructor {
	return func(ctx context.Context, desc Descriptor, logger clog.Logger) (DataSource, error) {
		var cfg connector.MySQLConfig
		if err := desc.Decode(&cfg); err != nil {
			return nil, err
		}
		if cfg.Name == "" {
			cfg.Name = desc.Name
		}
		conn, err := connector.NewMySQL(&cfg, connectorOptions(logger, opts)...)
		if err != nil {
			return nil, err
		}
		return connect(ctx, desc, conn)
	}
}

// PostgresConstructor 返回 postgres 构造器
func PostgresConstructor(opts ...connector.Option) Constructor {
	return func(ctx context.Context, desc Descriptor, logger clog.Logger) (DataSource, error) {
		var cfg connector.PostgreSQLConfig
		if err := desc.Decode(&cfg); err != nil {
			return nil, err
		}
		if cfg.Name == "" {
			cfg.Name = desc.Name
		}
		conn, err := connector.NewPostgreSQL(&cfg, connectorOptions(logger, opts)...)
		if err != nil {
			return nil, err
		}
		return connect(ctx, desc, conn)
	}
}

// SQLiteConstructor 返回 sqlite 构造器
func SQLiteConstructor(opts ...connector.Option) Constructor {
	return func(ctx context.Context, desc Descriptor, logger clog.Logger) (DataSource, error) {
		var cfg connector.SQLiteConfig
		if err := desc.Decode(&cfg); err != nil {
			return nil, err
		}
		if cfg.Name == "" {
			cfg.Name = desc.Name
		}
		conn, err := connector.NewSQLite(&cfg, connectorOptions(logger, opts)...)
		if err != nil {
			return nil, err
		}
		return connect(ctx, desc, conn)
	}
}

// NewMySQL 使用默认选项的 mysql 构造器
func NewMySQL(ctx context.Context, desc Descriptor, logger clog.Logger) (DataSource, error) {
	return MySQLConstructor()(ctx, desc, logger)
}

// NewPostgres 使用默认选项的 postgres 构造器
func NewPostgres(ctx context.Context, desc Descriptor, logger clog.Logger) (DataSource, error) {
	return PostgresConstructor()(ctx, desc, logger)
}

// NewSQLite 使用默认选项的 sqlite 构造器
func NewSQLite(ctx context.Context, desc Descriptor, logger clog.Logger) (DataSource, error) {
	return SQLiteConstructor()(ctx, desc, logger)
}

func connectorOptions(logger clog.Logger, opts []connector.Option) []connector.Option {
	return append([]connector.Option{connector.WithLogger(logger)}, opts...)
}

// connect 在构造阶段建立连接，连接失败视为构造失败
func connect(ctx context.Context, desc Descriptor, conn connector.DatabaseConnector) (DataSource, error) {
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}
	return FromConnector(desc, conn), nil
}
