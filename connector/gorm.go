package connector

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ceyewan/dsorch/clog"
	"github.com/ceyewan/dsorch/xerrors"
)

// gormConnector 是 MySQL、PostgreSQL、SQLite 连接器的公共实现
//
// 各方言只负责校验配置并提供 Dialector。
type gormConnector struct {
	name    string
	dialect string
	pool    PoolConfig
	open    func() gorm.Dialector
	logger  clog.Logger
	tracer  trace.TracerProvider

	mu      sync.RWMutex
	db      *gorm.DB
	healthy atomic.Bool
}

func newGormConnector(name, dialect string, pool PoolConfig, open func() gorm.Dialector, opt *options) *gormConnector {
	return &gormConnector{
		name:    name,
		dialect: dialect,
		pool:    pool,
		open:    open,
		logger:  opt.logger.With(clog.String("connector", dialect), clog.String("name", name)),
		tracer:  opt.tracer,
	}
}

// Connect 建立连接
func (c *gormConnector) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return nil
	}

	c.logger.Info("attempting to connect")

	db, err := gorm.Open(c.open(), &gorm.Config{
		Logger: NewGormLogger(c.logger, logger.Warn),
	})
	if err != nil {
		c.logger.Error("failed to open database", clog.Error(err))
		return xerrors.Tag(ErrConnection, err, "%s connector[%s]", c.dialect, c.name)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return xerrors.Tag(ErrConnection, err, "%s connector[%s]: failed to get db instance", c.dialect, c.name)
	}

	sqlDB.SetMaxIdleConns(c.pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(c.pool.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, c.pool.ConnectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		c.logger.Error("failed to ping database", clog.Error(err))
		return xerrors.Tag(ErrConnection, err, "%s connector[%s]: ping failed", c.dialect, c.name)
	}

	if c.tracer != nil {
		plugin := otelgorm.NewPlugin(otelgorm.WithTracerProvider(c.tracer), otelgorm.WithDBName(c.name))
		if err := db.Use(plugin); err != nil {
			_ = sqlDB.Close()
			return xerrors.Tag(ErrConnection, err, "%s connector[%s]: failed to register tracing", c.dialect, c.name)
		}
	}

	c.db = db
	c.healthy.Store(true)
	c.logger.Info("successfully connected")
	return nil
}

// Close 关闭连接
func (c *gormConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.healthy.Store(false)
	if c.db == nil {
		return nil
	}

	sqlDB, err := c.db.DB()
	c.db = nil
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		c.logger.Error("failed to close connection", clog.Error(err))
		return err
	}
	c.logger.Info("connection closed")
	return nil
}

// HealthCheck 检查连接健康状态
func (c *gormConnector) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	db := c.db
	c.mu.RUnlock()

	if db == nil {
		c.healthy.Store(false)
		return xerrors.Wrapf(ErrClientNil, "%s connector[%s]", c.dialect, c.name)
	}

	sqlDB, err := db.DB()
	if err != nil {
		c.healthy.Store(false)
		return xerrors.Tag(ErrHealthCheck, err, "%s connector[%s]", c.dialect, c.name)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		c.healthy.Store(false)
		c.logger.Warn("health check failed", clog.Error(err))
		return xerrors.Tag(ErrHealthCheck, err, "%s connector[%s]", c.dialect, c.name)
	}

	c.healthy.Store(true)
	return nil
}

func (c *gormConnector) IsHealthy() bool {
	return c.healthy.Load()
}

func (c *gormConnector) Name() string {
	return c.name
}

func (c *gormConnector) Dialect() string {
	return c.dialect
}

// GetClient 返回 GORM 客户端
func (c *gormConnector) GetClient() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}
