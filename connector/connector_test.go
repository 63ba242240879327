package connector

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/gorm/logger"

	"github.com/ceyewan/dsorch/clog"
	"github.com/ceyewan/dsorch/xerrors"
)

func TestPoolConfigDefaults(t *testing.T) {
	tests := []struct {
		name     string
		pool     PoolConfig
		wantIdle int
		wantOpen int
	}{
		{"全部缺省", PoolConfig{}, 10, 100},
		{"仅设置较小的 max_open_conns", PoolConfig{MaxOpenConns: 2}, 2, 2},
		{"仅设置 max_open_conns 为 9", PoolConfig{MaxOpenConns: 9}, 9, 9},
		{"显式设置两者", PoolConfig{MaxIdleConns: 3, MaxOpenConns: 50}, 3, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &SQLiteConfig{Path: "file:pool?mode=memory", PoolConfig: tt.pool}
			require.NoError(t, cfg.validate())
			assert.Equal(t, tt.wantIdle, cfg.MaxIdleConns)
			assert.Equal(t, tt.wantOpen, cfg.MaxOpenConns)
		})
	}

	cfg := &SQLiteConfig{Path: "file:pool?mode=memory", PoolConfig: PoolConfig{MaxIdleConns: 5, MaxOpenConns: 2}}
	assert.ErrorContains(t, cfg.validate(), "最大空闲连接数", "显式的 idle > open 仍应拒绝")
}

// TestMySQLConfigValidation 测试 MySQL 配置验证
func TestMySQLConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *MySQLConfig
		wantErr     bool
		errContains string
	}{
		{
			name: "valid config with defaults",
			cfg:  &MySQLConfig{Host: "localhost", Username: "root", Database: "orders"},
		},
		{
			name: "dsn skips field checks",
			cfg:  &MySQLConfig{DSN: "root:@tcp(127.0.0.1:3306)/orders"},
		},
		{
			name:        "empty host should fail",
			cfg:         &MySQLConfig{Username: "root", Database: "orders"},
			wantErr:     true,
			errContains: "主机地址不能为空",
		},
		{
			name:        "empty database should fail",
			cfg:         &MySQLConfig{Host: "localhost", Username: "root"},
			wantErr:     true,
			errContains: "数据库名不能为空",
		},
		{
			name: "idle greater than open should fail",
			cfg: &MySQLConfig{
				Host: "localhost", Username: "root", Database: "orders",
				PoolConfig: PoolConfig{MaxIdleConns: 20, MaxOpenConns: 5},
			},
			wantErr:     true,
			errContains: "最大空闲连接数",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "default", tt.cfg.Name)
			assert.Equal(t, 3306, tt.cfg.Port)
			assert.Equal(t, "utf8mb4", tt.cfg.Charset)
			assert.Equal(t, time.Hour, tt.cfg.ConnMaxLifetime)
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := &MySQLConfig{Host: "db", Port: 3307, Username: "u", Password: "p", Database: "orders"}
	require.NoError(t, cfg.validate())
	assert.Equal(t, "u:p@tcp(db:3307)/orders?charset=utf8mb4&parseTime=True&loc=Local", cfg.dsn())

	cfg = &MySQLConfig{DSN: "custom"}
	require.NoError(t, cfg.validate())
	assert.Equal(t, "custom", cfg.dsn())
}

func TestPostgreSQLConfig(t *testing.T) {
	cfg := &PostgreSQLConfig{Host: "pg", Username: "u", Database: "orders"}
	require.NoError(t, cfg.validate())
	assert.Equal(t, 5432, cfg.Port)
	assert.Contains(t, cfg.dsn(), "sslmode=disable")
	assert.Contains(t, cfg.dsn(), "TimeZone=UTC")

	err := (&PostgreSQLConfig{Host: "pg"}).validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "用户名不能为空")
}

func TestEtcdConfigValidation(t *testing.T) {
	err := (&EtcdConfig{}).validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Etcd端点不能为空")

	cfg := &EtcdConfig{Endpoints: []string{"127.0.0.1:2379"}}
	require.NoError(t, cfg.validate())
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, 10*time.Second, cfg.KeepAliveTime)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := NewMySQL(&MySQLConfig{})
	assert.True(t, xerrors.Is(err, ErrConfig))

	_, err = NewPostgreSQL(nil)
	assert.True(t, xerrors.Is(err, ErrConfig))

	_, err = NewSQLite(&SQLiteConfig{})
	assert.True(t, xerrors.Is(err, ErrConfig))

	_, err = NewEtcd(&EtcdConfig{})
	assert.True(t, xerrors.Is(err, ErrConfig))
}

// TestSQLiteConnector 测试 SQLite 连接器的完整生命周期
func TestSQLiteConnector(t *testing.T) {
	ctx := context.Background()
	conn, err := NewSQLite(&SQLiteConfig{Name: "lifecycle", Path: "file:lifecycle?mode=memory&cache=shared"})
	require.NoError(t, err)

	assert.Equal(t, "lifecycle", conn.Name())
	assert.Equal(t, "sqlite", conn.Dialect())
	assert.Nil(t, conn.GetClient(), "Connect 之前客户端应为 nil")
	assert.False(t, conn.IsHealthy())
	assert.True(t, xerrors.Is(conn.HealthCheck(ctx), ErrClientNil))

	require.NoError(t, conn.Connect(ctx))
	require.NoError(t, conn.Connect(ctx), "Connect 应当幂等")
	require.NotNil(t, conn.GetClient())
	assert.True(t, conn.IsHealthy())
	require.NoError(t, conn.HealthCheck(ctx))

	var one int
	require.NoError(t, conn.GetClient().Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close(), "Close 应当幂等")
	assert.Nil(t, conn.GetClient())
	assert.False(t, conn.IsHealthy())
}

func TestSQLiteConnectFailure(t *testing.T) {
	conn, err := NewSQLite(&SQLiteConfig{Path: "/nonexistent/dir/ds.db"})
	require.NoError(t, err)

	err = conn.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, ErrConnection))
	assert.Nil(t, conn.GetClient())
}

func TestSQLiteConnectorTracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	conn, err := NewSQLite(&SQLiteConfig{Name: "traced", Path: "file:traced?mode=memory&cache=shared"}, WithTracer(tp))
	require.NoError(t, err)
	require.NoError(t, conn.Connect(context.Background()))
	defer conn.Close()

	var one int
	require.NoError(t, conn.GetClient().Raw("SELECT 1").Scan(&one).Error)
	assert.NotEmpty(t, exporter.GetSpans(), "注册 tracer 后 SQL 应产生 span")
}

func TestGormLogger(t *testing.T) {
	gl := NewGormLogger(clog.Discard(), logger.Warn)
	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		t.Fatal("warn 级别下快速 SQL 不应求值")
		return "", 0
	}, nil)

	shown := gl.LogMode(logger.Info)
	var called bool
	shown.Trace(context.Background(), time.Now(), func() (string, int64) {
		called = true
		return "SELECT 1", 1
	}, nil)
	assert.True(t, called, "info 级别下应记录每条 SQL")
}

// TestEtcdConnectorIntegration 需要真实的 etcd，通过 DSORCH_ETCD_ENDPOINTS 指定
func TestEtcdConnectorIntegration(t *testing.T) {
	endpoints := os.Getenv("DSORCH_ETCD_ENDPOINTS")
	if endpoints == "" {
		t.Skip("DSORCH_ETCD_ENDPOINTS not set")
	}

	ctx := context.Background()
	conn, err := NewEtcd(&EtcdConfig{Endpoints: strings.Split(endpoints, ",")})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Connect(ctx))
	require.NoError(t, conn.HealthCheck(ctx))
	assert.True(t, conn.IsHealthy())
	assert.NotNil(t, conn.GetClient())
}
