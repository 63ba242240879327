package connector

import (
	"fmt"
	"time"
)

// PoolConfig database/sql 连接池配置，嵌入各数据库配置
type PoolConfig struct {
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数 (默认: min(10, MaxOpenConns))
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数 (默认: 100)
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大生命周期 (默认: 1h)
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`   // Connect 时 Ping 的超时 (默认: 5s)
}

func (c *PoolConfig) setDefaults() {
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 100
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = min(10, c.MaxOpenConns)
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = time.Hour
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 5 * time.Second
	}
}

func (c *PoolConfig) validate() error {
	if c.MaxIdleConns < 0 || c.MaxOpenConns < 0 {
		return fmt.Errorf("连接池大小不能小于0")
	}
	if c.MaxOpenConns > 0 && c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("最大空闲连接数不能大于最大打开连接数")
	}
	return nil
}

// MySQLConfig MySQL 连接配置
type MySQLConfig struct {
	Name string `mapstructure:"name"` // 连接器名称 (默认: "default")

	// 核心配置
	DSN      string `mapstructure:"dsn"`      // 完整 DSN (可选，若提供则忽略 Host/Port 等)
	Host     string `mapstructure:"host"`     // [必填] 主机地址
	Port     int    `mapstructure:"port"`     // 端口 (默认: 3306)
	Username string `mapstructure:"username"` // [必填] 用户名
	Password string `mapstructure:"password"` // 密码
	Database string `mapstructure:"database"` // [必填] 数据库名
	Charset  string `mapstructure:"charset"`  // 字符集 (默认: "utf8mb4")

	PoolConfig `mapstructure:",squash"`
}

func (c *MySQLConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.Port == 0 {
		c.Port = 3306
	}
	if c.Charset == "" {
		c.Charset = "utf8mb4"
	}
	c.PoolConfig.setDefaults()
}

func (c *MySQLConfig) validate() error {
	c.setDefaults()
	if c.DSN == "" {
		if c.Host == "" {
			return fmt.Errorf("主机地址不能为空")
		}
		if c.Port <= 0 {
			return fmt.Errorf("端口必须大于0")
		}
		if c.Username == "" {
			return fmt.Errorf("用户名不能为空")
		}
		if c.Database == "" {
			return fmt.Errorf("数据库名不能为空")
		}
	}
	return c.PoolConfig.validate()
}

func (c *MySQLConfig) dsn() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database, c.Charset)
}

// PostgreSQLConfig PostgreSQL 连接配置
type PostgreSQLConfig struct {
	Name string `mapstructure:"name"` // 连接器名称 (默认: "default")

	DSN      string `mapstructure:"dsn"`      // 完整 DSN (可选)
	Host     string `mapstructure:"host"`     // [必填] 主机地址
	Port     int    `mapstructure:"port"`     // 端口 (默认: 5432)
	Username string `mapstructure:"username"` // [必填] 用户名
	Password string `mapstructure:"password"` // 密码
	Database string `mapstructure:"database"` // [必填] 数据库名
	SSLMode  string `mapstructure:"sslmode"`  // SSL 模式 (默认: "disable")
	Timezone string `mapstructure:"timezone"` // 时区 (默认: "UTC")

	PoolConfig `mapstructure:",squash"`
}

func (c *PostgreSQLConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	c.PoolConfig.setDefaults()
}

func (c *PostgreSQLConfig) validate() error {
	c.setDefaults()
	if c.DSN == "" {
		if c.Host == "" {
			return fmt.Errorf("主机地址不能为空")
		}
		if c.Username == "" {
			return fmt.Errorf("用户名不能为空")
		}
		if c.Database == "" {
			return fmt.Errorf("数据库名不能为空")
		}
	}
	return c.PoolConfig.validate()
}

func (c *PostgreSQLConfig) dsn() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode, c.Timezone)
}

// SQLiteConfig SQLite 连接配置
//
// 内存数据库需要 cache=shared 才能在连接池的多个连接之间共享，
// 例如 "file:ds0?mode=memory&cache=shared"。
type SQLiteConfig struct {
	Name string `mapstructure:"name"` // 连接器名称 (默认: "default")
	Path string `mapstructure:"path"` // [必填] 文件路径或 URI

	PoolConfig `mapstructure:",squash"`
}

func (c *SQLiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	c.PoolConfig.setDefaults()
}

func (c *SQLiteConfig) validate() error {
	c.setDefaults()
	if c.Path == "" {
		return fmt.Errorf("SQLite路径不能为空")
	}
	return c.PoolConfig.validate()
}

// EtcdConfig Etcd 连接配置
type EtcdConfig struct {
	Name string `mapstructure:"name"` // 连接器名称 (默认: "default")

	Endpoints []string `mapstructure:"endpoints"` // [必填] 连接地址列表
	Username  string   `mapstructure:"username"`  // [可选] 认证用户
	Password  string   `mapstructure:"password"`  // [可选] 认证密码

	DialTimeout      time.Duration `mapstructure:"dial_timeout"`       // 连接超时 (默认: 5s)
	KeepAliveTime    time.Duration `mapstructure:"keep_alive_time"`    // 心跳间隔 (默认: 10s)
	KeepAliveTimeout time.Duration `mapstructure:"keep_alive_timeout"` // 心跳超时 (默认: 3s)
}

func (c *EtcdConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.KeepAliveTime == 0 {
		c.KeepAliveTime = 10 * time.Second
	}
	if c.KeepAliveTimeout == 0 {
		c.KeepAliveTimeout = 3 * time.Second
	}
}

func (c *EtcdConfig) validate() error {
	c.setDefaults()
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("Etcd端点不能为空")
	}
	return nil
}
