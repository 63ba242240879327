// Package config 为 dsorch 提供统一的属性加载能力，基于 Viper 实现。
//
// 特性：
//   - 多源配置加载：YAML/JSON 文件、环境变量、.env 文件
//   - 配置优先级：环境变量 > .env > 环境特定配置 > 基础配置
//   - 内存属性源：FromMap 直接由键值对构造，便于测试与嵌入式使用
//
// 基本使用：
//
//	loader, err := config.New(&config.Config{
//		Name:  "application",
//		Paths: []string{"./config"},
//	})
//	if err != nil {
//		return err
//	}
//	if err := loader.Load(ctx); err != nil {
//		return err
//	}
//	names := loader.GetString("sharding.jdbc.datasource.names")
//
// 环境变量使用前缀 DSORCH，"." 与 "-" 均替换为 "_"：
//
//	DSORCH_SHARDING_JDBC_DATASOURCE_NAMES=ds0,ds1
package config

import "context"

// Loader 定义属性加载器的核心行为
//
// 加载完成后只读，可被多个组件并发读取。
type Loader interface {
	// Load 从所有来源加载配置
	Load(ctx context.Context) error

	// Get 获取原始配置值，嵌套分组返回 map[string]any
	Get(key string) any

	// GetString 获取字符串配置值
	GetString(key string) string

	// IsSet 判断 key 是否在任一来源中被设置
	IsSet(key string) bool

	// AllKeys 返回所有叶子 key（小写，"." 分隔）
	AllKeys() []string

	// Unmarshal 将整个配置反序列化到结构体
	Unmarshal(v any) error

	// UnmarshalKey 将指定 key 的配置反序列化到结构体
	UnmarshalKey(key string, v any) error

	// Validate 验证当前配置的有效性
	Validate() error
}
