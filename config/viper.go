package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ceyewan/dsorch/xerrors"
)

// loader 实现 Loader 接口
type loader struct {
	v    *viper.Viper
	cfg  *Config
	file bool // false 表示内存属性源，Load 不读取文件
}

func newLoader(cfg *Config) *loader {
	return &loader{v: viper.New(), cfg: cfg, file: true}
}

// FromMap 由键值对构造已加载的 Loader
//
// key 可以是 "." 分隔的路径，值可以是嵌套 map。环境变量覆盖仍然生效。
//
//	loader := config.FromMap(map[string]any{
//		"sharding.jdbc.datasource.names":   "ds0",
//		"sharding.jdbc.datasource.ds0.type": "sqlite",
//	})
func FromMap(values map[string]any) Loader {
	cfg := &Config{}
	_ = cfg.validate()

	l := &loader{v: viper.New(), cfg: cfg}
	l.bindEnv()
	for k, val := range values {
		l.v.Set(k, val)
	}
	return l
}

// Load 初始化并从所有来源加载配置
func (l *loader) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !l.file {
		return l.Validate()
	}

	l.v.SetConfigName(l.cfg.Name)
	l.v.SetConfigType(l.cfg.FileType)
	for _, path := range l.cfg.Paths {
		l.v.AddConfigPath(path)
	}

	// 环境变量优先级最高，先绑定
	l.bindEnv()

	// .env 只补充尚未设置的环境变量，缺失时忽略
	l.loadDotEnv()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return xerrors.Wrapf(err, "failed to read config file %s", l.cfg.Name)
		}
	}

	if err := l.loadEnvironmentConfig(); err != nil {
		return err
	}

	return l.Validate()
}

func (l *loader) bindEnv() {
	l.v.SetEnvPrefix(l.cfg.EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	l.v.AutomaticEnv()
}

// loadDotEnv 尝试从工作目录与搜索路径加载 .env 文件
func (l *loader) loadDotEnv() {
	candidates := []string{".env"}
	for _, path := range l.cfg.Paths {
		candidates = append(candidates, filepath.Join(path, ".env"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err != nil {
			continue
		}
		_ = godotenv.Load(c)
	}
}

// loadEnvironmentConfig 按 <PREFIX>_ENV 合并环境特定配置文件，如 config.prod.yaml
func (l *loader) loadEnvironmentConfig() error {
	env := os.Getenv(fmt.Sprintf("%s_ENV", l.cfg.EnvPrefix))
	if env == "" {
		return nil
	}

	envConfigName := fmt.Sprintf("%s.%s", l.cfg.Name, env)
	l.v.SetConfigName(envConfigName)
	defer l.v.SetConfigName(l.cfg.Name)

	if err := l.v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return xerrors.Wrapf(err, "failed to merge environment config %s", envConfigName)
		}
	}
	return nil
}

func (l *loader) Get(key string) any {
	return l.v.Get(key)
}

func (l *loader) GetString(key string) string {
	return l.v.GetString(key)
}

func (l *loader) IsSet(key string) bool {
	return l.v.IsSet(key)
}

func (l *loader) AllKeys() []string {
	return l.v.AllKeys()
}

func (l *loader) Unmarshal(v any) error {
	return l.v.Unmarshal(v)
}

func (l *loader) UnmarshalKey(key string, v any) error {
	return l.v.UnmarshalKey(key, v)
}

// Validate 拒绝完全为空的配置
func (l *loader) Validate() error {
	if len(l.v.AllSettings()) == 0 {
		return xerrors.Wrapf(ErrValidationFailed, "configuration is empty")
	}
	return nil
}
