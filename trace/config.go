package trace

import "github.com/ceyewan/dsorch/xerrors"

// Config 链路追踪配置
//
//	trace:
//	  service_name: order-service
//	  endpoint: localhost:4317
//	  sampler: 0.1
//	  batcher: batch
//	  insecure: true
type Config struct {
	ServiceName string  `mapstructure:"service_name"` // [必填] 资源属性 service.name
	Endpoint    string  `mapstructure:"endpoint"`     // OTLP gRPC 地址，为空时不导出
	Sampler     float64 `mapstructure:"sampler"`      // 采样率 [0, 1] (默认: 1)
	Batcher     string  `mapstructure:"batcher"`      // batch | simple (默认: batch)
	Insecure    bool    `mapstructure:"insecure"`
}

// DefaultConfig 返回连接本地 collector 的默认配置
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Endpoint:    "localhost:4317",
		Sampler:     1.0,
		Batcher:     "batch",
		Insecure:    true,
	}
}

func (c *Config) setDefaults() {
	if c.Sampler == 0 {
		c.Sampler = 1.0
	}
	if c.Batcher == "" {
		c.Batcher = "batch"
	}
}

func (c *Config) validate() error {
	c.setDefaults()
	if c.ServiceName == "" {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "service_name is required")
	}
	if c.Sampler < 0 || c.Sampler > 1 {
		return xerrors.Wrapf(xerrors.ErrInvalidInput, "sampler must be between 0 and 1, got %v", c.Sampler)
	}
	if c.Batcher != "batch" && c.Batcher != "simple" {
		return xerrors.Wrapf(xerrors.ErrInvalidInput, "batcher must be \"batch\" or \"simple\", got %q", c.Batcher)
	}
	return nil
}
