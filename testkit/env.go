package testkit

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ceyewan/dsorch/connector"
)

// EtcdEndpointsEnv 指定 etcd 集成测试使用的地址，逗号分隔
const EtcdEndpointsEnv = "DSORCH_ETCD_ENDPOINTS"

func verbose() bool {
	return os.Getenv("DSORCH_TEST_LOG") == "1"
}

// EtcdConfig 返回集成测试用的 etcd 配置，未设置 DSORCH_ETCD_ENDPOINTS 时跳过测试
func EtcdConfig(t *testing.T) connector.EtcdConfig {
	t.Helper()
	raw := os.Getenv(EtcdEndpointsEnv)
	if raw == "" {
		t.Skipf("%s not set", EtcdEndpointsEnv)
	}
	return connector.EtcdConfig{
		Name:        "test-etcd",
		Endpoints:   strings.Split(raw, ","),
		DialTimeout: 5 * time.Second,
	}
}
