package boot

// 属性 key，均为小写
const (
	KeyDataSourcePrefix = "sharding.jdbc.datasource"
	KeyDataSourceNames  = KeyDataSourcePrefix + ".names"
	KeyDataSourceType   = "type"

	KeySharding          = "sharding.jdbc.config.sharding"
	KeyShardingConfigMap = KeySharding + ".config-map"
	KeyShardingProps     = KeySharding + ".props"

	KeyMasterSlave          = "sharding.jdbc.config.masterslave"
	KeyMasterSlaveMaster    = KeyMasterSlave + ".master-data-source-name"
	KeyMasterSlaveConfigMap = KeyMasterSlave + ".config-map"

	KeyOrchestration = "sharding.jdbc.config.orchestration"
)

// overrideKeys 可识别的覆盖属性，相对于 KeyShardingProps
var overrideKeys = []string{"sql.show", "executor.size"}
