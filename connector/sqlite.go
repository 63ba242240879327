package connector

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ceyewan/dsorch/xerrors"
)

// NewSQLite 创建 SQLite 连接器
//
// 实际连接在调用 Connect() 时建立。
func NewSQLite(cfg *SQLiteConfig, opts ...Option) (DatabaseConnector, error) {
	if cfg == nil {
		return nil, xerrors.Wrap(ErrConfig, "sqlite config is nil")
	}
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Tag(ErrConfig, err, "sqlite")
	}

	path := cfg.Path
	return newGormConnector(cfg.Name, "sqlite", cfg.PoolConfig, func() gorm.Dialector {
		return sqlite.Open(path)
	}, applyOptions(opts...)), nil
}
