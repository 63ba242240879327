package factory

import "github.com/ceyewan/dsorch/xerrors"

// ErrFactory 装配数据源句柄失败，具体原因在错误链中
var ErrFactory = xerrors.New("factory: assemble datasource")
