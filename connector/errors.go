package connector

import "github.com/ceyewan/dsorch/xerrors"

// 连接器专用的哨兵错误
var (
	ErrClientNil   = xerrors.New("connector: client is nil")
	ErrConnection  = xerrors.New("connector: connection failed")
	ErrConfig      = xerrors.New("connector: invalid config")
	ErrHealthCheck = xerrors.New("connector: health check failed")
)
