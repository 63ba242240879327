package datasource

import "github.com/ceyewan/dsorch/xerrors"

var (
	// ErrUnknownType 数据源类型未注册
	ErrUnknownType = xerrors.New("datasource: unknown type")

	// ErrDuplicateType 数据源类型重复注册
	ErrDuplicateType = xerrors.New("datasource: type already registered")

	// ErrDuplicateName 同名数据源出现多次
	ErrDuplicateName = xerrors.New("datasource: duplicate name")

	// ErrEmptyRegistry 注册表中没有任何数据源
	ErrEmptyRegistry = xerrors.New("datasource: empty registry")

	// ErrInvalidProperties 构造属性无法解码
	ErrInvalidProperties = xerrors.New("datasource: invalid properties")
)
