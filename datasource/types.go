package datasource

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/ceyewan/dsorch/clog"
	"github.com/ceyewan/dsorch/connector"
	"github.com/ceyewan/dsorch/xerrors"
)

// Constructor 由 Descriptor 构造并连接一个数据源
type Constructor func(ctx context.Context, desc Descriptor, logger clog.Logger) (DataSource, error)

// Types 显式的构造器注册表，按类型名索引
//
// 类型名不区分大小写。注册通常在启动前完成，之后只读。
type Types struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewTypes 创建空的构造器注册表
func NewTypes() *Types {
	return &Types{ctors: make(map[string]Constructor)}
}

// BuiltinTypes 返回包含内置类型的新注册表：mysql、postgres（别名 postgresql）、sqlite
//
// opts 传给每个内置类型创建的连接器。
func BuiltinTypes(opts ...connector.Option) *Types {
	postgres := PostgresConstructor(opts...)
	t := NewTypes()
	_ = t.Register(TypeMySQL, MySQLConstructor(opts...))
	_ = t.Register(TypePostgres, postgres)
	_ = t.Register(TypePostgreSQL, postgres)
	_ = t.Register(TypeSQLite, SQLiteConstructor(opts...))
	return t
}

// Register 注册构造器，空名称或重复名称返回错误
func (t *Types) Register(typ string, ctor Constructor) error {
	key := strings.ToLower(strings.TrimSpace(typ))
	if key == "" {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "datasource: empty type name")
	}
	if ctor == nil {
		return xerrors.Wrapf(xerrors.ErrInvalidInput, "datasource: nil constructor for type %q", typ)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.ctors[key]; ok {
		return xerrors.Wrapf(ErrDuplicateType, "type %q", typ)
	}
	t.ctors[key] = ctor
	return nil
}

// Lookup 查找构造器
func (t *Types) Lookup(typ string) (Constructor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ctor, ok := t.ctors[strings.ToLower(strings.TrimSpace(typ))]
	return ctor, ok
}

// Names 返回已注册的类型名（排序）
func (t *Types) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.ctors))
	for k := range t.ctors {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Construct 按 desc.Type 查找构造器并构造数据源
//
// 未注册的类型返回 ErrUnknownType。
func (t *Types) Construct(ctx context.Context, desc Descriptor, logger clog.Logger) (DataSource, error) {
	ctor, ok := t.Lookup(desc.Type)
	if !ok {
		return nil, xerrors.Wrapf(ErrUnknownType, "%q (registered: %s)", desc.Type, strings.Join(t.Names(), ", "))
	}
	if logger == nil {
		logger = clog.Discard()
	}
	return ctor(ctx, desc, logger)
}
