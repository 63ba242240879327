package datasource

import (
	"slices"

	"github.com/ceyewan/dsorch/xerrors"
)

// Registry 具名数据源注册表
//
// 由 NewRegistry 一次性构造，之后只读，可并发访问。
type Registry struct {
	sources map[string]DataSource
	names   []string
}

// NewRegistry 由数据源列表构造注册表
//
// 空列表返回 ErrEmptyRegistry，同名数据源返回 ErrDuplicateName。
func NewRegistry(sources ...DataSource) (*Registry, error) {
	if len(sources) == 0 {
		return nil, ErrEmptyRegistry
	}
	r := &Registry{sources: make(map[string]DataSource, len(sources))}
	for _, ds := range sources {
		name := ds.Name()
		if _, ok := r.sources[name]; ok {
			return nil, xerrors.Wrapf(ErrDuplicateName, "%q", name)
		}
		r.sources[name] = ds
		r.names = append(r.names, name)
	}
	slices.Sort(r.names)
	return r, nil
}

// Get 按名称查找数据源
func (r *Registry) Get(name string) (DataSource, bool) {
	ds, ok := r.sources[name]
	return ds, ok
}

// Has 判断名称是否存在
func (r *Registry) Has(name string) bool {
	_, ok := r.sources[name]
	return ok
}

// Names 返回排序后的名称列表
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Len 返回数据源数量
func (r *Registry) Len() int {
	return len(r.sources)
}

// Descriptors 按名称顺序返回全部 Descriptor
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.sources[name].Descriptor())
	}
	return out
}

// Close 关闭全部数据源，合并错误
func (r *Registry) Close() error {
	var errs []error
	for _, name := range r.names {
		if err := r.sources[name].Close(); err != nil {
			errs = append(errs, xerrors.Wrapf(err, "close datasource %q", name))
		}
	}
	return xerrors.Combine(errs...)
}
