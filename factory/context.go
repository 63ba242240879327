package factory

import "context"

type routeKey struct{}

type route int

const (
	routeDefault route = iota
	routeReadOnly
	routeMaster
)

// ReadOnly 标记 ctx 上的查询可以发往从库，已有 UseMaster 标记时保持主库
func ReadOnly(ctx context.Context) context.Context {
	if routeFrom(ctx) == routeMaster {
		return ctx
	}
	return context.WithValue(ctx, routeKey{}, routeReadOnly)
}

// UseMaster 强制 ctx 上的查询发往主库，优先于 ReadOnly
func UseMaster(ctx context.Context) context.Context {
	return context.WithValue(ctx, routeKey{}, routeMaster)
}

func routeFrom(ctx context.Context) route {
	if r, ok := ctx.Value(routeKey{}).(route); ok {
		return r
	}
	return routeDefault
}
