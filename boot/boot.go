// Package boot 将属性命名空间绑定为一个可用的数据源句柄。
//
// Binder 按固定顺序完成一次装配：
//
//	数据源 -> 规则选择 -> 协调中心配置 -> 覆盖属性 -> 工厂
//
// 任何一步失败都终止装配，已经构造的数据源全部关闭。Binder 只能成功装配一次，
// 重新配置需要重启进程。
//
// 基本使用：
//
//	loader, _ := config.New(&config.Config{Name: "application", Paths: []string{"."}})
//	_ = loader.Load(ctx)
//
//	binder, _ := boot.New(boot.WithLogger(logger))
//	handle, err := binder.Bind(ctx, loader)
//	if err != nil {
//		return err
//	}
//	defer handle.Close()
//
//	db := handle.DB(ctx)
package boot

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ceyewan/dsorch/clog"
	"github.com/ceyewan/dsorch/connector"
	"github.com/ceyewan/dsorch/datasource"
	"github.com/ceyewan/dsorch/factory"
	"github.com/ceyewan/dsorch/metrics"
	"github.com/ceyewan/dsorch/xerrors"
)

// Properties Binder 读取的属性源，config.Loader 满足此接口
type Properties interface {
	Get(key string) any
	GetString(key string) string
	IsSet(key string) bool
	UnmarshalKey(key string, v any) error
}

// State Binder 状态
type State int

const (
	Unconfigured State = iota
	Configured
	Failed
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Configured:
		return "configured"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const tracerName = "github.com/ceyewan/dsorch/boot"

// Binder 配置绑定器
type Binder struct {
	opts    *options
	logger  clog.Logger
	metrics *metrics.Instruments
	tracer  trace.Tracer

	mu     sync.Mutex
	state  State
	handle datasource.Handle
}

// New 创建 Binder
//
// 未指定 Logger 时使用 info 级别的 console 日志。
func New(opts ...Option) (*Binder, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.base == nil {
		logger, err := clog.New(&clog.Config{Level: "info", Format: "console", Output: "stdout"})
		if err != nil {
			return nil, xerrors.Wrap(err, "failed to create default logger")
		}
		o.base = logger
	}
	if o.types == nil {
		var connOpts []connector.Option
		if o.tracer != nil {
			connOpts = append(connOpts, connector.WithTracer(o.tracer))
		}
		o.types = datasource.BuiltinTypes(connOpts...)
	}
	if o.tracer == nil {
		o.tracer = noop.NewTracerProvider()
	}
	if o.sharding == nil {
		o.sharding = defaultSharding(factory.WithLogger(o.base))
	}
	if o.masterSlave == nil {
		o.masterSlave = defaultMasterSlave(factory.WithLogger(o.base))
	}

	instruments, err := metrics.NewInstruments(o.meter)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to create metrics")
	}

	return &Binder{
		opts:    o,
		logger:  o.base.WithNamespace("boot"),
		metrics: instruments,
		tracer:  o.tracer.Tracer(tracerName),
	}, nil
}

// State 返回当前状态
func (b *Binder) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Handle 返回已装配的句柄，未成功装配时为 nil
func (b *Binder) Handle() datasource.Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handle
}

// Bind 执行完整的装配流程，只能成功执行一次
//
// 失败后 Binder 进入 Failed 状态，之后的调用同样返回 ErrAlreadyConfigured。
func (b *Binder) Bind(ctx context.Context, props Properties) (datasource.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != Unconfigured {
		return nil, withCode(xerrors.Wrapf(ErrAlreadyConfigured, "binder is %s", b.state))
	}

	ctx, span := b.tracer.Start(ctx, "boot.Bind")
	defer span.End()

	handle, err := b.bind(ctx, props)
	if err != nil {
		err = withCode(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		b.state = Failed
		if code := xerrors.GetCode(err); code != "" {
			b.logger.ErrorContext(ctx, "bind failed", clog.ErrorWithCode(err, code))
		} else {
			b.logger.ErrorContext(ctx, "bind failed", clog.Error(err))
		}
		return nil, err
	}
	b.state = Configured
	b.handle = handle
	return handle, nil
}

func (b *Binder) bind(ctx context.Context, props Properties) (datasource.Handle, error) {
	if props == nil {
		return nil, xerrors.Wrap(ErrConfiguration, "properties is nil")
	}

	registry, err := b.ResolveDataSources(ctx, props)
	if err != nil {
		return nil, err
	}

	fail := func(err error) (datasource.Handle, error) {
		if cerr := registry.Close(); cerr != nil {
			b.logger.Warn("failed to close datasources", clog.Error(cerr))
		}
		return nil, err
	}

	sel, err := b.ResolveSelection(props)
	if err != nil {
		return fail(err)
	}
	orch, err := b.ResolveOrchestration(props)
	if err != nil {
		return fail(err)
	}

	overrides := b.ResolveOverrides(props)
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("dsorch.rule.kind", string(sel.Kind())),
		attribute.Int("dsorch.datasources", registry.Len()),
	)

	fields := []clog.Field{clog.String("kind", string(sel.Kind())), clog.Int("datasources", registry.Len())}
	if orch != nil {
		fields = append(fields, clog.String("orchestration", orch.Name))
	}
	b.logger.InfoContext(ctx, "configuration resolved", fields...)

	handle, err := b.BuildDataSource(ctx, registry, sel, orch, overrides)
	if err != nil {
		return fail(err)
	}
	return handle, nil
}
