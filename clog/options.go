package clog

import "io"

// Option 函数式选项
type Option func(*options)

type options struct {
	namespaceParts []string
	contextFields  []contextField
	writer         io.Writer // 测试用，覆盖 Config.Output
}

type contextField struct {
	key       any
	fieldName string
}

// WithNamespace 设置日志命名空间，多级之间以 "." 连接
func WithNamespace(parts ...string) Option {
	return func(o *options) {
		o.namespaceParts = append(o.namespaceParts, parts...)
	}
}

// WithContextField 从 Context 中提取 key 对应的值，以 fieldName 输出
//
//	clog.WithContextField("instance_id", "instance_id")
func WithContextField(key any, fieldName string) Option {
	return func(o *options) {
		o.contextFields = append(o.contextFields, contextField{key: key, fieldName: fieldName})
	}
}

func applyOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
