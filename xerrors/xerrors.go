// Package xerrors 提供 dsorch 各组件通用的错误处理工具。
//
// 这是一个基础包，不依赖 dsorch 的其他组件。组件自身的哨兵错误
// （例如 boot.ErrConfiguration）应在组件包内定义，并尽量基于这里的
// 通用哨兵进行包装，调用方即可同时按类别和按组件判断错误。
package xerrors

import (
	"errors"
	"fmt"
)

// 通用哨兵错误
var (
	// ErrNotFound 请求的资源不存在
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists 资源已存在
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput 输入（包括配置）无效
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable 依赖的服务不可用
	ErrUnavailable = errors.New("unavailable")

	// ErrInternal 内部错误
	ErrInternal = errors.New("internal error")
)

// Wrap 用上下文信息包装错误，保留错误链。
// err 为 nil 时返回 nil。
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf 用格式化的上下文信息包装错误。
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Tag 同时把类别哨兵 kind 和原因 cause 挂在错误链上。
//
// 返回的错误满足 errors.Is(err, kind) 与 errors.Is(err, cause)。
// cause 为 nil 时只包装 kind。
//
// 示例：
//
//	return xerrors.Tag(ErrConstruction, err, "datasource %q: type %q", name, typ)
func Tag(kind, cause error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if cause == nil {
		return fmt.Errorf("%w: %s", kind, msg)
	}
	return fmt.Errorf("%w: %s: %w", kind, msg, cause)
}

// WithCode 用错误码包装错误。
func WithCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &CodedError{Code: code, Cause: err}
}

// CodedError 带有机器可读错误码的错误。
type CodedError struct {
	Code  string
	Cause error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %v", e.Code, e.Cause)
	}
	return fmt.Sprintf("[%s]", e.Code)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// GetCode 从错误链中提取错误码。
func GetCode(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// MultiError 合并多个错误。
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("%v (and %d more errors)", m.Errors[0], len(m.Errors)-1)
}

func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Combine 将多个错误合并为一个，nil 会被忽略。
func Combine(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	default:
		return &MultiError{Errors: nonNil}
	}
}

// 标准库函数再导出
var (
	New    = errors.New
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)
