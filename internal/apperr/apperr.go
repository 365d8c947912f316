// Package apperr 定义评论服务对外暴露的错误类型。
// 调用方通过Kind区分“输入不合法”和“系统没能完成操作”。
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindForbidden
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindStore:
		return "store"
	}
	return "unknown"
}

// Error Op记录出错的操作名，Err保留底层错误（比如gorm的错误），可以用errors.Is/As继续判断
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil && e.Msg == "":
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 让errors.Is(err, apperr.ErrNotFound)这种按Kind比较的写法生效
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// 哨兵错误，只用于errors.Is比较
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrForbidden  = &Error{Kind: KindForbidden}
	ErrStore      = &Error{Kind: KindStore}
)

func Validation(op, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(op, format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(op, format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Forbidden(op, format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Store 包装存储层错误；已经是*Error的原样返回，nil返回nil
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindStore, Op: op, Err: err}
}

// KindOf 取出错误链上第一个*Error的Kind
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}
