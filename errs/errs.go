// Package errs 定义排版引擎的结构化错误。
//
// 错误按类别区分：
//   - VALIDATION：调用方输入非法（负尺寸、列宽数量不匹配、未知样式等）
//   - NOT_FOUND / RESOURCE：图片、字体等外部资源缺失或无法解码
//   - BACKEND：绘图后端写出失败（磁盘满、编码失败）
//   - DETERMINISM：两遍构建的分页结果不一致
//
// 用法：
//
//	err := errs.New(errs.ErrCodeValidation, "列宽数量 %d 与列数 %d 不一致", n, cols)
//	if errs.IsValidation(err) { ... }
package errs

import (
	"errors"
	"fmt"
)

// Code 为机器可读的错误码。
type Code string

const (
	ErrCodeValidation  Code = "VALIDATION"
	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeResource    Code = "RESOURCE"
	ErrCodeBackend     Code = "BACKEND"
	ErrCodeDeterminism Code = "DETERMINISM"
)

// Error 携带错误码与可选的底层原因。
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap 兼容 errors.Is/As。
func (e *Error) Unwrap() error { return e.Cause }

// New 创建一个带格式化消息的错误。
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap 包装已有错误。
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is 沿错误链查找任意一个带有 code 的 *Error。
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode 返回错误链上最外层 *Error 的错误码，没有则返回空串。
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsValidation(err error) bool { return Is(err, ErrCodeValidation) }

// IsResource 对 NOT_FOUND 与 RESOURCE 都返回 true。
func IsResource(err error) bool {
	return Is(err, ErrCodeNotFound) || Is(err, ErrCodeResource)
}

func IsBackend(err error) bool     { return Is(err, ErrCodeBackend) }
func IsDeterminism(err error) bool { return Is(err, ErrCodeDeterminism) }

// Validation 是 New(ErrCodeValidation, ...) 的简写。
func Validation(format string, args ...any) *Error {
	return New(ErrCodeValidation, format, args...)
}
