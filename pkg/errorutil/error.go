package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error 错误结构（包含可重试标记）
type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
	DevDetails string `json:"dev_details,omitempty"`
	cause      error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	return e.Message
}

// Unwrap 支持 errors.Is / errors.As
func (e *Error) Unwrap() error {
	return e.cause
}

// Retriable 创建可重试错误（网络错误、临时故障等）
func Retriable(message string) *Error {
	return &Error{
		Code:      http.StatusInternalServerError,
		Message:   message,
		Retryable: true,
	}
}

// RetriableWrap 包装底层错误为可重试错误
func RetriableWrap(err error, message string) *Error {
	return &Error{
		Code:       http.StatusInternalServerError,
		Message:    fmt.Sprintf("%s: %v", message, err),
		Retryable:  true,
		DevDetails: fmt.Sprintf("%+v", err),
		cause:      err,
	}
}

// NonRetriable 创建不可重试错误（参数错误、业务规则错误等）
func NonRetriable(message string) *Error {
	return &Error{
		Code:      http.StatusBadRequest,
		Message:   message,
		Retryable: false,
	}
}

// NonRetriableWrap 包装底层错误为不可重试错误
func NonRetriableWrap(err error) *Error {
	return &Error{
		Code:      http.StatusBadRequest,
		Message:   err.Error(),
		Retryable: false,
		cause:     err,
	}
}

// NotFound 资源不存在
func NotFound(err error) *Error {
	return &Error{
		Code:    http.StatusNotFound,
		Message: err.Error(),
		cause:   err,
	}
}

// Unauthorized 未认证（缺少或错误的凭证）
func Unauthorized(message string) *Error {
	return &Error{
		Code:    http.StatusUnauthorized,
		Message: message,
	}
}

// Forbidden 已认证但无权限
func Forbidden(message string) *Error {
	return &Error{
		Code:    http.StatusForbidden,
		Message: message,
	}
}

// Wrap 包装错误（已是 Error 时直接返回，否则视为不可重试的内部错误）
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{
		Code:       http.StatusInternalServerError,
		Message:    err.Error(),
		Retryable:  false,
		DevDetails: fmt.Sprintf("%+v", err),
		cause:      err,
	}
}

// IsRetryable 判断错误是否可重试
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}
