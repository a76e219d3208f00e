package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode int

const (
	ValidationCode ErrorCode = iota + 1
	ConflictCode
	EmptyCartCode
	InvalidOperationCode
	NotFoundCode
	ForbiddenCode
	DuplicateCode
	UnauthenticatedCode
	TooManyRequestsCode
	InternalErrorCode
)

// ErrStrMap 對外顯示的預設訊息
var ErrStrMap = map[ErrorCode]string{
	ValidationCode:       "invalid request",
	ConflictCode:         "insufficient stock",
	EmptyCartCode:        "cart is empty",
	InvalidOperationCode: "invalid operation",
	NotFoundCode:         "not found",
	ForbiddenCode:        "forbidden",
	DuplicateCode:        "already exists",
	UnauthenticatedCode:  "authentication required",
	TooManyRequestsCode:  "too many requests",
	InternalErrorCode:    "SERVER ERROR",
}

var statusMap = map[ErrorCode]int{
	ValidationCode:       http.StatusBadRequest,
	ConflictCode:         http.StatusBadRequest,
	EmptyCartCode:        http.StatusBadRequest,
	InvalidOperationCode: http.StatusBadRequest,
	NotFoundCode:         http.StatusNotFound,
	ForbiddenCode:        http.StatusForbidden,
	DuplicateCode:        http.StatusConflict,
	UnauthenticatedCode:  http.StatusUnauthorized,
	TooManyRequestsCode:  http.StatusTooManyRequests,
	InternalErrorCode:    http.StatusInternalServerError,
}

func (c ErrorCode) HTTPStatus() int {
	if s, ok := statusMap[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func (c ErrorCode) String() string {
	return ErrStrMap[c]
}

type Error struct {
	Code ErrorCode
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 讓 errors.Is 可以用同一 code 的 *Error 當 target 比對
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Msg == "" || t.Msg == e.Msg)
}

// PublicMessage 回給客戶端的訊息, 內部錯誤不外洩細節
func (e *Error) PublicMessage() string {
	if e.Code == InternalErrorCode || e.Msg == "" {
		return ErrStrMap[e.Code]
	}
	return e.Msg
}

func New(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(code ErrorCode, msg string, err error) *Error {
	return &Error{Code: code, Msg: msg, Err: err}
}

// Internal 包裝非預期錯誤
func Internal(err error) *Error {
	return &Error{Code: InternalErrorCode, Msg: ErrStrMap[InternalErrorCode], Err: err}
}

// CodeOf 取得錯誤碼, 非 *Error 一律視為內部錯誤
func CodeOf(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return InternalErrorCode
}

// As 將任意錯誤轉為 *Error
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
