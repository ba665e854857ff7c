package errs

import (
	"errors"
	"strconv"
	"strings"
)

// CodeError is an error carrying a stable numeric code plus a client-safe
// message. Detail is for server-side logs and must never reach a client.
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

// WithDetail clones the error and appends detail, so shared sentinel values
// stay immutable.
func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

// Is matches by code, so WithDetail clones still compare equal to their
// sentinel under errors.Is.
func (e *CodeError) Is(target error) bool {
	var t *CodeError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Code extracts the numeric code, or 0 for non-CodeError values.
func Code(err error) int {
	var e *CodeError
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// Msg extracts the client-safe message, or empty for non-CodeError values.
func Msg(err error) string {
	var e *CodeError
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}
