// Package apperr carries an HTTP status and a stable machine code with an
// error so handlers can render it without knowing the domain.
package apperr

import "net/http"

type AppError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
	Err     error  `json:"-"`
	status  int
}

func New(status int, code, msg string, err error) *AppError {
	return &AppError{Code: code, Message: msg, Err: err, status: status}
}

func (e *AppError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Code
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StatusCode defaults to 500 when no status was set.
func (e *AppError) StatusCode() int {
	if e == nil || e.status == 0 {
		return http.StatusInternalServerError
	}
	return e.status
}

func BadRequest(code, msg string, err error) *AppError {
	return New(http.StatusBadRequest, code, msg, err)
}
func Unauthorized(code, msg string, err error) *AppError {
	return New(http.StatusUnauthorized, code, msg, err)
}
func Forbidden(code, msg string, err error) *AppError {
	return New(http.StatusForbidden, code, msg, err)
}
func NotFound(code, msg string, err error) *AppError {
	return New(http.StatusNotFound, code, msg, err)
}
func Conflict(code, msg string, err error) *AppError {
	return New(http.StatusConflict, code, msg, err)
}
func Unprocessable(code, msg string, err error) *AppError {
	return New(http.StatusUnprocessableEntity, code, msg, err)
}
func TooManyRequests(code, msg string, err error) *AppError {
	return New(http.StatusTooManyRequests, code, msg, err)
}
func Internal(code, msg string, err error) *AppError {
	return New(http.StatusInternalServerError, code, msg, err)
}
