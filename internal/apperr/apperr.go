package apperr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

type Code string

const (
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeBadRequest   Code = "BAD_REQUEST"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeGone         Code = "GONE"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeRateLimit    Code = "RATE_LIMIT_EXCEEDED"
)

const internalMessage = "internal server error"

type AppError struct {
	Code       Code
	Message    string
	StatusCode int
	Cause      error
	// Body replaces the default {"error": Message} response when set.
	Body any
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusCode(code)}
}

func Wrap(err error, code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusCode(code), Cause: err}
}

func Internal(err error) *AppError { return Wrap(err, CodeInternal, internalMessage) }
func Validation(message string) *AppError { return New(CodeValidation, message) }
func BadRequest(message string) *AppError { return New(CodeBadRequest, message) }
func NotFound(message string) *AppError { return New(CodeNotFound, message) }
func Conflict(message string) *AppError { return New(CodeConflict, message) }
func Gone(message string) *AppError { return New(CodeGone, message) }
func Unauthorized(message string) *AppError { return New(CodeUnauthorized, message) }
func RateLimit(message string) *AppError { return New(CodeRateLimit, message) }

func statusCode(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeGone:
		return http.StatusGone
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Write renders err as a JSON error response. Errors that are not AppErrors
// become 500s and never leak their message to the client.
func Write(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = Internal(err)
	}

	level := slog.LevelError
	if appErr.StatusCode < 500 {
		level = slog.LevelWarn
	}
	ctx := context.Background()
	attrs := []any{"code", appErr.Code, "status", appErr.StatusCode}
	if r != nil {
		ctx = r.Context()
		attrs = append(attrs, "method", r.Method, "path", r.URL.Path)
	}
	if appErr.Cause != nil {
		attrs = append(attrs, "cause", appErr.Cause.Error())
	}
	logger.Log(ctx, level, appErr.Message, attrs...)

	body := appErr.Body
	if body == nil {
		body = map[string]string{"error": appErr.Message}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	_ = json.NewEncoder(w).Encode(body)
}
