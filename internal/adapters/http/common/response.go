// Package common - JSON envelope ответов StoreHub API.
//
// Отдельный пакет: его импортируют и handlers, и middleware.
package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domainerrors "github.com/Haleralex/storehub/internal/domain/errors"
	"github.com/Haleralex/storehub/internal/pkg/logger"
)

// ============================================
// Envelope
// ============================================

// APIResponse - любой ответ API: data при success, error иначе.
type APIResponse struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	Meta      *APIMeta  `json:"meta,omitempty"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// APIMeta - пагинация списка.
type APIMeta struct {
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"per_page,omitempty"`
	Total      int `json:"total,omitempty"`
	TotalPages int `json:"total_pages,omitempty"`
}

type APIError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	Fields     []FieldError   `json:"fields,omitempty"`
	RetryAfter int            `json:"retry_after,omitempty"` // seconds
}

// FieldError - ошибка одного поля запроса.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"
	ErrCodeTooLarge        = "PAYLOAD_TOO_LARGE"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// ============================================
// Request ID
// ============================================

const (
	// RequestIDHeader - заголовок запроса и ответа
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey - ключ в gin.Context
	RequestIDKey = "request_id"
)

// GetRequestID возвращает Request ID из gin.Context.
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// SetRequestID сохраняет id в gin.Context, в заголовок ответа и в context запроса для логов.
func SetRequestID(c *gin.Context, id string) {
	c.Set(RequestIDKey, id)
	c.Header(RequestIDHeader, id)
	if c.Request != nil {
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
	}
}

// ============================================
// Writers
// ============================================

func write(c *gin.Context, status int, resp APIResponse) {
	resp.RequestID = GetRequestID(c)
	resp.Timestamp = time.Now().UTC()
	c.JSON(status, resp)
}

// Success отправляет data с заданным статусом.
func Success(c *gin.Context, statusCode int, data any) {
	write(c, statusCode, APIResponse{Success: true, Data: data})
}

// SuccessWithMeta - Success для списков.
func SuccessWithMeta(c *gin.Context, statusCode int, data any, meta *APIMeta) {
	write(c, statusCode, APIResponse{Success: true, Data: data, Meta: meta})
}

// Error отправляет apiError с заданным статусом.
func Error(c *gin.Context, statusCode int, apiError *APIError) {
	write(c, statusCode, APIResponse{Error: apiError})
}

func ValidationErrorResponse(c *gin.Context, fields []FieldError) {
	Error(c, http.StatusBadRequest, &APIError{
		Code:    ErrCodeValidation,
		Message: "Request validation failed",
		Fields:  fields,
	})
}

func BadRequestResponse(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, &APIError{Code: ErrCodeBadRequest, Message: message})
}

func UnauthorizedResponse(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, &APIError{Code: ErrCodeUnauthorized, Message: message})
}

func ForbiddenResponse(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, &APIError{Code: ErrCodeForbidden, Message: message})
}

// TooManyRequestsResponse - 429, retryAfter в секундах.
func TooManyRequestsResponse(c *gin.Context, retryAfter int) {
	Error(c, http.StatusTooManyRequests, &APIError{
		Code:       ErrCodeTooManyRequests,
		Message:    "Too many requests, please try again later",
		RetryAfter: retryAfter,
	})
}

// PayloadTooLargeResponse - 413, limit в байтах.
func PayloadTooLargeResponse(c *gin.Context, limit int64) {
	Error(c, http.StatusRequestEntityTooLarge, &APIError{
		Code:    ErrCodeTooLarge,
		Message: fmt.Sprintf("Request body exceeds %d bytes", limit),
	})
}

func InternalErrorResponse(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, &APIError{Code: ErrCodeInternal, Message: message})
}

// ============================================
// Domain errors -> HTTP
// ============================================

// HandleDomainError переводит ошибку use case в ответ:
//
//	ValidationError(s)          400 VALIDATION_ERROR, по полю на ошибку
//	InvalidArgument             400 BAD_REQUEST
//	NotFound                    404, текст ошибки отдаётся клиенту
//	Duplicate                   409, details: kind и совпавшие поля
//	Configuration, остальное    500, причина только в логах
func HandleDomainError(c *gin.Context, err error) {
	if fields := validationFields(err); fields != nil {
		ValidationErrorResponse(c, fields)
		return
	}

	var dup *domainerrors.DuplicateError
	switch {
	// wiring, а не вина клиента
	case domainerrors.IsConfiguration(err):
		internalError(c, err)
	case domainerrors.IsInvalidArgument(err):
		BadRequestResponse(c, err.Error())
	case domainerrors.IsNotFound(err):
		Error(c, http.StatusNotFound, &APIError{Code: ErrCodeNotFound, Message: err.Error()})
	case errors.As(err, &dup):
		Error(c, http.StatusConflict, &APIError{
			Code:    ErrCodeConflict,
			Message: err.Error(),
			Details: map[string]any{"kind": dup.Kind, "fields": dup.Fields},
		})
	case domainerrors.IsDuplicate(err):
		Error(c, http.StatusConflict, &APIError{Code: ErrCodeConflict, Message: err.Error()})
	default:
		internalError(c, err)
	}
}

// validationFields: nil, если в цепочке нет ValidationError(s).
func validationFields(err error) []FieldError {
	var list domainerrors.ValidationErrors
	if errors.As(err, &list) {
		fields := make([]FieldError, 0, len(list))
		for _, v := range list {
			fields = append(fields, FieldError{Field: v.Field, Message: v.Message, Code: "invalid"})
		}
		return fields
	}

	var single domainerrors.ValidationError
	if errors.As(err, &single) {
		return []FieldError{{Field: single.Field, Message: single.Message, Code: "invalid"}}
	}
	return nil
}

// internalError пишет причину в лог (через c.Errors и slog), клиенту - общий текст.
func internalError(c *gin.Context, err error) {
	_ = c.Error(err)

	ctx, path := context.Background(), ""
	if c.Request != nil {
		ctx, path = c.Request.Context(), c.Request.URL.Path
	}
	// request_id и user_id добавит logger.ContextHandler
	logger.FromContext(ctx).ErrorContext(ctx, "request failed",
		slog.String("error", err.Error()),
		slog.String("path", path),
	)
	InternalErrorResponse(c, "An unexpected error occurred")
}
