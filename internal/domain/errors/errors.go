// Package errors - типизированные ошибки домена StoreHub.
//
//   - NotFoundError: ссылка на несуществующую запись
//   - DuplicateError: нарушение unique группы, найденное до insert/update
//   - InvalidArgumentError: ошибка вызывающего кода или wiring (ErrConfiguration)
//   - InfrastructureError: сбой хранилища, причина только для логов
//   - ValidationError(s): некорректные поля команды
//
// Каждый тип разворачивается в sentinel, поэтому проверки идут через errors.Is.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors
var (
	ErrEntityNotFound  = errors.New("entity not found")
	ErrDuplicate       = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConfiguration   = errors.New("configuration error")
	ErrInfrastructure  = errors.New("infrastructure failure")

	// Catalog errors
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrInvalidQuantity = errors.New("quantity must not be negative")
	ErrEmptyName       = errors.New("name must not be empty")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrUnknownKind     = errors.New("unknown entity kind")
)

// ============================================
// NotFound
// ============================================

// NotFoundError - запись с заданным field=value не существует.
type NotFoundError struct {
	Kind    string // e.g. "Vendor"
	Field   string // e.g. "company_name"
	Value   any
	Message string // optional override
}

// NewNotFound creates a NotFoundError for kind/field/value.
func NewNotFound(kind, field string, value any) *NotFoundError {
	return &NotFoundError{Kind: kind, Field: field, Value: value}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s with given [%s=%v] not found", e.Kind, e.Field, e.Value)
}

// Unwrap makes errors.Is(err, ErrEntityNotFound) work.
func (e *NotFoundError) Unwrap() error {
	return ErrEntityNotFound
}

// ============================================
// Duplicate
// ============================================

// DuplicateError - кандидат совпадает с существующей записью по одной из unique групп.
//
// Fields содержит по одной строке на совпавшую группу: "first_name=John + last_name=Doe".
type DuplicateError struct {
	Kind    string
	Fields  []string
	Message string // optional override
}

// NewDuplicate creates a DuplicateError.
func NewDuplicate(kind string, fields []string) *DuplicateError {
	return &DuplicateError{Kind: kind, Fields: fields}
}

// Error implements the error interface.
func (e *DuplicateError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s with given [%s] fields already exists", e.Kind, strings.Join(e.Fields, ", "))
}

// Unwrap makes errors.Is(err, ErrDuplicate) work.
func (e *DuplicateError) Unwrap() error {
	return ErrDuplicate
}

// ============================================
// InvalidArgument
// ============================================

// InvalidArgumentError - ошибка программиста, а не пользовательского ввода.
// Например: нет scope, не зарегистрирован репозиторий для kind.
type InvalidArgumentError struct {
	Op      string
	Message string
	Err     error // ErrInvalidArgument or ErrConfiguration
}

// NewInvalidArgument creates an InvalidArgumentError.
func NewInvalidArgument(op, message string) *InvalidArgumentError {
	return &InvalidArgumentError{Op: op, Message: message, Err: ErrInvalidArgument}
}

// NewConfigurationError creates an InvalidArgumentError caused by missing wiring.
func NewConfigurationError(op, message string) *InvalidArgumentError {
	return &InvalidArgumentError{Op: op, Message: message, Err: ErrConfiguration}
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the sentinel.
func (e *InvalidArgumentError) Unwrap() error {
	return e.Err
}

// Is lets configuration errors also match ErrInvalidArgument.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// ============================================
// Infrastructure
// ============================================

// InfrastructureError оборачивает ошибки хранилища/транспорта.
// Наружу отдаётся непрозрачное сообщение, причина остаётся для логов.
type InfrastructureError struct {
	Op  string
	Err error
}

// NewInfrastructure wraps err. Returns nil for nil err.
func NewInfrastructure(op string, err error) error {
	if err == nil {
		return nil
	}
	return &InfrastructureError{Op: op, Err: err}
}

// Error implements the error interface.
func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("infrastructure failure during %s: %v", e.Op, e.Err)
}

// Unwrap returns the cause.
func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

// Is matches ErrInfrastructure.
func (e *InfrastructureError) Is(target error) bool {
	return target == ErrInfrastructure
}

// ============================================
// Validation
// ============================================

// ValidationError - некорректное значение одного поля команды.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

// ValidationErrors собирает ошибки по всем полям, чтобы клиент увидел их разом.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %d error(s)", len(e))
}

// Add appends a field error.
func (e *ValidationErrors) Add(field, message string) {
	*e = append(*e, ValidationError{Field: field, Message: message})
}

// HasErrors - есть ли хотя бы одна ошибка.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// ============================================
// Helper functions for common error checking
// ============================================

// IsNotFound checks if an error is an "entity not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound)
}

// IsDuplicate checks if an error is a uniqueness violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsInvalidArgument checks if an error is a programming/configuration error.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsConfiguration checks if an error is caused by missing wiring.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsInfrastructure checks if an error is an infrastructure failure.
func IsInfrastructure(err error) bool {
	return errors.Is(err, ErrInfrastructure)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var valErr ValidationError
	var valErrs ValidationErrors
	return errors.As(err, &valErr) || errors.As(err, &valErrs)
}

// IsBusiness сообщает, является ли ошибка "известной" бизнес-ошибкой.
// Такие ошибки проходят через границу транзакции без изменений.
func IsBusiness(err error) bool {
	if err == nil {
		return false
	}
	return IsNotFound(err) ||
		IsDuplicate(err) ||
		IsInvalidArgument(err) ||
		IsValidationError(err)
}
