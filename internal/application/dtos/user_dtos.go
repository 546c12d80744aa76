// Package dtos определяет Data Transfer Objects для передачи данных между слоями.
//
// Почему нужны DTOs? (не использовать domain entities напрямую)
// 1. Разделение concerns: Domain entities могут меняться независимо от API
// 2. Безопасность: Не раскрываем внутренние поля (password hash, activation link)
// 3. Версионирование: Разные версии API могут использовать разные DTOs
//
// Pattern: Data Transfer Object
package dtos

import (
	"io"
	"time"
)

// ============================================
// Commands (Write операции - изменяют состояние)
// ============================================

// FileUpload - загруженный файл (photo/avatar). Body не сериализуется.
type FileUpload struct {
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	Body         io.ReadSeeker `json:"-"`
}

// CreateUserCommand - команда для создания пользователя.
type CreateUserCommand struct {
	FirstName string      `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string      `json:"last_name" validate:"required,min=1,max=100"`
	Email     string      `json:"email" validate:"required,email"`
	Password  string      `json:"password" validate:"required,min=6,max=72"`
	Phone     string      `json:"phone" validate:"omitempty,max=32"`
	Birthday  *time.Time  `json:"birthday,omitempty"`
	Avatar    *FileUpload `json:"-"`
}

// UpdateUserCommand - команда для обновления данных пользователя.
// nil = не изменять.
type UpdateUserCommand struct {
	UserID    int64      `json:"-"`
	FirstName *string    `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string    `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	Email     *string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string    `json:"phone,omitempty" validate:"omitempty,max=32"`
	Birthday  *time.Time `json:"birthday,omitempty"`
}

// UserRoleCommand - добавление/удаление роли пользователя.
type UserRoleCommand struct {
	UserID int64  `json:"-"`
	Value  string `json:"value" validate:"required,max=50"`
}

// SaveRefreshTokenCommand - upsert refresh token пользователя.
type SaveRefreshTokenCommand struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Token  string `json:"token" validate:"required"`
}

// ============================================
// Queries (Read операции - не изменяют состояние)
// ============================================

// ListQuery - пагинация для list-запросов.
type ListQuery struct {
	Offset int `json:"offset" form:"offset" validate:"min=0"`
	Limit  int `json:"limit" form:"limit" validate:"min=0,max=100"`
}

// Window applies pagination to a slice length n and returns [from, to).
// Limit 0 means "no limit".
func (q ListQuery) Window(n int) (int, int) {
	from := q.Offset
	if from > n {
		from = n
	}
	to := n
	if q.Limit > 0 && from+q.Limit < n {
		to = from + q.Limit
	}
	return from, to
}

// ============================================
// Response DTOs (Результаты операций)
// ============================================

// UserDTO - представление пользователя для API.
//
// Отличия от domain entity User:
// - Нет password и activation_link
type UserDTO struct {
	ID          int64      `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Birthday    *time.Time `json:"birthday,omitempty"`
	IsActivated bool       `json:"is_activated"`
	Roles       []string   `json:"roles"`
	Photos      []PhotoDTO `json:"photos"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RefreshTokenDTO - сохранённый refresh token.
type RefreshTokenDTO struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Token  string `json:"token"`
}
