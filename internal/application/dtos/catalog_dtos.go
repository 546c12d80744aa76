package dtos

import "time"

// ============================================
// Commands
// ============================================

// NamedCommand - create/update справочника с одним уникальным именем
// (Category, Vendor, Attribute).
type NamedCommand struct {
	ID   int64  `json:"-"`
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// RoleCommand - create/update роли.
type RoleCommand struct {
	ID          int64  `json:"-"`
	Value       string `json:"value" validate:"required,max=50"`
	Description string `json:"description" validate:"max=255"`
}

// CreateCommentCommand - отзыв на товар. UserID берётся из auth.
type CreateCommentCommand struct {
	UserID    int64  `json:"-"`
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Title     string `json:"title" validate:"required,max=255"`
	Content   string `json:"content" validate:"required"`
}

// CreateTransactionCommand - покупка товара. UserID берётся из auth.
type CreateTransactionCommand struct {
	UserID    int64 `json:"-"`
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Amount    int   `json:"amount" validate:"required,gt=0"`
}

// UpdateTransactionCommand - правка покупки администратором.
// Пустые поля не меняются; amount без full_price пересчитывает
// full_price по цене единицы, зафиксированной при покупке.
type UpdateTransactionCommand struct {
	TransactionID int64   `json:"-"`
	UserID        *int64  `json:"user_id,omitempty" validate:"omitempty,gt=0"`
	ProductID     *int64  `json:"product_id,omitempty" validate:"omitempty,gt=0"`
	Amount        *int    `json:"amount,omitempty" validate:"omitempty,gt=0"`
	FullPrice     *string `json:"full_price,omitempty" validate:"omitempty,price"`
}

// ============================================
// Responses
// ============================================

// CategoryDTO - категория.
type CategoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// VendorDTO - поставщик.
type VendorDTO struct {
	ID          int64  `json:"id"`
	CompanyName string `json:"company_name"`
}

// AttributeDTO - атрибут.
type AttributeDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RoleDTO - роль.
type RoleDTO struct {
	ID          int64  `json:"id"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// CommentDTO - отзыв. UserID/ProductID nil, если автор или товар удалены.
type CommentDTO struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    *int64    `json:"user_id"`
	ProductID *int64    `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TransactionDTO - покупка.
type TransactionDTO struct {
	ID        int64     `json:"id"`
	Amount    int       `json:"amount"`
	FullPrice string    `json:"full_price"`
	UserID    *int64    `json:"user_id"`
	ProductID *int64    `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}
