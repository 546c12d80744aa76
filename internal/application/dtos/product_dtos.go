package dtos

import "time"

// ============================================
// Commands
// ============================================

// CreateProductCommand - команда product composition workflow.
//
// Category и Vendor передаются по имени, атрибуты - картой name -> value.
type CreateProductCommand struct {
	ProductName  string            `json:"product_name" validate:"required,min=1,max=255"`
	Description  string            `json:"description" validate:"max=5000"`
	Price        string            `json:"price" validate:"required,price"`
	Quantity     int               `json:"quantity" validate:"min=0"`
	CategoryName string            `json:"category" validate:"required"`
	VendorName   string            `json:"vendor" validate:"required"`
	Attributes   map[string]string `json:"attributes"`
	Photos       []FileUpload      `json:"-"`
}

// UpdateProductCommand - частичное обновление товара. nil = не изменять.
type UpdateProductCommand struct {
	ProductID    int64   `json:"-"`
	ProductName  *string `json:"product_name,omitempty" validate:"omitempty,min=1,max=255"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price        *string `json:"price,omitempty" validate:"omitempty,price"`
	Quantity     *int    `json:"quantity,omitempty" validate:"omitempty,min=0"`
	IsActive     *bool   `json:"is_active,omitempty"`
	CategoryName *string `json:"category,omitempty"`
	VendorName   *string `json:"vendor,omitempty"`
}

// LinkCommand - операция над связью Product<->Attribute.
type LinkCommand struct {
	ProductID     int64  `json:"-"`
	AttributeName string `json:"attribute" validate:"required"`
	Value         string `json:"value"`
}

// ============================================
// Responses
// ============================================

// ProductDTO - полное представление товара со связями.
type ProductDTO struct {
	ID          int64                 `json:"id"`
	ProductName string                `json:"product_name"`
	Description string                `json:"description"`
	Price       string                `json:"price"`
	Quantity    int                   `json:"quantity"`
	IsActive    bool                  `json:"is_active"`
	Category    *CategoryDTO          `json:"category,omitempty"`
	Vendor      *VendorDTO            `json:"vendor,omitempty"`
	Photos      []PhotoDTO            `json:"photos"`
	Attributes  []ProductAttributeDTO `json:"attributes"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// ProductAttributeDTO - значение атрибута товара.
type ProductAttributeDTO struct {
	ProductID     int64  `json:"product_id"`
	AttributeID   int64  `json:"attribute_id"`
	AttributeName string `json:"attribute,omitempty"`
	Value         string `json:"value"`
}

// PhotoDTO - метаданные фотографии.
type PhotoDTO struct {
	ID       int64  `json:"id"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Type     string `json:"type"`
	Size     int64  `json:"size"`
}

// DeleteResultDTO - итог каскадного удаления.
type DeleteResultDTO struct {
	ID      int64            `json:"id"`
	Unbound map[string]int64 `json:"unbound"`
}
