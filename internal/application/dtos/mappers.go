// Package dtos - Mappers для конвертации domain entities в DTOs.
//
// Pattern: Mapper/Converter
// Отделяет domain representation от API representation
package dtos

import (
	"github.com/Haleralex/storehub/internal/domain/entities"
	"github.com/Haleralex/storehub/internal/domain/valueobjects"
)

// ============================================
// Product Mappers
// ============================================

// ToProductDTO конвертирует Product (с загруженными связями) в DTO.
func ToProductDTO(p *entities.Product) ProductDTO {
	dto := ProductDTO{
		ID:          p.ID,
		ProductName: p.ProductName,
		Description: p.Description,
		Price:       formatPrice(p),
		Quantity:    p.Quantity,
		IsActive:    p.IsActive,
		Photos:      ToPhotoDTOList(p.Photos),
		Attributes:  make([]ProductAttributeDTO, 0, len(p.Attributes)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Category != nil {
		c := ToCategoryDTO(p.Category)
		dto.Category = &c
	}
	if p.Vendor != nil {
		v := ToVendorDTO(p.Vendor)
		dto.Vendor = &v
	}
	for _, link := range p.Attributes {
		dto.Attributes = append(dto.Attributes, ToProductAttributeDTO(link))
	}
	return dto
}

func formatPrice(p *entities.Product) string {
	price, err := valueobjects.PriceFromDecimal(p.Price)
	if err != nil {
		return p.Price.String()
	}
	return price.String()
}

// ToProductDTOList конвертирует список товаров.
func ToProductDTOList(products []*entities.Product) []ProductDTO {
	result := make([]ProductDTO, len(products))
	for i, p := range products {
		result[i] = ToProductDTO(p)
	}
	return result
}

// ToProductAttributeDTO конвертирует связь Product<->Attribute.
func ToProductAttributeDTO(link *entities.ProductAttribute) ProductAttributeDTO {
	dto := ProductAttributeDTO{
		ProductID:   link.ProductID,
		AttributeID: link.AttributeID,
		Value:       link.Value,
	}
	if link.Attribute != nil {
		dto.AttributeName = link.Attribute.AttributeName
	}
	return dto
}

// ToProductAttributeDTOList конвертирует список связей.
func ToProductAttributeDTOList(links []*entities.ProductAttribute) []ProductAttributeDTO {
	result := make([]ProductAttributeDTO, len(links))
	for i, l := range links {
		result[i] = ToProductAttributeDTO(l)
	}
	return result
}

// ToPhotoDTOList конвертирует фотографии. Никогда не возвращает nil.
func ToPhotoDTOList(photos []*entities.Photo) []PhotoDTO {
	result := make([]PhotoDTO, 0, len(photos))
	for _, p := range photos {
		result = append(result, PhotoDTO{
			ID:       p.ID,
			URL:      p.URL,
			Filename: p.Filename,
			Type:     p.Type,
			Size:     p.Size,
		})
	}
	return result
}

// ============================================
// User Mappers
// ============================================

// ToUserDTO конвертирует domain entity User в DTO.
func ToUserDTO(user *entities.User) UserDTO {
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, r.Value)
	}
	return UserDTO{
		ID:          user.ID,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Email:       user.Email,
		Phone:       user.Phone,
		Birthday:    user.Birthday,
		IsActivated: user.IsActivated,
		Roles:       roles,
		Photos:      ToPhotoDTOList(user.Photos),
		CreatedAt:   user.CreatedAt,
	}
}

// ToUserDTOList конвертирует список users.
func ToUserDTOList(users []*entities.User) []UserDTO {
	result := make([]UserDTO, len(users))
	for i, user := range users {
		result[i] = ToUserDTO(user)
	}
	return result
}

// ============================================
// Catalog Mappers
// ============================================

// ToCategoryDTO конвертирует Category.
func ToCategoryDTO(c *entities.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.CategoryName}
}

// ToVendorDTO конвертирует Vendor.
func ToVendorDTO(v *entities.Vendor) VendorDTO {
	return VendorDTO{ID: v.ID, CompanyName: v.CompanyName}
}

// ToAttributeDTO конвертирует Attribute.
func ToAttributeDTO(a *entities.Attribute) AttributeDTO {
	return AttributeDTO{ID: a.ID, Name: a.AttributeName}
}

// ToRoleDTO конвертирует Role.
func ToRoleDTO(r *entities.Role) RoleDTO {
	return RoleDTO{ID: r.ID, Value: r.Value, Description: r.Description}
}

// ToCommentDTO конвертирует Comment.
func ToCommentDTO(c *entities.Comment) CommentDTO {
	return CommentDTO{
		ID:        c.ID,
		Title:     c.Title,
		Content:   c.Content,
		UserID:    c.UserID,
		ProductID: c.ProductID,
		CreatedAt: c.CreatedAt,
	}
}

// ToTransactionDTO конвертирует Transaction.
func ToTransactionDTO(t *entities.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:        t.ID,
		Amount:    t.Amount,
		FullPrice: t.FullPrice.StringFixed(valueobjects.PriceScale),
		UserID:    t.UserID,
		ProductID: t.ProductID,
		CreatedAt: t.CreatedAt,
	}
}
