package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Haleralex/storehub/internal/domain/errors"
)

// Product - товар каталога.
//
// Relations (Category, Vendor, Photos, Attributes) не являются колонками:
// они заполняются только при загрузке "полного" представления товара.
type Product struct {
	ID          int64
	ProductName string
	Description string
	Price       decimal.Decimal
	Quantity    int
	IsActive    bool
	CategoryID  *int64
	VendorID    *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Category   *Category
	Vendor     *Vendor
	Photos     []*Photo
	Attributes []*ProductAttribute
}

// NewProduct creates a Product with validation.
//
// Business Rules:
// - product_name is required (uniqueness is checked by the duplicate engine)
// - price and quantity are not negative
// - new products are active
func NewProduct(name, description string, price decimal.Decimal, quantity int) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.ValidationError{Field: "product_name", Message: errors.ErrEmptyName.Error()}
	}
	if price.IsNegative() {
		return nil, errors.ValidationError{Field: "price", Message: errors.ErrInvalidPrice.Error()}
	}
	if quantity < 0 {
		return nil, errors.ValidationError{Field: "quantity", Message: errors.ErrInvalidQuantity.Error()}
	}

	now := time.Now().UTC()
	return &Product{
		ProductName: name,
		Description: description,
		Price:       price,
		Quantity:    quantity,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (p *Product) Kind() Kind     { return KindProduct }
func (p *Product) GetID() int64   { return p.ID }
func (p *Product) SetID(id int64) { p.ID = id }
func (p *Product) Key() Criteria  { return ByID(p.ID) }

// Values returns persisted columns.
func (p *Product) Values() Fields {
	return Fields{
		"id":           p.ID,
		"product_name": p.ProductName,
		"description":  p.Description,
		"price":        p.Price,
		"quantity":     p.Quantity,
		"is_active":    p.IsActive,
		"category_id":  optInt64(p.CategoryID),
		"vendor_id":    optInt64(p.VendorID),
		"created_at":   p.CreatedAt,
		"updated_at":   p.UpdatedAt,
	}
}

// Assign sets columns from fields.
func (p *Product) Assign(f Fields) error {
	for k, v := range f {
		var err error
		switch k {
		case "id":
			p.ID, err = toInt64(v)
		case "product_name":
			p.ProductName, err = toString(v)
		case "description":
			p.Description, err = toString(v)
		case "price":
			p.Price, err = toDecimal(v)
		case "quantity":
			p.Quantity, err = toInt(v)
		case "is_active":
			p.IsActive, err = toBool(v)
		case "category_id":
			p.CategoryID, err = toOptInt64(v)
		case "vendor_id":
			p.VendorID, err = toOptInt64(v)
		case "created_at":
			p.CreatedAt, err = toTime(v)
		case "updated_at":
			p.UpdatedAt, err = toTime(v)
		default:
			return unknownField(KindProduct, k)
		}
		if err != nil {
			return badValue(KindProduct, k, err)
		}
	}
	return nil
}

// ============================================
// Attribute
// ============================================

// Attribute - именованная характеристика товара (например, "color").
type Attribute struct {
	ID            int64
	AttributeName string
}

// NewAttribute creates an Attribute.
func NewAttribute(name string) (*Attribute, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.ValidationError{Field: "attribute_name", Message: errors.ErrEmptyName.Error()}
	}
	return &Attribute{AttributeName: name}, nil
}

func (a *Attribute) Kind() Kind     { return KindAttribute }
func (a *Attribute) GetID() int64   { return a.ID }
func (a *Attribute) SetID(id int64) { a.ID = id }
func (a *Attribute) Key() Criteria  { return ByID(a.ID) }

func (a *Attribute) Values() Fields {
	return Fields{"id": a.ID, "attribute_name": a.AttributeName}
}

func (a *Attribute) Assign(f Fields) error {
	for k, v := range f {
		var err error
		switch k {
		case "id":
			a.ID, err = toInt64(v)
		case "attribute_name":
			a.AttributeName, err = toString(v)
		default:
			return unknownField(KindAttribute, k)
		}
		if err != nil {
			return badValue(KindAttribute, k, err)
		}
	}
	return nil
}

// ============================================
// ProductAttribute
// ============================================

// ProductAttribute - связь Product<->Attribute с payload value.
// Identity: (product_id, attribute_id).
type ProductAttribute struct {
	ProductID   int64
	AttributeID int64
	Value       string

	Attribute *Attribute
}

func (l *ProductAttribute) Kind() Kind { return KindProductAttribute }

func (l *ProductAttribute) Key() Criteria {
	return Criteria{FieldProductID: l.ProductID, FieldAttributeID: l.AttributeID}
}

func (l *ProductAttribute) Values() Fields {
	return Fields{
		"product_id":   l.ProductID,
		"attribute_id": l.AttributeID,
		"value":        l.Value,
	}
}

func (l *ProductAttribute) Assign(f Fields) error {
	for k, v := range f {
		var err error
		switch k {
		case "product_id":
			l.ProductID, err = toInt64(v)
		case "attribute_id":
			l.AttributeID, err = toInt64(v)
		case "value":
			l.Value, err = toString(v)
		default:
			return unknownField(KindProductAttribute, k)
		}
		if err != nil {
			return badValue(KindProductAttribute, k, err)
		}
	}
	return nil
}
