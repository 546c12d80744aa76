package entities

import (
	"strings"

	"github.com/Haleralex/storehub/internal/domain/errors"
)

// Category - категория товаров.
type Category struct {
	ID           int64
	CategoryName string
}

// NewCategory creates a Category.
func NewCategory(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.ValidationError{Field: "category_name", Message: errors.ErrEmptyName.Error()}
	}
	return &Category{CategoryName: name}, nil
}

func (c *Category) Kind() Kind     { return KindCategory }
func (c *Category) GetID() int64   { return c.ID }
func (c *Category) SetID(id int64) { c.ID = id }
func (c *Category) Key() Criteria  { return ByID(c.ID) }

func (c *Category) Values() Fields {
	return Fields{"id": c.ID, "category_name": c.CategoryName}
}

func (c *Category) Assign(f Fields) error {
	for k, v := range f {
		var err error
		switch k {
		case "id":
			c.ID, err = toInt64(v)
		case "category_name":
			c.CategoryName, err = toString(v)
		default:
			return unknownField(KindCategory, k)
		}
		if err != nil {
			return badValue(KindCategory, k, err)
		}
	}
	return nil
}

// Vendor - поставщик.
type Vendor struct {
	ID          int64
	CompanyName string
}

// NewVendor creates a Vendor.
func NewVendor(companyName string) (*Vendor, error) {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, errors.ValidationError{Field: "company_name", Message: errors.ErrEmptyName.Error()}
	}
	return &Vendor{CompanyName: companyName}, nil
}

func (v *Vendor) Kind() Kind     { return KindVendor }
func (v *Vendor) GetID() int64   { return v.ID }
func (v *Vendor) SetID(id int64) { v.ID = id }
func (v *Vendor) Key() Criteria  { return ByID(v.ID) }

func (v *Vendor) Values() Fields {
	return Fields{"id": v.ID, "company_name": v.CompanyName}
}

func (v *Vendor) Assign(f Fields) error {
	for k, val := range f {
		var err error
		switch k {
		case "id":
			v.ID, err = toInt64(val)
		case "company_name":
			v.CompanyName, err = toString(val)
		default:
			return unknownField(KindVendor, k)
		}
		if err != nil {
			return badValue(KindVendor, k, err)
		}
	}
	return nil
}
