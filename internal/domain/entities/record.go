// Package entities contains the catalog domain entities.
//
// Все сущности реализуют Record: это позволяет generic-компонентам
// (registry, duplicate engine, unbinder, storage backends) работать
// с любым kind через одну и ту же поверхность.
//
// Имена полей в Fields/Criteria совпадают с именами колонок в хранилище.
package entities

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies an entity kind.
type Kind string

const (
	KindProduct          Kind = "Product"
	KindAttribute        Kind = "Attribute"
	KindProductAttribute Kind = "ProductAttribute"
	KindCategory         Kind = "Category"
	KindVendor           Kind = "Vendor"
	KindUser             Kind = "User"
	KindComment          Kind = "Comment"
	KindTransaction      Kind = "Transaction"
	KindPhoto            Kind = "Photo"
	KindRole             Kind = "Role"
	KindUserRole         Kind = "UserRole"
	KindRefreshToken     Kind = "RefreshToken"
)

// AllKinds lists every registered kind in dependency order (parents first).
func AllKinds() []Kind {
	return []Kind{
		KindCategory, KindVendor, KindAttribute, KindRole,
		KindUser, KindProduct, KindProductAttribute, KindUserRole,
		KindPhoto, KindComment, KindTransaction, KindRefreshToken,
	}
}

func (k Kind) String() string { return string(k) }

// Common field names
const (
	FieldID          = "id"
	FieldProductID   = "product_id"
	FieldUserID      = "user_id"
	FieldAttributeID = "attribute_id"
	FieldRoleID      = "role_id"
	FieldCategoryID  = "category_id"
	FieldVendorID    = "vendor_id"
)

// Fields - значения колонок записи (или частичный payload).
type Fields map[string]any

// Criteria - условие поиска: все пары field=value должны совпасть (AND).
// Значение nil означает IS NULL.
type Criteria map[string]any

// Keys returns criteria field names in a stable order.
func (c Criteria) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders criteria as "a=1, b=2" (stable order).
func (c Criteria) String() string {
	parts := make([]string, 0, len(c))
	for _, k := range c.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%v", k, Normalize(c[k])))
	}
	return strings.Join(parts, ", ")
}

// Matches reports whether values satisfy every pair of the criteria.
func (c Criteria) Matches(values Fields) bool {
	for k, want := range c {
		got, ok := values[k]
		if !ok {
			return false
		}
		if !SameValue(got, want) {
			return false
		}
	}
	return true
}

// ByID returns criteria matching a single id.
func ByID(id int64) Criteria {
	return Criteria{FieldID: id}
}

// Record is the capability every persisted entity exposes to generic code.
type Record interface {
	// Kind returns the entity kind.
	Kind() Kind
	// Key returns criteria identifying this exact row.
	Key() Criteria
	// Values returns persisted column values (relations excluded).
	Values() Fields
	// Assign sets columns from fields. Unknown fields are an error.
	Assign(f Fields) error
}

// Identifiable is implemented by records with a generated int64 id.
type Identifiable interface {
	Record
	GetID() int64
	SetID(id int64)
}

// New returns an empty record of the given kind.
func New(kind Kind) (Record, error) {
	switch kind {
	case KindProduct:
		return &Product{}, nil
	case KindAttribute:
		return &Attribute{}, nil
	case KindProductAttribute:
		return &ProductAttribute{}, nil
	case KindCategory:
		return &Category{}, nil
	case KindVendor:
		return &Vendor{}, nil
	case KindUser:
		return &User{}, nil
	case KindComment:
		return &Comment{}, nil
	case KindTransaction:
		return &Transaction{}, nil
	case KindPhoto:
		return &Photo{}, nil
	case KindRole:
		return &Role{}, nil
	case KindUserRole:
		return &UserRole{}, nil
	case KindRefreshToken:
		return &RefreshToken{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownKind, kind)
	}
}

// FromFields builds a record of kind from fields.
func FromFields(kind Kind, f Fields) (Record, error) {
	rec, err := New(kind)
	if err != nil {
		return nil, err
	}
	if err := rec.Assign(f); err != nil {
		return nil, err
	}
	return rec, nil
}

// Clone returns an independent copy of rec (columns only).
func Clone(rec Record) Record {
	cp, err := FromFields(rec.Kind(), rec.Values())
	if err != nil {
		// Values() of a well-formed record always round-trips.
		panic(fmt.Sprintf("entities: clone %s: %v", rec.Kind(), err))
	}
	return cp
}

// SameKey reports whether a and b identify the same row.
func SameKey(a, b Record) bool {
	if a == nil || b == nil || a.Kind() != b.Kind() {
		return false
	}
	ka, kb := a.Key(), b.Key()
	if len(ka) != len(kb) {
		return false
	}
	return ka.Matches(Fields(kb))
}

// As converts a record to its concrete type.
func As[T Record](rec Record) (T, error) {
	v, ok := rec.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: unexpected record type %T", errUnknownKind, rec)
	}
	return v, nil
}

// AsSlice converts records to their concrete type.
func AsSlice[T Record](recs []Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := As[T](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
