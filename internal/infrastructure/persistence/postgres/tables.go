package postgres

import (
	"github.com/Haleralex/storehub/internal/domain/entities"
)

// Table - отображение kind на таблицу.
type Table struct {
	Name    string
	Columns []string
	// Generated - колонка с identity, заполняемая через RETURNING ("" для join-таблиц).
	Generated string
	// Numeric - колонки, которые читаются как text, чтобы не терять точность decimal.
	Numeric []string
}

// Has reports whether col is a column of t.
func (t Table) Has(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

func (t Table) isNumeric(col string) bool {
	for _, c := range t.Numeric {
		if c == col {
			return true
		}
	}
	return false
}

// Schema - таблицы всех kind. Совпадает с migrations/000001_create_catalog.up.sql.
var Schema = map[entities.Kind]Table{
	entities.KindCategory: {
		Name:      "categories",
		Columns:   []string{"id", "category_name"},
		Generated: "id",
	},
	entities.KindVendor: {
		Name:      "vendors",
		Columns:   []string{"id", "company_name"},
		Generated: "id",
	},
	entities.KindAttribute: {
		Name:      "attributes",
		Columns:   []string{"id", "attribute_name"},
		Generated: "id",
	},
	entities.KindProduct: {
		Name: "products",
		Columns: []string{"id", "product_name", "description", "price", "quantity", "is_active",
			"category_id", "vendor_id", "created_at", "updated_at"},
		Generated: "id",
		Numeric:   []string{"price"},
	},
	entities.KindProductAttribute: {
		Name:    "product_attributes",
		Columns: []string{"product_id", "attribute_id", "value"},
	},
	entities.KindUser: {
		Name: "users",
		Columns: []string{"id", "first_name", "last_name", "birthday", "email", "password", "phone",
			"is_activated", "activation_link", "created_at"},
		Generated: "id",
	},
	entities.KindRole: {
		Name:      "roles",
		Columns:   []string{"id", "value", "description"},
		Generated: "id",
	},
	entities.KindUserRole: {
		Name:    "user_roles",
		Columns: []string{"user_id", "role_id"},
	},
	entities.KindRefreshToken: {
		Name:      "refresh_tokens",
		Columns:   []string{"id", "token", "user_id"},
		Generated: "id",
	},
	entities.KindComment: {
		Name:      "comments",
		Columns:   []string{"id", "title", "content", "user_id", "product_id", "created_at"},
		Generated: "id",
	},
	entities.KindTransaction: {
		Name:      "transactions",
		Columns:   []string{"id", "amount", "full_price", "user_id", "product_id", "created_at"},
		Generated: "id",
		Numeric:   []string{"full_price"},
	},
	entities.KindPhoto: {
		Name: "photos",
		Columns: []string{"id", "url", "filename", "type", "size", "destination",
			"user_id", "product_id"},
		Generated: "id",
	},
}
