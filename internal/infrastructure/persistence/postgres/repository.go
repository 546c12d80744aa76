// Package postgres - generic table repository.
package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	domainErrors "github.com/Haleralex/storehub/internal/domain/errors"
)

// Compile-time check
var _ ports.Repository = (*TableRepository)(nil)

// TableRepository реализует ports.Repository для одной таблицы.
//
// Transaction-aware: querier - это pgx.Tx транзакционного scope
// или pool для scope по умолчанию.
// Имена колонок берутся только из Schema, значения передаются параметрами.
type TableRepository struct {
	kind  entities.Kind
	table Table
	q     querier
}

// Kind returns the served kind.
func (r *TableRepository) Kind() entities.Kind { return r.kind }

// Find returns records matching any of the criteria.
func (r *TableRepository) Find(ctx context.Context, anyOf ...entities.Criteria) ([]entities.Record, error) {
	var args []any
	var ors []string
	for _, c := range anyOf {
		cond, err := r.where(c, &args)
		if err != nil {
			return nil, err
		}
		ors = append(ors, "("+cond+")")
	}

	query := "SELECT " + r.selectList() + " FROM " + quote(r.table.Name)
	if len(ors) > 0 {
		query += " WHERE " + strings.Join(ors, " OR ")
	}
	query += " ORDER BY " + r.orderBy()

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.table.Name, err)
	}
	defer rows.Close()

	var out []entities.Record
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.table.Name, err)
		}
		fields := make(entities.Fields, len(vals))
		for i, fd := range rows.FieldDescriptions() {
			fields[fd.Name] = vals[i]
		}
		rec, err := entities.FromFields(r.kind, fields)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", r.table.Name, err)
	}
	return out, nil
}

// Insert stores rec; the generated id is written back via SetID.
func (r *TableRepository) Insert(ctx context.Context, rec entities.Record) error {
	if rec.Kind() != r.kind {
		return domainErrors.NewInvalidArgument("postgres.Insert",
			fmt.Sprintf("record kind %s does not match %s", rec.Kind(), r.kind))
	}

	values := rec.Values()
	cols := make([]string, 0, len(values))
	for col := range values {
		if col == r.table.Generated && entities.Normalize(values[col]) == int64(0) {
			continue
		}
		if !r.table.Has(col) {
			return unknownColumn(r.kind, col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	quoted := make([]string, len(cols))
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = arg(values[col])
		quoted[i] = quote(col)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(r.table.Name), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	idf, identifiable := rec.(entities.Identifiable)
	if r.table.Generated == "" || !identifiable {
		if _, err := r.q.Exec(ctx, query, args...); err != nil {
			return r.writeError("insert", err)
		}
		return nil
	}

	var id int64
	query += " RETURNING " + quote(r.table.Generated)
	if err := r.q.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return r.writeError("insert", err)
	}
	idf.SetID(id)
	return nil
}

// Update sets fields on matching rows.
func (r *TableRepository) Update(ctx context.Context, where entities.Criteria, set entities.Fields) (int64, error) {
	if err := r.requireCriteria("update", where); err != nil {
		return 0, err
	}
	if len(set) == 0 {
		return 0, nil
	}
	// Проверка имён и типов тем же Assign, что использует memory backend.
	sample, err := entities.New(r.kind)
	if err != nil {
		return 0, err
	}
	if err := sample.Assign(set); err != nil {
		return 0, err
	}

	cols := make([]string, 0, len(set))
	for col := range set {
		if !r.table.Has(col) {
			return 0, unknownColumn(r.kind, col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	args := make([]any, 0, len(cols))
	assignments := make([]string, len(cols))
	for i, col := range cols {
		args = append(args, arg(set[col]))
		assignments[i] = fmt.Sprintf("%s = $%d", quote(col), len(args))
	}

	cond, err := r.where(where, &args)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		quote(r.table.Name), strings.Join(assignments, ", "), cond)

	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, r.writeError("update", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes matching rows.
func (r *TableRepository) Delete(ctx context.Context, where entities.Criteria) (int64, error) {
	if err := r.requireCriteria("delete", where); err != nil {
		return 0, err
	}
	var args []any
	cond, err := r.where(where, &args)
	if err != nil {
		return 0, err
	}
	tag, err := r.q.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s", quote(r.table.Name), cond), args...)
	if err != nil {
		return 0, r.writeError("delete", err)
	}
	return tag.RowsAffected(), nil
}

// ============================================
// SQL building
// ============================================

// requireCriteria: UPDATE/DELETE без условия задели бы всю таблицу.
func (r *TableRepository) requireCriteria(op string, where entities.Criteria) error {
	if len(where) == 0 {
		return domainErrors.NewInvalidArgument("postgres."+op, "empty criteria for "+string(r.kind))
	}
	return nil
}

// where renders one criteria as an AND list; args accumulates parameters.
// nil значение - "IS NULL". Пустые criteria (только Find) совпадают со всеми строками.
func (r *TableRepository) where(c entities.Criteria, args *[]any) (string, error) {
	if len(c) == 0 {
		return "TRUE", nil
	}
	cols := make([]string, 0, len(c))
	for col := range c {
		if !r.table.Has(col) {
			return "", unknownColumn(r.kind, col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	parts := make([]string, len(cols))
	for i, col := range cols {
		v := arg(c[col])
		if v == nil {
			parts[i] = quote(col) + " IS NULL"
			continue
		}
		*args = append(*args, v)
		parts[i] = fmt.Sprintf("%s = $%d", quote(col), len(*args))
	}
	return strings.Join(parts, " AND "), nil
}

func (r *TableRepository) selectList() string {
	out := make([]string, len(r.table.Columns))
	for i, col := range r.table.Columns {
		if r.table.isNumeric(col) {
			out[i] = quote(col) + "::text AS " + quote(col)
			continue
		}
		out[i] = quote(col)
	}
	return strings.Join(out, ", ")
}

func (r *TableRepository) orderBy() string {
	if r.table.Generated != "" {
		return quote(r.table.Generated)
	}
	keys := make([]string, 0, 2)
	for _, col := range r.table.Columns {
		if strings.HasSuffix(col, "_id") {
			keys = append(keys, quote(col))
		}
	}
	return strings.Join(keys, ", ")
}

// writeError maps constraint violations; the rest goes to the Unit of Work as is.
func (r *TableRepository) writeError(op string, err error) error {
	if isUniqueViolation(err) {
		return duplicateFromPg(r.kind, err)
	}
	if isForeignKeyViolation(err) {
		pgErr, _ := pgError(err)
		return fmt.Errorf("failed to %s %s: constraint %s: %w", op, r.table.Name, pgErr.ConstraintName, err)
	}
	return fmt.Errorf("failed to %s %s: %w", op, r.table.Name, err)
}

func quote(ident string) string {
	return pgx.Identifier{ident}.Sanitize()
}

// arg converts a field value to a query parameter.
func arg(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x
	case *decimal.Decimal:
		if x == nil {
			return nil
		}
		return *x
	}
	return entities.Normalize(v)
}

func unknownColumn(kind entities.Kind, col string) error {
	return domainErrors.NewInvalidArgument("postgres."+string(kind), fmt.Sprintf("unknown column %q", col))
}
