package memory

import (
	"context"

	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	domainerrors "github.com/Haleralex/storehub/internal/domain/errors"
)

// repository реализует ports.Repository поверх state.
type repository struct {
	kind  entities.Kind
	scope *scope
}

var _ ports.Repository = (*repository)(nil)

func (r *repository) Kind() entities.Kind { return r.kind }

func (r *repository) fail(op string) error {
	if err := r.scope.store.checkFault(r.kind, op); err != nil {
		return domainerrors.NewInfrastructure(string(r.kind)+"."+op, err)
	}
	return nil
}

func matchesAny(row entities.Fields, anyOf []entities.Criteria) bool {
	if len(anyOf) == 0 {
		return true
	}
	for _, c := range anyOf {
		if c.Matches(row) {
			return true
		}
	}
	return false
}

// Find returns matching records in insertion order.
func (r *repository) Find(ctx context.Context, anyOf ...entities.Criteria) ([]entities.Record, error) {
	if err := r.fail(OpFind); err != nil {
		return nil, err
	}
	var out []entities.Record
	err := r.scope.with(func(st *state) error {
		for _, row := range st.rows[r.kind] {
			if !matchesAny(row, anyOf) {
				continue
			}
			rec, err := entities.FromFields(r.kind, copyFields(row))
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

// Insert stores a copy of rec and assigns the next id.
func (r *repository) Insert(ctx context.Context, rec entities.Record) error {
	if rec.Kind() != r.kind {
		return domainerrors.NewInvalidArgument("memory.Insert", "record kind "+string(rec.Kind())+" does not match "+string(r.kind))
	}
	if err := r.fail(OpInsert); err != nil {
		return err
	}
	return r.scope.with(func(st *state) error {
		if idf, ok := rec.(entities.Identifiable); ok && idf.GetID() == 0 {
			st.seq[r.kind]++
			idf.SetID(st.seq[r.kind])
		}
		st.rows[r.kind] = append(st.rows[r.kind], copyFields(rec.Values()))
		return nil
	})
}

// Update applies set to matching rows. Unknown fields and empty criteria are rejected.
func (r *repository) Update(ctx context.Context, where entities.Criteria, set entities.Fields) (int64, error) {
	if len(where) == 0 {
		return 0, domainerrors.NewInvalidArgument("memory.Update", "empty criteria for "+string(r.kind))
	}
	if err := r.fail(OpUpdate); err != nil {
		return 0, err
	}
	var n int64
	err := r.scope.with(func(st *state) error {
		rows := st.rows[r.kind]
		for i, row := range rows {
			if !where.Matches(row) {
				continue
			}
			rec, err := entities.FromFields(r.kind, copyFields(row))
			if err != nil {
				return err
			}
			if err := rec.Assign(set); err != nil {
				return err
			}
			rows[i] = copyFields(rec.Values())
			n++
		}
		return nil
	})
	return n, err
}

// Delete removes matching rows.
func (r *repository) Delete(ctx context.Context, where entities.Criteria) (int64, error) {
	if len(where) == 0 {
		return 0, domainerrors.NewInvalidArgument("memory.Delete", "empty criteria for "+string(r.kind))
	}
	if err := r.fail(OpDelete); err != nil {
		return 0, err
	}
	var n int64
	err := r.scope.with(func(st *state) error {
		rows := st.rows[r.kind]
		kept := rows[:0]
		for _, row := range rows {
			if where.Matches(row) {
				n++
				continue
			}
			kept = append(kept, row)
		}
		st.rows[r.kind] = kept
		return nil
	})
	return n, err
}
