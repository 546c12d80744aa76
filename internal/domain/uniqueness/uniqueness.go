// Package uniqueness реализует сверку кандидата с unique-группами kind.
//
// Пакет не знает о хранилище: на вход подаются plain Fields, на выход
// условия поиска и описание совпадений. Один поиск по OR всех условий
// делает вызывающий код (consistency.Checker), а затем передаёт
// найденные строки в Evaluate.
package uniqueness

import (
	"fmt"
	"strings"

	"github.com/Haleralex/storehub/internal/domain/entities"
	domainerrors "github.com/Haleralex/storehub/internal/domain/errors"
)

// Group - набор полей, совокупные значения которых уникальны в пределах kind.
type Group []string

// Condition - разрешённые значения одной группы (AND внутри группы).
type Condition struct {
	Group  Group
	Values entities.Criteria
}

// GroupsOf converts declared field groups to Groups.
func GroupsOf(fields [][]string) []Group {
	out := make([]Group, 0, len(fields))
	for _, f := range fields {
		out = append(out, Group(f))
	}
	return out
}

// IsSupplied reports whether a payload value counts as "present":
// not nil and not an empty string.
func IsSupplied(v any) bool {
	switch x := entities.Normalize(v).(type) {
	case nil:
		return false
	case string:
		return x != ""
	default:
		return true
	}
}

// Conditions builds one search condition per group.
//
// Каждое поле группы берётся из candidate, если оно там передано, иначе
// из existing. При existing == nil (create) группа с непереданным полем
// отбрасывается. При update группа без единого переданного поля тоже
// отбрасывается: такое обновление её не меняет.
func Conditions(existing, candidate entities.Fields, groups []Group, update bool) []Condition {
	var out []Condition
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		values := make(entities.Criteria, len(g))
		supplied, complete := false, true
		for _, field := range g {
			if v, ok := candidate[field]; ok && IsSupplied(v) {
				values[field] = v
				supplied = true
				continue
			}
			if existing == nil {
				complete = false
				break
			}
			values[field] = existing[field]
		}
		if !complete {
			continue
		}
		if update && !supplied {
			continue
		}
		out = append(out, Condition{Group: g, Values: values})
	}
	return out
}

// Criteria returns the OR-list of conditions for a single lookup.
func Criteria(conds []Condition) []entities.Criteria {
	out := make([]entities.Criteria, 0, len(conds))
	for _, c := range conds {
		out = append(out, c.Values)
	}
	return out
}

// Matched describes which groups of conds the row fully matches.
//
// Поля группы сравниваются слева направо до первого несовпадения;
// группа попадает в результат только если совпали все её поля.
// Формат элемента: "first_name=John + last_name=Doe".
func Matched(row entities.Fields, conds []Condition) []string {
	var out []string
	for _, c := range conds {
		pairs := make([]string, 0, len(c.Group))
		for _, field := range c.Group {
			want := c.Values[field]
			if !entities.SameValue(row[field], want) {
				break
			}
			pairs = append(pairs, fmt.Sprintf("%s=%v", field, entities.Normalize(want)))
		}
		if len(pairs) == len(c.Group) {
			out = append(out, strings.Join(pairs, " + "))
		}
	}
	return out
}

// Evaluate checks rows returned by the lookup against conds and fails with
// DuplicateError on the first row matching at least one full group.
func Evaluate(kind entities.Kind, conds []Condition, rows []entities.Fields) error {
	for _, row := range rows {
		if matched := Matched(row, conds); len(matched) > 0 {
			return domainerrors.NewDuplicate(string(kind), matched)
		}
	}
	return nil
}

// Touches reports whether candidate supplies any field of any group.
// Update-пути используют это, чтобы не ходить в хранилище зря.
func Touches(candidate entities.Fields, groups []Group) bool {
	for _, g := range groups {
		for _, field := range g {
			if v, ok := candidate[field]; ok && IsSupplied(v) {
				return true
			}
		}
	}
	return false
}

// FindDuplicate is the storage-free form of the whole check: rows are every
// record of the kind except the existing one.
func FindDuplicate(kind entities.Kind, existing, candidate entities.Fields, groups []Group, update bool, rows []entities.Fields) error {
	conds := Conditions(existing, candidate, groups, update)
	if len(conds) == 0 {
		return nil
	}
	var hits []entities.Fields
	for _, row := range rows {
		for _, c := range conds {
			if c.Values.Matches(row) {
				hits = append(hits, row)
				break
			}
		}
	}
	return Evaluate(kind, conds, hits)
}
