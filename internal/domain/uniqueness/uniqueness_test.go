package uniqueness_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haleralex/storehub/internal/domain/entities"
	domainerrors "github.com/Haleralex/storehub/internal/domain/errors"
	"github.com/Haleralex/storehub/internal/domain/uniqueness"
)

var userGroups = uniqueness.GroupsOf(entities.UniqueGroups(entities.KindUser))

func users() []entities.Fields {
	return []entities.Fields{
		{"id": int64(1), "first_name": "John", "last_name": "Doe", "email": "john@x.io", "phone": "111"},
		{"id": int64(2), "first_name": "Jane", "last_name": "Roe", "email": "jane@x.io", "phone": "222"},
	}
}

func TestConditions_Create(t *testing.T) {
	candidate := entities.Fields{"first_name": "John", "email": "new@x.io"}

	conds := uniqueness.Conditions(nil, candidate, userGroups, false)

	// name group is partial (no last_name), phone not supplied -> only email
	require.Len(t, conds, 1)
	assert.Equal(t, uniqueness.Group{"email"}, conds[0].Group)
	assert.Equal(t, "new@x.io", conds[0].Values["email"])
}

func TestConditions_UpdateFallsBackToExisting(t *testing.T) {
	existing := users()[0]
	candidate := entities.Fields{"last_name": "Roe"}

	conds := uniqueness.Conditions(existing, candidate, userGroups, true)

	require.Len(t, conds, 1, "only groups touched by the payload are checked")
	assert.Equal(t, entities.Criteria{"first_name": "John", "last_name": "Roe"}, conds[0].Values)
}

func TestConditions_EmptyValuesAreNotSupplied(t *testing.T) {
	existing := users()[0]
	candidate := entities.Fields{"email": "", "phone": nil}

	assert.Empty(t, uniqueness.Conditions(existing, candidate, userGroups, true))
	assert.False(t, uniqueness.Touches(candidate, userGroups))
	assert.True(t, uniqueness.Touches(entities.Fields{"phone": "1"}, userGroups))
}

func TestFindDuplicate(t *testing.T) {
	tests := []struct {
		name      string
		existing  entities.Fields
		candidate entities.Fields
		update    bool
		wantErr   bool
		wantField []string
	}{
		{
			name:      "create without collision",
			candidate: entities.Fields{"first_name": "Ann", "last_name": "Lee", "email": "ann@x.io", "phone": "333"},
		},
		{
			name:      "create collides on email",
			candidate: entities.Fields{"first_name": "Ann", "last_name": "Lee", "email": "jane@x.io", "phone": "333"},
			wantErr:   true,
			wantField: []string{"email=jane@x.io"},
		},
		{
			name:      "create collides on full name group",
			candidate: entities.Fields{"first_name": "John", "last_name": "Doe", "email": "other@x.io"},
			wantErr:   true,
			wantField: []string{"first_name=John + last_name=Doe"},
		},
		{
			name:      "create shares only part of a group",
			candidate: entities.Fields{"first_name": "John", "last_name": "Roe"},
		},
		{
			name:      "update to someone else's email",
			existing:  users()[0],
			candidate: entities.Fields{"email": "jane@x.io"},
			update:    true,
			wantErr:   true,
			wantField: []string{"email=jane@x.io"},
		},
		{
			name:      "update last name completes another user's name",
			existing:  entities.Fields{"id": int64(3), "first_name": "Jane", "last_name": "Smith", "email": "js@x.io", "phone": "9"},
			candidate: entities.Fields{"last_name": "Roe"},
			update:    true,
			wantErr:   true,
			wantField: []string{"first_name=Jane + last_name=Roe"},
		},
		{
			name:      "several groups collide on the same row",
			candidate: entities.Fields{"email": "john@x.io", "phone": "111"},
			wantErr:   true,
			wantField: []string{"email=john@x.io", "phone=111"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Existing record itself is excluded from the rows, as the checker does.
			var rows []entities.Fields
			for _, r := range users() {
				if tt.existing != nil && entities.SameValue(r["id"], tt.existing["id"]) {
					continue
				}
				rows = append(rows, r)
			}

			err := uniqueness.FindDuplicate(entities.KindUser, tt.existing, tt.candidate, userGroups, tt.update, rows)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var dup *domainerrors.DuplicateError
			require.ErrorAs(t, err, &dup)
			assert.Equal(t, "User", dup.Kind)
			assert.Equal(t, tt.wantField, dup.Fields)
		})
	}
}

func TestFindDuplicate_OwnUnchangedEmail(t *testing.T) {
	existing := users()[0]
	others := users()[1:]

	err := uniqueness.FindDuplicate(entities.KindUser, existing, entities.Fields{"email": "john@x.io"}, userGroups, true, others)
	assert.NoError(t, err)
}

func TestFindDuplicate_Idempotent(t *testing.T) {
	candidate := entities.Fields{"email": "jane@x.io"}
	rows := users()

	first := uniqueness.FindDuplicate(entities.KindUser, nil, candidate, userGroups, false, rows)
	second := uniqueness.FindDuplicate(entities.KindUser, nil, candidate, userGroups, false, rows)

	require.Error(t, first)
	assert.Equal(t, first.Error(), second.Error())
	assert.Len(t, rows, 2, "store must not be mutated")
}

func TestMatched_PrefixWalkStopsAtMismatch(t *testing.T) {
	conds := []uniqueness.Condition{{
		Group:  uniqueness.Group{"first_name", "last_name"},
		Values: entities.Criteria{"first_name": "John", "last_name": "Doe"},
	}}

	assert.Empty(t, uniqueness.Matched(entities.Fields{"first_name": "John", "last_name": "Smith"}, conds))
	assert.Empty(t, uniqueness.Matched(entities.Fields{"first_name": "Jim", "last_name": "Doe"}, conds))
	assert.Equal(t, []string{"first_name=John + last_name=Doe"},
		uniqueness.Matched(entities.Fields{"first_name": "John", "last_name": "Doe"}, conds))
}

func TestDuplicateMessage(t *testing.T) {
	err := uniqueness.Evaluate(entities.KindProductAttribute,
		[]uniqueness.Condition{{
			Group:  uniqueness.Group{"product_id", "attribute_id"},
			Values: entities.Criteria{"product_id": 1, "attribute_id": 2},
		}},
		[]entities.Fields{{"product_id": int64(1), "attribute_id": int32(2), "value": "red"}},
	)
	require.Error(t, err)
	assert.Equal(t, "ProductAttribute with given [product_id=1 + attribute_id=2] fields already exists", err.Error())
}

func TestIsSupplied(t *testing.T) {
	var nilID *int64
	assert.False(t, uniqueness.IsSupplied(nil))
	assert.False(t, uniqueness.IsSupplied(""))
	assert.False(t, uniqueness.IsSupplied(nilID))
	assert.True(t, uniqueness.IsSupplied(0))
	assert.True(t, uniqueness.IsSupplied(false))
	assert.True(t, uniqueness.IsSupplied("x"))
}
