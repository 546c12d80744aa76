// Package entities_test demonstrates testing domain entities.
// Focus on business rules, record round-trips and identity.
package entities_test

import (
	"testing"
	"time"

	"github.com/Haleralex/storehub/internal/domain/entities"
	"github.com/Haleralex/storehub/internal/domain/errors"
)

// TestNewUser_Success tests successful user creation.
func TestNewUser_Success(t *testing.T) {
	user, err := entities.NewUser(" John ", "Doe", "John@Example.com", "+100", "hash", "link-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.Email != "john@example.com" {
		t.Errorf("Email = %v, want john@example.com", user.Email)
	}
	if user.FirstName != "John" {
		t.Errorf("FirstName = %q, want John", user.FirstName)
	}
	// Business rule: new users are not activated
	if user.IsActivated {
		t.Error("new user should not be activated")
	}
	if user.ActivationLink != "link-1" {
		t.Errorf("ActivationLink = %q", user.ActivationLink)
	}
}

// TestNewUser_Invalid tests validation of required fields.
func TestNewUser_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		firstName string
		lastName  string
		email     string
		field     string
	}{
		{"empty first name", "", "Doe", "a@b.co", "first_name"},
		{"empty last name", "John", " ", "a@b.co", "last_name"},
		{"bad email", "John", "Doe", "not-an-email", "email"},
		{"missing domain", "John", "Doe", "user@", "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := entities.NewUser(tt.firstName, tt.lastName, tt.email, "", "", "")
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.IsValidationError(err) {
				t.Fatalf("expected validation error, got %T", err)
			}
			verrs, ok := err.(errors.ValidationErrors)
			if !ok {
				t.Fatalf("expected ValidationErrors, got %T", err)
			}
			found := false
			for _, v := range verrs {
				if v.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error for field %s, got %v", tt.field, verrs)
			}
		})
	}
}

func TestUser_RoundTrip(t *testing.T) {
	birthday := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	user := &entities.User{
		ID:             7,
		FirstName:      "Ann",
		LastName:       "Lee",
		Birthday:       &birthday,
		Email:          "ann@example.com",
		Phone:          "555",
		IsActivated:    true,
		ActivationLink: "abc",
	}

	clone := entities.Clone(user)
	got, err := entities.As[*entities.User](clone)
	if err != nil {
		t.Fatalf("As failed: %v", err)
	}

	if got == user {
		t.Fatal("Clone must return a new instance")
	}
	if got.ID != 7 || got.Email != "ann@example.com" || !got.IsActivated {
		t.Errorf("unexpected clone: %+v", got)
	}
	if got.Birthday == nil || !got.Birthday.Equal(birthday) {
		t.Errorf("Birthday = %v, want %v", got.Birthday, birthday)
	}
}

func TestUser_AssignUnknownField(t *testing.T) {
	user := &entities.User{}
	err := user.Assign(entities.Fields{"nickname": "x"})
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestUniqueGroups(t *testing.T) {
	groups := entities.UniqueGroups(entities.KindUser)
	if len(groups) != 3 {
		t.Fatalf("User should declare 3 unique groups, got %d", len(groups))
	}
	if len(groups[0]) != 2 || groups[0][0] != "first_name" || groups[0][1] != "last_name" {
		t.Errorf("first group = %v", groups[0])
	}

	// Returned slices are copies.
	groups[1][0] = "mutated"
	if entities.UniqueGroups(entities.KindUser)[1][0] != "email" {
		t.Error("UniqueGroups must not expose internal state")
	}

	fields := entities.UniqueFields(entities.KindUser)
	if len(fields) != 4 {
		t.Errorf("UniqueFields = %v", fields)
	}

	if len(entities.UniqueGroups(entities.KindComment)) != 0 {
		t.Error("Comment has no unique groups")
	}
}
