package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestSentinelErrors tests that all sentinel errors are defined
func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrEntityNotFound", ErrEntityNotFound},
		{"ErrDuplicate", ErrDuplicate},
		{"ErrInvalidArgument", ErrInvalidArgument},
		{"ErrConfiguration", ErrConfiguration},
		{"ErrInfrastructure", ErrInfrastructure},
		{"ErrInvalidPrice", ErrInvalidPrice},
		{"ErrInvalidQuantity", ErrInvalidQuantity},
		{"ErrEmptyName", ErrEmptyName},
		{"ErrInvalidEmail", ErrInvalidEmail},
		{"ErrUnknownKind", ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatalf("%s should not be nil", tt.name)
			}
			if tt.err.Error() == "" {
				t.Errorf("%s should have an error message", tt.name)
			}
		})
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFound("Vendor", "company_name", "Nonexistent")

	if got := err.Error(); got != "Vendor with given [company_name=Nonexistent] not found" {
		t.Errorf("unexpected message: %q", got)
	}

	wrapped := fmt.Errorf("resolve vendor: %w", err)
	if !IsNotFound(wrapped) {
		t.Error("wrapped NotFoundError should match IsNotFound")
	}
	if IsDuplicate(wrapped) {
		t.Error("NotFoundError should not match IsDuplicate")
	}

	var nf *NotFoundError
	if !errors.As(wrapped, &nf) {
		t.Fatal("errors.As should extract *NotFoundError")
	}
	if nf.Kind != "Vendor" || nf.Field != "company_name" || nf.Value != "Nonexistent" {
		t.Errorf("unexpected fields: %+v", nf)
	}
}

func TestDuplicateError(t *testing.T) {
	tests := []struct {
		name     string
		err      *DuplicateError
		expected string
	}{
		{
			name:     "single group",
			err:      NewDuplicate("User", []string{"email=a@b.c"}),
			expected: "User with given [email=a@b.c] fields already exists",
		},
		{
			name:     "several groups",
			err:      NewDuplicate("User", []string{"first_name=John + last_name=Doe", "phone=123"}),
			expected: "User with given [first_name=John + last_name=Doe, phone=123] fields already exists",
		},
		{
			name:     "custom message",
			err:      &DuplicateError{Kind: "User", Message: "User already has role [ADMIN]"},
			expected: "User already has role [ADMIN]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
			if !IsDuplicate(tt.err) {
				t.Error("IsDuplicate should be true")
			}
		})
	}
}

func TestInvalidArgumentError(t *testing.T) {
	invalid := NewInvalidArgument("registry.Resolve", "scope is required")
	config := NewConfigurationError("registry.Resolve", "no repository registered for Photo")

	if !IsInvalidArgument(invalid) {
		t.Error("invalid argument should match IsInvalidArgument")
	}
	if IsConfiguration(invalid) {
		t.Error("plain invalid argument should not match IsConfiguration")
	}
	if !IsConfiguration(config) {
		t.Error("configuration error should match IsConfiguration")
	}
	if !IsInvalidArgument(config) {
		t.Error("configuration error is a flavour of invalid argument")
	}
	if !strings.Contains(config.Error(), "registry.Resolve") {
		t.Errorf("message should contain op: %q", config.Error())
	}
}

func TestInfrastructureError(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := NewInfrastructure("commit", cause)

	if !IsInfrastructure(err) {
		t.Error("should match IsInfrastructure")
	}
	if !errors.Is(err, cause) {
		t.Error("cause should be preserved")
	}
	if NewInfrastructure("noop", nil) != nil {
		t.Error("nil cause should produce nil error")
	}
}

func TestIsBusiness(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"not found", NewNotFound("Product", "id", 1), true},
		{"duplicate", NewDuplicate("Product", []string{"product_name=Widget"}), true},
		{"invalid argument", NewInvalidArgument("op", "bad"), true},
		{"validation", ValidationError{Field: "price", Message: "negative"}, true},
		{"validation list", ValidationErrors{{Field: "email", Message: "invalid"}}, true},
		{"configuration", NewConfigurationError("registry", "no factory"), true},
		{"wrapped not found", fmt.Errorf("step 3: %w", NewNotFound("Attribute", "attribute_name", "color")), true},
		{"plain error", errors.New("driver: bad connection"), false},
		{"infrastructure", NewInfrastructure("query", errors.New("timeout")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBusiness(tt.err); got != tt.expected {
				t.Errorf("IsBusiness() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.HasErrors() {
		t.Error("empty collection should have no errors")
	}

	errs.Add("price", "must not be negative")
	errs.Add("product_name", "must not be empty")

	if !errs.HasErrors() {
		t.Error("collection should have errors")
	}
	if !IsValidationError(errs) {
		t.Error("collection should match IsValidationError")
	}
	if errs.Error() != "validation failed: 2 error(s)" {
		t.Errorf("unexpected message: %q", errs.Error())
	}
}
