package http

import (
	"errors"
	"strings"
	"testing"

	"agri-credit-engine/internal/domain/score"
)

func TestHex32Validation(t *testing.T) {
	type P struct {
		BorrowerID string `validate:"hex32"`
	}
	cv := NewValidator()

	// valid: 32-char lowercase hex
	ok := P{BorrowerID: strings.Repeat("a", 32)}
	if err := cv.Validate(ok); err != nil {
		t.Fatalf("expected valid hex32, got err: %v", err)
	}

	// invalid samples
	for _, s := range []string{
		"",                                  // empty
		strings.Repeat("A", 32),             // uppercase
		"deadbeef",                          // too short
		strings.Repeat("g", 32),             // non-hex char
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8",   // 31 chars
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88x", // 33 with extra
	} {
		bad := P{BorrowerID: s}
		err := cv.Validate(bad)
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		fe := ToFieldErrors(err)
		found := false
		for _, e := range fe {
			if e.Field == "BorrowerID" && strings.Contains(e.Message, "32-char lowercase hex") {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected hex32 message for %q, got: %+v", s, fe)
		}
	}
}

func TestPurposeValidation(t *testing.T) {
	type P struct {
		Purpose string `json:"purpose" validate:"purpose"`
	}
	cv := NewValidator()

	for _, v := range []string{"seeds", "Fertilizer", " equipment "} {
		if err := cv.Validate(P{Purpose: v}); err != nil {
			t.Fatalf("expected purpose OK for %q, got %v", v, err)
		}
	}
	for _, v := range []string{"", "yacht"} {
		err := cv.Validate(P{Purpose: v})
		if err == nil {
			t.Fatalf("expected purpose error for %q", v)
		}
		fe := ToFieldErrors(err)
		if !hasFieldError(fe, "purpose", "must be one of seeds") {
			t.Fatalf("expected purpose list for %q, got %+v", v, fe)
		}
	}
}

func TestFactorsValidation_UsesJSONNames(t *testing.T) {
	cv := NewValidator()
	err := cv.Validate(score.Factors{PaymentHistory: "excellent"})
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	fe := ToFieldErrors(err)
	if !hasFieldError(fe, "payment_history", "must be one of good, fair, poor, none") {
		t.Fatalf("missing oneof message for payment_history: %+v", fe)
	}
	if !hasFieldError(fe, "insurance", "is required") {
		t.Fatalf("missing required message for insurance: %+v", fe)
	}
}

func TestRequiredAndBoundsMapping(t *testing.T) {
	type P struct {
		Name   string `validate:"required"`
		Min    int    `validate:"gte=10"`
		Max    int    `validate:"lte=5"`
		Amount int64  `validate:"gt=0"`
		Email  string `validate:"email"`
		Note   string `validate:"max=3"`
	}
	cv := NewValidator()

	// Intentionally violate all
	err := cv.Validate(P{Min: 9, Max: 6, Amount: 0, Email: "nope", Note: "long"})
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	fe := ToFieldErrors(err)

	for _, want := range []struct{ field, msg string }{
		{"Name", "is required"},
		{"Min", "greater than or equal to 10"},
		{"Max", "less than or equal to 5"},
		{"Amount", "greater than 0"},
		{"Email", "valid email"},
		{"Note", "at most 3 characters"},
	} {
		if !hasFieldError(fe, want.field, want.msg) {
			t.Fatalf("missing %q for %s: %+v", want.msg, want.field, fe)
		}
	}
}

func TestToFieldErrors_NonValidation(t *testing.T) {
	err := errors.New("boom")
	fe := ToFieldErrors(err)
	if len(fe) != 1 {
		t.Fatalf("expected 1 field error, got %d", len(fe))
	}
	if fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("unexpected mapping: %+v", fe[0])
	}
}

func hasFieldError(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
