package loan

import (
	"errors"
	"strings"
	"testing"
)

func hasErr(t *testing.T, err error, field, substr string) {
	t.Helper()
	var ve ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("error %v is not ValidationErrors", err)
	}
	for _, e := range ve {
		if strings.Contains(e.Field, field) && strings.Contains(e.Message, substr) {
			return
		}
	}
	t.Fatalf("no error for field %q containing %q in %v", field, substr, ve)
}

func TestValidate_CleansAmount(t *testing.T) {
	iv := NewInputValidator()
	in, err := iv.ValidateLoanInput(map[string]any{"borrower": "Jane", "loan_amount": "$1,234.50"}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.LoanAmount == nil || *in.LoanAmount != "1234.50" {
		t.Fatalf("cleaned amount = %v, want 1234.50", in.LoanAmount)
	}
}

func TestValidate_NumericAmount(t *testing.T) {
	iv := NewInputValidator()
	in, err := iv.ValidateLoanInput(map[string]any{"borrower": "Jane", "loan_amount": 250000.0}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *in.LoanAmount != "250000" {
		t.Fatalf("amount = %q", *in.LoanAmount)
	}
}

func TestValidate_RejectsNegativeAmount(t *testing.T) {
	iv := NewInputValidator()
	_, err := iv.ValidateLoanInput(map[string]any{"borrower": "Jane", "loan_amount": "-50"}, true)
	hasErr(t, err, "loan_amount", "non-negative")
}

func TestValidate_EmptyAmountIsUnset(t *testing.T) {
	iv := NewInputValidator()
	in, err := iv.ValidateLoanInput(map[string]any{"borrower": "Jane", "loan_amount": ""}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *in.LoanAmount != "" {
		t.Fatalf("amount = %q, want empty", *in.LoanAmount)
	}
}

func TestValidate_RejectsUnknownField(t *testing.T) {
	iv := NewInputValidator()
	_, err := iv.ValidateLoanInput(map[string]any{"borrower": "Jane", "wire_instructions": "x"}, true)
	hasErr(t, err, "wire_instructions", "unknown field")
}

func TestValidate_Dates(t *testing.T) {
	iv := NewInputValidator()

	in, err := iv.ValidateLoanInput(map[string]any{"borrower": "Jane", "closing_date": "2024-01-05"}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Dates["closing_date"] != "2024-01-05" {
		t.Fatalf("dates = %v", in.Dates)
	}

	_, err = iv.ValidateLoanInput(map[string]any{"borrower": "Jane", "closing_date": "13/45/2020"}, true)
	hasErr(t, err, "closing_date", "invalid date format")
}

func TestValidate_DatesObject(t *testing.T) {
	iv := NewInputValidator()

	in, err := iv.ValidateLoanInput(map[string]any{
		"borrower": "Jane",
		"dates":    map[string]any{"closing_date": "3/13/2026", "lock_expiration": ""},
	}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Dates["closing_date"] != "3/13/2026" || in.Dates["lock_expiration"] != "" {
		t.Fatalf("dates = %v", in.Dates)
	}

	_, err = iv.ValidateLoanInput(map[string]any{
		"borrower": "Jane",
		"dates":    map[string]any{"bogus_deadline": "1/1/2026"},
	}, true)
	hasErr(t, err, "bogus_deadline", "unknown date field")
}

func TestValidate_Enums(t *testing.T) {
	iv := NewInputValidator()

	if _, err := iv.ValidateLoanInput(map[string]any{"borrower": "Jane", "loan_type": "va", "stage": "Clear to Close"}, true); err != nil {
		t.Fatalf("valid enums rejected: %v", err)
	}

	_, err := iv.ValidateLoanInput(map[string]any{"borrower": "Jane", "loan_type": "jumbo"}, true)
	hasErr(t, err, "loan_type", "must be one of")

	_, err = iv.ValidateLoanInput(map[string]any{"borrower": "Jane", "stage": "Escrow"}, true)
	hasErr(t, err, "stage", "not a pipeline stage")

	// A supplied-but-empty enum is a violation, not an omission.
	_, err = iv.ValidateLoanInput(map[string]any{"borrower": "Jane", "loan_type": ""}, true)
	hasErr(t, err, "loan_type", "must be one of")

	_, err = iv.ValidateLoanInput(map[string]any{"borrower": "Jane", "stage": ""}, true)
	hasErr(t, err, "stage", "not a pipeline stage")
}

func TestValidate_BorrowerRequiredOnCreateOnly(t *testing.T) {
	iv := NewInputValidator()

	_, err := iv.ValidateLoanInput(map[string]any{"notes": "x"}, true)
	hasErr(t, err, "borrower", "required")

	_, err = iv.ValidateLoanInput(map[string]any{"borrower": "   "}, true)
	hasErr(t, err, "borrower", "required")

	if _, err := iv.ValidateLoanInput(map[string]any{"notes": "x"}, false); err != nil {
		t.Fatalf("update without borrower rejected: %v", err)
	}
}

func TestValidate_CollectsEveryViolation(t *testing.T) {
	iv := NewInputValidator()
	_, err := iv.ValidateLoanInput(map[string]any{
		"loan_type":    "jumbo",
		"stage":        "Escrow",
		"loan_amount":  "-1",
		"closing_date": "not a date",
		"mystery":      "x",
	}, true)

	var ve ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("error %v is not ValidationErrors", err)
	}
	if len(ve) != 6 {
		t.Fatalf("got %d violations, want 6: %v", len(ve), ve)
	}
}
