package loan

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	domain "loan-tracker/internal/domain/loan"
)

// FieldError is one human-readable validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every failure in a request; a request with
// any failure is rejected whole.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Field + " " + e.Message
	}
	return strings.Join(parts, "; ")
}

// CleanedInput is a validated create/update payload. Nil pointers mean
// the field was not supplied; Dates holds only the supplied keys.
type CleanedInput struct {
	Borrower        *string           `json:"borrower"`
	CoBorrower      *string           `json:"co_borrower"`
	PropertyAddress *string           `json:"property_address"`
	LoanAmount      *string           `json:"loan_amount" validate:"omitempty,money"`
	LoanType        *string           `json:"loan_type" validate:"omitnil,loantype"`
	Stage           *string           `json:"stage" validate:"omitnil,stage"`
	Notes           *string           `json:"notes"`
	Dates           map[string]string `json:"dates" validate:"omitempty,dive,keys,datefield,endkeys,loandate"`
}

type InputValidator struct{ v *validator.Validate }

func NewInputValidator() *InputValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("loantype", func(fl validator.FieldLevel) bool {
		return domain.ValidLoanType(fl.Field().String())
	})
	_ = v.RegisterValidation("stage", func(fl validator.FieldLevel) bool {
		return domain.ValidStage(fl.Field().String())
	})
	_ = v.RegisterValidation("datefield", func(fl validator.FieldLevel) bool {
		return domain.ValidDateField(fl.Field().String())
	})
	// Empty dates are "unset" and accepted; only malformed ones fail.
	_ = v.RegisterValidation("loandate", func(fl validator.FieldLevel) bool {
		_, _, err := domain.ParseDate(fl.Field().String())
		return err == nil
	})
	// Runs on the already-cleaned amount: empty, or non-negative numeric.
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		n, err := strconv.ParseFloat(s, 64)
		return err == nil && n >= 0
	})
	return &InputValidator{v: v}
}

var amountCleaner = strings.NewReplacer(",", "", "$", "")

// CleanAmount strips the currency symbol and thousands separators.
func CleanAmount(s string) string {
	return strings.TrimSpace(amountCleaner.Replace(s))
}

var textFields = map[string]func(*CleanedInput) **string{
	"borrower":         func(c *CleanedInput) **string { return &c.Borrower },
	"co_borrower":      func(c *CleanedInput) **string { return &c.CoBorrower },
	"property_address": func(c *CleanedInput) **string { return &c.PropertyAddress },
	"loan_type":        func(c *CleanedInput) **string { return &c.LoanType },
	"stage":            func(c *CleanedInput) **string { return &c.Stage },
	"notes":            func(c *CleanedInput) **string { return &c.Notes },
}

// ValidateLoanInput checks an externally supplied field map against
// the whitelist and the enum/format rules, collecting every violation
// rather than failing fast. On success it returns the cleaned input;
// the store is never touched when any violation is present.
func (iv *InputValidator) ValidateLoanInput(fields map[string]any, requireBorrower bool) (*CleanedInput, error) {
	var errs ValidationErrors
	in := &CleanedInput{}

	for key, raw := range fields {
		switch {
		case key == "loan_amount":
			s, ok := stringish(raw)
			if !ok {
				errs = append(errs, FieldError{key, "must be a string or number"})
				continue
			}
			cleaned := CleanAmount(s)
			in.LoanAmount = &cleaned
		case key == "dates":
			obj, ok := raw.(map[string]any)
			if !ok {
				errs = append(errs, FieldError{key, "must be an object of date fields"})
				continue
			}
			in.Dates = make(map[string]string, len(obj))
			for dk, dv := range obj {
				s, ok := dv.(string)
				if !ok && dv != nil {
					errs = append(errs, FieldError{"dates." + dk, "must be a string"})
					continue
				}
				in.Dates[dk] = strings.TrimSpace(s)
			}
		case domain.ValidDateField(key):
			s, ok := raw.(string)
			if !ok && raw != nil {
				errs = append(errs, FieldError{key, "must be a string"})
				continue
			}
			if in.Dates == nil {
				in.Dates = make(map[string]string)
			}
			in.Dates[key] = strings.TrimSpace(s)
		default:
			slot, known := textFields[key]
			if !known {
				errs = append(errs, FieldError{key, "unknown field"})
				continue
			}
			s, ok := raw.(string)
			if !ok && raw != nil {
				errs = append(errs, FieldError{key, "must be a string"})
				continue
			}
			*slot(in) = &s
		}
	}

	if requireBorrower && (in.Borrower == nil || strings.TrimSpace(*in.Borrower) == "") {
		errs = append(errs, FieldError{"borrower", "is required"})
	}

	if err := iv.v.Struct(in); err != nil {
		errs = append(errs, toFieldErrors(err)...)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return in, nil
}

// toFieldErrors maps validator failures to readable messages.
func toFieldErrors(err error) ValidationErrors {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "_", Message: err.Error()}}
	}
	out := make(ValidationErrors, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "loantype":
			out = append(out, FieldError{field, "must be one of: conventional, fha, non-qm, usda, va"})
		case "stage":
			out = append(out, FieldError{field, "is not a pipeline stage"})
		case "datefield":
			out = append(out, FieldError{field, "unknown date field"})
		case "loandate":
			out = append(out, FieldError{field, "invalid date format. Use MM/DD/YYYY, YYYY-MM-DD, or MM/DD/YY"})
		case "money":
			out = append(out, FieldError{field, "must be a non-negative number"})
		default:
			out = append(out, FieldError{field, e.Tag() + " validation failed"})
		}
	}
	return out
}

// stringish accepts the string and JSON-number shapes an amount can
// arrive in.
func stringish(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case nil:
		return "", true
	default:
		return "", false
	}
}
