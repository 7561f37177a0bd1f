package http

import (
	"strings"
	"time"

	uc "loan-tracker/internal/usecase/loan"
)

// ---- helpers ----

func todayISO() string { return time.Now().Format("2006-01-02") }

func containsFieldMsg(list []uc.FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
