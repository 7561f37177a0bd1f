package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	domain "loan-tracker/internal/domain/loan"
	uc "loan-tracker/internal/usecase/loan"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Reusable error payload
type ErrorResponse struct {
	Error   string          `json:"error"`
	Details []uc.FieldError `json:"details,omitempty"`
}

// writeError maps the four error kinds onto distinct status codes:
// validation 400, unknown id 404, revision conflict 409, IO 500.
func writeError(c echo.Context, err error) error {
	var ve uc.ValidationErrors
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Details: ve})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict", Details: []uc.FieldError{
			{Field: "_", Message: "the collection changed underneath this request; retry"},
		}})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "storage_error"})
	}
}
