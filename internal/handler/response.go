package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation           = "https://homebudget.app/errors/validation"
	ErrorTypeNotFound             = "https://homebudget.app/errors/not-found"
	ErrorTypeConfirmationRequired = "https://homebudget.app/errors/confirmation-required"
	ErrorTypeInternal             = "https://homebudget.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConfirmationRequiredError asks the caller to repeat a destructive request with confirm=true
func NewConfirmationRequiredError(c echo.Context, detail string) error {
	return c.JSON(http.StatusPreconditionRequired, ProblemDetails{
		Type:     ErrorTypeConfirmationRequired,
		Title:    "Confirmation Required",
		Status:   http.StatusPreconditionRequired,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// field names reported for domain validation errors
var validationFields = []struct {
	err   error
	field string
}{
	{domain.ErrNameRequired, "name"},
	{domain.ErrNameTooLong, "name"},
	{domain.ErrProjectedRequired, "projected"},
	{domain.ErrCategoryRequired, "category"},
	{domain.ErrInvalidAmount, "amount"},
	{domain.ErrInvalidWeek, "week"},
	{domain.ErrInvalidMonth, "month"},
	{domain.ErrInvalidScope, "scope"},
	{domain.ErrInvalidView, "view"},
	{domain.ErrInvalidStatusType, "statusType"},
	{domain.ErrInvalidTransfer, "transferStatus"},
	{domain.ErrInvalidFillAction, "action"},
	{domain.ErrInvalidInput, "input"},
}

// handleSessionError maps a domain error to its problem response. Unknown errors
// are logged and reported as internal errors using failMsg.
func handleSessionError(c echo.Context, err error, failMsg string) error {
	switch {
	case errors.Is(err, domain.ErrConfirmationRequired):
		return NewConfirmationRequiredError(c, "Repeat the request with confirm=true")
	case errors.Is(err, domain.ErrExpenseNotFound):
		return NewNotFoundError(c, "Expense not found")
	case errors.Is(err, domain.ErrCategoryNotFound):
		return NewNotFoundError(c, "Category not found")
	case errors.Is(err, domain.ErrIncomeNotFound):
		return NewNotFoundError(c, "Income source not found")
	case errors.Is(err, domain.ErrPlannerEntryNotFound):
		return NewNotFoundError(c, "Planner entry not found")
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, "Resource not found")
	}

	for _, v := range validationFields {
		if errors.Is(err, v.err) {
			return NewValidationError(c, err.Error(), []ValidationError{
				{Field: v.field, Message: v.err.Error()},
			})
		}
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(failMsg)
	return NewInternalError(c, failMsg)
}
