package handler

import (
	"encoding/json"
	"strconv"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// parseScope reads the :scope path parameter
func parseScope(c echo.Context) (domain.Scope, error) {
	scope := domain.Scope(c.Param("scope"))
	if !scope.IsValid() {
		return "", NewValidationError(c, "Invalid scope", []ValidationError{
			{Field: "scope", Message: "Scope must be monthly or annual"},
		})
	}
	return scope, nil
}

// parseWeek reads the :week path parameter (1-5)
func parseWeek(c echo.Context) (int, error) {
	week, err := strconv.Atoi(c.Param("week"))
	if err != nil {
		return 0, NewValidationError(c, "Invalid week", []ValidationError{
			{Field: "week", Message: "Week must be a number between 1 and 5"},
		})
	}
	return week, nil
}

// isConfirmed reads the confirm query flag of destructive requests
func isConfirmed(c echo.Context) bool {
	confirmed, _ := strconv.ParseBool(c.QueryParam("confirm"))
	return confirmed
}

// optionalAmount converts a lenient JSON amount into a decimal; absent or null is nil
func optionalAmount(raw json.RawMessage) *decimal.Decimal {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	amount := domain.ParseAmount(raw)
	return &amount
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func sumExpenses(expenses []*domain.Expense) (projected, actual decimal.Decimal) {
	projected, actual = decimal.Zero, decimal.Zero
	for _, e := range expenses {
		projected = projected.Add(e.Projected)
		actual = actual.Add(e.Actual)
	}
	return projected, actual
}
