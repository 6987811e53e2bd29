package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseHandler_GetExpenses(t *testing.T) {
	e, _, _ := setupServer(t)

	rec := doRequest(e, http.MethodGet, "/api/v1/expenses/monthly", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var categories []CategoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	require.Len(t, categories, 2)
	assert.Equal(t, "food", categories[0].Category)
	assert.Equal(t, "housing", categories[1].Category)
	assert.Equal(t, "400.00", categories[0].Expenses[0].Projected)
	assert.Equal(t, "1000.00", categories[1].TotalActual)
	assert.Equal(t, "half", categories[1].Expenses[0].TransferStatus)
}

func TestExpenseHandler_GetExpenses_InvalidScope(t *testing.T) {
	e, _, _ := setupServer(t)

	rec := doRequest(e, http.MethodGet, "/api/v1/expenses/weekly", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var problem ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, ErrorTypeValidation, problem.Type)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "scope", problem.Errors[0].Field)
}

func TestExpenseHandler_CreateExpense(t *testing.T) {
	e, _, _ := setupServer(t)

	body := `{"name":"Snacks","projected":"$25.50","account":"Checking","transferStatus":"quarter"}`
	rec := doRequest(e, http.MethodPost, "/api/v1/expenses/monthly/food", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "food", created.Category)
	assert.Equal(t, "25.50", created.Projected)
	assert.Equal(t, "quarter", created.TransferStatus)

	// The planner picks up the new monthly expense
	rec = doRequest(e, http.MethodGet, "/api/v1/planner", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var lines []PlannerLineResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lines))

	names := make([]string, len(lines))
	for i, l := range lines {
		names[i] = l.Name
	}
	assert.Contains(t, names, "Snacks")
}

func TestExpenseHandler_CreateExpense_Validation(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing name", `{"projected":10}`, "name"},
		{"blank name", `{"name":"   ","projected":10}`, "name"},
		{"missing projected", `{"name":"Snacks"}`, "projected"},
		{"unknown transfer status", `{"name":"Snacks","projected":10,"transferStatus":"most"}`, "transferStatus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := setupServer(t)

			rec := doRequest(e, http.MethodPost, "/api/v1/expenses/monthly/food", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var problem ProblemDetails
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			require.NotEmpty(t, problem.Errors)
			assert.Equal(t, tt.wantField, problem.Errors[0].Field)
		})
	}
}

func TestExpenseHandler_UpdateExpense(t *testing.T) {
	e, s, _ := setupServer(t)

	rec := doRequest(e, http.MethodPut, "/api/v1/expenses/monthly/food/food-123",
		`{"name":"Groceries","projected":450,"actual":"430.10","date":"2026-10-16","account":"Checking"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "food-123", updated.ID)
	assert.Equal(t, "450.00", updated.Projected)
	assert.Equal(t, "430.10", updated.Actual)

	monthly, err := s.Expenses(domain.ScopeMonthly)
	require.NoError(t, err)
	assert.Len(t, monthly["food"], 1, "update does not append")
}

func TestExpenseHandler_DeleteExpense_RequiresConfirmation(t *testing.T) {
	e, s, _ := setupServer(t)

	rec := doRequest(e, http.MethodDelete, "/api/v1/expenses/monthly/food/food-123", "")
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)

	var problem ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, ErrorTypeConfirmationRequired, problem.Type)

	monthly, _ := s.Expenses(domain.ScopeMonthly)
	assert.Len(t, monthly["food"], 1, "nothing removed without confirmation")

	rec = doRequest(e, http.MethodDelete, "/api/v1/expenses/monthly/food/food-123?confirm=true", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	monthly, _ = s.Expenses(domain.ScopeMonthly)
	assert.Empty(t, monthly["food"])

	rec = doRequest(e, http.MethodDelete, "/api/v1/expenses/monthly/food/food-123?confirm=true", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExpenseHandler_ToggleStatus_Propagates(t *testing.T) {
	e, s, _ := setupServer(t)

	rec := doRequest(e, http.MethodPatch, "/api/v1/expenses/monthly/food/food-123/status",
		`{"statusType":"paid","checked":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Expense.Paid)
	assert.Equal(t, "paid", resp.Expense.Status)
	require.Len(t, resp.Propagations, 1)
	assert.Equal(t, "monthlyStatusChanged", resp.Propagations[0].Kind)
	assert.True(t, resp.Propagations[0].Applied["annual"])
	assert.True(t, resp.Propagations[0].Applied["planner"])

	annual, _ := s.Expenses(domain.ScopeAnnual)
	assert.True(t, annual["food"][0].Paid)
}

func TestExpenseHandler_ToggleStatus_Errors(t *testing.T) {
	e, _, _ := setupServer(t)

	rec := doRequest(e, http.MethodPatch, "/api/v1/expenses/monthly/food/food-123/status",
		`{"statusType":"cleared","checked":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(e, http.MethodPatch, "/api/v1/expenses/monthly/food/food-404/status",
		`{"statusType":"paid","checked":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExpenseHandler_UpdateTransferStatus(t *testing.T) {
	e, _, _ := setupServer(t)

	rec := doRequest(e, http.MethodPatch, "/api/v1/expenses/monthly/housing/housing-1/transfer-status",
		`{"transferStatus":"full"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "full", updated.TransferStatus)

	rec = doRequest(e, http.MethodPatch, "/api/v1/expenses/monthly/housing/housing-1/transfer-status",
		`{"transferStatus":"most"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExpenseHandler_ResetStatuses(t *testing.T) {
	e, s, _ := setupServer(t)

	_, err := s.ToggleExpenseStatus(domain.ScopeMonthly, "food", "food-123", domain.StatusPaid, true)
	require.NoError(t, err)

	rec := doRequest(e, http.MethodPost, "/api/v1/statuses/reset", "")
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/v1/statuses/reset?confirm=true", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	monthly, _ := s.Expenses(domain.ScopeMonthly)
	assert.False(t, monthly["food"][0].Paid)
}

func TestExpenseHandler_ExportCSV(t *testing.T) {
	e, _, _ := setupServer(t)

	rec := doRequest(e, http.MethodGet, "/api/v1/expenses/annual/export", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "annual")
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, rec.Body.String(), "Monthly Equivalent")
	assert.Contains(t, rec.Body.String(), "Car insurance")
}
