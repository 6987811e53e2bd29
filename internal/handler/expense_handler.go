package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/dafibh/homebudget/homebudget-backend/internal/session"
	"github.com/labstack/echo/v4"
)

// ExpenseHandler handles Monthly and Annual expense requests
type ExpenseHandler struct {
	session *session.Session
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(s *session.Session) *ExpenseHandler {
	return &ExpenseHandler{session: s}
}

// ExpenseRequest is the expense form payload. Amounts accept numbers or strings
// such as "$1,250.00".
type ExpenseRequest struct {
	Name           string          `json:"name"`
	Date           string          `json:"date"`
	Account        string          `json:"account"`
	Link           string          `json:"link"`
	Projected      json.RawMessage `json:"projected"`
	Actual         json.RawMessage `json:"actual"`
	TransferStatus string          `json:"transferStatus"`
	Paid           bool            `json:"paid"`
	Transferred    bool            `json:"transferred"`
	Balance        json.RawMessage `json:"balance"`
}

// TransferStatusRequest changes the graduated transfer indicator
type TransferStatusRequest struct {
	TransferStatus string `json:"transferStatus"`
}

// StatusRequest sets one of the paid/transferred checkboxes
type StatusRequest struct {
	StatusType string `json:"statusType"`
	Checked    bool   `json:"checked"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID             string  `json:"id"`
	Category       string  `json:"category"`
	Name           string  `json:"name"`
	Date           string  `json:"date,omitempty"`
	Account        string  `json:"account,omitempty"`
	Link           string  `json:"link,omitempty"`
	Projected      string  `json:"projected"`
	Actual         string  `json:"actual"`
	TransferStatus string  `json:"transferStatus"`
	Paid           bool    `json:"paid"`
	Transferred    bool    `json:"transferred"`
	Status         string  `json:"status"`
	Balance        *string `json:"balance,omitempty"`
}

// CategoryResponse is one category with its expenses and totals
type CategoryResponse struct {
	Category       string            `json:"category"`
	Expenses       []ExpenseResponse `json:"expenses"`
	TotalProjected string            `json:"totalProjected"`
	TotalActual    string            `json:"totalActual"`
}

// PropagationResponse reports which views applied a status change
type PropagationResponse struct {
	Kind    string          `json:"kind"`
	Applied map[string]bool `json:"applied"`
}

// StatusResponse is the toggled expense with its propagation
type StatusResponse struct {
	Expense      ExpenseResponse       `json:"expense"`
	Propagations []PropagationResponse `json:"propagations"`
}

// GetExpenses handles GET /api/v1/expenses/:scope
func (h *ExpenseHandler) GetExpenses(c echo.Context) error {
	scope, err := parseScope(c)
	if err != nil {
		return err
	}

	categories, err := h.session.Expenses(scope)
	if err != nil {
		return handleSessionError(c, err, "Failed to get expenses")
	}

	return c.JSON(http.StatusOK, toCategoryResponses(categories))
}

// CreateExpense handles POST /api/v1/expenses/:scope/:category
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	return h.saveExpense(c, "", http.StatusCreated)
}

// UpdateExpense handles PUT /api/v1/expenses/:scope/:category/:id
func (h *ExpenseHandler) UpdateExpense(c echo.Context) error {
	return h.saveExpense(c, c.Param("id"), http.StatusOK)
}

func (h *ExpenseHandler) saveExpense(c echo.Context, id string, status int) error {
	scope, err := parseScope(c)
	if err != nil {
		return err
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category := c.Param("category")
	saved, err := h.session.SaveExpense(scope, category, session.ExpenseInput{
		ID:             id,
		Name:           req.Name,
		Date:           req.Date,
		Account:        req.Account,
		Link:           req.Link,
		Projected:      optionalAmount(req.Projected),
		Actual:         optionalAmount(req.Actual),
		TransferStatus: domain.TransferStatus(req.TransferStatus),
		Paid:           req.Paid,
		Transferred:    req.Transferred,
		Balance:        optionalAmount(req.Balance),
	})
	if err != nil {
		return handleSessionError(c, err, "Failed to save expense")
	}

	return c.JSON(status, toExpenseResponse(category, saved))
}

// DeleteExpense handles DELETE /api/v1/expenses/:scope/:category/:id?confirm=true
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	scope, err := parseScope(c)
	if err != nil {
		return err
	}

	if err := h.session.DeleteExpense(scope, c.Param("category"), c.Param("id"), isConfirmed(c)); err != nil {
		return handleSessionError(c, err, "Failed to delete expense")
	}

	return c.NoContent(http.StatusNoContent)
}

// UpdateTransferStatus handles PATCH /api/v1/expenses/:scope/:category/:id/transfer-status
func (h *ExpenseHandler) UpdateTransferStatus(c echo.Context) error {
	scope, err := parseScope(c)
	if err != nil {
		return err
	}

	var req TransferStatusRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category := c.Param("category")
	expense, err := h.session.SetTransferStatus(scope, category, c.Param("id"), domain.TransferStatus(req.TransferStatus))
	if err != nil {
		return handleSessionError(c, err, "Failed to update transfer status")
	}

	return c.JSON(http.StatusOK, toExpenseResponse(category, expense))
}

// ToggleStatus handles PATCH /api/v1/expenses/:scope/:category/:id/status
func (h *ExpenseHandler) ToggleStatus(c echo.Context) error {
	scope, err := parseScope(c)
	if err != nil {
		return err
	}

	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category := c.Param("category")
	result, err := h.session.ToggleExpenseStatus(scope, category, c.Param("id"), domain.StatusType(req.StatusType), req.Checked)
	if err != nil {
		return handleSessionError(c, err, "Failed to update status")
	}

	return c.JSON(http.StatusOK, StatusResponse{
		Expense:      toExpenseResponse(category, result.Expense),
		Propagations: toPropagationResponses(result.Propagations),
	})
}

// ResetStatuses handles POST /api/v1/statuses/reset?confirm=true
func (h *ExpenseHandler) ResetStatuses(c echo.Context) error {
	if err := h.session.ResetStatuses(isConfirmed(c)); err != nil {
		return handleSessionError(c, err, "Failed to reset statuses")
	}
	return c.NoContent(http.StatusNoContent)
}

// ExportCSV handles GET /api/v1/expenses/:scope/export
func (h *ExpenseHandler) ExportCSV(c echo.Context) error {
	scope, err := parseScope(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	filename, err := h.session.ExportCSV(&buf, scope)
	if err != nil {
		return handleSessionError(c, err, "Failed to export expenses")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func toExpenseResponse(category string, e *domain.Expense) ExpenseResponse {
	resp := ExpenseResponse{
		ID:             e.ID,
		Category:       category,
		Name:           e.Name,
		Date:           e.Date,
		Account:        e.Account,
		Link:           e.Link,
		Projected:      formatAmount(e.Projected),
		Actual:         formatAmount(e.Actual),
		TransferStatus: string(e.TransferStatus),
		Paid:           e.Paid,
		Transferred:    e.Transferred,
		Status:         e.StatusDisplay(),
	}
	if e.Balance != nil {
		balance := formatAmount(*e.Balance)
		resp.Balance = &balance
	}
	return resp
}

func toCategoryResponses(categories domain.CategoryMap) []CategoryResponse {
	keys := make([]string, 0, len(categories))
	for key := range categories {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	response := make([]CategoryResponse, 0, len(keys))
	for _, key := range keys {
		cat := CategoryResponse{
			Category: key,
			Expenses: make([]ExpenseResponse, 0, len(categories[key])),
		}
		projected, actual := sumExpenses(categories[key])
		cat.TotalProjected = formatAmount(projected)
		cat.TotalActual = formatAmount(actual)
		for _, e := range categories[key] {
			cat.Expenses = append(cat.Expenses, toExpenseResponse(key, e))
		}
		response = append(response, cat)
	}
	return response
}

func toPropagationResponses(propagations []session.Propagation) []PropagationResponse {
	response := make([]PropagationResponse, 0, len(propagations))
	for _, p := range propagations {
		applied := make(map[string]bool, len(p.Applied))
		for v, ok := range p.Applied {
			applied[string(v)] = ok
		}
		response = append(response, PropagationResponse{Kind: string(p.Kind), Applied: applied})
	}
	return response
}
