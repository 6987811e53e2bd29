package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/homebudget/homebudget-backend/internal/service"
	"github.com/dafibh/homebudget/homebudget-backend/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// maxDocumentSize caps uploaded budget documents
const maxDocumentSize = 10 << 20

// BudgetHandler handles the budget period, reports and whole-document requests
type BudgetHandler struct {
	session *session.Session
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(s *session.Session) *BudgetHandler {
	return &BudgetHandler{session: s}
}

// WeekRequest changes the current budget week
type WeekRequest struct {
	Week int `json:"week"`
}

// MonthRequest changes the current budget month
type MonthRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// StateResponse is the current budget period
type StateResponse struct {
	Week  int `json:"week"`
	Year  int `json:"year"`
	Month int `json:"month"`
}

// AccountFundsResponse is one account's amount to set aside
type AccountFundsResponse struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

// FundsAsideResponse lists funds aside per account for each list and combined
type FundsAsideResponse struct {
	Monthly  []AccountFundsResponse `json:"monthly"`
	Annual   []AccountFundsResponse `json:"annual"`
	Combined []AccountFundsResponse `json:"combined"`
}

// ImportResponse reports sections that were reset while importing
type ImportResponse struct {
	Warnings []ValidationError `json:"warnings"`
}

// GetState handles GET /api/v1/state
func (h *BudgetHandler) GetState(c echo.Context) error {
	return c.JSON(http.StatusOK, toStateResponse(h.session.State()))
}

// SetWeek handles PUT /api/v1/state/week
func (h *BudgetHandler) SetWeek(c echo.Context) error {
	var req WeekRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	state, err := h.session.SetWeek(req.Week)
	if err != nil {
		return handleSessionError(c, err, "Failed to set week")
	}
	return c.JSON(http.StatusOK, toStateResponse(state))
}

// SetMonth handles PUT /api/v1/state/month
func (h *BudgetHandler) SetMonth(c echo.Context) error {
	var req MonthRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	state, err := h.session.SetMonth(req.Year, time.Month(req.Month))
	if err != nil {
		return handleSessionError(c, err, "Failed to set month")
	}
	return c.JSON(http.StatusOK, toStateResponse(state))
}

// GetFundsAside handles GET /api/v1/funds-aside
func (h *BudgetHandler) GetFundsAside(c echo.Context) error {
	summary := h.session.FundsAside()
	return c.JSON(http.StatusOK, FundsAsideResponse{
		Monthly:  toAccountFunds(summary.Monthly),
		Annual:   toAccountFunds(summary.Annual),
		Combined: toAccountFunds(summary.Combined),
	})
}

// GetSummary handles GET /api/v1/summary
func (h *BudgetHandler) GetSummary(c echo.Context) error {
	return c.JSON(http.StatusOK, h.session.Summary())
}

// GetUpcoming handles GET /api/v1/upcoming?days=14
func (h *BudgetHandler) GetUpcoming(c echo.Context) error {
	days := service.DefaultUpcomingDays
	if raw := c.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 366 {
			return NewValidationError(c, "Invalid days", []ValidationError{
				{Field: "days", Message: "Days must be between 1 and 366"},
			})
		}
		days = parsed
	}

	upcoming := h.session.Upcoming(days)
	if upcoming == nil {
		upcoming = []service.UpcomingExpense{}
	}
	return c.JSON(http.StatusOK, upcoming)
}

// GetSavingsPlan handles GET /api/v1/savings-plan
func (h *BudgetHandler) GetSavingsPlan(c echo.Context) error {
	plan := h.session.SavingsPlan()
	if plan == nil {
		plan = []service.SavingsPlanItem{}
	}
	return c.JSON(http.StatusOK, plan)
}

// ExportDocument handles GET /api/v1/document
func (h *BudgetHandler) ExportDocument(c echo.Context) error {
	data, err := json.MarshalIndent(h.session.ExportDocument(), "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode document")
		return NewInternalError(c, "Failed to export document")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="budget.json"`)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

// ImportDocument handles PUT /api/v1/document
func (h *BudgetHandler) ImportDocument(c echo.Context) error {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxDocumentSize+1))
	if err != nil {
		return NewValidationError(c, "Failed to read document", nil)
	}
	if len(data) > maxDocumentSize {
		return NewValidationError(c, "Document too large", []ValidationError{
			{Field: "document", Message: "Document must be at most 10 MB"},
		})
	}

	warnings, err := h.session.ImportDocument(c.Request().Context(), data)
	if err != nil {
		return NewValidationError(c, "Document is not a JSON object", []ValidationError{
			{Field: "document", Message: err.Error()},
		})
	}

	response := ImportResponse{Warnings: make([]ValidationError, 0, len(warnings))}
	for _, w := range warnings {
		field := w.Section
		if w.Category != "" {
			field += "." + w.Category
		}
		response.Warnings = append(response.Warnings, ValidationError{Field: field, Message: w.Err.Error()})
	}
	return c.JSON(http.StatusOK, response)
}

func toStateResponse(s session.State) StateResponse {
	return StateResponse{Week: s.Week, Year: s.Year, Month: int(s.Month)}
}

func toAccountFunds(funds map[string]decimal.Decimal) []AccountFundsResponse {
	sorted := service.Sorted(funds)
	response := make([]AccountFundsResponse, len(sorted))
	for i, f := range sorted {
		response[i] = AccountFundsResponse{Account: f.Account, Amount: formatAmount(f.Amount)}
	}
	return response
}
