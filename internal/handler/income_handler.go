package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/dafibh/homebudget/homebudget-backend/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// IncomeHandler handles income source requests
type IncomeHandler struct {
	session *session.Session
}

// NewIncomeHandler creates a new IncomeHandler
func NewIncomeHandler(s *session.Session) *IncomeHandler {
	return &IncomeHandler{session: s}
}

// IncomeRequest is the income form payload
type IncomeRequest struct {
	Name      string          `json:"name"`
	Date      string          `json:"date"`
	Projected json.RawMessage `json:"projected"`
	Actual    json.RawMessage `json:"actual"`
}

// IncomeResponse represents an income source in API responses
type IncomeResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date,omitempty"`
	Projected string `json:"projected"`
	Actual    string `json:"actual"`
}

// GetIncome handles GET /api/v1/income
func (h *IncomeHandler) GetIncome(c echo.Context) error {
	income := h.session.Income()

	response := make([]IncomeResponse, len(income))
	for i, inc := range income {
		response[i] = toIncomeResponse(inc)
	}
	return c.JSON(http.StatusOK, response)
}

// CreateIncome handles POST /api/v1/income
func (h *IncomeHandler) CreateIncome(c echo.Context) error {
	return h.saveIncome(c, "", http.StatusCreated)
}

// UpdateIncome handles PUT /api/v1/income/:id
func (h *IncomeHandler) UpdateIncome(c echo.Context) error {
	return h.saveIncome(c, c.Param("id"), http.StatusOK)
}

func (h *IncomeHandler) saveIncome(c echo.Context, id string, status int) error {
	var req IncomeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := &domain.IncomeSource{
		ID:        id,
		Name:      req.Name,
		Date:      req.Date,
		Projected: decimal.Zero,
		Actual:    decimal.Zero,
	}
	if p := optionalAmount(req.Projected); p != nil {
		input.Projected = *p
	}
	if a := optionalAmount(req.Actual); a != nil {
		input.Actual = *a
	}

	saved, err := h.session.SaveIncome(input)
	if err != nil {
		return handleSessionError(c, err, "Failed to save income")
	}
	return c.JSON(status, toIncomeResponse(saved))
}

// DeleteIncome handles DELETE /api/v1/income/:id?confirm=true
func (h *IncomeHandler) DeleteIncome(c echo.Context) error {
	if err := h.session.DeleteIncome(c.Param("id"), isConfirmed(c)); err != nil {
		return handleSessionError(c, err, "Failed to delete income")
	}
	return c.NoContent(http.StatusNoContent)
}

func toIncomeResponse(inc *domain.IncomeSource) IncomeResponse {
	return IncomeResponse{
		ID:        inc.ID,
		Name:      inc.Name,
		Date:      inc.Date,
		Projected: formatAmount(inc.Projected),
		Actual:    formatAmount(inc.Actual),
	}
}
