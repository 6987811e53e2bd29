package handler

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/dafibh/homebudget/homebudget-backend/internal/service"
	"github.com/dafibh/homebudget/homebudget-backend/internal/session"
	"github.com/dafibh/homebudget/homebudget-backend/internal/view"
	"github.com/labstack/echo/v4"
)

// PlannerHandler handles weekly planner requests
type PlannerHandler struct {
	session *session.Session
}

// NewPlannerHandler creates a new PlannerHandler
func NewPlannerHandler(s *session.Session) *PlannerHandler {
	return &PlannerHandler{session: s}
}

// WeekEditRequest sets one week's planned amount
type WeekEditRequest struct {
	Amount json.RawMessage `json:"amount"`
}

// QuickFillRequest applies a quick-fill shortcut to one week
type QuickFillRequest struct {
	Action string `json:"action"`
}

// PlannerLineResponse represents one planner row in API responses
type PlannerLineResponse struct {
	ExpenseID   string   `json:"expenseId"`
	Category    string   `json:"category"`
	Name        string   `json:"name"`
	Monthly     string   `json:"monthly"`
	DueDate     string   `json:"dueDate,omitempty"`
	Weeks       []string `json:"weeks"`
	Paid        []bool   `json:"paid"`
	Transferred []bool   `json:"transferred"`
	Remaining   string   `json:"remaining"`
}

// PlannerStatusResponse is the toggled planner row with its propagation
type PlannerStatusResponse struct {
	Line         PlannerLineResponse   `json:"line"`
	Propagations []PropagationResponse `json:"propagations"`
}

// GetLines handles GET /api/v1/planner
func (h *PlannerHandler) GetLines(c echo.Context) error {
	lines := h.session.PlannerLines()

	response := make([]PlannerLineResponse, len(lines))
	for i, line := range lines {
		response[i] = toPlannerLineResponse(line)
	}
	return c.JSON(http.StatusOK, response)
}

// RecordWeekEdit handles PUT /api/v1/planner/lines/:name/weeks/:week
func (h *PlannerHandler) RecordWeekEdit(c echo.Context) error {
	week, err := parseWeek(c)
	if err != nil {
		return err
	}

	var req WeekEditRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	line, err := h.session.RecordWeekEdit(lineName(c), week, domain.ParseAmount(req.Amount))
	if err != nil {
		return handleSessionError(c, err, "Failed to update week")
	}
	return c.JSON(http.StatusOK, toPlannerLineResponse(line))
}

// QuickFill handles POST /api/v1/planner/lines/:name/weeks/:week/quick-fill
func (h *PlannerHandler) QuickFill(c echo.Context) error {
	week, err := parseWeek(c)
	if err != nil {
		return err
	}

	var req QuickFillRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	line, err := h.session.QuickFill(lineName(c), week, service.FillAction(req.Action))
	if err != nil {
		return handleSessionError(c, err, "Failed to quick-fill week")
	}
	return c.JSON(http.StatusOK, toPlannerLineResponse(line))
}

// ToggleStatus handles PATCH /api/v1/planner/lines/:name/weeks/:week/status
func (h *PlannerHandler) ToggleStatus(c echo.Context) error {
	week, err := parseWeek(c)
	if err != nil {
		return err
	}

	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	result, err := h.session.TogglePlannerStatus(lineName(c), week, domain.StatusType(req.StatusType), req.Checked)
	if err != nil {
		return handleSessionError(c, err, "Failed to update planner status")
	}

	return c.JSON(http.StatusOK, PlannerStatusResponse{
		Line:         toPlannerLineResponse(result.Line),
		Propagations: toPropagationResponses(result.Propagations),
	})
}

// ResetWeek handles POST /api/v1/planner/weeks/:week/reset?confirm=true
func (h *PlannerHandler) ResetWeek(c echo.Context) error {
	week, err := parseWeek(c)
	if err != nil {
		return err
	}

	if err := h.session.ResetWeek(week, isConfirmed(c)); err != nil {
		return handleSessionError(c, err, "Failed to reset week")
	}
	return c.NoContent(http.StatusNoContent)
}

// ResetAllWeeks handles POST /api/v1/planner/weeks/reset?confirm=true
func (h *PlannerHandler) ResetAllWeeks(c echo.Context) error {
	if err := h.session.ResetAllWeeks(isConfirmed(c)); err != nil {
		return handleSessionError(c, err, "Failed to reset weeks")
	}
	return c.NoContent(http.StatusNoContent)
}

// lineName reads the :name path parameter; names may carry escaped slashes
func lineName(c echo.Context) string {
	name := c.Param("name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}

func toPlannerLineResponse(line view.PlannerLine) PlannerLineResponse {
	resp := PlannerLineResponse{
		ExpenseID:   line.ExpenseID,
		Category:    line.Category,
		Name:        line.Name,
		Monthly:     formatAmount(line.Monthly),
		DueDate:     line.DueDate,
		Weeks:       make([]string, len(line.Weeks)),
		Paid:        line.Paid[:],
		Transferred: line.Transferred[:],
		Remaining:   formatAmount(line.Remaining),
	}
	for i, w := range line.Weeks {
		resp.Weeks[i] = formatAmount(w)
	}
	return resp
}
