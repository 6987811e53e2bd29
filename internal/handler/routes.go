package handler

import (
	"github.com/labstack/echo/v4"
)

// Handlers groups every HTTP handler the API registers
type Handlers struct {
	Budget    *BudgetHandler
	Expenses  *ExpenseHandler
	Planner   *PlannerHandler
	Income    *IncomeHandler
	WebSocket *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, h Handlers) {
	// WebSocket for view renderers
	e.GET("/ws", h.WebSocket.HandleWS)

	// API version 1
	api := e.Group("/api/v1")

	// Budget period
	state := api.Group("/state")
	state.GET("", h.Budget.GetState)
	state.PUT("/week", h.Budget.SetWeek)
	state.PUT("/month", h.Budget.SetMonth)

	// Whole document
	document := api.Group("/document")
	document.GET("", h.Budget.ExportDocument)
	document.PUT("", h.Budget.ImportDocument)

	// Reports
	api.GET("/funds-aside", h.Budget.GetFundsAside)
	api.GET("/summary", h.Budget.GetSummary)
	api.GET("/upcoming", h.Budget.GetUpcoming)
	api.GET("/savings-plan", h.Budget.GetSavingsPlan)

	// Monthly and Annual expenses
	expenses := api.Group("/expenses/:scope")
	expenses.GET("", h.Expenses.GetExpenses)
	expenses.GET("/export", h.Expenses.ExportCSV)
	expenses.POST("/:category", h.Expenses.CreateExpense)
	expenses.PUT("/:category/:id", h.Expenses.UpdateExpense)
	expenses.DELETE("/:category/:id", h.Expenses.DeleteExpense)
	expenses.PATCH("/:category/:id/transfer-status", h.Expenses.UpdateTransferStatus)
	expenses.PATCH("/:category/:id/status", h.Expenses.ToggleStatus)
	api.POST("/statuses/reset", h.Expenses.ResetStatuses)

	// Weekly planner
	planner := api.Group("/planner")
	planner.GET("", h.Planner.GetLines)
	planner.PUT("/lines/:name/weeks/:week", h.Planner.RecordWeekEdit)
	planner.POST("/lines/:name/weeks/:week/quick-fill", h.Planner.QuickFill)
	planner.PATCH("/lines/:name/weeks/:week/status", h.Planner.ToggleStatus)
	planner.POST("/weeks/reset", h.Planner.ResetAllWeeks)
	planner.POST("/weeks/:week/reset", h.Planner.ResetWeek)

	// Income
	income := api.Group("/income")
	income.GET("", h.Income.GetIncome)
	income.POST("", h.Income.CreateIncome)
	income.PUT("/:id", h.Income.UpdateIncome)
	income.DELETE("/:id", h.Income.DeleteIncome)
}
