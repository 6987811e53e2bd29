package domain

import "errors"

// Domain errors
var (
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrExpenseNotFound      = errors.New("expense not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrIncomeNotFound       = errors.New("income source not found")
	ErrPlannerEntryNotFound = errors.New("planner entry not found")
	ErrNameRequired         = errors.New("name is required")
	ErrNameTooLong          = errors.New("name exceeds maximum length")
	ErrProjectedRequired    = errors.New("projected amount is required")
	ErrCategoryRequired     = errors.New("category is required")
	ErrInvalidAmount        = errors.New("amount must be zero or positive")
	ErrInvalidWeek          = errors.New("week must be between 1 and 5")
	ErrInvalidMonth         = errors.New("month must be between 1 and 12")
	ErrInvalidScope         = errors.New("scope must be monthly or annual")
	ErrInvalidView          = errors.New("view must be monthly, annual or planner")
	ErrInvalidStatusType    = errors.New("status type must be paid or transferred")
	ErrInvalidTransfer      = errors.New("transfer status must be none, quarter, half or full")
	ErrInvalidFillAction    = errors.New("fill action must be reset, full, half or quarter")
	ErrConfirmationRequired = errors.New("confirmation required")
)

// Validation constants
const (
	MaxExpenseNameLength = 255
	MaxCategoryKeyLength = 100
	MaxIncomeNameLength  = 255
	MaxExpenseLinkLength = 2048
	MaxAccountNameLength = 255
)
