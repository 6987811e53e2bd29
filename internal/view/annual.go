package view

import (
	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// AnnualView is the Annual page state
type AnnualView struct {
	expenseView
}

// NewAnnualView creates the Annual view from persisted categories
func NewAnnualView(categories domain.CategoryMap, persist func(domain.CategoryMap), currentWeek WeekFunc) *AnnualView {
	return &AnnualView{
		expenseView: newExpenseView(domain.ViewAnnual, domain.ScopeAnnual, categories, persist, currentWeek),
	}
}

// MonthlyEquivalent is the annual grand total spread over twelve months
func (v *AnnualView) MonthlyEquivalent() decimal.Decimal {
	return v.store.MonthlyEquivalent()
}
