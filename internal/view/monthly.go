package view

import (
	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/dafibh/homebudget/homebudget-backend/internal/event"
)

// MonthlyView is the Monthly page state
type MonthlyView struct {
	expenseView
}

// NewMonthlyView creates the Monthly view from persisted categories
func NewMonthlyView(categories domain.CategoryMap, persist func(domain.CategoryMap), currentWeek WeekFunc) *MonthlyView {
	return &MonthlyView{
		expenseView: newExpenseView(domain.ViewMonthly, domain.ScopeMonthly, categories, persist, currentWeek),
	}
}

// ResetStatuses clears paid and transferred on every monthly expense, the start of
// a new budget month. Transfer statuses and amounts are kept.
func (v *MonthlyView) ResetStatuses() []event.Event {
	changed := false
	for _, e := range v.store.All() {
		if e.Paid || e.Transferred {
			e.Paid = false
			e.Transferred = false
			changed = true
		}
	}
	if changed {
		v.persist(v.store.Snapshot())
	}
	return []event.Event{event.DataChanged{Source: domain.ViewMonthly, Section: domain.SectionMonthly}}
}

var (
	_ event.StatusApplier = (*MonthlyView)(nil)
	_ event.StatusApplier = (*AnnualView)(nil)
)
