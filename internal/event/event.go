package event

import (
	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Kind is the canonical name of a cross-view event
type Kind string

const (
	KindMonthlyStatusChanged  Kind = "monthlyStatusChanged"
	KindPlannerStatusChanged  Kind = "plannerStatusChanged"
	KindMonthlyExpenseChanged Kind = "monthlyExpenseChanged"
	KindAnnualExpenseChanged  Kind = "annualExpenseChanged"
	KindDataChanged           Kind = "dataChanged"
)

// Event is implemented by every message the dispatcher carries
type Event interface {
	Kind() Kind
	Origin() domain.View
}

// StatusChanged reports a paid or transferred checkbox change made in one view.
// Week is the 1-based planner week the change applies to; expense views stamp the
// current budget week.
type StatusChanged struct {
	ExpenseID   string            `json:"expenseId,omitempty"`
	ExpenseName string            `json:"expenseName"`
	Week        int               `json:"week"`
	StatusType  domain.StatusType `json:"statusType"`
	Checked     bool              `json:"checked"`
	Source      domain.View       `json:"source"`
}

// Kind is plannerStatusChanged for planner-originated changes, monthlyStatusChanged
// for changes from either expense view
func (e StatusChanged) Kind() Kind {
	if e.Source == domain.ViewPlanner {
		return KindPlannerStatusChanged
	}
	return KindMonthlyStatusChanged
}

// Origin returns the view that made the change
func (e StatusChanged) Origin() domain.View {
	return e.Source
}

// ExpenseChanged reports an expense that was saved or removed in an expense view.
// It carries enough for the planner to refresh its monthly reference without a
// full repopulation.
type ExpenseChanged struct {
	Scope        domain.Scope    `json:"scope"`
	Category     string          `json:"category"`
	ExpenseID    string          `json:"expenseId"`
	Name         string          `json:"name"`
	PreviousName string          `json:"previousName,omitempty"`
	Actual       decimal.Decimal `json:"actual"`
	DueDate      string          `json:"dueDate,omitempty"`
	Removed      bool            `json:"removed,omitempty"`
}

// Kind is annualExpenseChanged for the annual scope, monthlyExpenseChanged otherwise
func (e ExpenseChanged) Kind() Kind {
	if e.Scope == domain.ScopeAnnual {
		return KindAnnualExpenseChanged
	}
	return KindMonthlyExpenseChanged
}

// Origin returns the expense view the change came from
func (e ExpenseChanged) Origin() domain.View {
	return domain.View(e.Scope)
}

// Renamed reports whether the change moved the expense to a new name
func (e ExpenseChanged) Renamed() bool {
	return e.PreviousName != "" && e.PreviousName != e.Name
}

// DataChanged tells listeners that a list was mutated and totals should be recomputed
type DataChanged struct {
	Source   domain.View `json:"source"`
	Section  string      `json:"section"`
	Category string      `json:"category,omitempty"`
}

// Kind returns dataChanged
func (e DataChanged) Kind() Kind {
	return KindDataChanged
}

// Origin returns the view whose data changed
func (e DataChanged) Origin() domain.View {
	return e.Source
}
