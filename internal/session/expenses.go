package session

import (
	"strings"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// ExpenseInput is an expense as submitted from a form. Projected is required;
// Actual defaults to zero.
type ExpenseInput struct {
	ID             string
	Name           string
	Date           string
	Account        string
	Link           string
	Projected      *decimal.Decimal
	Actual         *decimal.Decimal
	TransferStatus domain.TransferStatus
	Paid           bool
	Transferred    bool
	Balance        *decimal.Decimal
}

// StatusResult is a toggled expense together with how the change propagated
type StatusResult struct {
	Expense      *domain.Expense `json:"expense"`
	Propagations []Propagation   `json:"propagations"`
}

// Expenses returns a copy of one scope's expense lists
func (s *Session) Expenses(scope domain.Scope) (domain.CategoryMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.expenseView(scope)
	if err != nil {
		return nil, err
	}
	out := domain.CategoryMap{}
	for _, key := range v.Store().Categories() {
		list := v.Store().List(key)
		copied := make([]*domain.Expense, 0, len(list))
		for _, e := range list {
			copied = append(copied, e.Clone())
		}
		out[key] = copied
	}
	return out, nil
}

// SaveExpense creates or updates an expense from a submitted form
func (s *Session) SaveExpense(scope domain.Scope, categoryKey string, input ExpenseInput) (*domain.Expense, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, domain.ErrNameRequired
	}
	if input.Projected == nil {
		return nil, domain.ErrProjectedRequired
	}

	expense := &domain.Expense{
		ID:             input.ID,
		Name:           input.Name,
		Date:           strings.TrimSpace(input.Date),
		Account:        strings.TrimSpace(input.Account),
		Link:           strings.TrimSpace(input.Link),
		Projected:      *input.Projected,
		Actual:         decimal.Zero,
		TransferStatus: input.TransferStatus,
		Paid:           input.Paid,
		Transferred:    input.Transferred,
		Balance:        input.Balance,
	}
	if input.Actual != nil {
		expense.Actual = *input.Actual
	}
	if expense.Date != "" {
		if _, ok := domain.ParseISODate(expense.Date); !ok {
			return nil, domain.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.expenseView(scope)
	if err != nil {
		return nil, err
	}
	saved, events, err := v.SaveExpense(categoryKey, expense)
	if err != nil {
		return nil, err
	}
	s.dispatch(events)

	s.logger.Debug().
		Str("scope", string(scope)).
		Str("category", categoryKey).
		Str("expense_id", saved.ID).
		Msg("Expense saved")
	return saved.Clone(), nil
}

// DeleteExpense removes an expense once confirmed; the planner drops its entry
func (s *Session) DeleteExpense(scope domain.Scope, categoryKey, id string, confirm bool) error {
	if err := requireConfirmation(confirm); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.expenseView(scope)
	if err != nil {
		return err
	}
	_, events, err := v.DeleteExpense(categoryKey, id)
	if err != nil {
		return err
	}
	s.dispatch(events)
	return nil
}

// SetTransferStatus changes an expense's graduated transfer indicator
func (s *Session) SetTransferStatus(scope domain.Scope, categoryKey, id string, status domain.TransferStatus) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.expenseView(scope)
	if err != nil {
		return nil, err
	}
	expense, events, err := v.SetTransferStatus(categoryKey, id, status)
	if err != nil {
		return nil, err
	}
	s.dispatch(events)
	return expense.Clone(), nil
}

// ToggleExpenseStatus sets paid or transferred on an expense in the Monthly or
// Annual view and propagates it to the other views
func (s *Session) ToggleExpenseStatus(scope domain.Scope, categoryKey, id string, statusType domain.StatusType, checked bool) (*StatusResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.expenseView(scope)
	if err != nil {
		return nil, err
	}
	expense, events, err := v.ToggleStatus(categoryKey, id, statusType, checked)
	if err != nil {
		return nil, err
	}
	return &StatusResult{
		Expense:      expense.Clone(),
		Propagations: s.dispatch(events),
	}, nil
}

// ResetStatuses clears Monthly paid/transferred and every planner weekly status
// once confirmed. Annual statuses are kept.
func (s *Session) ResetStatuses(confirm bool) error {
	if err := requireConfirmation(confirm); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.monthly.ResetStatuses()
	events = append(events, s.planner.ResetStatuses()...)
	s.dispatch(events)

	s.logger.Info().Msg("Statuses reset")
	return nil
}
