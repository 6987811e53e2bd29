package session

import (
	"context"
	"fmt"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/dafibh/homebudget/homebudget-backend/internal/service"
	"github.com/dafibh/homebudget/homebudget-backend/internal/websocket"
)

var _ websocket.IntentHandler = (*Session)(nil)

// HandleIntent applies an intent sent by a view renderer as a local edit of that view
func (s *Session) HandleIntent(ctx context.Context, viewName string, intent websocket.Intent) error {
	v := domain.View(viewName)
	if !v.IsValid() {
		return domain.ErrInvalidView
	}

	switch intent.Type {
	case websocket.IntentSetWeek:
		_, err := s.SetWeek(intent.Week)
		return err

	case websocket.IntentToggleStatus:
		statusType := domain.StatusType(intent.StatusType)
		if v == domain.ViewPlanner {
			week := intent.Week
			if week == 0 {
				week = s.State().Week
			}
			_, err := s.TogglePlannerStatus(intent.ExpenseName, week, statusType, intent.Checked)
			return err
		}
		category, err := s.locate(domain.Scope(v), intent.ExpenseID)
		if err != nil {
			return err
		}
		_, err = s.ToggleExpenseStatus(domain.Scope(v), category, intent.ExpenseID, statusType, intent.Checked)
		return err

	case websocket.IntentRecordWeekEdit:
		if v != domain.ViewPlanner {
			return domain.ErrInvalidView
		}
		_, err := s.RecordWeekEdit(intent.ExpenseName, intent.Week, domain.ParseAmount(intent.Amount))
		return err

	case websocket.IntentQuickFill:
		if v != domain.ViewPlanner {
			return domain.ErrInvalidView
		}
		_, err := s.QuickFill(intent.ExpenseName, intent.Week, service.FillAction(intent.Action))
		return err

	default:
		return fmt.Errorf("%w: unknown intent %q", domain.ErrInvalidInput, intent.Type)
	}
}

// locate finds the category holding an expense id
func (s *Session) locate(scope domain.Scope, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.expenseView(scope)
	if err != nil {
		return "", err
	}
	category, _, ok := v.Store().FindByID(id)
	if !ok {
		return "", domain.ErrExpenseNotFound
	}
	return category, nil
}
