package session

import (
	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/dafibh/homebudget/homebudget-backend/internal/service"
	"github.com/dafibh/homebudget/homebudget-backend/internal/view"
	"github.com/shopspring/decimal"
)

// PlannerStatusResult is a toggled planner line together with how it propagated
type PlannerStatusResult struct {
	Line         view.PlannerLine `json:"line"`
	Propagations []Propagation    `json:"propagations"`
}

// PlannerLines returns every planner row with its weekly distribution
func (s *Session) PlannerLines() []view.PlannerLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.planner.Lines()
}

// RecordWeekEdit sets the planned amount of one week (1-5) for an expense
func (s *Session) RecordWeekEdit(name string, week int, amount decimal.Decimal) (view.PlannerLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, events, err := s.planner.RecordWeekEdit(name, week, amount)
	if err != nil {
		return view.PlannerLine{}, err
	}
	s.dispatch(events)
	return line, nil
}

// QuickFill sets one week to reset, full, half or quarter of the monthly amount
func (s *Session) QuickFill(name string, week int, action service.FillAction) (view.PlannerLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, events, err := s.planner.QuickFill(name, week, action)
	if err != nil {
		return view.PlannerLine{}, err
	}
	s.dispatch(events)
	return line, nil
}

// ResetWeek zeroes one planner week for every expense once confirmed
func (s *Session) ResetWeek(week int, confirm bool) error {
	if err := requireConfirmation(confirm); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.planner.ResetWeek(week)
	if err != nil {
		return err
	}
	s.dispatch(events)
	return nil
}

// ResetAllWeeks zeroes every planner week once confirmed
func (s *Session) ResetAllWeeks(confirm bool) error {
	if err := requireConfirmation(confirm); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.dispatch(s.planner.ResetAllWeeks())
	s.logger.Info().Msg("All planner weeks reset")
	return nil
}

// TogglePlannerStatus sets a weekly paid or transferred checkbox in the planner.
// Monthly and Annual follow only when week is the current budget week.
func (s *Session) TogglePlannerStatus(name string, week int, statusType domain.StatusType, checked bool) (*PlannerStatusResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, events, err := s.planner.ToggleStatus(name, week, statusType, checked)
	if err != nil {
		return nil, err
	}
	return &PlannerStatusResult{
		Line:         line,
		Propagations: s.dispatch(events),
	}, nil
}
