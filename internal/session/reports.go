package session

import (
	"context"
	"io"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/dafibh/homebudget/homebudget-backend/internal/service"
	"github.com/dafibh/homebudget/homebudget-backend/internal/websocket"
)

// FundsAside computes the per-account amounts to set aside for unpaid expenses
func (s *Session) FundsAside() *service.FundsAsideSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.funds.Summarize(s.monthly.Store().All(), s.annual.Store().All())
}

// Summary returns the budget totals
func (s *Session) Summary() *service.BudgetSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary.Summarize(s.income, s.monthly.Store(), s.annual.Store())
}

// Upcoming lists unpaid expenses due within days
func (s *Session) Upcoming(days int) []service.UpcomingExpense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary.Upcoming(s.monthly.Store(), s.annual.Store(), days)
}

// SavingsPlan returns the monthly saving needed per annual expense
func (s *Session) SavingsPlan() []service.SavingsPlanItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary.SavingsPlan(s.annual.Store())
}

// ExportCSV writes one scope's expenses as CSV and returns the download name
func (s *Session) ExportCSV(w io.Writer, scope domain.Scope) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.expenseView(scope)
	if err != nil {
		return "", err
	}
	if err := s.export.WriteCSV(w, v.Store()); err != nil {
		return "", err
	}
	return s.export.Filename(scope), nil
}

// ExportDocument returns the whole budget document as it would be persisted
func (s *Session) ExportDocument() *domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.persister.Document()
	doc.Monthly = s.monthly.Store().Snapshot()
	doc.Annual = s.annual.Store().Snapshot()
	doc.PlannerState = s.planner.Entries()
	doc.Income = s.incomeSnapshot()
	return doc
}

// ImportDocument replaces the budget with an uploaded document. Malformed sections
// are reset to empty and returned as warnings.
func (s *Session) ImportDocument(ctx context.Context, data []byte) ([]domain.DecodeWarning, error) {
	doc, warnings, err := domain.DecodeDocument(data)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		s.logger.Warn().Err(w.Err).Str("section", w.Section).Str("category", w.Category).Msg("Imported section reset to empty")
	}

	s.mu.Lock()
	s.apply(doc)
	s.persister.StageDocument(s.normalized(doc))
	s.mu.Unlock()

	if err := s.persister.Flush(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Failed to save imported document")
	}

	s.publisher.Publish(websocket.DocumentReloaded(map[string]string{"reason": "import"}))
	s.logger.Info().Int("warnings", len(warnings)).Msg("Document imported")
	return warnings, nil
}
