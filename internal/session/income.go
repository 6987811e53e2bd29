package session

import (
	"fmt"
	"strings"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/dafibh/homebudget/homebudget-backend/internal/event"
)

// Income returns a copy of the income sources
func (s *Session) Income() []*domain.IncomeSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incomeSnapshot()
}

// SaveIncome creates or updates an income source
func (s *Session) SaveIncome(input *domain.IncomeSource) (*domain.IncomeSource, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxIncomeNameLength {
		return nil, domain.ErrNameTooLong
	}
	if input.Projected.IsNegative() || input.Actual.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := input.Clone()
	record.Name = name

	replaced := false
	if record.ID != "" {
		for i, existing := range s.income {
			if existing.ID == record.ID {
				s.income[i] = record
				replaced = true
				break
			}
		}
	} else {
		record.ID = s.newIncomeID()
	}
	if !replaced {
		s.income = append(s.income, record)
	}

	s.persister.StageIncome(s.incomeSnapshot())
	s.dispatch([]event.Event{event.DataChanged{Section: domain.SectionIncome}})
	return record.Clone(), nil
}

// DeleteIncome removes an income source once confirmed
func (s *Session) DeleteIncome(id string, confirm bool) error {
	if err := requireConfirmation(confirm); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.income {
		if existing.ID == id {
			s.income = append(s.income[:i:i], s.income[i+1:]...)
			s.persister.StageIncome(s.incomeSnapshot())
			s.dispatch([]event.Event{event.DataChanged{Section: domain.SectionIncome}})
			return nil
		}
	}
	return domain.ErrIncomeNotFound
}

func (s *Session) incomeSnapshot() []*domain.IncomeSource {
	out := make([]*domain.IncomeSource, 0, len(s.income))
	for _, inc := range s.income {
		out = append(out, inc.Clone())
	}
	return out
}

func (s *Session) newIncomeID() string {
	taken := make(map[string]bool, len(s.income))
	for _, inc := range s.income {
		taken[inc.ID] = true
	}
	stamp := s.now().UnixMilli()
	for {
		id := fmt.Sprintf("income-%d", stamp)
		if !taken[id] {
			return id
		}
		stamp++
	}
}
