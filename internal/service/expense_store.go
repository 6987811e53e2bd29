package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var monthsPerYear = decimal.NewFromInt(12)

// ExpenseStore is the canonical in-memory expense list of one view.
// It is owned by a single view and is not safe for concurrent use.
type ExpenseStore struct {
	scope      domain.Scope
	categories map[string][]*domain.Expense
	now        func() time.Time
}

// NewExpenseStore creates a store seeded from a category map. The input is copied;
// duplicate IDs within a category are dropped (first wins).
func NewExpenseStore(scope domain.Scope, categories domain.CategoryMap) *ExpenseStore {
	s := &ExpenseStore{
		scope:      scope,
		categories: make(map[string][]*domain.Expense),
		now:        time.Now,
	}
	s.Replace(categories)
	return s
}

// Scope returns the store's scope
func (s *ExpenseStore) Scope() domain.Scope {
	return s.scope
}

// SetClock overrides the clock used for ID generation
func (s *ExpenseStore) SetClock(now func() time.Time) {
	s.now = now
}

// Replace discards the current contents and loads a copy of categories. It
// reports whether the loaded records had to be normalized (ids assigned, default
// transfer status filled, duplicates or unnamed records dropped), in which case
// the persisted copy is stale.
func (s *ExpenseStore) Replace(categories domain.CategoryMap) bool {
	normalized := false
	s.categories = make(map[string][]*domain.Expense, len(categories))
	for key, list := range categories {
		seen := make(map[string]bool, len(list))
		kept := make([]*domain.Expense, 0, len(list))
		for _, e := range list {
			if e == nil {
				normalized = true
				continue
			}
			if e.ID != "" && seen[e.ID] {
				log.Warn().
					Str("scope", string(s.scope)).
					Str("category", key).
					Str("expense_id", e.ID).
					Msg("Dropping expense with duplicate id")
				normalized = true
				continue
			}
			c := e.Clone()
			if c.ID == "" {
				c.ID = s.newID(key, kept)
				normalized = true
			}
			if c.TransferStatus == "" {
				c.TransferStatus = domain.DefaultTransferStatus(s.scope)
				normalized = true
			}
			if strings.TrimSpace(c.Name) == "" || !c.Amount.Equal(c.Actual) {
				normalized = true
			}
			c.Amount = c.Actual
			seen[c.ID] = true
			kept = append(kept, c)
		}
		s.categories[key] = kept
	}
	return normalized
}

// Upsert replaces the expense with the same ID in place, or appends it when new.
// The stored record is a copy; the returned pointer is the stored record.
func (s *ExpenseStore) Upsert(categoryKey string, expense *domain.Expense) (*domain.Expense, bool, error) {
	categoryKey = strings.TrimSpace(categoryKey)
	if categoryKey == "" {
		return nil, false, domain.ErrCategoryRequired
	}
	if expense.Projected.IsNegative() || expense.Actual.IsNegative() {
		return nil, false, domain.ErrInvalidAmount
	}

	record := expense.Clone()
	if record.TransferStatus == "" {
		record.TransferStatus = domain.DefaultTransferStatus(s.scope)
	}
	if !record.TransferStatus.IsValid() {
		return nil, false, domain.ErrInvalidTransfer
	}
	record.Amount = record.Actual

	list := s.categories[categoryKey]
	if record.ID != "" {
		for i, existing := range list {
			if existing.ID == record.ID {
				list[i] = record
				return record, false, nil
			}
		}
	} else {
		record.ID = s.newID(categoryKey, list)
	}

	s.categories[categoryKey] = append(list, record)
	return record, true, nil
}

// Remove deletes an expense and returns it. Removing the matching planner entry
// is the caller's responsibility.
func (s *ExpenseStore) Remove(categoryKey, id string) (*domain.Expense, error) {
	list, ok := s.categories[categoryKey]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	for i, e := range list {
		if e.ID == id {
			s.categories[categoryKey] = append(list[:i:i], list[i+1:]...)
			return e, nil
		}
	}
	return nil, domain.ErrExpenseNotFound
}

// Get returns the stored expense
func (s *ExpenseStore) Get(categoryKey, id string) (*domain.Expense, error) {
	list, ok := s.categories[categoryKey]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	for _, e := range list {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, domain.ErrExpenseNotFound
}

// FindByID searches every category for the ID
func (s *ExpenseStore) FindByID(id string) (string, *domain.Expense, bool) {
	for _, key := range s.Categories() {
		for _, e := range s.categories[key] {
			if e.ID == id {
				return key, e, true
			}
		}
	}
	return "", nil, false
}

// FindByName returns the first expense with the given display name, scanning
// categories in key order and each list in display order. Names are not unique;
// callers joining across views by name inherit that ambiguity.
func (s *ExpenseStore) FindByName(name string) (string, *domain.Expense, bool) {
	if strings.TrimSpace(name) == "" {
		return "", nil, false
	}
	for _, key := range s.Categories() {
		for _, e := range s.categories[key] {
			if e.Name == name {
				return key, e, true
			}
		}
	}
	return "", nil, false
}

// List returns the expenses of a category in display order
func (s *ExpenseStore) List(categoryKey string) []*domain.Expense {
	return s.categories[categoryKey]
}

// All returns every expense across categories in key then display order
func (s *ExpenseStore) All() []*domain.Expense {
	var all []*domain.Expense
	for _, key := range s.Categories() {
		all = append(all, s.categories[key]...)
	}
	return all
}

// Categories returns the category keys sorted
func (s *ExpenseStore) Categories() []string {
	keys := make([]string, 0, len(s.categories))
	for key := range s.categories {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// TotalActual sums actual amounts in a category, recomputed on every call
func (s *ExpenseStore) TotalActual(categoryKey string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.categories[categoryKey] {
		total = total.Add(e.Actual)
	}
	return total
}

// TotalProjected sums projected amounts in a category
func (s *ExpenseStore) TotalProjected(categoryKey string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.categories[categoryKey] {
		total = total.Add(e.Projected)
	}
	return total
}

// GrandTotal sums actual amounts over all categories
func (s *ExpenseStore) GrandTotal() decimal.Decimal {
	total := decimal.Zero
	for key := range s.categories {
		total = total.Add(s.TotalActual(key))
	}
	return total
}

// MonthlyEquivalent is the grand total spread over twelve months
func (s *ExpenseStore) MonthlyEquivalent() decimal.Decimal {
	return s.GrandTotal().Div(monthsPerYear).Round(2)
}

// Snapshot returns a deep copy suitable for persistence. Expenses without a
// name are not persisted.
func (s *ExpenseStore) Snapshot() domain.CategoryMap {
	out := make(domain.CategoryMap, len(s.categories))
	for key, list := range s.categories {
		copied := make([]*domain.Expense, 0, len(list))
		for _, e := range list {
			if strings.TrimSpace(e.Name) == "" {
				continue
			}
			copied = append(copied, e.Clone())
		}
		out[key] = copied
	}
	return out
}

// newID builds a "<category>-<unix millis>" identifier unique within the list
func (s *ExpenseStore) newID(categoryKey string, list []*domain.Expense) string {
	taken := make(map[string]bool, len(list))
	for _, e := range list {
		taken[e.ID] = true
	}
	stamp := s.now().UnixMilli()
	for {
		id := fmt.Sprintf("%s-%d", categoryKey, stamp)
		if !taken[id] {
			return id
		}
		stamp++
	}
}
