package service

import (
	"sort"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/dafibh/homebudget/homebudget-backend/internal/util"
	"github.com/shopspring/decimal"
)

// FillAction is a planner quick-fill shortcut for a single week cell
type FillAction string

const (
	FillReset   FillAction = "reset"
	FillFull    FillAction = "full"
	FillHalf    FillAction = "half"
	FillQuarter FillAction = "quarter"
)

var fillFractions = map[FillAction]decimal.Decimal{
	FillReset:   decimal.Zero,
	FillFull:    decimal.NewFromInt(1),
	FillHalf:    decimal.RequireFromString("0.5"),
	FillQuarter: decimal.RequireFromString("0.25"),
}

// QuickFillAmount returns the week amount for a quick-fill action. It depends only
// on the monthly amount, never on the other weeks.
func QuickFillAmount(action FillAction, monthlyAmount decimal.Decimal) (decimal.Decimal, error) {
	fraction, ok := fillFractions[action]
	if !ok {
		return decimal.Zero, domain.ErrInvalidFillAction
	}
	return monthlyAmount.Mul(fraction).Round(2), nil
}

// InitialWeek returns the 1-based week that receives the whole amount when an
// expense is first distributed: the week holding the due day, or week 1 without a
// usable date.
func InitialWeek(dueDateISO string) int {
	due, ok := domain.ParseISODate(dueDateISO)
	if !ok {
		return 1
	}
	return util.WeekOfMonth(due.Day())
}

// WeeklyPlanner keeps the per-expense weekly distribution, keyed by expense name.
// It is owned by the planner view and is not safe for concurrent use.
type WeeklyPlanner struct {
	entries map[string]*domain.PlannerEntry
}

// NewWeeklyPlanner creates a planner from persisted entries (copied)
func NewWeeklyPlanner(entries map[string]*domain.PlannerEntry) *WeeklyPlanner {
	p := &WeeklyPlanner{}
	p.Replace(entries)
	return p
}

// Replace discards current entries and loads a copy
func (p *WeeklyPlanner) Replace(entries map[string]*domain.PlannerEntry) {
	p.entries = make(map[string]*domain.PlannerEntry, len(entries))
	for name, entry := range entries {
		if entry != nil {
			p.entries[name] = entry.Clone()
		}
	}
}

// Entry returns the stored entry for an expense name
func (p *WeeklyPlanner) Entry(name string) (*domain.PlannerEntry, bool) {
	entry, ok := p.entries[name]
	return entry, ok
}

// Names returns the tracked expense names sorted
func (p *WeeklyPlanner) Names() []string {
	names := make([]string, 0, len(p.entries))
	for name := range p.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Distribute returns the weekly split for an expense. Stored weeks always win;
// otherwise the whole monthly amount goes into the due-date week and the entry is
// created.
func (p *WeeklyPlanner) Distribute(name string, monthlyAmount decimal.Decimal, dueDateISO string) [domain.WeeksPerMonth]decimal.Decimal {
	if entry, ok := p.entries[name]; ok {
		return entry.Weeks
	}

	entry := domain.NewPlannerEntry()
	entry.Weeks[InitialWeek(dueDateISO)-1] = monthlyAmount
	p.entries[name] = entry
	return entry.Weeks
}

// RecordWeekEdit overwrites one week's planned amount
func (p *WeeklyPlanner) RecordWeekEdit(name string, weekIndex int, amount decimal.Decimal) error {
	if weekIndex < 0 || weekIndex >= domain.WeeksPerMonth {
		return domain.ErrInvalidWeek
	}
	if amount.IsNegative() {
		return domain.ErrInvalidAmount
	}
	p.entryFor(name).Weeks[weekIndex] = amount
	return nil
}

// ApplyQuickFill sets one week to a quick-fill amount derived from monthlyAmount
func (p *WeeklyPlanner) ApplyQuickFill(name string, weekIndex int, action FillAction, monthlyAmount decimal.Decimal) (decimal.Decimal, error) {
	amount, err := QuickFillAmount(action, monthlyAmount)
	if err != nil {
		return decimal.Zero, err
	}
	if err := p.RecordWeekEdit(name, weekIndex, amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// Remaining is monthlyAmount minus the planned weeks, rounded to cents.
// Positive means under-allocated, negative over-allocated.
func (p *WeeklyPlanner) Remaining(name string, monthlyAmount decimal.Decimal) decimal.Decimal {
	allocated := decimal.Zero
	if entry, ok := p.entries[name]; ok {
		allocated = entry.Total()
	}
	return domain.RoundCurrency(monthlyAmount.Sub(allocated))
}

// ResetWeek zeroes one week for every tracked expense. Status flags are untouched.
func (p *WeeklyPlanner) ResetWeek(weekIndex int) error {
	if weekIndex < 0 || weekIndex >= domain.WeeksPerMonth {
		return domain.ErrInvalidWeek
	}
	for _, entry := range p.entries {
		entry.Weeks[weekIndex] = decimal.Zero
	}
	return nil
}

// ResetAllWeeks zeroes every week for every tracked expense. Status flags are untouched.
func (p *WeeklyPlanner) ResetAllWeeks() {
	for _, entry := range p.entries {
		for i := range entry.Weeks {
			entry.Weeks[i] = decimal.Zero
		}
	}
}

// SetStatus sets a per-week paid/transferred flag, creating the entry if needed
func (p *WeeklyPlanner) SetStatus(name string, weekIndex int, statusType domain.StatusType, checked bool) error {
	if weekIndex < 0 || weekIndex >= domain.WeeksPerMonth {
		return domain.ErrInvalidWeek
	}
	if !statusType.IsValid() {
		return domain.ErrInvalidStatusType
	}
	p.entryFor(name).SetStatus(statusType, weekIndex, checked)
	return nil
}

// ResetStatuses clears every per-week paid and transferred flag
func (p *WeeklyPlanner) ResetStatuses() {
	for _, entry := range p.entries {
		entry.Paid = [domain.WeeksPerMonth]bool{}
		entry.Transferred = [domain.WeeksPerMonth]bool{}
	}
}

// Remove deletes the entry for an expense name
func (p *WeeklyPlanner) Remove(name string) bool {
	if _, ok := p.entries[name]; !ok {
		return false
	}
	delete(p.entries, name)
	return true
}

// Rename moves an entry to a new name. It refuses to overwrite an existing entry.
func (p *WeeklyPlanner) Rename(oldName, newName string) bool {
	entry, ok := p.entries[oldName]
	if !ok || oldName == newName {
		return false
	}
	if _, taken := p.entries[newName]; taken {
		return false
	}
	delete(p.entries, oldName)
	p.entries[newName] = entry
	return true
}

// Snapshot returns a deep copy of all entries
func (p *WeeklyPlanner) Snapshot() map[string]*domain.PlannerEntry {
	out := make(map[string]*domain.PlannerEntry, len(p.entries))
	for name, entry := range p.entries {
		out[name] = entry.Clone()
	}
	return out
}

func (p *WeeklyPlanner) entryFor(name string) *domain.PlannerEntry {
	entry, ok := p.entries[name]
	if !ok {
		entry = domain.NewPlannerEntry()
		p.entries[name] = entry
	}
	return entry
}
