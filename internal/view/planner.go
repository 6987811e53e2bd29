package view

import (
	"sort"
	"strings"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/dafibh/homebudget/homebudget-backend/internal/event"
	"github.com/dafibh/homebudget/homebudget-backend/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// PlannerRow is the planner's reference to one monthly expense
type PlannerRow struct {
	ExpenseID string          `json:"expenseId"`
	Category  string          `json:"category"`
	Name      string          `json:"name"`
	Monthly   decimal.Decimal `json:"monthly"`
	DueDate   string          `json:"dueDate,omitempty"`
}

// PlannerLine is a row with its weekly distribution, ready for rendering
type PlannerLine struct {
	PlannerRow
	Weeks       [domain.WeeksPerMonth]decimal.Decimal `json:"weeks"`
	Paid        [domain.WeeksPerMonth]bool            `json:"paid"`
	Transferred [domain.WeeksPerMonth]bool            `json:"transferred"`
	Remaining   decimal.Decimal                       `json:"remaining"`
}

// PlannerView is the Planner page state. Weekly entries stay keyed by expense name
// for the persisted format; rows are indexed by expense id so renames can re-key
// the entry.
type PlannerView struct {
	planner     *service.WeeklyPlanner
	rows        map[string]*PlannerRow
	persist     func(map[string]*domain.PlannerEntry)
	currentWeek WeekFunc
}

// NewPlannerView creates the Planner view from persisted entries
func NewPlannerView(entries map[string]*domain.PlannerEntry, persist func(map[string]*domain.PlannerEntry), currentWeek WeekFunc) *PlannerView {
	if persist == nil {
		persist = func(map[string]*domain.PlannerEntry) {}
	}
	return &PlannerView{
		planner:     service.NewWeeklyPlanner(entries),
		rows:        make(map[string]*PlannerRow),
		persist:     persist,
		currentWeek: currentWeek,
	}
}

// Name returns the view name
func (v *PlannerView) Name() domain.View {
	return domain.ViewPlanner
}

// Replace reloads the persisted entries without persisting or publishing
func (v *PlannerView) Replace(entries map[string]*domain.PlannerEntry) {
	v.planner.Replace(entries)
}

// Populate rebuilds the row index from the monthly store and distributes any
// expense that has no entry yet. It reports whether any entry was created.
func (v *PlannerView) Populate(monthly *service.ExpenseStore) bool {
	created := false
	v.rows = make(map[string]*PlannerRow)
	for _, key := range monthly.Categories() {
		for _, e := range monthly.List(key) {
			if strings.TrimSpace(e.Name) == "" {
				continue
			}
			v.rows[e.ID] = &PlannerRow{
				ExpenseID: e.ID,
				Category:  key,
				Name:      e.Name,
				Monthly:   e.Actual,
				DueDate:   e.Date,
			}
			if _, ok := v.planner.Entry(e.Name); !ok {
				created = true
			}
			v.planner.Distribute(e.Name, e.Actual, e.Date)
		}
	}
	return created
}

// Lines returns every row with its distribution, ordered by category then name
func (v *PlannerView) Lines() []PlannerLine {
	rows := make([]*PlannerRow, 0, len(v.rows))
	for _, r := range v.rows {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Category != rows[j].Category {
			return rows[i].Category < rows[j].Category
		}
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].ExpenseID < rows[j].ExpenseID
	})

	lines := make([]PlannerLine, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, v.line(r))
	}
	return lines
}

// Line returns one row by expense name
func (v *PlannerView) Line(name string) (PlannerLine, bool) {
	row, ok := v.rowByName(name)
	if !ok {
		return PlannerLine{}, false
	}
	return v.line(row), true
}

func (v *PlannerView) line(r *PlannerRow) PlannerLine {
	line := PlannerLine{
		PlannerRow: *r,
		Weeks:      v.planner.Distribute(r.Name, r.Monthly, r.DueDate),
		Remaining:  v.planner.Remaining(r.Name, r.Monthly),
	}
	if entry, ok := v.planner.Entry(r.Name); ok {
		line.Paid = entry.Paid
		line.Transferred = entry.Transferred
	}
	return line
}

// Entries returns a copy of the persisted weekly entries
func (v *PlannerView) Entries() map[string]*domain.PlannerEntry {
	return v.planner.Snapshot()
}

// RecordWeekEdit sets one week of one expense. week is 1-based.
func (v *PlannerView) RecordWeekEdit(name string, week int, amount decimal.Decimal) (PlannerLine, []event.Event, error) {
	row, idx, err := v.resolve(name, week)
	if err != nil {
		return PlannerLine{}, nil, err
	}
	if err := v.planner.RecordWeekEdit(row.Name, idx, amount); err != nil {
		return PlannerLine{}, nil, err
	}
	v.persist(v.planner.Snapshot())
	return v.line(row), []event.Event{v.dataChanged()}, nil
}

// QuickFill sets one week to a fraction of the monthly amount
func (v *PlannerView) QuickFill(name string, week int, action service.FillAction) (PlannerLine, []event.Event, error) {
	row, idx, err := v.resolve(name, week)
	if err != nil {
		return PlannerLine{}, nil, err
	}
	if _, err := v.planner.ApplyQuickFill(row.Name, idx, action, row.Monthly); err != nil {
		return PlannerLine{}, nil, err
	}
	v.persist(v.planner.Snapshot())
	return v.line(row), []event.Event{v.dataChanged()}, nil
}

// ResetWeek zeroes one week for every expense
func (v *PlannerView) ResetWeek(week int) ([]event.Event, error) {
	idx, err := domain.WeekIndex(week)
	if err != nil {
		return nil, err
	}
	if err := v.planner.ResetWeek(idx); err != nil {
		return nil, err
	}
	v.persist(v.planner.Snapshot())
	return []event.Event{v.dataChanged()}, nil
}

// ResetAllWeeks zeroes every week for every expense
func (v *PlannerView) ResetAllWeeks() []event.Event {
	v.planner.ResetAllWeeks()
	v.persist(v.planner.Snapshot())
	return []event.Event{v.dataChanged()}
}

// ResetStatuses clears every weekly paid and transferred flag
func (v *PlannerView) ResetStatuses() []event.Event {
	v.planner.ResetStatuses()
	v.persist(v.planner.Snapshot())
	return []event.Event{v.dataChanged()}
}

// ToggleStatus sets a weekly checkbox as a local user edit
func (v *PlannerView) ToggleStatus(name string, week int, statusType domain.StatusType, checked bool) (PlannerLine, []event.Event, error) {
	row, idx, err := v.resolve(name, week)
	if err != nil {
		return PlannerLine{}, nil, err
	}
	if err := v.planner.SetStatus(row.Name, idx, statusType, checked); err != nil {
		return PlannerLine{}, nil, err
	}
	v.persist(v.planner.Snapshot())

	events := []event.Event{
		event.StatusChanged{
			ExpenseID:   row.ExpenseID,
			ExpenseName: row.Name,
			Week:        week,
			StatusType:  statusType,
			Checked:     checked,
			Source:      domain.ViewPlanner,
		},
		v.dataChanged(),
	}
	return v.line(row), events, nil
}

// ApplyRemoteStatus applies a status change from an expense view to the event's
// week. Unknown names are ignored. It never publishes.
func (v *PlannerView) ApplyRemoteStatus(e event.StatusChanged) bool {
	if e.Source == domain.ViewPlanner {
		return false
	}
	idx, err := domain.WeekIndex(e.Week)
	if err != nil {
		return false
	}

	_, known := v.rowByName(e.ExpenseName)
	if _, hasEntry := v.planner.Entry(e.ExpenseName); !known && !hasEntry {
		log.Debug().
			Str("view", string(domain.ViewPlanner)).
			Str("expense_name", e.ExpenseName).
			Msg("Status change for unknown expense ignored")
		return false
	}

	entry, hasEntry := v.planner.Entry(e.ExpenseName)
	if hasEntry && entry.Status(e.StatusType, idx) == e.Checked {
		return true
	}
	if err := v.planner.SetStatus(e.ExpenseName, idx, e.StatusType, e.Checked); err != nil {
		return false
	}
	v.persist(v.planner.Snapshot())
	return true
}

// ApplyRemoteExpenseChange keeps the row index in step with the Monthly list
// without a full repopulation. The planner tracks monthly expenses only.
func (v *PlannerView) ApplyRemoteExpenseChange(e event.ExpenseChanged) bool {
	if e.Scope != domain.ScopeMonthly {
		return false
	}

	if e.Removed {
		row, ok := v.rows[e.ExpenseID]
		if !ok {
			return false
		}
		delete(v.rows, e.ExpenseID)
		if _, shared := v.rowByName(row.Name); !shared && v.planner.Remove(row.Name) {
			v.persist(v.planner.Snapshot())
		}
		return true
	}

	row, ok := v.rows[e.ExpenseID]
	if !ok {
		row = &PlannerRow{ExpenseID: e.ExpenseID}
		v.rows[e.ExpenseID] = row
	}

	oldName := row.Name
	if oldName == "" && e.Renamed() {
		oldName = e.PreviousName
	}
	if oldName != "" && oldName != e.Name {
		if _, shared := v.rowByNameExcept(oldName, e.ExpenseID); !shared {
			if !v.planner.Rename(oldName, e.Name) {
				log.Debug().
					Str("old_name", oldName).
					Str("new_name", e.Name).
					Msg("Planner entry not re-keyed, target name already tracked")
			}
		}
	}

	row.Category = e.Category
	row.Name = e.Name
	row.Monthly = e.Actual
	row.DueDate = e.DueDate

	v.planner.Distribute(row.Name, row.Monthly, row.DueDate)
	v.persist(v.planner.Snapshot())
	return true
}

func (v *PlannerView) resolve(name string, week int) (*PlannerRow, int, error) {
	idx, err := domain.WeekIndex(week)
	if err != nil {
		return nil, 0, err
	}
	row, ok := v.rowByName(name)
	if !ok {
		return nil, 0, domain.ErrPlannerEntryNotFound
	}
	return row, idx, nil
}

// rowByName returns the first row with the name in expense-id order, so the
// choice among duplicate names is stable
func (v *PlannerView) rowByName(name string) (*PlannerRow, bool) {
	return v.rowByNameExcept(name, "")
}

func (v *PlannerView) rowByNameExcept(name, exceptID string) (*PlannerRow, bool) {
	var found *PlannerRow
	for id, r := range v.rows {
		if id == exceptID || r.Name != name {
			continue
		}
		if found == nil || id < found.ExpenseID {
			found = r
		}
	}
	return found, found != nil
}

func (v *PlannerView) dataChanged() event.DataChanged {
	return event.DataChanged{Source: domain.ViewPlanner, Section: domain.SectionPlannerState}
}

var (
	_ event.StatusApplier        = (*PlannerView)(nil)
	_ event.ExpenseChangeApplier = (*PlannerView)(nil)
)
