package view

import (
	"strings"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/dafibh/homebudget/homebudget-backend/internal/event"
	"github.com/dafibh/homebudget/homebudget-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// WeekFunc returns the current budget week (1-5)
type WeekFunc func() int

// expenseView is the state shared by the Monthly and Annual pages: an exclusively
// owned expense store plus a persist hook. Local methods return the events the
// caller must publish; remote appliers return only whether anything matched.
type expenseView struct {
	view        domain.View
	store       *service.ExpenseStore
	persist     func(domain.CategoryMap)
	currentWeek WeekFunc
}

func newExpenseView(v domain.View, scope domain.Scope, categories domain.CategoryMap, persist func(domain.CategoryMap), currentWeek WeekFunc) expenseView {
	if persist == nil {
		persist = func(domain.CategoryMap) {}
	}
	return expenseView{
		view:        v,
		store:       service.NewExpenseStore(scope, categories),
		persist:     persist,
		currentWeek: currentWeek,
	}
}

// Name returns the view name
func (v *expenseView) Name() domain.View {
	return v.view
}

// Store exposes the view's expense store for reads
func (v *expenseView) Store() *service.ExpenseStore {
	return v.store
}

// Replace reloads the view from persisted data without persisting or publishing.
// It reports whether the records were normalized on the way in.
func (v *expenseView) Replace(categories domain.CategoryMap) bool {
	return v.store.Replace(categories)
}

// SaveExpense validates and upserts an expense. The returned events describe the
// change for the planner and for listeners.
func (v *expenseView) SaveExpense(categoryKey string, expense *domain.Expense) (*domain.Expense, []event.Event, error) {
	expense.Name = strings.TrimSpace(expense.Name)
	if expense.Name == "" {
		return nil, nil, domain.ErrNameRequired
	}
	if len(expense.Name) > domain.MaxExpenseNameLength {
		return nil, nil, domain.ErrNameTooLong
	}
	if len(strings.TrimSpace(categoryKey)) > domain.MaxCategoryKeyLength {
		return nil, nil, domain.ErrInvalidInput
	}
	if len(expense.Link) > domain.MaxExpenseLinkLength {
		return nil, nil, domain.ErrInvalidInput
	}

	var previous *domain.Expense
	if expense.ID != "" {
		if existing, err := v.store.Get(strings.TrimSpace(categoryKey), expense.ID); err == nil {
			previous = existing.Clone()
		}
	}

	saved, created, err := v.store.Upsert(categoryKey, expense)
	if err != nil {
		return nil, nil, err
	}
	v.persist(v.store.Snapshot())

	category := strings.TrimSpace(categoryKey)
	changed := event.ExpenseChanged{
		Scope:     v.store.Scope(),
		Category:  category,
		ExpenseID: saved.ID,
		Name:      saved.Name,
		Actual:    saved.Actual,
		DueDate:   saved.Date,
	}
	if previous != nil {
		changed.PreviousName = previous.Name
	}

	events := []event.Event{}
	if created || previous == nil || previous.Name != saved.Name || !previous.Actual.Equal(saved.Actual) || previous.Date != saved.Date {
		events = append(events, changed)
	}
	for _, statusType := range []domain.StatusType{domain.StatusPaid, domain.StatusTransferred} {
		was := previous != nil && previous.Status(statusType)
		if saved.Status(statusType) == was {
			continue
		}
		events = append(events, event.StatusChanged{
			ExpenseID:   saved.ID,
			ExpenseName: saved.Name,
			Week:        v.currentWeek(),
			StatusType:  statusType,
			Checked:     saved.Status(statusType),
			Source:      v.view,
		})
	}
	events = append(events, v.dataChanged(category))

	return saved, events, nil
}

// DeleteExpense removes an expense. The removal event lets the planner drop the
// matching entry.
func (v *expenseView) DeleteExpense(categoryKey, id string) (*domain.Expense, []event.Event, error) {
	removed, err := v.store.Remove(categoryKey, id)
	if err != nil {
		return nil, nil, err
	}
	v.persist(v.store.Snapshot())

	events := []event.Event{
		event.ExpenseChanged{
			Scope:     v.store.Scope(),
			Category:  categoryKey,
			ExpenseID: removed.ID,
			Name:      removed.Name,
			Actual:    removed.Actual,
			Removed:   true,
		},
		v.dataChanged(categoryKey),
	}
	return removed, events, nil
}

// SetTransferStatus changes the graduated transfer indicator of one expense
func (v *expenseView) SetTransferStatus(categoryKey, id string, status domain.TransferStatus) (*domain.Expense, []event.Event, error) {
	if !status.IsValid() {
		return nil, nil, domain.ErrInvalidTransfer
	}
	expense, err := v.store.Get(categoryKey, id)
	if err != nil {
		return nil, nil, err
	}
	expense.TransferStatus = status
	v.persist(v.store.Snapshot())
	return expense, []event.Event{v.dataChanged(categoryKey)}, nil
}

// ToggleStatus sets paid or transferred on one expense as a local user edit. The
// status event is stamped with the current budget week.
func (v *expenseView) ToggleStatus(categoryKey, id string, statusType domain.StatusType, checked bool) (*domain.Expense, []event.Event, error) {
	if !statusType.IsValid() {
		return nil, nil, domain.ErrInvalidStatusType
	}
	expense, err := v.store.Get(categoryKey, id)
	if err != nil {
		return nil, nil, err
	}
	expense.SetStatus(statusType, checked)
	v.persist(v.store.Snapshot())

	events := []event.Event{
		event.StatusChanged{
			ExpenseID:   expense.ID,
			ExpenseName: expense.Name,
			Week:        v.currentWeek(),
			StatusType:  statusType,
			Checked:     checked,
			Source:      v.view,
		},
		v.dataChanged(categoryKey),
	}
	return expense, events, nil
}

// ApplyRemoteStatus applies a status change made in another view. Expenses are
// matched by name; planner changes apply only to the current budget week. It never
// publishes.
func (v *expenseView) ApplyRemoteStatus(e event.StatusChanged) bool {
	if e.Source == v.view {
		return false
	}
	if e.Source == domain.ViewPlanner && e.Week != v.currentWeek() {
		return false
	}

	_, expense, ok := v.store.FindByName(e.ExpenseName)
	if !ok {
		log.Debug().
			Str("view", string(v.view)).
			Str("expense_name", e.ExpenseName).
			Msg("Status change for unknown expense ignored")
		return false
	}

	if expense.Status(e.StatusType) != e.Checked {
		expense.SetStatus(e.StatusType, e.Checked)
		v.persist(v.store.Snapshot())
	}
	return true
}

func (v *expenseView) dataChanged(category string) event.DataChanged {
	return event.DataChanged{
		Source:   v.view,
		Section:  string(v.store.Scope()),
		Category: category,
	}
}
