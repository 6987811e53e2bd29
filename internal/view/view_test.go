package view

import (
	"testing"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/dafibh/homebudget/homebudget-backend/internal/event"
	"github.com/dafibh/homebudget/homebudget-backend/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func week(n int) WeekFunc {
	return func() int { return n }
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func monthlyFixture() domain.CategoryMap {
	return domain.CategoryMap{
		"food": {
			{ID: "food-123", Name: "Groceries", Date: "2026-10-10", Account: "Checking", Projected: dec("400"), Actual: dec("380"), TransferStatus: domain.TransferNone},
		},
		"housing": {
			{ID: "housing-1", Name: "Rent", Date: "2026-10-01", Account: "Checking", Projected: dec("1000"), Actual: dec("1000"), TransferStatus: domain.TransferHalf},
		},
	}
}

func TestExpenseView_SaveExpense_New(t *testing.T) {
	var persisted domain.CategoryMap
	v := NewMonthlyView(domain.CategoryMap{}, func(cm domain.CategoryMap) { persisted = cm }, week(2))

	saved, events, err := v.SaveExpense("utilities", &domain.Expense{Name: " Power ", Projected: dec("90"), Actual: dec("85.5")})
	require.NoError(t, err)

	assert.Equal(t, "Power", saved.Name)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, domain.TransferNone, saved.TransferStatus)
	require.Len(t, persisted["utilities"], 1)

	require.Len(t, events, 2)
	changed, ok := events[0].(event.ExpenseChanged)
	require.True(t, ok)
	assert.Equal(t, event.KindMonthlyExpenseChanged, changed.Kind())
	assert.Equal(t, saved.ID, changed.ExpenseID)
	assert.True(t, changed.Actual.Equal(dec("85.5")))
	assert.Equal(t, event.KindDataChanged, events[1].Kind())
}

func TestExpenseView_SaveExpense_Validation(t *testing.T) {
	v := NewMonthlyView(domain.CategoryMap{}, nil, week(1))

	_, _, err := v.SaveExpense("food", &domain.Expense{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrNameRequired)

	_, _, err = v.SaveExpense("", &domain.Expense{Name: "Snacks"})
	assert.ErrorIs(t, err, domain.ErrCategoryRequired)

	_, _, err = v.SaveExpense("food", &domain.Expense{Name: "Snacks", Actual: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestExpenseView_SaveExpense_UnchangedAmountOnlyDataChanged(t *testing.T) {
	v := NewMonthlyView(monthlyFixture(), nil, week(1))

	_, events, err := v.SaveExpense("food", &domain.Expense{ID: "food-123", Name: "Groceries", Date: "2026-10-10", Account: "Savings", Projected: dec("400"), Actual: dec("380")})
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, event.KindDataChanged, events[0].Kind())
}

func TestExpenseView_SaveExpense_RenameCarriesPreviousName(t *testing.T) {
	v := NewMonthlyView(monthlyFixture(), nil, week(1))

	_, events, err := v.SaveExpense("food", &domain.Expense{ID: "food-123", Name: "Food shop", Projected: dec("400"), Actual: dec("380")})
	require.NoError(t, err)

	changed := events[0].(event.ExpenseChanged)
	assert.Equal(t, "Groceries", changed.PreviousName)
	assert.True(t, changed.Renamed())
}

func TestExpenseView_DeleteExpense(t *testing.T) {
	v := NewMonthlyView(monthlyFixture(), nil, week(1))

	removed, events, err := v.DeleteExpense("food", "food-123")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", removed.Name)
	assert.True(t, events[0].(event.ExpenseChanged).Removed)

	_, _, err = v.DeleteExpense("food", "food-123")
	assert.ErrorIs(t, err, domain.ErrExpenseNotFound)
}

func TestExpenseView_ToggleStatus_StampsCurrentWeek(t *testing.T) {
	v := NewMonthlyView(monthlyFixture(), nil, week(3))

	expense, events, err := v.ToggleStatus("food", "food-123", domain.StatusPaid, true)
	require.NoError(t, err)
	assert.True(t, expense.Paid)

	sc := events[0].(event.StatusChanged)
	assert.Equal(t, "Groceries", sc.ExpenseName)
	assert.Equal(t, 3, sc.Week)
	assert.Equal(t, domain.ViewMonthly, sc.Source)
	assert.Equal(t, event.KindMonthlyStatusChanged, sc.Kind())
}

func TestExpenseView_SetTransferStatus(t *testing.T) {
	v := NewMonthlyView(monthlyFixture(), nil, week(1))

	expense, _, err := v.SetTransferStatus("housing", "housing-1", domain.TransferFull)
	require.NoError(t, err)
	assert.Equal(t, domain.TransferFull, expense.TransferStatus)

	_, _, err = v.SetTransferStatus("housing", "housing-1", "most")
	assert.ErrorIs(t, err, domain.ErrInvalidTransfer)
}

func TestExpenseView_ApplyRemoteStatus(t *testing.T) {
	saves := 0
	annual := NewAnnualView(domain.CategoryMap{
		"food": {{ID: "food-9", Name: "Groceries", Projected: dec("1200"), Actual: dec("1200")}},
	}, func(domain.CategoryMap) { saves++ }, week(3))

	e := event.StatusChanged{ExpenseName: "Groceries", Week: 3, StatusType: domain.StatusPaid, Checked: true, Source: domain.ViewMonthly}

	assert.True(t, annual.ApplyRemoteStatus(e))
	_, got, _ := annual.Store().FindByName("Groceries")
	assert.True(t, got.Paid)
	assert.Equal(t, 1, saves)

	// Applying the same event again leaves state unchanged
	assert.True(t, annual.ApplyRemoteStatus(e))
	assert.True(t, got.Paid)
	assert.Equal(t, 1, saves)
}

func TestExpenseView_ApplyRemoteStatus_PlannerWeekMustMatch(t *testing.T) {
	v := NewMonthlyView(monthlyFixture(), nil, week(2))

	other := event.StatusChanged{ExpenseName: "Rent", Week: 4, StatusType: domain.StatusTransferred, Checked: true, Source: domain.ViewPlanner}
	assert.False(t, v.ApplyRemoteStatus(other))

	current := other
	current.Week = 2
	assert.True(t, v.ApplyRemoteStatus(current))

	_, rent, _ := v.Store().FindByName("Rent")
	assert.True(t, rent.Transferred)
}

func TestExpenseView_ApplyRemoteStatus_UnknownName(t *testing.T) {
	v := NewMonthlyView(monthlyFixture(), nil, week(1))
	assert.False(t, v.ApplyRemoteStatus(event.StatusChanged{ExpenseName: "Gym", Week: 1, StatusType: domain.StatusPaid, Checked: true, Source: domain.ViewAnnual}))
}

func TestMonthlyView_ResetStatuses(t *testing.T) {
	cm := monthlyFixture()
	cm["food"][0].Paid = true
	cm["housing"][0].Transferred = true
	v := NewMonthlyView(cm, nil, week(1))

	v.ResetStatuses()

	for _, e := range v.Store().All() {
		assert.False(t, e.Paid)
		assert.False(t, e.Transferred)
	}
	_, rent, _ := v.Store().FindByName("Rent")
	assert.Equal(t, domain.TransferHalf, rent.TransferStatus)
}

func TestAnnualView_MonthlyEquivalent(t *testing.T) {
	v := NewAnnualView(domain.CategoryMap{
		"insurance": {{ID: "i-1", Name: "Car", Actual: dec("600")}, {ID: "i-2", Name: "Home", Actual: dec("600")}},
	}, nil, week(1))

	assert.True(t, v.MonthlyEquivalent().Equal(dec("100")))
	assert.Equal(t, domain.TransferFull, v.Store().List("insurance")[0].TransferStatus)
}

func newPopulatedPlanner(t *testing.T, current int) (*PlannerView, *MonthlyView) {
	t.Helper()
	monthly := NewMonthlyView(monthlyFixture(), nil, week(current))
	planner := NewPlannerView(map[string]*domain.PlannerEntry{}, nil, week(current))
	require.True(t, planner.Populate(monthly.Store()), "entries created for unplanned expenses")
	return planner, monthly
}

func TestPlannerView_Populate_ReportsCreatedEntries(t *testing.T) {
	planner, monthly := newPopulatedPlanner(t, 1)

	// Every expense already has an entry
	planner.Replace(planner.Entries())
	assert.False(t, planner.Populate(monthly.Store()))
}

func TestExpenseView_Replace_ReportsNormalization(t *testing.T) {
	v := NewMonthlyView(domain.CategoryMap{}, nil, week(1))

	assert.True(t, v.Replace(domain.CategoryMap{"food": {{Name: "Bread", Actual: dec("5")}}}), "id and transfer status assigned")
	assert.False(t, v.Replace(v.Store().Snapshot()))
}

func TestPlannerView_Populate_DefaultDistribution(t *testing.T) {
	planner, _ := newPopulatedPlanner(t, 1)

	line, ok := planner.Line("Groceries")
	require.True(t, ok)
	// Due on the 10th, so the whole actual amount lands in week 2
	assert.True(t, line.Weeks[1].Equal(dec("380")))
	assert.True(t, line.Remaining.IsZero())

	rent, ok := planner.Line("Rent")
	require.True(t, ok)
	assert.True(t, rent.Weeks[0].Equal(dec("1000")))

	assert.Len(t, planner.Lines(), 2)
	assert.Equal(t, "food", planner.Lines()[0].Category)
}

func TestPlannerView_NewExpenseDueInWeekTwo(t *testing.T) {
	planner := NewPlannerView(nil, nil, week(1))

	applied := planner.ApplyRemoteExpenseChange(event.ExpenseChanged{
		Scope: domain.ScopeMonthly, Category: "bills", ExpenseID: "bills-1", Name: "Internet", Actual: dec("300"), DueDate: "2026-10-09",
	})
	require.True(t, applied)

	line, _ := planner.Line("Internet")
	want := []string{"0", "300", "0", "0", "0"}
	for i, w := range want {
		assert.True(t, line.Weeks[i].Equal(dec(w)), "week %d", i+1)
	}
	assert.True(t, line.Remaining.IsZero())
}

func TestPlannerView_RecordWeekEditAndRemaining(t *testing.T) {
	var persisted map[string]*domain.PlannerEntry
	monthly := NewMonthlyView(monthlyFixture(), nil, week(1))
	planner := NewPlannerView(nil, func(m map[string]*domain.PlannerEntry) { persisted = m }, week(1))
	planner.Populate(monthly.Store())

	line, events, err := planner.RecordWeekEdit("Groceries", 2, dec("200"))
	require.NoError(t, err)
	assert.True(t, line.Remaining.Equal(dec("180")))
	assert.Equal(t, event.KindDataChanged, events[0].Kind())
	require.NotNil(t, persisted["Groceries"])

	line, _, err = planner.RecordWeekEdit("Groceries", 3, dec("250"))
	require.NoError(t, err)
	assert.True(t, line.Remaining.Equal(dec("-70")), "over-allocation is negative")

	_, _, err = planner.RecordWeekEdit("Groceries", 6, dec("1"))
	assert.ErrorIs(t, err, domain.ErrInvalidWeek)

	_, _, err = planner.RecordWeekEdit("Unknown", 1, dec("1"))
	assert.ErrorIs(t, err, domain.ErrPlannerEntryNotFound)
}

func TestPlannerView_QuickFill(t *testing.T) {
	planner, _ := newPopulatedPlanner(t, 1)

	line, _, err := planner.QuickFill("Rent", 3, service.FillQuarter)
	require.NoError(t, err)
	assert.True(t, line.Weeks[2].Equal(dec("250")))

	_, _, err = planner.QuickFill("Rent", 3, "double")
	assert.ErrorIs(t, err, domain.ErrInvalidFillAction)
}

func TestPlannerView_ResetWeeks(t *testing.T) {
	planner, _ := newPopulatedPlanner(t, 1)
	_, _, err := planner.ToggleStatus("Rent", 1, domain.StatusPaid, true)
	require.NoError(t, err)

	_, err = planner.ResetWeek(1)
	require.NoError(t, err)
	rent, _ := planner.Line("Rent")
	assert.True(t, rent.Weeks[0].IsZero())
	assert.True(t, rent.Paid[0], "resetting weeks keeps statuses")

	planner.ResetAllWeeks()
	groceries, _ := planner.Line("Groceries")
	assert.True(t, groceries.Weeks[1].IsZero())
	assert.True(t, groceries.Remaining.Equal(dec("380")))

	planner.ResetStatuses()
	rent, _ = planner.Line("Rent")
	assert.False(t, rent.Paid[0])
}

func TestPlannerView_ToggleStatus(t *testing.T) {
	planner, _ := newPopulatedPlanner(t, 2)

	_, events, err := planner.ToggleStatus("Groceries", 2, domain.StatusTransferred, true)
	require.NoError(t, err)

	sc := events[0].(event.StatusChanged)
	assert.Equal(t, event.KindPlannerStatusChanged, sc.Kind())
	assert.Equal(t, "food-123", sc.ExpenseID)
	assert.Equal(t, 2, sc.Week)
}

func TestPlannerView_ApplyRemoteStatus(t *testing.T) {
	planner, _ := newPopulatedPlanner(t, 3)

	e := event.StatusChanged{ExpenseID: "food-123", ExpenseName: "Groceries", Week: 3, StatusType: domain.StatusPaid, Checked: true, Source: domain.ViewMonthly}
	assert.True(t, planner.ApplyRemoteStatus(e))
	assert.True(t, planner.ApplyRemoteStatus(e))

	line, _ := planner.Line("Groceries")
	assert.Equal(t, [domain.WeeksPerMonth]bool{false, false, true, false, false}, line.Paid)

	assert.False(t, planner.ApplyRemoteStatus(event.StatusChanged{ExpenseName: "Gym", Week: 3, StatusType: domain.StatusPaid, Checked: true, Source: domain.ViewMonthly}))
	assert.False(t, planner.ApplyRemoteStatus(event.StatusChanged{ExpenseName: "Groceries", Week: 0, StatusType: domain.StatusPaid, Checked: true, Source: domain.ViewMonthly}))
}

func TestPlannerView_RenameRekeysEntry(t *testing.T) {
	planner, _ := newPopulatedPlanner(t, 1)
	_, _, err := planner.RecordWeekEdit("Groceries", 4, dec("80"))
	require.NoError(t, err)

	applied := planner.ApplyRemoteExpenseChange(event.ExpenseChanged{
		Scope: domain.ScopeMonthly, Category: "food", ExpenseID: "food-123", Name: "Food shop", PreviousName: "Groceries", Actual: dec("380"), DueDate: "2026-10-10",
	})
	require.True(t, applied)

	_, stillOld := planner.Line("Groceries")
	assert.False(t, stillOld)

	line, ok := planner.Line("Food shop")
	require.True(t, ok)
	assert.True(t, line.Weeks[3].Equal(dec("80")), "edits survive the rename")

	entries := planner.Entries()
	assert.Contains(t, entries, "Food shop")
	assert.NotContains(t, entries, "Groceries")
}

func TestPlannerView_AmountChangeKeepsWeeks(t *testing.T) {
	planner, _ := newPopulatedPlanner(t, 1)

	planner.ApplyRemoteExpenseChange(event.ExpenseChanged{
		Scope: domain.ScopeMonthly, Category: "food", ExpenseID: "food-123", Name: "Groceries", PreviousName: "Groceries", Actual: dec("500"), DueDate: "2026-10-10",
	})

	line, _ := planner.Line("Groceries")
	assert.True(t, line.Monthly.Equal(dec("500")))
	assert.True(t, line.Weeks[1].Equal(dec("380")))
	assert.True(t, line.Remaining.Equal(dec("120")))
}

func TestPlannerView_RemovalCascade(t *testing.T) {
	planner, _ := newPopulatedPlanner(t, 1)

	assert.True(t, planner.ApplyRemoteExpenseChange(event.ExpenseChanged{Scope: domain.ScopeMonthly, ExpenseID: "housing-1", Name: "Rent", Removed: true}))

	_, ok := planner.Line("Rent")
	assert.False(t, ok)
	assert.NotContains(t, planner.Entries(), "Rent")

	assert.False(t, planner.ApplyRemoteExpenseChange(event.ExpenseChanged{Scope: domain.ScopeMonthly, ExpenseID: "housing-1", Name: "Rent", Removed: true}))
}

func TestPlannerView_IgnoresAnnualChanges(t *testing.T) {
	planner, _ := newPopulatedPlanner(t, 1)
	assert.False(t, planner.ApplyRemoteExpenseChange(event.ExpenseChanged{Scope: domain.ScopeAnnual, ExpenseID: "a-1", Name: "Insurance"}))
	assert.Len(t, planner.Lines(), 2)
}
