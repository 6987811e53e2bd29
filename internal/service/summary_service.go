package service

import (
	"sort"
	"time"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/dafibh/homebudget/homebudget-backend/internal/util"
	"github.com/shopspring/decimal"
)

// DefaultUpcomingDays is the look-ahead window for upcoming expenses
const DefaultUpcomingDays = 14

// SummaryService derives totals and schedules from the expense lists. Nothing it
// returns is stored; every call recomputes from the source lists.
type SummaryService struct {
	now func() time.Time
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(now func() time.Time) *SummaryService {
	if now == nil {
		now = time.Now
	}
	return &SummaryService{now: now}
}

// CategoryTotal is one category's totals
type CategoryTotal struct {
	Category  string          `json:"category"`
	Projected decimal.Decimal `json:"projected"`
	Actual    decimal.Decimal `json:"actual"`
}

// BudgetSummary is the dashboard view of the whole budget
type BudgetSummary struct {
	IncomeProjected         decimal.Decimal `json:"incomeProjected"`
	IncomeActual            decimal.Decimal `json:"incomeActual"`
	MonthlyTotal            decimal.Decimal `json:"monthlyTotal"`
	AnnualTotal             decimal.Decimal `json:"annualTotal"`
	AnnualMonthlyEquivalent decimal.Decimal `json:"annualMonthlyEquivalent"`
	MonthlyOutflow          decimal.Decimal `json:"monthlyOutflow"`
	Leftover                decimal.Decimal `json:"leftover"`
	MonthlyCategories       []CategoryTotal `json:"monthlyCategories"`
	AnnualCategories        []CategoryTotal `json:"annualCategories"`
}

// Summarize builds the budget summary
func (s *SummaryService) Summarize(income []*domain.IncomeSource, monthly, annual *ExpenseStore) *BudgetSummary {
	summary := &BudgetSummary{
		IncomeProjected:         decimal.Zero,
		IncomeActual:            decimal.Zero,
		MonthlyTotal:            monthly.GrandTotal(),
		AnnualTotal:             annual.GrandTotal(),
		AnnualMonthlyEquivalent: annual.MonthlyEquivalent(),
		MonthlyCategories:       categoryTotals(monthly),
		AnnualCategories:        categoryTotals(annual),
	}

	for _, inc := range income {
		summary.IncomeProjected = summary.IncomeProjected.Add(inc.Projected)
		summary.IncomeActual = summary.IncomeActual.Add(inc.Actual)
	}

	summary.MonthlyOutflow = summary.MonthlyTotal.Add(summary.AnnualMonthlyEquivalent)
	summary.Leftover = summary.IncomeActual.Sub(summary.MonthlyOutflow)
	return summary
}

func categoryTotals(store *ExpenseStore) []CategoryTotal {
	keys := store.Categories()
	totals := make([]CategoryTotal, 0, len(keys))
	for _, key := range keys {
		totals = append(totals, CategoryTotal{
			Category:  key,
			Projected: store.TotalProjected(key),
			Actual:    store.TotalActual(key),
		})
	}
	return totals
}

// UpcomingExpense is an unpaid expense due soon
type UpcomingExpense struct {
	Scope    domain.Scope    `json:"scope"`
	Category string          `json:"category"`
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	DueDate  string          `json:"dueDate"`
	DaysLeft int             `json:"daysLeft"`
	Amount   decimal.Decimal `json:"amount"`
}

// Upcoming lists unpaid expenses due within the given number of days, soonest first.
// Monthly expenses recur on their day of month; annual ones on their month and day.
func (s *SummaryService) Upcoming(monthly, annual *ExpenseStore, days int) []UpcomingExpense {
	if days <= 0 {
		days = DefaultUpcomingDays
	}
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	horizon := today.AddDate(0, 0, days)

	var result []UpcomingExpense
	collect := func(store *ExpenseStore, next func(due time.Time) time.Time) {
		for _, key := range store.Categories() {
			for _, e := range store.List(key) {
				if e.Paid {
					continue
				}
				due, ok := e.DueDate()
				if !ok {
					continue
				}
				occurrence := next(due)
				if occurrence.After(horizon) {
					continue
				}
				amount := e.Projected
				if amount.IsZero() {
					amount = e.Actual
				}
				result = append(result, UpcomingExpense{
					Scope:    store.Scope(),
					Category: key,
					ID:       e.ID,
					Name:     e.Name,
					DueDate:  occurrence.Format("2006-01-02"),
					DaysLeft: int(occurrence.Sub(today).Hours() / 24),
					Amount:   amount,
				})
			}
		}
	}

	collect(monthly, func(due time.Time) time.Time {
		candidate := util.CalculateActualDate(today.Year(), today.Month(), due.Day())
		if candidate.Before(today) {
			next := today.AddDate(0, 1, -today.Day()+1)
			candidate = util.CalculateActualDate(next.Year(), next.Month(), due.Day())
		}
		return candidate
	})
	collect(annual, func(due time.Time) time.Time {
		return util.NextOccurrence(due, today)
	})

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DaysLeft < result[j].DaysLeft
	})
	return result
}

// SavingsPlanItem is the monthly saving still needed for one annual expense
type SavingsPlanItem struct {
	Category        string          `json:"category"`
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Account         string          `json:"account"`
	NextDue         string          `json:"nextDue"`
	MonthsLeft      int             `json:"monthsLeft"`
	Projected       decimal.Decimal `json:"projected"`
	SetAside        decimal.Decimal `json:"setAside"`
	MonthlyRequired decimal.Decimal `json:"monthlyRequired"`
}

// SavingsPlan spreads what is not yet set aside for each unpaid, dated annual
// expense over the months left until it is due
func (s *SummaryService) SavingsPlan(annual *ExpenseStore) []SavingsPlanItem {
	now := s.now().UTC()

	var plan []SavingsPlanItem
	for _, key := range annual.Categories() {
		for _, e := range annual.List(key) {
			if e.Paid || !e.Projected.IsPositive() {
				continue
			}
			due, ok := e.DueDate()
			if !ok {
				continue
			}
			next := util.NextOccurrence(due, now)
			months := util.MonthsUntil(now, next)
			setAside := e.Projected.Mul(e.TransferStatus.Multiplier()).Round(2)
			outstanding := e.Projected.Sub(setAside)
			if outstanding.IsNegative() {
				outstanding = decimal.Zero
			}

			plan = append(plan, SavingsPlanItem{
				Category:        key,
				ID:              e.ID,
				Name:            e.Name,
				Account:         e.Account,
				NextDue:         next.Format("2006-01-02"),
				MonthsLeft:      months,
				Projected:       e.Projected,
				SetAside:        setAside,
				MonthlyRequired: outstanding.Div(decimal.NewFromInt(int64(months))).Round(2),
			})
		}
	}

	sort.SliceStable(plan, func(i, j int) bool {
		return plan[i].NextDue < plan[j].NextDue
	})
	return plan
}
