package service

import (
	"sort"
	"strings"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// FundsAsideService computes how much money should sit in each funding account
// to cover expenses that are not yet paid
type FundsAsideService struct{}

// NewFundsAsideService creates a new FundsAsideService
func NewFundsAsideService() *FundsAsideService {
	return &FundsAsideService{}
}

// AccountFunds is one account's amount to set aside
type AccountFunds struct {
	Account string          `json:"account"`
	Amount  decimal.Decimal `json:"amount"`
}

// FundsAsideSummary holds funds aside per account for both scopes and combined.
// Annual amounts are already normalised to a monthly figure.
type FundsAsideSummary struct {
	Monthly  map[string]decimal.Decimal `json:"monthly"`
	Annual   map[string]decimal.Decimal `json:"annual"`
	Combined map[string]decimal.Decimal `json:"combined"`
}

// Compute returns the amount to set aside per account. Paid expenses, expenses
// without a real account and expenses with no projected amount are skipped. Annual
// amounts are divided by twelve before summing. Accounts totalling exactly zero are
// omitted; a sub-cent total is kept even though it rounds to 0.00.
func (s *FundsAsideService) Compute(expenses []*domain.Expense, scope domain.Scope) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)

	for _, e := range expenses {
		if e == nil || e.Paid {
			continue
		}
		if domain.NoAccount(e.Account) {
			continue
		}
		if !e.Projected.IsPositive() {
			continue
		}

		amount := e.Projected.Mul(e.TransferStatus.Multiplier())
		if scope == domain.ScopeAnnual {
			amount = amount.Div(monthsPerYear)
		}

		account := strings.TrimSpace(e.Account)
		if current, ok := totals[account]; ok {
			totals[account] = current.Add(amount)
		} else {
			totals[account] = amount
		}
	}

	result := make(map[string]decimal.Decimal, len(totals))
	for account, total := range totals {
		if total.IsZero() {
			continue
		}
		result[account] = total.Round(2)
	}
	return result
}

// Summarize computes both scopes and their per-account sum
func (s *FundsAsideService) Summarize(monthly, annual []*domain.Expense) *FundsAsideSummary {
	summary := &FundsAsideSummary{
		Monthly:  s.Compute(monthly, domain.ScopeMonthly),
		Annual:   s.Compute(annual, domain.ScopeAnnual),
		Combined: make(map[string]decimal.Decimal),
	}

	for _, part := range []map[string]decimal.Decimal{summary.Monthly, summary.Annual} {
		for account, amount := range part {
			summary.Combined[account] = summary.Combined[account].Add(amount)
		}
	}
	return summary
}

// Sorted returns the per-account map as a list ordered by account name
func Sorted(funds map[string]decimal.Decimal) []AccountFunds {
	out := make([]AccountFunds, 0, len(funds))
	for account, amount := range funds {
		out = append(out, AccountFunds{Account: account, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Account < out[j].Account
	})
	return out
}
