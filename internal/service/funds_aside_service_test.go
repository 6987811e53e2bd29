package service

import (
	"testing"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/shopspring/decimal"
)

func TestFundsAside_MonthlyHalfTransfer(t *testing.T) {
	svc := NewFundsAsideService()

	expenses := []*domain.Expense{
		{Name: "Rent", Projected: decimal.NewFromInt(1000), TransferStatus: domain.TransferHalf, Account: "Checking"},
	}

	result := svc.Compute(expenses, domain.ScopeMonthly)

	if len(result) != 1 {
		t.Fatalf("Expected 1 account, got %d", len(result))
	}
	if !result["Checking"].Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected Checking 500, got %s", result["Checking"].String())
	}
}

func TestFundsAside_PaidExpenseOmitted(t *testing.T) {
	svc := NewFundsAsideService()

	expenses := []*domain.Expense{
		{Name: "Rent", Projected: decimal.NewFromInt(1000), TransferStatus: domain.TransferHalf, Account: "Checking", Paid: true},
	}

	result := svc.Compute(expenses, domain.ScopeMonthly)

	if len(result) != 0 {
		t.Errorf("Expected no accounts, got %v", result)
	}
}

func TestFundsAside_AnnualDividedByTwelve(t *testing.T) {
	svc := NewFundsAsideService()

	expenses := []*domain.Expense{
		{Name: "Insurance", Projected: decimal.NewFromInt(1200), TransferStatus: domain.TransferFull, Account: "Savings"},
	}

	result := svc.Compute(expenses, domain.ScopeAnnual)

	if !result["Savings"].Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected Savings 100, got %s", result["Savings"].String())
	}
}

func TestFundsAside_PaidExcludedRegardlessOfStatus(t *testing.T) {
	svc := NewFundsAsideService()

	for _, status := range []domain.TransferStatus{domain.TransferNone, domain.TransferQuarter, domain.TransferHalf, domain.TransferFull, "bogus"} {
		for _, projected := range []string{"0", "0.01", "99.99", "100000"} {
			expenses := []*domain.Expense{
				{Name: "Paid", Projected: decimal.RequireFromString(projected), TransferStatus: status, Account: "Checking", Paid: true},
				{Name: "Open", Projected: decimal.NewFromInt(40), TransferStatus: domain.TransferFull, Account: "Checking"},
			}
			for _, scope := range []domain.Scope{domain.ScopeMonthly, domain.ScopeAnnual} {
				got := svc.Compute(expenses, scope)
				want := svc.Compute(expenses[1:], scope)
				if !got["Checking"].Equal(want["Checking"]) {
					t.Errorf("status=%s projected=%s scope=%s: paid expense contributed, got %s want %s",
						status, projected, scope, got["Checking"], want["Checking"])
				}
			}
		}
	}
}

func TestFundsAside_Exclusions(t *testing.T) {
	svc := NewFundsAsideService()

	expenses := []*domain.Expense{
		{Name: "No account", Projected: decimal.NewFromInt(100), TransferStatus: domain.TransferFull, Account: ""},
		{Name: "None", Projected: decimal.NewFromInt(100), TransferStatus: domain.TransferFull, Account: "None"},
		{Name: "Split", Projected: decimal.NewFromInt(100), TransferStatus: domain.TransferFull, Account: "Split"},
		{Name: "TBD", Projected: decimal.NewFromInt(100), TransferStatus: domain.TransferFull, Account: " TBD "},
		{Name: "Zero", Projected: decimal.Zero, TransferStatus: domain.TransferFull, Account: "Checking"},
		{Name: "Nothing moved", Projected: decimal.NewFromInt(100), TransferStatus: domain.TransferNone, Account: "Savings"},
		nil,
	}

	result := svc.Compute(expenses, domain.ScopeMonthly)

	if len(result) != 0 {
		t.Errorf("Expected no accounts, got %v", result)
	}
}

func TestFundsAside_SumsAndRoundsPerAccount(t *testing.T) {
	svc := NewFundsAsideService()

	expenses := []*domain.Expense{
		{Name: "A", Projected: decimal.NewFromInt(100), TransferStatus: domain.TransferQuarter, Account: "Checking"},
		{Name: "B", Projected: decimal.NewFromInt(10), TransferStatus: domain.TransferFull, Account: "Checking"},
		{Name: "C", Projected: decimal.NewFromInt(100), TransferStatus: domain.TransferFull, Account: "Savings"},
	}

	result := svc.Compute(expenses, domain.ScopeAnnual)

	// (25 + 10) / 12 = 2.9166...
	if !result["Checking"].Equal(decimal.RequireFromString("2.92")) {
		t.Errorf("Expected Checking 2.92, got %s", result["Checking"].String())
	}
	if !result["Savings"].Equal(decimal.RequireFromString("8.33")) {
		t.Errorf("Expected Savings 8.33, got %s", result["Savings"].String())
	}
}

func TestFundsAside_Summarize(t *testing.T) {
	svc := NewFundsAsideService()

	monthly := []*domain.Expense{
		{Name: "Rent", Projected: decimal.NewFromInt(1000), TransferStatus: domain.TransferHalf, Account: "Checking"},
	}
	annual := []*domain.Expense{
		{Name: "Insurance", Projected: decimal.NewFromInt(1200), TransferStatus: domain.TransferFull, Account: "Checking"},
		{Name: "Holiday", Projected: decimal.NewFromInt(2400), TransferStatus: domain.TransferHalf, Account: "Savings"},
	}

	summary := svc.Summarize(monthly, annual)

	if !summary.Combined["Checking"].Equal(decimal.NewFromInt(600)) {
		t.Errorf("Expected combined Checking 600, got %s", summary.Combined["Checking"].String())
	}
	if !summary.Combined["Savings"].Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected combined Savings 100, got %s", summary.Combined["Savings"].String())
	}

	sorted := Sorted(summary.Combined)
	if len(sorted) != 2 || sorted[0].Account != "Checking" || sorted[1].Account != "Savings" {
		t.Errorf("Expected accounts sorted by name, got %v", sorted)
	}
}

func TestFundsAside_SubCentTotalKept(t *testing.T) {
	svc := NewFundsAsideService()

	expenses := []*domain.Expense{
		{Name: "Domain renewal", Projected: decimal.RequireFromString("0.05"), TransferStatus: domain.TransferFull, Account: "Savings"},
		{Name: "Gym", Projected: decimal.NewFromInt(600), TransferStatus: domain.TransferNone, Account: "Checking"},
	}

	result := svc.Compute(expenses, domain.ScopeAnnual)

	amount, ok := result["Savings"]
	if !ok {
		t.Fatalf("Expected Savings to be listed, got %v", result)
	}
	if !amount.IsZero() {
		t.Errorf("Expected Savings to display 0.00, got %s", amount.StringFixed(2))
	}
	if _, ok := result["Checking"]; ok {
		t.Errorf("Expected Checking with nothing transferred to be omitted, got %v", result)
	}
}
