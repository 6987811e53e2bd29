package service

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
)

var (
	monthlyExportHeader = []string{"Category", "Date", "Expense Name", "Account", "Status", "Projected", "Actual", "Paid"}
	annualExportHeader  = append(append([]string{}, monthlyExportHeader...), "Monthly Equivalent")
)

// ExportService writes expense lists as CSV
type ExportService struct{}

// NewExportService creates a new ExportService
func NewExportService() *ExportService {
	return &ExportService{}
}

// Filename returns the download name for a scope's export
func (s *ExportService) Filename(scope domain.Scope) string {
	return fmt.Sprintf("%s-expenses.csv", scope)
}

// WriteCSV writes every expense of the store, category by category in key order.
// Annual exports carry an extra Monthly Equivalent column (actual / 12).
func (s *ExportService) WriteCSV(w io.Writer, store *ExpenseStore) error {
	writer := csv.NewWriter(w)

	annual := store.Scope() == domain.ScopeAnnual
	header := monthlyExportHeader
	if annual {
		header = annualExportHeader
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, key := range store.Categories() {
		for _, e := range store.List(key) {
			paid := "No"
			if e.Paid {
				paid = "Yes"
			}
			row := []string{
				key,
				e.Date,
				e.Name,
				e.Account,
				string(e.TransferStatus),
				e.Projected.StringFixed(2),
				e.Actual.StringFixed(2),
				paid,
			}
			if annual {
				row = append(row, e.Actual.Div(monthsPerYear).StringFixed(2))
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("write expense %s: %w", e.ID, err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
