package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Scope identifies which expense list an expense belongs to
type Scope string

const (
	ScopeMonthly Scope = "monthly"
	ScopeAnnual  Scope = "annual"
)

// IsValid reports whether the scope is known
func (s Scope) IsValid() bool {
	return s == ScopeMonthly || s == ScopeAnnual
}

// TransferStatus is the graduated share of the projected amount already set aside
type TransferStatus string

const (
	TransferNone    TransferStatus = "none"
	TransferQuarter TransferStatus = "quarter"
	TransferHalf    TransferStatus = "half"
	TransferFull    TransferStatus = "full"
)

var transferMultipliers = map[TransferStatus]decimal.Decimal{
	TransferNone:    decimal.Zero,
	TransferQuarter: decimal.RequireFromString("0.25"),
	TransferHalf:    decimal.RequireFromString("0.5"),
	TransferFull:    decimal.NewFromInt(1),
}

// Multiplier returns the fraction of projected that counts as transferred.
// Unknown values count as nothing transferred.
func (s TransferStatus) Multiplier() decimal.Decimal {
	if m, ok := transferMultipliers[s]; ok {
		return m
	}
	return decimal.Zero
}

// IsValid reports whether the status is one of the four known values
func (s TransferStatus) IsValid() bool {
	_, ok := transferMultipliers[s]
	return ok
}

// DefaultTransferStatus returns the status new expenses start with in a scope
func DefaultTransferStatus(scope Scope) TransferStatus {
	if scope == ScopeAnnual {
		return TransferFull
	}
	return TransferNone
}

// StatusType names one of the two per-expense checkboxes
type StatusType string

const (
	StatusPaid        StatusType = "paid"
	StatusTransferred StatusType = "transferred"
)

// IsValid reports whether the status type is known
func (t StatusType) IsValid() bool {
	return t == StatusPaid || t == StatusTransferred
}

// View names one of the three independently rendered pages
type View string

const (
	ViewMonthly View = "monthly"
	ViewAnnual  View = "annual"
	ViewPlanner View = "planner"
)

// IsValid reports whether the view is known
func (v View) IsValid() bool {
	return v == ViewMonthly || v == ViewAnnual || v == ViewPlanner
}

// Account placeholders that mean "no funding account assigned"
var unassignedAccounts = map[string]bool{
	"":      true,
	"None":  true,
	"Split": true,
	"TBD":   true,
}

// NoAccount reports whether an account value is a placeholder rather than a real account
func NoAccount(account string) bool {
	return unassignedAccounts[strings.TrimSpace(account)]
}

const isoDateLayout = "2006-01-02"

// Expense is one line item in the Monthly or Annual list
type Expense struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Date           string           `json:"date,omitempty"`
	Account        string           `json:"account,omitempty"`
	Link           string           `json:"link,omitempty"`
	Projected      decimal.Decimal  `json:"projected"`
	Actual         decimal.Decimal  `json:"actual"`
	Amount         decimal.Decimal  `json:"amount"` // legacy alias of Actual
	TransferStatus TransferStatus   `json:"transferStatus"`
	Paid           bool             `json:"paid"`
	Transferred    bool             `json:"transferred"`
	Balance        *decimal.Decimal `json:"balance,omitempty"` // loans/credit categories only
}

// DueDate parses the optional ISO due date
func (e *Expense) DueDate() (time.Time, bool) {
	return ParseISODate(e.Date)
}

// StatusDisplay returns the visual state of the status control. Paid wins over transferred.
func (e *Expense) StatusDisplay() string {
	switch {
	case e.Paid:
		return string(StatusPaid)
	case e.Transferred:
		return string(StatusTransferred)
	default:
		return ""
	}
}

// Status returns the boolean for the given status type
func (e *Expense) Status(t StatusType) bool {
	if t == StatusPaid {
		return e.Paid
	}
	return e.Transferred
}

// SetStatus sets the boolean for the given status type
func (e *Expense) SetStatus(t StatusType, checked bool) {
	if t == StatusPaid {
		e.Paid = checked
		return
	}
	e.Transferred = checked
}

// Clone returns a deep copy
func (e *Expense) Clone() *Expense {
	c := *e
	if e.Balance != nil {
		b := *e.Balance
		c.Balance = &b
	}
	return &c
}

// expenseJSON mirrors Expense with raw amount fields so bad numbers decode as zero
type expenseJSON struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Date           string          `json:"date"`
	Account        string          `json:"account"`
	Link           string          `json:"link"`
	Projected      json.RawMessage `json:"projected"`
	Actual         json.RawMessage `json:"actual"`
	Amount         json.RawMessage `json:"amount"`
	TransferStatus TransferStatus  `json:"transferStatus"`
	Paid           bool            `json:"paid"`
	Transferred    bool            `json:"transferred"`
	Balance        json.RawMessage `json:"balance"`
}

// expenseOut is the stored form of Expense with amounts as JSON numbers
type expenseOut struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Date           string         `json:"date,omitempty"`
	Account        string         `json:"account,omitempty"`
	Link           string         `json:"link,omitempty"`
	Projected      json.Number    `json:"projected"`
	Actual         json.Number    `json:"actual"`
	Amount         json.Number    `json:"amount"`
	TransferStatus TransferStatus `json:"transferStatus"`
	Paid           bool           `json:"paid"`
	Transferred    bool           `json:"transferred"`
	Balance        *json.Number   `json:"balance,omitempty"`
}

// MarshalJSON writes amounts as numbers rather than quoted strings
func (e Expense) MarshalJSON() ([]byte, error) {
	return json.Marshal(expenseOut{
		ID:             e.ID,
		Name:           e.Name,
		Date:           e.Date,
		Account:        e.Account,
		Link:           e.Link,
		Projected:      jsonAmount(e.Projected),
		Actual:         jsonAmount(e.Actual),
		Amount:         jsonAmount(e.Actual),
		TransferStatus: e.TransferStatus,
		Paid:           e.Paid,
		Transferred:    e.Transferred,
		Balance:        jsonAmountPtr(e.Balance),
	})
}

// UnmarshalJSON decodes leniently: amounts that are not numbers become zero and
// legacy records carrying only "amount" populate Actual from it.
func (e *Expense) UnmarshalJSON(data []byte) error {
	var raw expenseJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Expense{
		ID:             raw.ID,
		Name:           raw.Name,
		Date:           raw.Date,
		Account:        raw.Account,
		Link:           raw.Link,
		Projected:      ParseAmount(raw.Projected),
		TransferStatus: raw.TransferStatus,
		Paid:           raw.Paid,
		Transferred:    raw.Transferred,
	}

	if len(raw.Actual) > 0 && string(raw.Actual) != "null" {
		e.Actual = ParseAmount(raw.Actual)
	} else {
		e.Actual = ParseAmount(raw.Amount)
	}
	e.Amount = e.Actual

	if len(raw.Balance) > 0 && string(raw.Balance) != "null" {
		b := ParseAmount(raw.Balance)
		e.Balance = &b
	}
	return nil
}

// ParseISODate parses a YYYY-MM-DD date, also accepting full RFC 3339 timestamps
func ParseISODate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(isoDateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// CategoryMap maps a category key to its expenses in display order
type CategoryMap map[string][]*Expense

// Clone returns a deep copy
func (m CategoryMap) Clone() CategoryMap {
	out := make(CategoryMap, len(m))
	for key, list := range m {
		copied := make([]*Expense, 0, len(list))
		for _, e := range list {
			if e != nil {
				copied = append(copied, e.Clone())
			}
		}
		out[key] = copied
	}
	return out
}
