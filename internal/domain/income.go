package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// IncomeSource is one recurring source of household income
type IncomeSource struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Date      string          `json:"date,omitempty"`
	Projected decimal.Decimal `json:"projected"`
	Actual    decimal.Decimal `json:"actual"`
}

type incomeSourceJSON struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Date      string          `json:"date"`
	Projected json.RawMessage `json:"projected"`
	Actual    json.RawMessage `json:"actual"`
	Amount    json.RawMessage `json:"amount"`
}

// MarshalJSON writes amounts as numbers
func (i IncomeSource) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string      `json:"id"`
		Name      string      `json:"name"`
		Date      string      `json:"date,omitempty"`
		Projected json.Number `json:"projected"`
		Actual    json.Number `json:"actual"`
	}{i.ID, i.Name, i.Date, jsonAmount(i.Projected), jsonAmount(i.Actual)})
}

// UnmarshalJSON decodes leniently, see Expense.UnmarshalJSON
func (i *IncomeSource) UnmarshalJSON(data []byte) error {
	var raw incomeSourceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*i = IncomeSource{
		ID:        raw.ID,
		Name:      raw.Name,
		Date:      raw.Date,
		Projected: ParseAmount(raw.Projected),
	}
	if len(raw.Actual) > 0 && string(raw.Actual) != "null" {
		i.Actual = ParseAmount(raw.Actual)
	} else {
		i.Actual = ParseAmount(raw.Amount)
	}
	return nil
}

// Clone returns a copy
func (i *IncomeSource) Clone() *IncomeSource {
	c := *i
	return &c
}

// LinkItem is a bookmarked link. Link management lives outside this service;
// items are carried through the document unchanged.
type LinkItem struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Icon string `json:"icon,omitempty"`
}

// LinkCategory describes how a link category is displayed
type LinkCategory struct {
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}
