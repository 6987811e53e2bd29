package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// WeeksPerMonth is the number of planner week columns in a budget month
const WeeksPerMonth = 5

// PlannerEntry is the weekly distribution of one expense, keyed by expense name
type PlannerEntry struct {
	Weeks       [WeeksPerMonth]decimal.Decimal `json:"weeks"`
	Transferred [WeeksPerMonth]bool            `json:"transferred"`
	Paid        [WeeksPerMonth]bool            `json:"paid"`
}

// NewPlannerEntry returns an entry with all weeks zeroed
func NewPlannerEntry() *PlannerEntry {
	entry := &PlannerEntry{}
	for i := range entry.Weeks {
		entry.Weeks[i] = decimal.Zero
	}
	return entry
}

// Total sums the planned weekly amounts
func (p *PlannerEntry) Total() decimal.Decimal {
	total := decimal.Zero
	for _, w := range p.Weeks {
		total = total.Add(w)
	}
	return total
}

// Status returns the week's boolean for the given status type
func (p *PlannerEntry) Status(t StatusType, weekIndex int) bool {
	if t == StatusPaid {
		return p.Paid[weekIndex]
	}
	return p.Transferred[weekIndex]
}

// SetStatus sets the week's boolean for the given status type
func (p *PlannerEntry) SetStatus(t StatusType, weekIndex int, checked bool) {
	if t == StatusPaid {
		p.Paid[weekIndex] = checked
		return
	}
	p.Transferred[weekIndex] = checked
}

// Clone returns a copy; arrays copy by value
func (p *PlannerEntry) Clone() *PlannerEntry {
	c := *p
	return &c
}

type plannerEntryJSON struct {
	Weeks       []json.RawMessage `json:"weeks"`
	Transferred []bool            `json:"transferred"`
	Paid        []bool            `json:"paid"`
}

// MarshalJSON writes the weekly amounts as numbers
func (p PlannerEntry) MarshalJSON() ([]byte, error) {
	raw := plannerEntryJSON{
		Weeks:       make([]json.RawMessage, WeeksPerMonth),
		Transferred: p.Transferred[:],
		Paid:        p.Paid[:],
	}
	for i, w := range p.Weeks {
		raw.Weeks[i] = json.RawMessage(w.String())
	}
	return json.Marshal(raw)
}

// UnmarshalJSON accepts arrays of any length; missing weeks are zero/false and
// extra weeks are dropped.
func (p *PlannerEntry) UnmarshalJSON(data []byte) error {
	var raw plannerEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = *NewPlannerEntry()
	for i := 0; i < WeeksPerMonth; i++ {
		if i < len(raw.Weeks) {
			p.Weeks[i] = ParseAmount(raw.Weeks[i])
		}
		if i < len(raw.Transferred) {
			p.Transferred[i] = raw.Transferred[i]
		}
		if i < len(raw.Paid) {
			p.Paid[i] = raw.Paid[i]
		}
	}
	return nil
}

// WeekIndex converts a 1-based planner week to an array index
func WeekIndex(week int) (int, error) {
	if week < 1 || week > WeeksPerMonth {
		return 0, ErrInvalidWeek
	}
	return week - 1, nil
}
