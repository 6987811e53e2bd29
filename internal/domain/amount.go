package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmountString converts user or stored input to a decimal amount.
// Currency symbols, thousands separators and surrounding whitespace are ignored.
// Anything that still fails to parse is treated as zero.
func ParseAmountString(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseAmount decodes a JSON number or string into a decimal amount, zero on failure
func ParseAmount(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParseAmountString(s)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return ParseAmountString(n.String())
	}

	return decimal.Zero
}

// RoundCurrency rounds to cents and collapses sub-0.001 noise to zero
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	if d.Abs().LessThan(currencyNoise) {
		return decimal.Zero
	}
	return d.Round(2)
}

var currencyNoise = decimal.New(1, -3)

// jsonAmount renders an amount as a bare JSON number, the form the stored
// document uses. Display formatting happens in the API layer.
func jsonAmount(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func jsonAmountPtr(d *decimal.Decimal) *json.Number {
	if d == nil {
		return nil
	}
	n := jsonAmount(*d)
	return &n
}
