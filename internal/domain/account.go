package domain

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeCredit   AccountType = "credit"
	AccountTypeOther    AccountType = "other"
)

// Account is a funding account expenses can reference by name
type Account struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Type    AccountType      `json:"type,omitempty"`
	Balance *decimal.Decimal `json:"balance,omitempty"`
}

// MarshalJSON writes the balance as a number
func (a Account) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID      string       `json:"id"`
		Name    string       `json:"name"`
		Type    AccountType  `json:"type,omitempty"`
		Balance *json.Number `json:"balance,omitempty"`
	}{a.ID, a.Name, a.Type, jsonAmountPtr(a.Balance)})
}

// Accounts is the account list. It decodes both the legacy array form (names or
// objects) and the structured map form, and always encodes as the map form.
type Accounts []*Account

// Names returns the account names in stored order
func (a Accounts) Names() []string {
	names := make([]string, 0, len(a))
	for _, acc := range a {
		names = append(names, acc.Name)
	}
	return names
}

// MarshalJSON writes the structured map keyed by account ID
func (a Accounts) MarshalJSON() ([]byte, error) {
	out := make(map[string]*Account, len(a))
	for _, acc := range a {
		out[acc.ID] = acc
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads either the legacy array or the structured map
func (a *Accounts) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*a = Accounts{}
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		result := make(Accounts, 0, len(items))
		for _, item := range items {
			if acc := decodeLegacyAccount(item); acc != nil {
				result = append(result, acc)
			}
		}
		*a = result
		return nil
	}

	var structured map[string]*Account
	if err := json.Unmarshal(data, &structured); err != nil {
		return err
	}
	ids := make([]string, 0, len(structured))
	for id := range structured {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := make(Accounts, 0, len(structured))
	for _, id := range ids {
		acc := structured[id]
		if acc == nil {
			continue
		}
		if acc.ID == "" {
			acc.ID = id
		}
		result = append(result, acc)
	}
	*a = result
	return nil
}

func decodeLegacyAccount(raw json.RawMessage) *Account {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil
		}
		return &Account{ID: AccountID(name), Name: name, Type: AccountTypeOther}
	}

	var acc Account
	if err := json.Unmarshal(raw, &acc); err != nil || strings.TrimSpace(acc.Name) == "" {
		return nil
	}
	if acc.ID == "" {
		acc.ID = AccountID(acc.Name)
	}
	return &acc
}

// AccountID derives a stable key from an account name
func AccountID(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}
