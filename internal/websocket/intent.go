package websocket

import (
	"context"
	"encoding/json"
)

// Intent types a view renderer may send over its socket
const (
	IntentToggleStatus   = "toggleStatus"
	IntentRecordWeekEdit = "recordWeekEdit"
	IntentQuickFill      = "quickFill"
	IntentSetWeek        = "setWeek"
)

// Intent is a user action sent by a view renderer. It is applied as a local edit
// of the renderer's view.
type Intent struct {
	Type        string          `json:"type"`
	RequestID   string          `json:"requestId,omitempty"`
	ExpenseID   string          `json:"expenseId,omitempty"`
	ExpenseName string          `json:"expenseName,omitempty"`
	StatusType  string          `json:"statusType,omitempty"`
	Week        int             `json:"week,omitempty"`
	Checked     bool            `json:"checked,omitempty"`
	Amount      json.RawMessage `json:"amount,omitempty"`
	Action      string          `json:"action,omitempty"`
}

// IntentHandler applies intents received from renderers
type IntentHandler interface {
	HandleIntent(ctx context.Context, view string, intent Intent) error
}

// IntentRejection is the payload of an intentRejected reply
type IntentRejection struct {
	RequestID string `json:"requestId,omitempty"`
	Type      string `json:"type"`
	Error     string `json:"error"`
}
