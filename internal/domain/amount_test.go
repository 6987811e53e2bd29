package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"number", `12.5`, "12.5"},
		{"integer", `300`, "300"},
		{"numeric string", `"45.10"`, "45.1"},
		{"currency string", `"$1,250.00"`, "1250"},
		{"padded string", `"  7 "`, "7"},
		{"empty string", `""`, "0"},
		{"garbage string", `"abc"`, "0"},
		{"null", `null`, "0"},
		{"boolean", `true`, "0"},
		{"object", `{"value": 3}`, "0"},
		{"missing", ``, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(json.RawMessage(tt.raw))
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParseAmount(%s) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestRoundCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.0004", "0"},
		{"-0.0009", "0"},
		{"0.001", "0"},
		{"0.005", "0.01"},
		{"12.344", "12.34"},
		{"-3.456", "-3.46"},
		{"100", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := RoundCurrency(decimal.RequireFromString(tt.in))
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("RoundCurrency(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestTransferStatusMultiplier(t *testing.T) {
	tests := []struct {
		status TransferStatus
		want   string
	}{
		{TransferNone, "0"},
		{TransferQuarter, "0.25"},
		{TransferHalf, "0.5"},
		{TransferFull, "1"},
		{"partial", "0"},
	}

	for _, tt := range tests {
		if got := tt.status.Multiplier(); !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("%q multiplier = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestNoAccount(t *testing.T) {
	for _, account := range []string{"", " ", "None", "Split", "TBD", " TBD"} {
		if !NoAccount(account) {
			t.Errorf("Expected %q to be a placeholder", account)
		}
	}
	for _, account := range []string{"Checking", "none", "Savings 2"} {
		if NoAccount(account) {
			t.Errorf("Expected %q to be a real account", account)
		}
	}
}
