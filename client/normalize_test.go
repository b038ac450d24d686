package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRecord_ConvertsEmbeddedDates(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want any
	}{
		{"epoch", "/Date(0)/", "1970-01-01T00:00:00Z"},
		{"recent date", "/Date(1672531200000)/", "2023-01-01T00:00:00Z"},
		{"pre-epoch date", "/Date(-86400000)/", "1969-12-31T00:00:00Z"},
		{"plain string untouched", "hello", "hello"},
		{"date-ish but not the encoding", "Date(1672531200000)", "Date(1672531200000)"},
		{"trailing garbage untouched", "/Date(167)/x", "/Date(167)/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeRecord(map[string]any{"Field": tt.in})
			assert.Equal(t, tt.want, got["Field"])
		})
	}
}

func TestNormalizeRecord_DropsNestedObjects(t *testing.T) {
	raw := map[string]any{
		"AccountName": "ACME",
		"Account":     map[string]any{"__deferred": map[string]any{"uri": "..."}},
		"AmountDC":    12.5,
	}

	got := NormalizeRecord(raw)

	assert.NotContains(t, got, "Account")
	assert.Equal(t, "ACME", got["AccountName"])
	assert.Equal(t, 12.5, got["AmountDC"])
}

func TestNormalizeRecord_PassesScalarsThrough(t *testing.T) {
	raw := map[string]any{
		"EntryNumber":   float64(42),
		"Notes":         nil,
		"CustomField":   true,
		"DueDate":       "/Date(1672531200000)/",
		"GLAccountCode": "8000",
	}

	got := NormalizeRecord(raw)

	assert.Equal(t, float64(42), got["EntryNumber"])
	assert.Contains(t, got, "Notes")
	assert.Nil(t, got["Notes"])
	assert.Equal(t, true, got["CustomField"])
	assert.Equal(t, "2023-01-01T00:00:00Z", got["DueDate"])
	assert.Equal(t, "8000", got["GLAccountCode"])
}
