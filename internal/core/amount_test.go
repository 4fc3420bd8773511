package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain integer", input: "100", want: "100.00"},
		{name: "dot separator", input: "12.34", want: "12.34"},
		{name: "comma separator", input: "12,34", want: "12.34"},
		{name: "thousands with space and comma", input: "1 000,50", want: "1000.50"},
		{name: "non-breaking space", input: "1 000,50", want: "1000.50"},
		{name: "surrounding whitespace", input: "  42.00  ", want: "42.00"},
		{name: "single fraction digit", input: "5,5", want: "5.50"},
		{name: "max significant digits", input: "9999999999.99", want: "9999999999.99"},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
		{name: "zero with fraction", input: "0,00", wantErr: true},
		{name: "negative", input: "-5", wantErr: true},
		{name: "three fraction digits", input: "12.345", wantErr: true},
		{name: "too many digits", input: "10000000000.00", wantErr: true},
		{name: "two separators", input: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestAmountCentsRoundTrip(t *testing.T) {
	a := AmountFromCents(100050)
	assert.Equal(t, "1000.50", a.String())
	assert.Equal(t, int64(100050), a.Cents())
}

func TestAmountArithmetic(t *testing.T) {
	income := AmountFromCents(100000)
	expense := AmountFromCents(30000)

	balance := income.Sub(expense)
	assert.Equal(t, "700.00", balance.String())
	assert.Equal(t, "1300.00", income.Add(expense).String())
}

func TestAmountUnmarshalJSON(t *testing.T) {
	var fromString, fromNumber Amount

	require.NoError(t, fromString.UnmarshalJSON([]byte(`"1 000,50"`)))
	assert.Equal(t, "1000.50", fromString.String())

	require.NoError(t, fromNumber.UnmarshalJSON([]byte(`1000.5`)))
	assert.Equal(t, "1000.50", fromNumber.String())

	var invalid Amount
	assert.Error(t, invalid.UnmarshalJSON([]byte(`"not money"`)))
}
