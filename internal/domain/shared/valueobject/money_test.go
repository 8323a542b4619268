package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoneyFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"integer amount", "50000", "50000", false},
		{"fractional amount", "1234.56", "1234.56", false},
		{"negative amount", "-10.5", "-10.5", false},
		{"invalid string", "abc", "", true},
		{"empty string", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoneyFromString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.String())
		})
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyFromInt(100000)
	b := NewMoneyFromInt(50000)

	assert.Equal(t, "150000", a.Add(b).String())
	assert.Equal(t, "50000", a.Subtract(b).String())
	assert.Equal(t, "-100000", a.Negate().String())
	assert.Equal(t, "100000", a.Negate().Abs().String())
}

func TestMoney_FractionalPrecision(t *testing.T) {
	// 0.1 + 0.2 must be exactly 0.3, not a float approximation
	a := NewMoneyFromFloat(0.1)
	b := NewMoneyFromFloat(0.2)
	assert.True(t, a.Add(b).Equals(NewMoneyFromFloat(0.3)))
}

func TestMoney_Comparisons(t *testing.T) {
	small := NewMoneyFromInt(10)
	big := NewMoneyFromInt(20)

	assert.True(t, small.LessThan(big))
	assert.True(t, small.LessThanOrEqual(small))
	assert.True(t, big.GreaterThan(small))
	assert.True(t, big.GreaterThanOrEqual(big))
	assert.False(t, small.Equals(big))
}

func TestMoney_Predicates(t *testing.T) {
	assert.True(t, Zero().IsZero())
	assert.True(t, NewMoneyFromInt(1).IsPositive())
	assert.True(t, NewMoneyFromInt(-1).IsNegative())
	assert.False(t, Zero().IsPositive())
}

func TestMoney_Round(t *testing.T) {
	m := NewMoney(decimal.RequireFromString("10.005"))
	assert.Equal(t, "10.01", m.Round(2).String())
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := NewMoneyFromFloat(1234.5)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `"1234.5"`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("250000.75"))
	assert.Equal(t, "250000.75", m.String())

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())
}
