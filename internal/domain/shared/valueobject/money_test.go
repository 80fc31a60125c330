package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrency_Valid(t *testing.T) {
	assert.True(t, IDR.Valid())
	assert.True(t, USD.Valid())
	assert.False(t, Currency("").Valid())
	assert.False(t, Currency("idr").Valid())
	assert.False(t, Currency("RUPIAH").Valid())
}

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(150000), IDR)
		require.NoError(t, err)
		assert.Equal(t, IDR, m.Currency())
		assert.Equal(t, int64(150000), m.IntPart())
	})

	t.Run("rejects malformed currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.ErrorIs(t, err, ErrInvalidCurrency)

		_, err = NewMoney(decimal.NewFromInt(100), "Rp")
		assert.ErrorIs(t, err, ErrInvalidCurrency)
	})
}

func TestMustNewMoney(t *testing.T) {
	m := MustNewMoney(decimal.RequireFromString("109.95"), USD)
	assert.Equal(t, USD, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.RequireFromString("109.95")))

	assert.PanicsWithError(t, `currency must be a three-letter ISO 4217 code: "usd"`, func() {
		MustNewMoney(decimal.NewFromInt(1), "usd")
	})
}

func TestMoney_Convert(t *testing.T) {
	rate := decimal.NewFromInt(15000)

	tests := []struct {
		source string
		want   int64
	}{
		{"10", 150000},
		{"109.95", 1649250},
		{"0.00003", 0},
		{"0.0001", 2},
		{"0.00023333", 3},
		{"22.3", 334500},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			src := MustNewMoney(decimal.RequireFromString(tt.source), USD)

			got := src.Convert(rate, IDR)
			assert.Equal(t, IDR, got.Currency())
			assert.Equal(t, tt.want, got.IntPart())
		})
	}
}

func TestMoney_WholeUnits(t *testing.T) {
	for amount, want := range map[string]int64{
		"12.4": 12,
		"12.5": 13,
		"13.5": 14,
		"0.49": 0,
		"-2.5": -3,
	} {
		m := MustNewMoney(decimal.RequireFromString(amount), IDR)
		assert.Equal(t, want, m.WholeUnits(), amount)
	}
}

func TestMoney_Times(t *testing.T) {
	m := mustMoney(t, 150000)
	assert.True(t, m.Times(2).Amount().Equal(decimal.NewFromInt(300000)))
	assert.True(t, m.Times(0).IsZero())
}

func TestMoney_Add(t *testing.T) {
	sum, err := mustMoney(t, 150000).Add(mustMoney(t, 300000))
	require.NoError(t, err)
	assert.Equal(t, int64(450000), sum.IntPart())

	usd := MustNewMoney(decimal.NewFromInt(1), USD)
	_, err = mustMoney(t, 1).Add(usd)
	assert.Error(t, err)
	assert.Panics(t, func() { mustMoney(t, 1).MustAdd(usd) })
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "IDR 150000", mustMoney(t, 150000).String())
}

func TestMoney_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(mustMoney(t, 300000))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"300000","currency":"IDR"}`, string(data))
}

func mustMoney(t *testing.T, amount int64) Money {
	t.Helper()
	return MustNewMoney(decimal.NewFromInt(amount), IDR)
}
