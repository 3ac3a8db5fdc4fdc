package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoney(amount("100.50"), "EUR")
	b := NewMoney(amount("0.50"), "EUR")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "101.00 EUR", sum.String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.True(t, diff.Equal(NewMoney(amount("100"), "EUR")))

	assert.True(t, a.Neg().IsNegative())
	assert.True(t, NewMoney(amount("0"), "EUR").IsZero())
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	eur := NewMoney(amount("1"), "EUR")
	usd := NewMoney(amount("1"), "USD")

	_, err := eur.Add(usd)
	assert.Error(t, err)
	_, err = eur.Sub(usd)
	assert.Error(t, err)
	assert.False(t, eur.Equal(usd))
}
