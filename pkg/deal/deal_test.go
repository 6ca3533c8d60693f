package deal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_DerivesPriceAndExpiration(t *testing.T) {
	t.Parallel()

	got, err := Compute(100, 25, 7)
	require.NoError(t, err)

	assert.Equal(t, 75.00, got.DealPrice)
	require.NotNil(t, got.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *got.ExpiresAt, 5*time.Second)
}

func TestCompute_RoundsToCurrencyGranularity(t *testing.T) {
	t.Parallel()

	got, err := Compute(9.99, 33, 0)
	require.NoError(t, err)
	assert.Equal(t, 6.69, got.DealPrice)
	assert.Nil(t, got.ExpiresAt)
}

func TestCompute_InvalidDiscount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pct  float64
	}{
		{name: "zero", pct: 0},
		{name: "hundred", pct: 100},
		{name: "negative", pct: -10},
		{name: "above hundred", pct: 150},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Compute(100, tt.pct, 7)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDiscount)
		})
	}
}

func TestIsActive(t *testing.T) {
	t.Parallel()

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		deal *Deal
		want bool
	}{
		{name: "nil deal", deal: nil, want: false},
		{name: "flag off", deal: &Deal{IsOnDeal: false}, want: false},
		{name: "no expiration", deal: &Deal{IsOnDeal: true}, want: true},
		{name: "future expiration", deal: &Deal{IsOnDeal: true, DealExpires: &future}, want: true},
		{name: "expired but flag still set", deal: &Deal{IsOnDeal: true, DealExpires: &past}, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsActive(tt.deal, now))
		})
	}
}

func TestSavingsPercent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 25, SavingsPercent(100, 75))
	assert.Equal(t, 33, SavingsPercent(9.99, 6.69))
	assert.Equal(t, 0, SavingsPercent(0, 10))
}
