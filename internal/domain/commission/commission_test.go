package commission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================
// Calculator Tests
// ============================================

func TestNewCalculator_DefaultFallback(t *testing.T) {
	assert.Equal(t, DefaultRatePercent, NewCalculator(0).RateFor(0))
	assert.Equal(t, DefaultRatePercent, NewCalculator(-5).RateFor(0))
	assert.Equal(t, 15, NewCalculator(15).RateFor(0))
}

func TestRateFor(t *testing.T) {
	c := NewCalculator(12)

	assert.Equal(t, 20, c.RateFor(20), "configured supplier rate wins")
	assert.Equal(t, 12, c.RateFor(0), "zero falls back to the calculator default")
	assert.Equal(t, 12, c.RateFor(-1), "negative falls back to the calculator default")
}

// ============================================
// Split Tests
// ============================================

func TestSplit(t *testing.T) {
	tests := []struct {
		name           string
		amount         int
		rate           int
		wantCommission int
		wantEarning    int
	}{
		{"ten percent", 1000, 10, 100, 900},
		{"rounds down", 999, 10, 99, 900},
		{"zero amount", 0, 10, 0, 0},
		{"zero rate", 500, 0, 0, 500},
		{"full rate", 500, 100, 500, 0},
		{"small amount below rate granularity", 5, 10, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commission, earning := Split(tt.amount, tt.rate)
			assert.Equal(t, tt.wantCommission, commission)
			assert.Equal(t, tt.wantEarning, earning)
			assert.Equal(t, tt.amount, commission+earning, "split must conserve the amount")
		})
	}
}

// ============================================
// SplitOrder Tests
// ============================================

func TestSplitOrder_PerSupplierRates(t *testing.T) {
	c := NewCalculator(10)

	total, shares := c.SplitOrder(
		map[string]int{"sup-a": 1000, "sup-b": 500, "sup-c": 200},
		map[string]int{"sup-a": 20, "sup-c": 0}, // sup-b missing, sup-c zero: both default
	)

	assert.Equal(t, 200+50+20, total)
	assert.Equal(t, []SupplierShare{
		{SupplierID: "sup-a", RatePercent: 20, Subtotal: 1000, Commission: 200, Earning: 800},
		{SupplierID: "sup-b", RatePercent: 10, Subtotal: 500, Commission: 50, Earning: 450},
		{SupplierID: "sup-c", RatePercent: 10, Subtotal: 200, Commission: 20, Earning: 180},
	}, shares)
}

func TestSplitOrder_Deterministic(t *testing.T) {
	c := NewCalculator(10)
	subtotals := map[string]int{"z": 100, "a": 100, "m": 100}

	_, first := c.SplitOrder(subtotals, nil)
	for i := 0; i < 10; i++ {
		_, again := c.SplitOrder(subtotals, nil)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, "a", first[0].SupplierID)
	assert.Equal(t, "z", first[2].SupplierID)
}

func TestSplitOrder_Empty(t *testing.T) {
	c := NewCalculator(10)

	total, shares := c.SplitOrder(nil, nil)

	assert.Zero(t, total)
	assert.Empty(t, shares)
}
