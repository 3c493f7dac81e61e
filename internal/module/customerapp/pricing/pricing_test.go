package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) Table {
	t.Helper()

	table, err := NewTable([]Tier{
		{Threshold: 0, DiscountPercentage: 0, TierName: "base"},
		{Threshold: 5, DiscountPercentage: 10, TierName: "bronze"},
		{Threshold: 10, DiscountPercentage: 20, TierName: "silver"},
	})
	require.NoError(t, err)

	return table
}

func TestNewTable(t *testing.T) {
	t.Run("rejects empty table", func(t *testing.T) {
		_, err := NewTable(nil)
		require.Error(t, err)
	})

	t.Run("rejects non-ascending thresholds", func(t *testing.T) {
		_, err := NewTable([]Tier{
			{Threshold: 5, DiscountPercentage: 10, TierName: "bronze"},
			{Threshold: 5, DiscountPercentage: 20, TierName: "silver"},
		})
		require.Error(t, err)
	})

	t.Run("rejects decreasing discounts", func(t *testing.T) {
		_, err := NewTable([]Tier{
			{Threshold: 5, DiscountPercentage: 20, TierName: "bronze"},
			{Threshold: 10, DiscountPercentage: 10, TierName: "silver"},
		})
		require.Error(t, err)
	})

	t.Run("rejects discount out of range", func(t *testing.T) {
		_, err := NewTable([]Tier{
			{Threshold: 5, DiscountPercentage: 110, TierName: "bronze"},
		})
		require.Error(t, err)
	})
}

func TestCalculate(t *testing.T) {
	table := testTable(t)

	tests := []struct {
		name               string
		quantity           int64
		tierName           string
		effectiveUnitPrice int64
		totalPrice         int64
		discountAmount     int64
	}{
		{name: "single photo stays on base tier", quantity: 1, tierName: "base", effectiveUnitPrice: 2000, totalPrice: 2000, discountAmount: 0},
		{name: "just below bronze threshold", quantity: 4, tierName: "base", effectiveUnitPrice: 2000, totalPrice: 8000, discountAmount: 0},
		{name: "bronze tier at threshold", quantity: 5, tierName: "bronze", effectiveUnitPrice: 1800, totalPrice: 9000, discountAmount: 1000},
		{name: "bronze tier mid range", quantity: 7, tierName: "bronze", effectiveUnitPrice: 1800, totalPrice: 12600, discountAmount: 1400},
		{name: "silver tier at threshold", quantity: 10, tierName: "silver", effectiveUnitPrice: 1600, totalPrice: 16000, discountAmount: 4000},
		{name: "silver tier far past top threshold", quantity: 100, tierName: "silver", effectiveUnitPrice: 1600, totalPrice: 160000, discountAmount: 40000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := Calculate(table, 2000, tt.quantity)
			require.NoError(t, err)

			require.Equal(t, tt.tierName, quote.TierName)
			require.Equal(t, tt.effectiveUnitPrice, quote.EffectiveUnitPrice)
			require.Equal(t, tt.totalPrice, quote.TotalPrice)
			require.Equal(t, tt.discountAmount, quote.DiscountAmount)
			require.Equal(t, int64(2000), quote.BaseUnitPrice)
			require.Equal(t, 2000*tt.quantity, quote.BaseTotalPrice)
			require.Equal(t, quote.BaseTotalPrice-quote.TotalPrice, quote.DiscountAmount)
		})
	}

	t.Run("rejects quantity below one", func(t *testing.T) {
		_, err := Calculate(table, 2000, 0)
		require.Error(t, err)

		_, err = Calculate(table, 2000, -3)
		require.Error(t, err)
	})

	t.Run("total never exceeds undiscounted total", func(t *testing.T) {
		for q := int64(1); q <= 50; q++ {
			quote, err := Calculate(table, 2000, q)
			require.NoError(t, err)
			require.LessOrEqual(t, quote.TotalPrice, quote.BaseTotalPrice)
		}
	})

	t.Run("discount percentage never decreases with quantity", func(t *testing.T) {
		prev := float64(-1)
		for q := int64(1); q <= 50; q++ {
			quote, err := Calculate(table, 2000, q)
			require.NoError(t, err)
			require.GreaterOrEqual(t, quote.DiscountPercentage, prev)
			prev = quote.DiscountPercentage
		}
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		first, err := Calculate(table, 2000, 7)
		require.NoError(t, err)
		second, err := Calculate(table, 2000, 7)
		require.NoError(t, err)
		require.Equal(t, first, second)
	})
}

func TestNextTierFor(t *testing.T) {
	table := testTable(t)

	t.Run("from base tier", func(t *testing.T) {
		next, ok := NextTierFor(table, 2)
		require.True(t, ok)
		require.Equal(t, "bronze", next.TierName)
		require.Equal(t, int64(3), next.UnitsToGo)
	})

	t.Run("from bronze tier", func(t *testing.T) {
		next, ok := NextTierFor(table, 7)
		require.True(t, ok)
		require.Equal(t, "silver", next.TierName)
		require.Equal(t, int64(3), next.UnitsToGo)
	})

	t.Run("already past every threshold", func(t *testing.T) {
		_, ok := NextTierFor(table, 10)
		require.False(t, ok)

		_, ok = NextTierFor(table, 42)
		require.False(t, ok)
	})
}

func TestSplitNet(t *testing.T) {
	t.Run("seventy thirty", func(t *testing.T) {
		split, err := SplitNet(12600, 70)
		require.NoError(t, err)
		require.Equal(t, int64(8820), split.PhotographerShare)
		require.Equal(t, int64(3780), split.PlatformShare)
	})

	t.Run("rounding remainder lands on platform share", func(t *testing.T) {
		split, err := SplitNet(101, 33)
		require.NoError(t, err)
		require.Equal(t, int64(33), split.PhotographerShare)
		require.Equal(t, int64(68), split.PlatformShare)
	})

	t.Run("boundary percentages", func(t *testing.T) {
		split, err := SplitNet(500, 0)
		require.NoError(t, err)
		require.Equal(t, int64(0), split.PhotographerShare)
		require.Equal(t, int64(500), split.PlatformShare)

		split, err = SplitNet(500, 100)
		require.NoError(t, err)
		require.Equal(t, int64(500), split.PhotographerShare)
		require.Equal(t, int64(0), split.PlatformShare)
	})

	t.Run("shares always sum to net amount", func(t *testing.T) {
		for net := int64(0); net <= 1000; net += 7 {
			for pct := float64(0); pct <= 100; pct += 2.5 {
				split, err := SplitNet(net, pct)
				require.NoError(t, err)
				require.Equal(t, net, split.PhotographerShare+split.PlatformShare)
			}
		}
	})

	t.Run("rejects percentage out of range", func(t *testing.T) {
		_, err := SplitNet(100, -1)
		require.Error(t, err)

		_, err = SplitNet(100, 100.5)
		require.Error(t, err)
	})

	t.Run("rejects negative net amount", func(t *testing.T) {
		_, err := SplitNet(-1, 70)
		require.Error(t, err)
	})
}
