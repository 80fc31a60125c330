package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/pricing"
	"github.com/storefront/backend/internal/domain/shared"
)

func ptr[T any](v T) *T {
	return &v
}

func raw(id int64, title, price string) catalog.RawProduct {
	return catalog.RawProduct{
		ID:          ptr(id),
		Title:       ptr(title),
		Category:    ptr("misc"),
		Description: ptr("desc"),
		Image:       ptr("https://example.com/p.png"),
		Price:       ptr(decimal.RequireFromString(price)),
	}
}

func setupLedger(t *testing.T) (*Ledger, *catalog.Store) {
	t.Helper()
	store := catalog.NewStore()
	require.NoError(t, store.Load([]catalog.RawProduct{
		raw(1, "Widget", "10"),
		raw(2, "Gadget", "109.95"),
		raw(3, "Tiny", "0.0001"),
	}))
	policy, err := pricing.NewPolicy(pricing.DefaultConfig())
	require.NoError(t, err)
	return NewLedger(store, policy), store
}

func TestLedger_Add(t *testing.T) {
	t.Run("repeated adds keep a single line", func(t *testing.T) {
		ledger, _ := setupLedger(t)

		for i := 1; i <= 5; i++ {
			qty, err := ledger.Add(1)
			require.NoError(t, err)
			assert.Equal(t, i, qty)
		}

		lines := ledger.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, Line{ProductID: 1, Quantity: 5}, lines[0])
	})

	t.Run("new products are appended in insertion order", func(t *testing.T) {
		ledger, _ := setupLedger(t)

		_, _ = ledger.Add(2)
		_, _ = ledger.Add(1)
		_, _ = ledger.Add(2)

		assert.Equal(t, []Line{{ProductID: 2, Quantity: 2}, {ProductID: 1, Quantity: 1}}, ledger.Lines())
	})

	t.Run("unknown product fails and leaves the ledger unchanged", func(t *testing.T) {
		ledger, _ := setupLedger(t)

		_, err := ledger.Add(99)
		assert.ErrorIs(t, err, shared.ErrUnknownProduct)
		assert.True(t, ledger.IsEmpty())
	})

	t.Run("every add fails against an empty catalog", func(t *testing.T) {
		ledger, store := setupLedger(t)
		store.Clear()

		_, err := ledger.Add(1)
		assert.ErrorIs(t, err, shared.ErrUnknownProduct)
	})
}

func TestLedger_RemoveAt(t *testing.T) {
	t.Run("removes the whole line and updates the quantity", func(t *testing.T) {
		ledger, _ := setupLedger(t)
		_, _ = ledger.Add(1)
		_, _ = ledger.Add(1)
		_, _ = ledger.Add(2)
		require.Equal(t, 3, ledger.TotalQuantity())

		removed, err := ledger.RemoveAt(0)
		require.NoError(t, err)

		assert.Equal(t, Line{ProductID: 1, Quantity: 2}, removed)
		assert.Equal(t, 1, ledger.TotalQuantity())
		assert.Equal(t, []Line{{ProductID: 2, Quantity: 1}}, ledger.Lines())
	})

	t.Run("removing all lines empties the ledger", func(t *testing.T) {
		ledger, _ := setupLedger(t)
		_, _ = ledger.Add(1)
		_, _ = ledger.Add(2)

		_, err := ledger.RemoveAt(1)
		require.NoError(t, err)
		_, err = ledger.RemoveAt(0)
		require.NoError(t, err)

		assert.True(t, ledger.IsEmpty())
		assert.Equal(t, 0, ledger.TotalQuantity())
	})

	for _, index := range []int{-1, 1, 5} {
		t.Run("out of range", func(t *testing.T) {
			ledger, _ := setupLedger(t)
			_, _ = ledger.Add(1)

			_, err := ledger.RemoveAt(index)
			assert.ErrorIs(t, err, shared.ErrIndexOutOfRange)
			assert.Equal(t, 1, ledger.Len())
		})
	}
}

func TestLedger_RemoveAtChecked(t *testing.T) {
	ledger, _ := setupLedger(t)
	_, _ = ledger.Add(1)
	_, _ = ledger.Add(2)

	// a view rendered before line 0 was removed still points index 1 at product 2
	_, err := ledger.RemoveAt(0)
	require.NoError(t, err)

	_, err = ledger.RemoveAtChecked(1, 2)
	assert.ErrorIs(t, err, shared.ErrIndexOutOfRange)

	_, err = ledger.RemoveAtChecked(0, 1)
	assert.ErrorIs(t, err, shared.ErrIndexOutOfRange)
	assert.Equal(t, 1, ledger.Len())

	removed, err := ledger.RemoveAtChecked(0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed.ProductID)
	assert.True(t, ledger.IsEmpty())
}

func TestLedger_Totals(t *testing.T) {
	t.Run("two widgets at 10 with rate 15000", func(t *testing.T) {
		ledger, _ := setupLedger(t)
		_, _ = ledger.Add(1)
		_, _ = ledger.Add(1)

		lines := ledger.Lines()
		require.Len(t, lines, 1)

		unit, err := ledger.UnitPrice(lines[0])
		require.NoError(t, err)
		assert.Equal(t, int64(150000), unit.IntPart())

		total, err := ledger.GrandTotal()
		require.NoError(t, err)
		assert.Equal(t, int64(300000), total.IntPart())
	})

	t.Run("grand total is the sum of per-line rounded totals", func(t *testing.T) {
		ledger, _ := setupLedger(t)
		for range 3 {
			_, _ = ledger.Add(3)
		}
		_, _ = ledger.Add(2)
		_, _ = ledger.Add(1)

		sum := int64(0)
		for _, line := range ledger.Lines() {
			lineTotal, err := ledger.LineTotal(line)
			require.NoError(t, err)
			sum += lineTotal.IntPart()
		}

		total, err := ledger.GrandTotal()
		require.NoError(t, err)
		assert.Equal(t, sum, total.IntPart())
		// 3 × round(1.5) + round(1649250) + round(150000)
		assert.Equal(t, int64(6+1649250+150000), total.IntPart())
	})

	t.Run("empty ledger totals zero", func(t *testing.T) {
		ledger, _ := setupLedger(t)
		total, err := ledger.GrandTotal()
		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})
}

func TestLedger_Clear(t *testing.T) {
	ledger, _ := setupLedger(t)
	_, _ = ledger.Add(1)
	_, _ = ledger.Add(2)

	ledger.Clear()

	assert.True(t, ledger.IsEmpty())
	qty, err := ledger.Add(1)
	require.NoError(t, err)
	assert.Equal(t, 1, qty)
}

func TestLedger_Prune(t *testing.T) {
	ledger, store := setupLedger(t)
	_, _ = ledger.Add(1)
	_, _ = ledger.Add(2)
	_, _ = ledger.Add(3)

	require.NoError(t, store.Load([]catalog.RawProduct{raw(2, "Gadget", "109.95")}))

	dropped := ledger.Prune(store.Has)

	assert.Len(t, dropped, 2)
	assert.Equal(t, []Line{{ProductID: 2, Quantity: 1}}, ledger.Lines())
}

func TestLedger_Lines_ReturnsCopy(t *testing.T) {
	ledger, _ := setupLedger(t)
	_, _ = ledger.Add(1)

	lines := ledger.Lines()
	lines[0].Quantity = 42

	assert.Equal(t, 1, ledger.TotalQuantity())
}
