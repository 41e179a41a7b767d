package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montyhq/monty/book"
	"github.com/montyhq/monty/journal"
)

func newTestAccountant(t *testing.T, balance float64) (*Accountant, *journal.Memory) {
	t.Helper()

	store := journal.NewMemory()
	a, err := New(store, balance)
	require.NoError(t, err)
	a.Now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return a, store
}

func TestNewSeedsInitialBalance(t *testing.T) {
	t.Parallel()

	a, store := newTestAccountant(t, 10000)

	st := a.State()
	assert.InDelta(t, 10000.0, st.Cash, 1e-9)
	assert.InDelta(t, 10000.0, st.InitialBalance, 1e-9)

	rec, ok, err := store.LoadPortfolio()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 10000.0, rec.Cash, 1e-9)
}

func TestNewRestoresPriorState(t *testing.T) {
	t.Parallel()

	store := journal.NewMemory()
	require.NoError(t, store.SavePortfolio(journal.PortfolioRecord{
		Cash:           3990,
		InitialBalance: 10000,
		UpdatedAt:      time.Now(),
	}))

	// The constructor's balance argument is ignored once state exists.
	a, err := New(store, 50000)
	require.NoError(t, err)

	st := a.State()
	assert.InDelta(t, 3990.0, st.Cash, 1e-9)
	assert.InDelta(t, 10000.0, st.InitialBalance, 1e-9)
}

func TestApplyPersists(t *testing.T) {
	t.Parallel()

	a, store := newTestAccountant(t, 10000)

	require.NoError(t, a.Apply(-6010))
	require.NoError(t, a.Apply(+250))
	assert.InDelta(t, 4240.0, a.Cash(), 1e-9)

	rec, _, err := store.LoadPortfolio()
	require.NoError(t, err)
	assert.InDelta(t, 4240.0, rec.Cash, 1e-9)
}

func TestEquity(t *testing.T) {
	t.Parallel()

	a, _ := newTestAccountant(t, 10000)
	require.NoError(t, a.Apply(-6000))

	positions := []book.Position{
		{Symbol: "BTC/USDT", Side: book.Long, EntryPrice: 60000, Quantity: 0.1},
	}

	equity, err := a.Equity(positions, map[string]float64{"BTC/USDT": 62000})
	require.NoError(t, err)
	assert.InDelta(t, 4000+0.1*62000, equity, 1e-9)

	// (10200 - 10000) / 10000 * 100
	assert.InDelta(t, 2.0, a.TotalReturnPct(), 1e-9)
}

func TestEquityMissingQuote(t *testing.T) {
	t.Parallel()

	a, _ := newTestAccountant(t, 10000)

	positions := []book.Position{
		{Symbol: "BTC/USDT", Side: book.Long, EntryPrice: 60000, Quantity: 0.1},
		{Symbol: "ETH/USDT", Side: book.Long, EntryPrice: 3000, Quantity: 1},
	}

	_, err := a.Equity(positions, map[string]float64{"BTC/USDT": 62000})
	assert.ErrorIs(t, err, ErrMissingQuote)
}

func TestTotalReturnBeforeAnyEquity(t *testing.T) {
	t.Parallel()

	a, _ := newTestAccountant(t, 10000)

	// No positions marked yet: last equity is just cash.
	assert.InDelta(t, 0.0, a.TotalReturnPct(), 1e-9)
}
