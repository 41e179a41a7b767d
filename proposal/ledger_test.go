package proposal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montyhq/monty/journal"
)

func newTestLedger(t *testing.T) (*Ledger, *journal.Memory, *time.Time) {
	t.Helper()

	store := journal.NewMemory()
	l := NewLedger(store, DefaultTTL)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.Now = func() time.Time { return now }
	return l, store, &now
}

func buyDraft() Draft {
	return Draft{
		Symbol:        "BTC/USDT",
		Side:          Buy,
		Price:         60000,
		AllocationPct: 5,
		StopLossPct:   5,
		TakeProfitPct: 10,
		Strategy:      "rsi-dip",
		Reasoning:     "oversold bounce",
	}
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLedger(t)

	cases := []struct {
		name  string
		mut   func(*Draft)
	}{
		{"bad side", func(d *Draft) { d.Side = "HOLD" }},
		{"zero price", func(d *Draft) { d.Price = 0 }},
		{"negative price", func(d *Draft) { d.Price = -1 }},
		{"no size", func(d *Draft) { d.Quantity = 0; d.AllocationPct = 0 }},
		{"allocation over 100", func(d *Draft) { d.AllocationPct = 150 }},
		{"empty symbol", func(d *Draft) { d.Symbol = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := buyDraft()
			tc.mut(&d)
			_, err := l.Create(d)
			assert.ErrorIs(t, err, ErrInvalidProposal)
		})
	}
}

func TestCreateSetsExpiryAndLevels(t *testing.T) {
	t.Parallel()

	l, store, now := newTestLedger(t)

	p, err := l.Create(buyDraft())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, p.Status)
	assert.True(t, p.ExpiresAt.Equal(now.Add(30*time.Minute)))
	assert.InDelta(t, 57000.0, p.StopLoss, 1e-6)   // -5%
	assert.InDelta(t, 66000.0, p.TakeProfit, 1e-6) // +10%
	assert.NotEmpty(t, p.ID)

	// Persisted as PENDING.
	rec, err := store.GetProposal(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", rec.Status)
}

func TestExpireStaleIdempotent(t *testing.T) {
	t.Parallel()

	l, _, now := newTestLedger(t)

	p, err := l.Create(buyDraft())
	require.NoError(t, err)

	at := now.Add(31 * time.Minute)

	n, err := l.ExpireStale(at)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Same clock value again: no further change.
	n, err = l.ExpireStale(at)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	got, err := l.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, got.Status)
}

func TestExpireStaleBoundary(t *testing.T) {
	t.Parallel()

	l, _, now := newTestLedger(t)

	p, err := l.Create(buyDraft())
	require.NoError(t, err)

	// expiry == now counts as expired (expiry <= now).
	n, err := l.ExpireStale(now.Add(30 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, _ := l.Get(p.ID)
	assert.Equal(t, StatusExpired, got.Status)
}

func TestApprove(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLedger(t)

	p, err := l.Create(buyDraft())
	require.NoError(t, err)

	approved, err := l.Approve(p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)

	// Second approve fails: no longer PENDING.
	_, err = l.Approve(p.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestApproveUnknown(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLedger(t)

	_, err := l.Approve("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApproveExpiredFlipsStatus(t *testing.T) {
	t.Parallel()

	l, _, now := newTestLedger(t)

	p, err := l.Create(buyDraft())
	require.NoError(t, err)

	// Advance the clock past the TTL without running ExpireStale first;
	// approve itself must notice and flip the status.
	*now = now.Add(31 * time.Minute)

	_, err = l.Approve(p.ID)
	assert.ErrorIs(t, err, ErrExpired)

	got, err := l.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, got.Status)
}

func TestReject(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLedger(t)

	p, err := l.Create(buyDraft())
	require.NoError(t, err)

	require.NoError(t, l.Reject(p.ID))

	got, _ := l.Get(p.ID)
	assert.Equal(t, StatusRejected, got.Status)

	assert.ErrorIs(t, l.Reject(p.ID), ErrInvalidState)
	assert.ErrorIs(t, l.Reject("nope"), ErrNotFound)
}

func TestRejectAllPendingSkipsTerminal(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLedger(t)

	p1, err := l.Create(buyDraft())
	require.NoError(t, err)
	p2, err := l.Create(buyDraft())
	require.NoError(t, err)

	_, err = l.Approve(p1.ID)
	require.NoError(t, err)

	n, err := l.RejectAllPending()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got1, _ := l.Get(p1.ID)
	got2, _ := l.Get(p2.ID)
	assert.Equal(t, StatusApproved, got1.Status)
	assert.Equal(t, StatusRejected, got2.Status)

	// A second sweep is a no-op, not an error.
	n, err = l.RejectAllPending()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPendingSweepsStale(t *testing.T) {
	t.Parallel()

	l, _, now := newTestLedger(t)

	_, err := l.Create(buyDraft())
	require.NoError(t, err)

	*now = now.Add(31 * time.Minute)

	fresh := buyDraft()
	fresh.Symbol = "ETH/USDT"
	p2, err := l.Create(fresh)
	require.NoError(t, err)

	pending, err := l.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, p2.ID, pending[0].ID)
}

func TestMarkExecuted(t *testing.T) {
	t.Parallel()

	l, store, _ := newTestLedger(t)

	p, err := l.Create(buyDraft())
	require.NoError(t, err)

	// Must be APPROVED first.
	assert.ErrorIs(t, l.MarkExecuted(p.ID, "t1", 0.1), ErrInvalidState)

	_, err = l.Approve(p.ID)
	require.NoError(t, err)
	require.NoError(t, l.MarkExecuted(p.ID, "t1", 0.1))

	got, _ := l.Get(p.ID)
	assert.Equal(t, StatusExecuted, got.Status)
	assert.Equal(t, "t1", got.TradeID)
	assert.InDelta(t, 0.1, got.Quantity, 1e-12)

	rec, err := store.GetProposal(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "EXECUTED", rec.Status)
	assert.Equal(t, "t1", rec.TradeID)
}

func TestMarkFailed(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLedger(t)

	p, err := l.Create(buyDraft())
	require.NoError(t, err)
	_, err = l.Approve(p.ID)
	require.NoError(t, err)

	require.NoError(t, l.MarkFailed(p.ID))

	got, _ := l.Get(p.ID)
	assert.Equal(t, StatusRejected, got.Status)
}

func TestLoadRestoresLiveProposals(t *testing.T) {
	t.Parallel()

	store := journal.NewMemory()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	l1 := NewLedger(store, DefaultTTL)
	l1.Now = func() time.Time { return now }

	p1, err := l1.Create(buyDraft())
	require.NoError(t, err)
	p2, err := l1.Create(buyDraft())
	require.NoError(t, err)
	require.NoError(t, l1.Reject(p2.ID))

	// Fresh ledger over the same store: only the live proposal returns.
	l2 := NewLedger(store, DefaultTTL)
	l2.Now = func() time.Time { return now }
	require.NoError(t, l2.Load())

	pending, err := l2.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, p1.ID, pending[0].ID)

	_, err = l2.Get(p2.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
