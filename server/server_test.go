package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/montyhq/monty/book"
	"github.com/montyhq/monty/engine"
	"github.com/montyhq/monty/journal"
	"github.com/montyhq/monty/market"
	"github.com/montyhq/monty/portfolio"
	"github.com/montyhq/monty/proposal"
)

type fakeQuotes map[string]float64

func (f fakeQuotes) GetQuote(_ context.Context, symbol string) (market.Quote, error) {
	p, ok := f[symbol]
	if !ok {
		return market.Quote{}, market.ErrQuoteUnavailable
	}
	return market.Quote{Symbol: symbol, Price: p, Time: time.Now()}, nil
}

func newTestServer(t *testing.T, quotes fakeQuotes) (*httptest.Server, *proposal.Ledger) {
	t.Helper()
	store := journal.NewMemory()
	ledger := proposal.NewLedger(store, proposal.DefaultTTL)
	b := book.New(store)
	acct, err := portfolio.New(store, 10_000)
	require.NoError(t, err)
	eng := engine.New(ledger, b, acct, store, quotes, zap.NewNop())

	srv := httptest.NewServer(New(eng, ledger, store, zap.NewNop()).Router())
	t.Cleanup(srv.Close)
	return srv, ledger
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, fakeQuotes{})
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProposalLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t, fakeQuotes{"BTCUSDT": 60_000})

	resp := postJSON(t, srv.URL+"/api/proposals", `{
		"symbol": "BTCUSDT",
		"side": "BUY",
		"quantity": 0.1,
		"stop_loss_pct": 5,
		"reasoning": "test"
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created proposal.Proposal
	decode(t, resp, &created)
	assert.Equal(t, proposal.StatusPending, created.Status)
	assert.Equal(t, 60_000.0, created.Price)
	assert.Equal(t, 57_000.0, created.StopLoss)

	var pending struct {
		Count int `json:"count"`
	}
	resp, err := http.Get(srv.URL + "/api/proposals")
	require.NoError(t, err)
	decode(t, resp, &pending)
	assert.Equal(t, 1, pending.Count)

	resp = postJSON(t, srv.URL+"/api/proposals/"+created.ID+"/approve", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec journal.TradeRecord
	decode(t, resp, &rec)
	assert.Equal(t, 0.1, rec.Quantity)

	resp, err = http.Get(srv.URL + "/api/positions")
	require.NoError(t, err)
	var positions struct {
		Count int `json:"count"`
	}
	decode(t, resp, &positions)
	assert.Equal(t, 1, positions.Count)
}

func TestApproveUnknownProposal(t *testing.T) {
	srv, _ := newTestServer(t, fakeQuotes{})
	resp := postJSON(t, srv.URL+"/api/proposals/nope/approve", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInsufficientFundsStatus(t *testing.T) {
	srv, _ := newTestServer(t, fakeQuotes{"BTCUSDT": 60_000})

	resp := postJSON(t, srv.URL+"/api/proposals", `{"symbol":"BTCUSDT","side":"BUY","quantity":1}`)
	var created proposal.Proposal
	decode(t, resp, &created)

	resp = postJSON(t, srv.URL+"/api/proposals/"+created.ID+"/approve", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestQuoteEndpointUnavailable(t *testing.T) {
	srv, _ := newTestServer(t, fakeQuotes{})
	resp, err := http.Get(srv.URL + "/api/quotes/NOPE")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestRejectProposalOverHTTP(t *testing.T) {
	srv, ledger := newTestServer(t, fakeQuotes{"ETHUSDT": 2_500})

	resp := postJSON(t, srv.URL+"/api/proposals", `{"symbol":"ETHUSDT","side":"BUY","allocation_pct":10}`)
	var created proposal.Proposal
	decode(t, resp, &created)

	resp = postJSON(t, srv.URL+"/api/proposals/"+created.ID+"/reject", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	got, err := ledger.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, proposal.StatusRejected, got.Status)
}

func TestTradesEndpointBadLimit(t *testing.T) {
	srv, _ := newTestServer(t, fakeQuotes{})
	resp, err := http.Get(srv.URL + "/api/trades?limit=abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
