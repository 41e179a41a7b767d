// Package server exposes the paper trading engine over HTTP. It is the
// approval surface: a human reviews pending proposals and approves or
// rejects them here (or through chat, which shares the same engine).
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/montyhq/monty/book"
	"github.com/montyhq/monty/engine"
	"github.com/montyhq/monty/journal"
	"github.com/montyhq/monty/market"
	"github.com/montyhq/monty/proposal"
)

type Server struct {
	engine *engine.Engine
	ledger *proposal.Ledger
	store  journal.Store
	log    *zap.Logger
}

func New(eng *engine.Engine, ledger *proposal.Ledger, store journal.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{engine: eng, ledger: ledger, store: store, log: log}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/proposals", s.listPending)
		r.Post("/proposals", s.createProposal)
		r.Post("/proposals/{id}/approve", s.approveProposal)
		r.Post("/proposals/{id}/reject", s.rejectProposal)

		r.Get("/positions", s.listPositions)
		r.Post("/positions/{symbol}/close", s.closePosition)

		r.Get("/portfolio", s.portfolio)
		r.Get("/trades", s.listTrades)
		r.Get("/quotes/{symbol}", s.quote)
	})
	return r
}

func (s *Server) listPending(w http.ResponseWriter, r *http.Request) {
	pending, err := s.ledger.Pending()
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"proposals": pending, "count": len(pending)})
}

type createProposalRequest struct {
	Symbol        string  `json:"symbol"`
	Side          string  `json:"side"`
	Quantity      float64 `json:"quantity"`
	AllocationPct float64 `json:"allocation_pct"`
	StopLossPct   float64 `json:"stop_loss_pct"`
	TakeProfitPct float64 `json:"take_profit_pct"`
	Reasoning     string  `json:"reasoning"`
}

func (s *Server) createProposal(w http.ResponseWriter, r *http.Request) {
	var req createProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	q, err := s.engine.Quotes().GetQuote(r.Context(), req.Symbol)
	if err != nil {
		s.respondErr(w, err)
		return
	}

	p, err := s.ledger.Create(proposal.Draft{
		Symbol:        req.Symbol,
		Side:          proposal.Side(req.Side),
		Price:         q.Price,
		Quantity:      req.Quantity,
		AllocationPct: req.AllocationPct,
		StopLossPct:   req.StopLossPct,
		TakeProfitPct: req.TakeProfitPct,
		Strategy:      "manual",
		Reasoning:     req.Reasoning,
	})
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusCreated, p)
}

func (s *Server) approveProposal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.engine.Approve(r.Context(), id)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, rec)
}

func (s *Server) rejectProposal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.ledger.Reject(id); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]string{"id": id, "status": string(proposal.StatusRejected)})
}

func (s *Server) listPositions(w http.ResponseWriter, r *http.Request) {
	summary, err := s.engine.Summarize(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	positions := summary.Positions
	if positions == nil {
		positions = []engine.PositionView{}
	}
	s.respond(w, http.StatusOK, map[string]any{"positions": positions, "count": len(positions)})
}

func (s *Server) closePosition(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	rec, err := s.engine.Close(r.Context(), symbol)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, rec)
}

func (s *Server) portfolio(w http.ResponseWriter, r *http.Request) {
	summary, err := s.engine.Summarize(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, summary)
}

func (s *Server) listTrades(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.respond(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	trades, err := s.store.ListTrades(limit)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	if trades == nil {
		trades = []journal.TradeRecord{}
	}
	s.respond(w, http.StatusOK, map[string]any{"trades": trades, "count": len(trades)})
}

func (s *Server) quote(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	q, err := s.engine.Quotes().GetQuote(r.Context(), symbol)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, q)
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("encode response", zap.Error(err))
	}
}

// respondErr maps domain errors onto HTTP statuses.
func (s *Server) respondErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, proposal.ErrNotFound), errors.Is(err, book.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, proposal.ErrInvalidProposal),
		errors.Is(err, proposal.ErrInvalidState),
		errors.Is(err, book.ErrOverfill),
		errors.Is(err, book.ErrPositionExists):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, proposal.ErrExpired):
		status = http.StatusGone
	case errors.Is(err, engine.ErrInsufficientFunds):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, market.ErrQuoteUnavailable):
		status = http.StatusBadGateway
	}
	s.respond(w, status, map[string]string{"error": err.Error()})
}
