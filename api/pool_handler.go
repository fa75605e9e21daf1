// Package api exposes pool statistics and maintenance operations over
// HTTP, for operational tooling. It intentionally has no endpoint that
// hands out a connection; handles only move through the Go API.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/guileen/dbpool/pool"
)

// defaultStaleAge matches the CloseStale default when no age is given.
const defaultStaleAge = 10 * time.Minute

type PoolHandler struct {
	pool *pool.Pool
}

func NewPoolHandler(p *pool.Pool) *PoolHandler {
	return &PoolHandler{pool: p}
}

func (h *PoolHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/pool", func(r chi.Router) {
		r.Get("/stats", h.GetStats)
		r.Post("/close-idle", h.CloseIdle)
		r.Post("/close-stale", h.CloseStale)
		r.Post("/close-all", h.CloseAll)
	})
}

type StatsResponse struct {
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Exhausted     uint64 `json:"exhausted"`
	ConnectErrors uint64 `json:"connect_errors"`
	StaleClosed   uint64 `json:"stale_closed"`
	ReuseRefused  uint64 `json:"reuse_refused"`
	DeadDiscarded uint64 `json:"dead_discarded"`
	Idle          int    `json:"idle"`
	InUse         int    `json:"in_use"`
}

type CloseStaleResponse struct {
	Closed int `json:"closed"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *PoolHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.pool.Stats()

	writeJSON(w, http.StatusOK, StatsResponse{
		Hits:          stats.Hits,
		Misses:        stats.Misses,
		Exhausted:     stats.Exhausted,
		ConnectErrors: stats.ConnectErrors,
		StaleClosed:   stats.StaleClosed,
		ReuseRefused:  stats.ReuseRefused,
		DeadDiscarded: stats.DeadDiscarded,
		Idle:          stats.Idle,
		InUse:         stats.InUse,
	})
}

func (h *PoolHandler) CloseIdle(w http.ResponseWriter, r *http.Request) {
	h.pool.CloseIdle()
	w.WriteHeader(http.StatusNoContent)
}

// CloseStale accepts an optional "age" query parameter as a Go duration
// string, e.g. ?age=30m.
func (h *PoolHandler) CloseStale(w http.ResponseWriter, r *http.Request) {
	age := defaultStaleAge
	if ageStr := r.URL.Query().Get("age"); ageStr != "" {
		parsed, err := time.ParseDuration(ageStr)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid age parameter"})
			return
		}
		age = parsed
	}

	closed := h.pool.CloseStale(age)
	writeJSON(w, http.StatusOK, CloseStaleResponse{Closed: closed})
}

func (h *PoolHandler) CloseAll(w http.ResponseWriter, r *http.Request) {
	h.pool.CloseAll()
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
