package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guileen/dbpool/pool"
)

// stubAdapter hands out integer tokens and records closes.
type stubAdapter struct {
	mu       sync.Mutex
	connects int
	closes   int
}

func (s *stubAdapter) Connect(ctx context.Context) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connects++
	return s.connects, nil
}

func (s *stubAdapter) Close(raw any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

func (s *stubAdapter) IsClosed(ctx context.Context, raw any) bool { return false }

func (s *stubAdapter) CanReuse(ctx context.Context, raw any) bool { return true }

func setupServer(t *testing.T) (*pool.Pool, *httptest.Server) {
	t.Helper()

	p := pool.New(pool.Config{MaxConnections: 4, WaitTimeout: 0}, &stubAdapter{})

	r := chi.NewRouter()
	NewPoolHandler(p).RegisterRoutes(r)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return p, server
}

func TestGetStats(t *testing.T) {
	p, server := setupServer(t)

	h, err := p.Checkout(context.Background())
	require.NoError(t, err)
	p.Put(h)
	_, err = p.Checkout(context.Background())
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/api/pool/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats StatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.InUse)
	assert.Equal(t, 0, stats.Idle)
}

func TestCloseIdleEndpoint(t *testing.T) {
	p, server := setupServer(t)

	h, err := p.Checkout(context.Background())
	require.NoError(t, err)
	p.Put(h)
	require.Equal(t, 1, p.Stats().Idle)

	resp, err := http.Post(server.URL+"/api/pool/close-idle", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, p.Stats().Idle)
}

func TestCloseStaleEndpoint(t *testing.T) {
	p, server := setupServer(t)

	_, err := p.Checkout(context.Background())
	require.NoError(t, err)

	t.Run("ZeroAge", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/api/pool/close-stale?age=0s", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body CloseStaleResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, 1, body.Closed)
		assert.Equal(t, 0, p.Stats().InUse)
	})

	t.Run("InvalidAge", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/api/pool/close-stale?age=whenever", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.NotEmpty(t, body.Error)
	})
}

func TestCloseAllEndpoint(t *testing.T) {
	p, server := setupServer(t)

	h1, err := p.Checkout(context.Background())
	require.NoError(t, err)
	_, err = p.Checkout(context.Background())
	require.NoError(t, err)
	p.Put(h1)

	resp, err := http.Post(server.URL+"/api/pool/close-all", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	stats := p.Stats()
	assert.Equal(t, 0, stats.Idle)
	assert.Equal(t, 0, stats.InUse)
}
