package cache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/notes/internal/middleware/auth"
)

type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	m.ttls[key] = ttl
	return nil
}

type countingHandler struct {
	calls  int
	status int
}

func (h *countingHandler) serve(c echo.Context) error {
	h.calls++
	return c.JSON(h.status, map[string]any{"calls": h.calls, "user": auth.UserID(c)})
}

func do(mw echo.MiddlewareFunc, h echo.HandlerFunc, target, userID string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(auth.CtxUserID, userID)
	if err := mw(h)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestMiddleware_HitAfterMiss(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	h := &countingHandler{status: http.StatusOK}
	mw := Middleware(store, 5*time.Minute)

	first := do(mw, h.serve, "/api/v1/notes/user?title=a&pageSize=2", "u-1")
	second := do(mw, h.serve, "/api/v1/notes/user?pageSize=2&title=a", "u-1")

	assert.Equal(t, 1, h.calls)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	require.Len(t, store.ttls, 1)
	for _, ttl := range store.ttls {
		assert.Equal(t, 5*time.Minute, ttl)
	}
}

func TestMiddleware_KeyedByCaller(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	h := &countingHandler{status: http.StatusOK}
	mw := Middleware(store, time.Minute)

	do(mw, h.serve, "/api/v1/notes/user", "u-1")
	rec := do(mw, h.serve, "/api/v1/notes/user", "u-2")

	assert.Equal(t, 2, h.calls)
	assert.Contains(t, rec.Body.String(), `"user":"u-2"`)
}

func TestMiddleware_OnlyCachesOK(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	h := &countingHandler{status: http.StatusNotFound}
	mw := Middleware(store, time.Minute)

	do(mw, h.serve, "/api/v1/notes/x", "u-1")
	do(mw, h.serve, "/api/v1/notes/x", "u-1")

	assert.Equal(t, 2, h.calls)
	assert.Empty(t, store.data)
}

func TestMiddleware_StoreFaultPassesThrough(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.getErr = errors.New("connection refused")
	h := &countingHandler{status: http.StatusOK}
	mw := Middleware(store, time.Minute)

	rec := do(mw, h.serve, "/api/v1/notes", "u-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, h.calls)
}

func TestMiddleware_Disabled(t *testing.T) {
	t.Parallel()

	h := &countingHandler{status: http.StatusOK}
	mw := Middleware(nil, time.Minute)

	do(mw, h.serve, "/api/v1/notes", "u-1")
	do(mw, h.serve, "/api/v1/notes", "u-1")
	assert.Equal(t, 2, h.calls)
}
