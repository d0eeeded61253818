package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/go-mediate/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/go-mediate/internal/ports"
)

// mockHealthRegistry is a testify mock for ports.HealthRegistry.
type mockHealthRegistry struct {
	mock.Mock
}

func (m *mockHealthRegistry) Register(checker ports.HealthChecker) {
	m.Called(checker)
}

func (m *mockHealthRegistry) CheckAll(ctx context.Context) map[string]error {
	results, _ := m.Called(ctx).Get(0).(map[string]error)
	return results
}

func newHealthHandler(t *testing.T, results map[string]error) *handlers.HealthHandler {
	t.Helper()

	registry := &mockHealthRegistry{}
	registry.Test(t)
	registry.On("CheckAll", mock.Anything).Return(results).Maybe()
	t.Cleanup(func() { registry.AssertExpectations(t) })

	return handlers.NewHealthHandler(registry)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "decoding response body")
	return v
}

// --- Liveness ---

func TestLiveness_AlwaysOK(t *testing.T) {
	t.Parallel()

	h := newHealthHandler(t, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/live", http.NoBody)
	h.Liveness(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[map[string]string](t, rec)
	require.Equal(t, "ok", resp["status"])
}

// --- Readiness ---

func TestReadiness_AllHealthy(t *testing.T) {
	t.Parallel()

	h := newHealthHandler(t, map[string]error{
		"dispatch-endpoint": nil,
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", http.NoBody)
	h.Readiness(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[map[string]any](t, rec)
	require.Equal(t, "ready", resp["status"])

	checks, ok := resp["checks"].(map[string]any)
	require.True(t, ok, "checks field not a map")
	require.Equal(t, "ok", checks["dispatch-endpoint"])
}

func TestReadiness_Unhealthy(t *testing.T) {
	t.Parallel()

	h := newHealthHandler(t, map[string]error{
		"dispatch-endpoint": errors.New("connection refused"),
		"sqlite":            nil,
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", http.NoBody)
	h.Readiness(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	resp := decodeBody[map[string]any](t, rec)
	require.Equal(t, "not_ready", resp["status"])

	checks, ok := resp["checks"].(map[string]any)
	require.True(t, ok, "checks field not a map")
	require.Equal(t, "connection refused", checks["dispatch-endpoint"])
	require.Equal(t, "ok", checks["sqlite"])
}

func TestReadiness_NoCheckers(t *testing.T) {
	t.Parallel()

	h := newHealthHandler(t, map[string]error{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", http.NoBody)
	h.Readiness(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
