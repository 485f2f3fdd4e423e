package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElCzar/secchub-backend-sub001/internal/service"
)

func TestMetricsHandlerReady(t *testing.T) {
	healthy := func(ctx context.Context) error { return nil }
	broken := func(ctx context.Context) error { return errors.New("connection refused") }

	handler := NewMetricsHandler(nil, map[string]ReadinessCheck{"postgres": healthy})
	c, w := newActorContext(t, http.MethodGet, "/ready", nil, nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	handler = NewMetricsHandler(nil, map[string]ReadinessCheck{"postgres": healthy, "redis": broken})
	c, w = newActorContext(t, http.MethodGet, "/ready", nil, nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsHandlerSummary(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordConflicts(3)
	handler := NewMetricsHandler(metrics, nil)
	c, w := newActorContext(t, http.MethodGet, "/metrics/summary", nil, nil)

	handler.Summary(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 3, data["conflicts_reported"])
}

func TestMetricsHandlerDisabled(t *testing.T) {
	handler := NewMetricsHandler(nil, nil)
	c, _ := newActorContext(t, http.MethodGet, "/metrics", nil, nil)

	handler.Prometheus(c)

	assert.Equal(t, http.StatusServiceUnavailable, c.Writer.Status())
}
