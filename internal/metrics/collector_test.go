package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagestudio/internal/domain"
)

func TestCollectorGenerationLifecycle(t *testing.T) {
	c := NewCollector("test", "synthetic")

	c.Submitted()
	c.Submitted()
	assert.Equal(t, 2.0, testutil.ToFloat64(c.generationsInFlight))

	c.Settled(domain.PhaseSucceeded, time.Second)
	c.Discarded()
	c.Rejected()

	assert.Equal(t, 0.0, testutil.ToFloat64(c.generationsInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.generationsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.generationsDiscarded))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.generationsRejected))
	assert.Equal(t, 1, testutil.CollectAndCount(c.generationDuration))
}

func TestCollectorHandlerServesMetrics(t *testing.T) {
	c := NewCollector("test", "imagen")
	c.RecordHTTPRequest(http.MethodGet, "/api/state", http.StatusOK, 10*time.Millisecond)
	c.TrackGauge("test", "active_sessions", "Sessions", func() float64 { return 3 })

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	text := string(body)
	assert.True(t, strings.Contains(text, `test_http_requests_total{method="GET",route="/api/state",status="200"} 1`), text)
	assert.Contains(t, text, "test_active_sessions 3")
	assert.Contains(t, text, "go_goroutines")
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector("test", "imagen")
	b := NewCollector("test", "imagen")
	a.Rejected()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.generationsRejected))
}
