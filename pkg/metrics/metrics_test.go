package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.Operation("distribute_aid", OutcomeSuccess)
	m.Operation("distribute_aid", OutcomeSuccess)
	m.Operation("distribute_aid", OutcomeRejected)
	m.Login(OutcomeDenied)

	body := scrape(t, m)
	assert.Contains(t, body, `relief_operations_total{operation="distribute_aid",outcome="success"} 2`)
	assert.Contains(t, body, `relief_operations_total{operation="distribute_aid",outcome="rejected"} 1`)
	assert.Contains(t, body, `relief_logins_total{outcome="denied"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Operation("x", OutcomeError)
		m.Login(OutcomeSuccess)
		m.Request("/", 200, time.Millisecond)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.Request("/crud/{tab}", http.StatusOK, 15*time.Millisecond)
	m.Operation("insert", OutcomeSuccess)

	body := scrape(t, m)
	assert.True(t, strings.Contains(body, `relief_operations_total{operation="insert",outcome="success"} 1`))
	assert.Contains(t, body, "relief_http_request_duration_seconds_bucket")
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
