package service

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lumeweb.com/accountd/core"
)

func TestMetricsService(t *testing.T) {
	m := NewMetricsService(prometheus.NewRegistry())

	m.RecordAccountOperation("login", core.MetricOutcomeSuccess)
	m.RecordAccountOperation("login", core.MetricOutcomeSuccess)
	m.RecordAccountOperation("login", string(core.ErrKeyInvalidPassword))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations().WithLabelValues("login", core.MetricOutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations().WithLabelValues("login", string(core.ErrKeyInvalidPassword))))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "accountd_account_operations_total")
}
