package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounters(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	r.UploadSucceeded(10)
	r.UploadSucceeded(5)
	r.UploadFailed("duplicate_header")
	r.UploadFailed("")
	r.RowsExported(ScopeAll, 7)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.uploads.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.uploads.WithLabelValues("duplicate_header")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.uploads.WithLabelValues("internal")))
	assert.Equal(t, 15.0, testutil.ToFloat64(r.rowsIngested))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.rowsExported.WithLabelValues(ScopeAll)))
}

func TestRecorderHandler(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	r.ObserveRequest("GET", "/api/expenses/", 200, 15*time.Millisecond)
	r.UploadSucceeded(1)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `expense_uploads_total{status="success"} 1`)
	assert.Contains(t, string(body), `expense_http_request_duration_seconds_count{method="GET",route="/api/expenses/",status="200"} 1`)
}
