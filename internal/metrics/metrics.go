// Package metrics exposes upload, export and request metrics on a private
// Prometheus registry.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ScopeDataset = "dataset"
	ScopeAll     = "all"
)

type Recorder struct {
	reg *prometheus.Registry

	uploads         *prometheus.CounterVec // expense_uploads_total
	rowsIngested    prometheus.Counter     // expense_rows_ingested_total
	rowsExported    *prometheus.CounterVec // expense_rows_exported_total
	requestDuration *prometheus.HistogramVec
}

func New() (*Recorder, error) {
	reg := prometheus.NewRegistry()

	uploads := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expense_uploads_total",
			Help: "CSV uploads by outcome (success or the error code).",
		},
		[]string{"status"},
	)
	rowsIngested := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "expense_rows_ingested_total",
			Help: "Rows stored by successful uploads.",
		},
	)
	rowsExported := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expense_rows_exported_total",
			Help: "Rows streamed out by CSV exports, by scope (dataset or all).",
		},
		[]string{"scope"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "expense_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	for name, c := range map[string]prometheus.Collector{
		"uploads counter":       uploads,
		"rows ingested counter": rowsIngested,
		"rows exported counter": rowsExported,
		"request histogram":     requestDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register %s: %w", name, err)
		}
	}

	return &Recorder{
		reg:             reg,
		uploads:         uploads,
		rowsIngested:    rowsIngested,
		rowsExported:    rowsExported,
		requestDuration: requestDuration,
	}, nil
}

func (r *Recorder) UploadSucceeded(rows int) {
	r.uploads.WithLabelValues("success").Inc()
	r.rowsIngested.Add(float64(rows))
}

func (r *Recorder) UploadFailed(code string) {
	if code == "" {
		code = "internal"
	}
	r.uploads.WithLabelValues(code).Inc()
}

func (r *Recorder) RowsExported(scope string, rows int) {
	r.rowsExported.WithLabelValues(scope).Add(float64(rows))
}

func (r *Recorder) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	r.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
