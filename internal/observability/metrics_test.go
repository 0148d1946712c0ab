package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestMetricsNilIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.ObserveAggregateOperation("op", "success", time.Millisecond)
	m.AddLedgerTokens("PURCHASED", 10)
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil write: %v", err)
	}
}

func TestWritePrometheusExposition(t *testing.T) {
	m := NewMetrics(time.Second)
	m.ObserveAPI("get", "/api/skills", "200", 20*time.Millisecond)
	m.ObserveAggregateOperation("Tokens.LedgerAggregate.Apply", "success", 3*time.Millisecond)
	m.IncAggregateConflict("Sessions.SessionAggregate.Start")
	m.AddLedgerTokens("SPENT_LEARNING", -20)
	m.AddLedgerTokens("SPENT_LEARNING", -20)

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`ss_api_requests_total{method="GET",route="/api/skills",status="200"} 1.000000`,
		`ss_aggregate_operations_total{op="Tokens.LedgerAggregate.Apply",status="success"} 1.000000`,
		`ss_aggregate_conflicts_total{op="Sessions.SessionAggregate.Start"} 1.000000`,
		`ss_ledger_tokens_total{type="SPENT_LEARNING"} 40.000000`,
		`ss_api_request_duration_seconds_bucket{method="GET",route="/api/skills",status="200",le="0.025"} 1`,
		"# TYPE ss_api_inflight_requests gauge",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in exposition:\n%s", want, out)
		}
	}
}

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := NewHistogramVec("h", "help", nil, []float64{1, 2})
	h.Observe(0.5)
	h.Observe(1.5)
	h.Observe(3)
	var buf bytes.Buffer
	if err := h.WritePrometheus(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`h_bucket{le="1"} 1`, `h_bucket{le="2"} 2`, `h_bucket{le="+Inf"} 3`, "h_count 3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}
