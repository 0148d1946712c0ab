package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/skillswap-backend/internal/platform/logger"
)

// Metrics is the process-wide metric registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	aggregateOps       *CounterVec
	aggregateLatency   *HistogramVec
	aggregateConflicts *CounterVec
	aggregateRetries   *CounterVec

	ledgerTokens       *CounterVec
	sessionTransitions *CounterVec
	reconcileDrift     *GaugeVec
	reconcileRuns      *CounterVec
	realtimeEvents     *CounterVec

	dbStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge

	scrapeInterval time.Duration
}

func NewMetrics(scrapeInterval time.Duration) *Metrics {
	if scrapeInterval <= 0 {
		scrapeInterval = 10 * time.Second
	}
	return &Metrics{
		apiRequests: NewCounterVec("ss_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"ss_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight: NewGauge("ss_api_inflight_requests", "In-flight API requests."),

		aggregateOps: NewCounterVec("ss_aggregate_operations_total", "Aggregate write operations by operation/status.", []string{"op", "status"}),
		aggregateLatency: NewHistogramVec(
			"ss_aggregate_operation_duration_seconds",
			"Aggregate write latency in seconds by operation.",
			[]string{"op"},
			[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		),
		aggregateConflicts: NewCounterVec("ss_aggregate_conflicts_total", "Aggregate writes rejected by a concurrency guard.", []string{"op"}),
		aggregateRetries:   NewCounterVec("ss_aggregate_retryable_total", "Aggregate writes that failed with a retryable error.", []string{"op"}),

		ledgerTokens:       NewCounterVec("ss_ledger_tokens_total", "Tokens moved through the ledger by transaction type.", []string{"type"}),
		sessionTransitions: NewCounterVec("ss_session_transitions_total", "Session lifecycle transitions by target status.", []string{"status"}),
		reconcileDrift:     NewGaugeVec("ss_reconcile_drift_rows", "Rows found drifting in the last reconciliation run.", []string{"kind"}),
		reconcileRuns:      NewCounterVec("ss_reconcile_runs_total", "Reconciliation runs by outcome.", []string{"status"}),
		realtimeEvents:     NewCounterVec("ss_realtime_events_total", "Realtime events emitted by event name.", []string{"event"}),

		dbStats:   NewGaugeVec("ss_db_pool", "database/sql pool statistics.", []string{"stat"}),
		redisUp:   NewGauge("ss_redis_up", "1 when the last Redis ping succeeded."),
		redisPing: NewGauge("ss_redis_ping_seconds", "Latency of the last Redis ping."),

		scrapeInterval: scrapeInterval,
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, pw := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.aggregateOps, m.aggregateLatency, m.aggregateConflicts, m.aggregateRetries,
		m.ledgerTokens, m.sessionTransitions, m.reconcileDrift, m.reconcileRuns, m.realtimeEvents,
		m.dbStats, m.redisUp, m.redisPing,
	} {
		if err := pw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAggregateOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.Inc(op, status)
	m.aggregateLatency.Observe(dur.Seconds(), op)
}

func (m *Metrics) IncAggregateConflict(op string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.Inc(op)
}

func (m *Metrics) IncAggregateRetry(op string) {
	if m == nil {
		return
	}
	m.aggregateRetries.Inc(op)
}

// AddLedgerTokens records the absolute token amount of one ledger row.
func (m *Metrics) AddLedgerTokens(txType string, amount int64) {
	if m == nil || amount == 0 {
		return
	}
	if amount < 0 {
		amount = -amount
	}
	m.ledgerTokens.Add(float64(amount), txType)
}

func (m *Metrics) IncSessionTransition(status string) {
	if m == nil {
		return
	}
	m.sessionTransitions.Inc(status)
}

func (m *Metrics) SetReconcileDrift(kind string, rows int) {
	if m == nil {
		return
	}
	m.reconcileDrift.Set(float64(rows), kind)
}

func (m *Metrics) IncReconcileRun(status string) {
	if m == nil {
		return
	}
	m.reconcileRuns.Inc(status)
}

func (m *Metrics) IncRealtimeEvent(event string) {
	if m == nil {
		return
	}
	m.realtimeEvents.Inc(event)
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.dbStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

// StatusLabel renders an HTTP status code as a metric label.
func StatusLabel(code int) string {
	return strconv.Itoa(code)
}
