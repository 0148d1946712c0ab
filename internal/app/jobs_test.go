package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/skillswap-backend/internal/platform/logger"
	"github.com/yungbote/skillswap-backend/internal/services"
)

type countingReconciler struct{ runs int }

func (r *countingReconciler) Run(context.Context) (*services.ReconcileReport, error) {
	r.runs++
	return &services.ReconcileReport{}, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestSchedulerRegistersJobs(t *testing.T) {
	cfg := Config{ReconcileEnabled: true, ReconcileCron: "0 3 * * *", TokenPurgeCron: ""}
	s, err := newScheduler(testLogger(t), cfg, Services{Reconcile: &countingReconciler{}})
	if err != nil {
		t.Fatalf("newScheduler: %v", err)
	}
	if got := len(s.cron.Entries()); got != 1 {
		t.Fatalf("entries: want=1 got=%d", got)
	}

	cfg.ReconcileEnabled = false
	s, err = newScheduler(testLogger(t), cfg, Services{Reconcile: &countingReconciler{}})
	if err != nil {
		t.Fatalf("newScheduler disabled: %v", err)
	}
	if got := len(s.cron.Entries()); got != 0 {
		t.Fatalf("entries disabled: want=0 got=%d", got)
	}
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	cfg := Config{ReconcileEnabled: true, ReconcileCron: "every day"}
	if _, err := newScheduler(testLogger(t), cfg, Services{Reconcile: &countingReconciler{}}); err == nil {
		t.Fatalf("expected bad cron spec error")
	}
}

func TestSchedulerJobRunsAndStops(t *testing.T) {
	s, err := newScheduler(testLogger(t), Config{}, Services{})
	if err != nil {
		t.Fatalf("newScheduler: %v", err)
	}
	done := make(chan struct{})
	calls := 0
	if err := s.add("probe", "@every 1s", func(context.Context) error {
		calls++
		if calls == 1 {
			close(done)
		}
		return errors.New("probe failure is logged, not fatal")
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- s.Run(ctx) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("job did not run")
	}
	cancel()
	select {
	case err := <-runErr:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("scheduler did not stop")
	}
}
