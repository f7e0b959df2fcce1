// Package scheduler wires up the cron job that periodically refreshes the
// review-queue and ban-registry gauges.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"jobmate/trust-service/internal/metrics"
	"jobmate/trust-service/internal/scam"
)

// Source is the subset of scam.Service the sweep reads from.
type Source interface {
	PendingReviews(ctx context.Context) (int, error)
	BannedStats(ctx context.Context) (*scam.BanStats, error)
}

// Scheduler wraps robfig/cron and manages the sweep loop.
type Scheduler struct {
	cron *cron.Cron
	src  Source
	spec string // cron spec, e.g. "@every 15m"
}

// New creates a Scheduler that fires every intervalMinutes minutes.
func New(src Source, intervalMinutes int) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLogger(cron.DefaultLogger)),
		src:  src,
		spec: fmt.Sprintf("@every %dm", intervalMinutes),
	}
}

// Start registers the job and starts the scheduler. Also runs one sweep
// immediately so the gauges are populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.Sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	go s.Sweep(ctx)

	return nil
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[scheduler] Cron stopped")
}

// Sweep refreshes the gauges once. Errors are logged; the next tick retries.
func (s *Scheduler) Sweep(ctx context.Context) {
	pending, err := s.src.PendingReviews(ctx)
	if err != nil {
		log.Printf("[scheduler] PendingReviews error: %v", err)
	} else {
		metrics.SetPendingReviews(pending)
		if pending > 0 {
			log.Printf("[scheduler] %d flagged job(s) awaiting review", pending)
		}
	}

	st, err := s.src.BannedStats(ctx)
	if err != nil {
		log.Printf("[scheduler] BannedStats error: %v", err)
		return
	}
	for kind, n := range st.Total {
		metrics.SetBannedEntities(string(kind), n)
	}
}
