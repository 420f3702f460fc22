package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/linesmerrill/court-docket-api/api"
	"github.com/linesmerrill/court-docket-api/models"
	"github.com/linesmerrill/court-docket-api/store"
)

const sweepTimeout = 5 * time.Minute

// Scheduler handles periodic background jobs for the docket
type Scheduler struct {
	cron     *cron.Cron
	Cases    store.CaseStore
	Metrics  *api.Metrics
	Schedule string
	// Now is the sweep's notion of the current time
	Now        func() time.Time
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cases store.CaseStore, m *api.Metrics, schedule string) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO")
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		Cases:      cases,
		Metrics:    m,
		Schedule:   schedule,
		Now:        time.Now,
		instanceID: instanceID,
	}
}

// Start registers the hearing sweep and begins the scheduler
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.Schedule, s.sweepHearings); err != nil {
		zap.S().Errorw("failed to register hearing sweep job", "error", err, "schedule", s.Schedule)
		return err
	}
	s.cron.Start()
	zap.S().Infow("docket scheduler started", "schedule", s.Schedule)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("docket scheduler stopped")
}

func (s *Scheduler) sweepHearings() {
	ctx, cancel := api.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	zap.S().Infow("running hearing sweep", "instance", s.instanceID)
	if _, err := s.SweepHearings(ctx); err != nil {
		zap.S().Errorw("hearing sweep failed", "error", err)
	}
}

// SweepHearings returns the pending cases whose latest hearing is already in
// the past and records their count on the stale cases gauge
func (s *Scheduler) SweepHearings(ctx context.Context) ([]models.Case, error) {
	pending, err := s.Cases.ListByStatus(ctx, models.CaseStatusPending, nil)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	var stale []models.Case
	for i := range pending {
		latest := pending[i].LatestHearing()
		if latest != nil && !latest.HearingDate.Before(now) {
			continue
		}
		stale = append(stale, pending[i])

		var last interface{}
		if latest != nil {
			last = latest.HearingDate
		}
		zap.S().Warnw("pending case has no upcoming hearing",
			"cin", pending[i].Details.CIN,
			"lastHearing", last,
		)
	}

	if s.Metrics != nil {
		s.Metrics.StalePendingCases.Set(float64(len(stale)))
	}
	zap.S().Infow("hearing sweep complete",
		"pendingChecked", len(pending),
		"stale", len(stale),
	)
	return stale, nil
}
