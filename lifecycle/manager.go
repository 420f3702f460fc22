// Package lifecycle owns the case state machine: PENDING until resolved,
// RESOLVED forever after.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/court-docket-api/models"
	"github.com/linesmerrill/court-docket-api/store"
)

// Manager applies status transitions and their paired writes through a CaseStore
type Manager struct {
	Store store.CaseStore
	Now   func() time.Time
}

// NewManager returns a Manager backed by s
func NewManager(s store.CaseStore) *Manager {
	return &Manager{Store: s, Now: time.Now}
}

// CreateCase files a new PENDING case with its initial hearing
func (m *Manager) CreateCase(ctx context.Context, details models.CaseDetails, hearingDate time.Time) (*models.Case, error) {
	details.CaseStartDate = m.Now()
	c, err := m.Store.CreateCase(ctx, details, hearingDate)
	if err != nil {
		return nil, err
	}
	zap.S().Infow("case filed",
		"cin", c.Details.CIN,
		"hearingDate", hearingDate,
	)
	return c, nil
}

// Resolve appends the closing summary and marks the case RESOLVED with a
// completion date. A case that is already resolved is left untouched.
func (m *Manager) Resolve(ctx context.Context, cin, summary string) (*models.Case, error) {
	var resolved *models.Case
	err := m.Store.Atomic(ctx, func(ctx context.Context, tx store.CaseStore) error {
		c, err := openCase(ctx, tx, cin)
		if err != nil {
			return err
		}
		if _, err := tx.AddSummary(ctx, c.ID, summary); err != nil {
			return err
		}
		completedAt := m.Now()
		if completedAt.Before(c.Details.CaseStartDate) {
			completedAt = c.Details.CaseStartDate
		}
		if err := tx.SetStatus(ctx, c.ID, models.CaseStatusResolved, &completedAt); err != nil {
			return err
		}
		resolved, err = tx.FindByCIN(ctx, cin)
		return err
	})
	if err != nil {
		return nil, err
	}
	zap.S().Infow("case resolved", "cin", cin)
	return resolved, nil
}

// UpdateStillPending appends a summary and, when nextHearing is set, schedules
// the next hearing. Both writes land together or not at all.
func (m *Manager) UpdateStillPending(ctx context.Context, cin, summary string, nextHearing *time.Time) (*models.Case, error) {
	var updated *models.Case
	err := m.Store.Atomic(ctx, func(ctx context.Context, tx store.CaseStore) error {
		c, err := openCase(ctx, tx, cin)
		if err != nil {
			return err
		}
		if _, err := tx.AddSummary(ctx, c.ID, summary); err != nil {
			return err
		}
		if nextHearing != nil {
			if _, err := tx.AddHearing(ctx, c.ID, *nextHearing); err != nil {
				return err
			}
		}
		updated, err = tx.FindByCIN(ctx, cin)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// QueryByCIN returns the case with its hearings and summaries
func (m *Manager) QueryByCIN(ctx context.Context, cin string) (*models.Case, error) {
	return m.Store.FindByCIN(ctx, cin)
}

// QueryPending lists pending cases, optionally started inside window
func (m *Manager) QueryPending(ctx context.Context, window *models.DateRange) ([]models.Case, error) {
	return m.Store.ListByStatus(ctx, models.CaseStatusPending, window)
}

// QueryResolved lists resolved cases, optionally completed inside window
func (m *Manager) QueryResolved(ctx context.Context, window *models.DateRange) ([]models.Case, error) {
	return m.Store.ListByStatus(ctx, models.CaseStatusResolved, window)
}

func openCase(ctx context.Context, tx store.CaseStore, cin string) (*models.Case, error) {
	c, err := tx.FindByCIN(ctx, cin)
	if err != nil {
		return nil, err
	}
	if c.Details.Status == models.CaseStatusResolved {
		return nil, fmt.Errorf("case %s: %w", cin, models.ErrAlreadyResolved)
	}
	// the read above is a snapshot, claim the case before writing around it
	if err := tx.TouchPending(ctx, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}
