// Package store defines the persistence contracts for cases, billing entries
// and user accounts, and an in-memory implementation of all three.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/court-docket-api/models"
)

// CaseStore is the durable record of cases, hearings and summaries. No two
// hearings may share a hearing date, compared by exact stored timestamp.
type CaseStore interface {
	// CreateCase creates a PENDING case with one hearing, or nothing at all
	// when the hearing date is taken.
	CreateCase(ctx context.Context, details models.CaseDetails, hearingDate time.Time) (*models.Case, error)
	FindByCIN(ctx context.Context, cin string) (*models.Case, error)
	// ListByStatus filters on case start date for PENDING and completion date
	// for RESOLVED when window is set.
	ListByStatus(ctx context.Context, status models.CaseStatus, window *models.DateRange) ([]models.Case, error)
	AddHearing(ctx context.Context, caseID primitive.ObjectID, date time.Time) (*models.Hearing, error)
	AddSummary(ctx context.Context, caseID primitive.ObjectID, content string) (*models.Summary, error)
	SetStatus(ctx context.Context, caseID primitive.ObjectID, status models.CaseStatus, completedAt *time.Time) error
	// TouchPending bumps the version of a PENDING case so that concurrent
	// transitions of the same case conflict. A RESOLVED case yields
	// ErrAlreadyResolved.
	TouchPending(ctx context.Context, caseID primitive.ObjectID) error
	// HearingOccupancy maps every day of the month to whether a hearing falls on it.
	HearingOccupancy(ctx context.Context, month time.Month, year int) (map[int]bool, error)
	// Atomic runs fn as one unit. Either every write made through tx is kept
	// or none is.
	Atomic(ctx context.Context, fn func(ctx context.Context, tx CaseStore) error) error
}

// BillingStore holds lawyer billing entries. Entries are never deleted.
type BillingStore interface {
	SumPending(ctx context.Context, lawyerID string) (decimal.Decimal, error)
	InsertEntries(ctx context.Context, entries []models.BillingEntry) error
	// InsertViewChargeOnce inserts entry unless a PENDING view charge already
	// exists for the same lawyer and case. The check and insert are atomic.
	// created is false when an existing entry was found and returned instead.
	InsertViewChargeOnce(ctx context.Context, entry models.BillingEntry) (stored *models.BillingEntry, created bool, err error)
	ListByLawyer(ctx context.Context, lawyerID string) ([]models.BillingEntry, error)
	// ClearPending marks every PENDING entry of the lawyer PAID with a zero
	// amount and returns how many entries changed.
	ClearPending(ctx context.Context, lawyerID string) (int64, error)
}

// UserStore holds accounts. User names are unique.
type UserStore interface {
	InsertUser(ctx context.Context, user models.User) (*models.User, error)
	FindByUserName(ctx context.Context, userName string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	// DeleteUser removes the account only when it holds the given role.
	DeleteUser(ctx context.Context, userName string, role models.Role) (*models.User, error)
}
