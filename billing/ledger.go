// Package billing meters lawyer reads of case records and gates further
// access once the outstanding balance reaches the threshold.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/linesmerrill/court-docket-api/models"
	"github.com/linesmerrill/court-docket-api/store"
)

// RedirectHint tells a blocked caller where to settle the balance
const RedirectHint = "/bill"

var (
	// Threshold is the outstanding balance at which access is blocked
	Threshold = decimal.NewFromInt(100)
	// ChargePerCase is billed for every metered case read
	ChargePerCase = decimal.NewFromInt(10)
)

// Decision is the outcome of a gate check
type Decision struct {
	Allowed      bool
	Outstanding  decimal.Decimal
	RedirectHint string
}

// BlockedError is returned instead of serving a billable read when the gate is closed
type BlockedError struct {
	LawyerID     string
	Outstanding  decimal.Decimal
	RedirectHint string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("lawyer %s owes %s: %v", e.LawyerID, e.Outstanding.StringFixed(2), models.ErrBlocked)
}

// Unwrap lets errors.Is match models.ErrBlocked
func (e *BlockedError) Unwrap() error {
	return models.ErrBlocked
}

// Ledger records charges in a BillingStore
type Ledger struct {
	Store store.BillingStore
	Now   func() time.Time
	// OnCharge, when set, is called with the number of entries created
	OnCharge func(source models.ChargeSource, n int)
}

// NewLedger returns a Ledger backed by s
func NewLedger(s store.BillingStore) *Ledger {
	return &Ledger{Store: s, Now: time.Now}
}

// OutstandingBalance sums the lawyer's PENDING charges
func (l *Ledger) OutstandingBalance(ctx context.Context, lawyerID string) (decimal.Decimal, error) {
	return l.Store.SumPending(ctx, lawyerID)
}

// CheckGate blocks iff the outstanding balance is at or above Threshold
func (l *Ledger) CheckGate(ctx context.Context, lawyerID string) (Decision, error) {
	owed, err := l.OutstandingBalance(ctx, lawyerID)
	if err != nil {
		return Decision{}, err
	}
	if owed.GreaterThanOrEqual(Threshold) {
		return Decision{Allowed: false, Outstanding: owed, RedirectHint: RedirectHint}, nil
	}
	return Decision{Allowed: true, Outstanding: owed}, nil
}

// Require returns a *BlockedError when the gate is closed
func (l *Ledger) Require(ctx context.Context, lawyerID string) error {
	d, err := l.CheckGate(ctx, lawyerID)
	if err != nil {
		return err
	}
	if !d.Allowed {
		return &BlockedError{LawyerID: lawyerID, Outstanding: d.Outstanding, RedirectHint: d.RedirectHint}
	}
	return nil
}

// ChargeForListing bills every case in a resolved-case listing. Listing
// charges are not deduplicated and may take the balance past Threshold.
func (l *Ledger) ChargeForListing(ctx context.Context, lawyerID string, cases []models.Case) ([]models.BillingEntry, error) {
	if len(cases) == 0 {
		return []models.BillingEntry{}, nil
	}
	now := l.Now()
	entries := make([]models.BillingEntry, 0, len(cases))
	for _, c := range cases {
		entries = append(entries, models.BillingEntry{
			LawyerID:      lawyerID,
			CaseRef:       &models.CaseRef{CaseID: c.ID, CIN: c.Details.CIN},
			Source:        models.ChargeSourceListing,
			ChargeAmount:  ChargePerCase,
			PaymentStatus: models.PaymentStatusPending,
			CreatedAt:     now,
		})
	}
	if err := l.Store.InsertEntries(ctx, entries); err != nil {
		return nil, err
	}
	l.charged(models.ChargeSourceListing, len(entries))
	return entries, nil
}

// ChargeForSingleView bills the first view of a case per open billing cycle.
// It returns nil when a PENDING view charge for the same case already exists.
func (l *Ledger) ChargeForSingleView(ctx context.Context, lawyerID string, c *models.Case) (*models.BillingEntry, error) {
	entry, created, err := l.Store.InsertViewChargeOnce(ctx, models.BillingEntry{
		LawyerID:      lawyerID,
		CaseRef:       &models.CaseRef{CaseID: c.ID, CIN: c.Details.CIN},
		Source:        models.ChargeSourceView,
		ChargeAmount:  ChargePerCase,
		PaymentStatus: models.PaymentStatusPending,
		CreatedAt:     l.Now(),
	})
	if err != nil {
		return nil, err
	}
	if !created {
		zap.S().Debugw("view already billed",
			"lawyerID", lawyerID,
			"cin", c.Details.CIN,
		)
		return nil, nil
	}
	l.charged(models.ChargeSourceView, 1)
	return entry, nil
}

func (l *Ledger) charged(source models.ChargeSource, n int) {
	if l.OnCharge != nil {
		l.OnCharge(source, n)
	}
}

// ClearBalance writes off every PENDING charge of the lawyer, zeroing their
// amounts.
func (l *Ledger) ClearBalance(ctx context.Context, lawyerID string) (int64, error) {
	n, err := l.Store.ClearPending(ctx, lawyerID)
	if err != nil {
		return 0, err
	}
	zap.S().Infow("billing cleared",
		"lawyerID", lawyerID,
		"entries", n,
	)
	return n, nil
}

// ListBills returns every entry charged to the lawyer
func (l *Ledger) ListBills(ctx context.Context, lawyerID string) ([]models.BillingEntry, error) {
	return l.Store.ListByLawyer(ctx, lawyerID)
}
