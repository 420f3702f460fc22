// Package court exposes the case lifecycle and billing operations to callers
// that have already authenticated a principal.
package court

import (
	"context"
	"fmt"
	"time"

	"github.com/linesmerrill/court-docket-api/access"
	"github.com/linesmerrill/court-docket-api/accounts"
	"github.com/linesmerrill/court-docket-api/billing"
	"github.com/linesmerrill/court-docket-api/lifecycle"
	"github.com/linesmerrill/court-docket-api/models"
	"github.com/linesmerrill/court-docket-api/store"
)

// Service runs every call through the access gate, then the billing ledger
// for lawyer reads, then the lifecycle manager.
type Service struct {
	Gate      access.Gate
	Cases     store.CaseStore
	Lifecycle *lifecycle.Manager
	Ledger    *billing.Ledger
	Accounts  *accounts.Service
}

// New wires a Service over the given store handles
func New(cases store.CaseStore, bills store.BillingStore, users store.UserStore, pepper string) *Service {
	return &Service{
		Cases:     cases,
		Lifecycle: lifecycle.NewManager(cases),
		Ledger:    billing.NewLedger(bills),
		Accounts:  accounts.NewService(users, pepper),
	}
}

// CreateCase files a case with its first hearing
func (s *Service) CreateCase(ctx context.Context, p access.Principal, details models.CaseDetails, hearingDate time.Time) (*models.Case, error) {
	if err := s.Gate.Authorize(p, access.OpCreateCase); err != nil {
		return nil, err
	}
	return s.Lifecycle.CreateCase(ctx, details, hearingDate)
}

// ResolveCase closes a pending case with a final summary
func (s *Service) ResolveCase(ctx context.Context, p access.Principal, cin, summary string) (*models.Case, error) {
	if err := s.Gate.Authorize(p, access.OpResolveCase); err != nil {
		return nil, err
	}
	return s.Lifecycle.Resolve(ctx, cin, summary)
}

// UpdateStillPendingCase records a summary and optionally the next hearing
func (s *Service) UpdateStillPendingCase(ctx context.Context, p access.Principal, cin, summary string, nextHearing *time.Time) (*models.Case, error) {
	if err := s.Gate.Authorize(p, access.OpUpdateCase); err != nil {
		return nil, err
	}
	return s.Lifecycle.UpdateStillPending(ctx, cin, summary, nextHearing)
}

// GetCase returns a case by CIN. Lawyers are gated and billed.
func (s *Service) GetCase(ctx context.Context, p access.Principal, cin string) (*models.Case, error) {
	if p.Role == models.RoleLawyer {
		return s.LawyerViewCase(ctx, p, cin)
	}
	if err := s.Gate.Authorize(p, access.OpQueryCases); err != nil {
		return nil, err
	}
	return s.Lifecycle.QueryByCIN(ctx, cin)
}

// ListPending lists pending cases. Lawyers must pass the gate but pending
// listings are not billed.
func (s *Service) ListPending(ctx context.Context, p access.Principal, window *models.DateRange) ([]models.Case, error) {
	if err := s.Gate.Authorize(p, access.OpQueryCases); err != nil {
		return nil, err
	}
	if p.Role == models.RoleLawyer {
		if _, err := s.lawyer(ctx, p); err != nil {
			return nil, err
		}
		if err := s.Ledger.Require(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return s.Lifecycle.QueryPending(ctx, window)
}

// ListResolved lists resolved cases. Lawyers are gated and billed per case.
func (s *Service) ListResolved(ctx context.Context, p access.Principal, window *models.DateRange) ([]models.Case, error) {
	if p.Role == models.RoleLawyer {
		return s.LawyerListResolved(ctx, p, window)
	}
	if err := s.Gate.Authorize(p, access.OpQueryCases); err != nil {
		return nil, err
	}
	return s.Lifecycle.QueryResolved(ctx, window)
}

// HearingAvailability reports for each day of the month whether a hearing is booked
func (s *Service) HearingAvailability(ctx context.Context, p access.Principal, month time.Month, year int) ([]models.HearingAvailability, error) {
	if err := s.Gate.Authorize(p, access.OpHearingOccupancy); err != nil {
		return nil, err
	}
	if month < time.January || month > time.December || year < 1 {
		return nil, fmt.Errorf("month %d year %d: %w", month, year, models.ErrValidation)
	}
	occupied, err := s.Cases.HearingOccupancy(ctx, month, year)
	if err != nil {
		return nil, err
	}
	days := models.DaysIn(month, year)
	dates := make([]models.HearingAvailability, 0, days)
	for day := 1; day <= days; day++ {
		dates = append(dates, models.HearingAvailability{Day: day, Occupied: occupied[day]})
	}
	return dates, nil
}

// LawyerCheckGate reports whether the calling lawyer may make billable reads
func (s *Service) LawyerCheckGate(ctx context.Context, p access.Principal) (billing.Decision, error) {
	if err := s.Gate.Authorize(p, access.OpLawyerGateStatus); err != nil {
		return billing.Decision{}, err
	}
	if _, err := s.lawyer(ctx, p); err != nil {
		return billing.Decision{}, err
	}
	return s.Ledger.CheckGate(ctx, p.ID)
}

// LawyerViewCase gates, fetches and bills a single case view
func (s *Service) LawyerViewCase(ctx context.Context, p access.Principal, cin string) (*models.Case, error) {
	if err := s.Gate.Authorize(p, access.OpLawyerBilledRead); err != nil {
		return nil, err
	}
	if _, err := s.lawyer(ctx, p); err != nil {
		return nil, err
	}
	if err := s.Ledger.Require(ctx, p.ID); err != nil {
		return nil, err
	}
	c, err := s.Lifecycle.QueryByCIN(ctx, cin)
	if err != nil {
		return nil, err
	}
	if _, err := s.Ledger.ChargeForSingleView(ctx, p.ID, c); err != nil {
		return nil, err
	}
	return c, nil
}

// LawyerListResolved gates, lists and bills every returned case. The gate is
// checked once before the listing so a listing may cross the threshold.
func (s *Service) LawyerListResolved(ctx context.Context, p access.Principal, window *models.DateRange) ([]models.Case, error) {
	if err := s.Gate.Authorize(p, access.OpLawyerBilledRead); err != nil {
		return nil, err
	}
	if _, err := s.lawyer(ctx, p); err != nil {
		return nil, err
	}
	if err := s.Ledger.Require(ctx, p.ID); err != nil {
		return nil, err
	}
	cases, err := s.Lifecycle.QueryResolved(ctx, window)
	if err != nil {
		return nil, err
	}
	if _, err := s.Ledger.ChargeForListing(ctx, p.ID, cases); err != nil {
		return nil, err
	}
	return cases, nil
}

// LawyerListBills returns the calling lawyer's billing entries
func (s *Service) LawyerListBills(ctx context.Context, p access.Principal) ([]models.BillingEntry, error) {
	if err := s.Gate.Authorize(p, access.OpLawyerViewBills); err != nil {
		return nil, err
	}
	if _, err := s.lawyer(ctx, p); err != nil {
		return nil, err
	}
	return s.Ledger.ListBills(ctx, p.ID)
}

// ClearLawyerBilling writes off the lawyer's pending charges
func (s *Service) ClearLawyerBilling(ctx context.Context, p access.Principal, lawyerID string) (int64, error) {
	if err := s.Gate.Authorize(p, access.OpClearBilling); err != nil {
		return 0, err
	}
	if _, err := s.Accounts.Lookup(ctx, lawyerID, models.RoleLawyer); err != nil {
		return 0, err
	}
	return s.Ledger.ClearBalance(ctx, lawyerID)
}

// ClearLawyerBillingByUserName is ClearLawyerBilling keyed by user name
func (s *Service) ClearLawyerBillingByUserName(ctx context.Context, p access.Principal, userName string) (int64, error) {
	if err := s.Gate.Authorize(p, access.OpClearBilling); err != nil {
		return 0, err
	}
	u, err := s.Accounts.LookupByUserName(ctx, userName, models.RoleLawyer)
	if err != nil {
		return 0, err
	}
	return s.Ledger.ClearBalance(ctx, u.ID.Hex())
}

// CreateAccount creates a lawyer or judge account
func (s *Service) CreateAccount(ctx context.Context, p access.Principal, role models.Role, in accounts.NewAccount) (*models.User, error) {
	if err := s.Gate.Authorize(p, access.OpManageAccounts); err != nil {
		return nil, err
	}
	return s.Accounts.Create(ctx, role, in)
}

// DeleteAccount deletes a lawyer or judge account
func (s *Service) DeleteAccount(ctx context.Context, p access.Principal, role models.Role, userName string) (*models.User, error) {
	if err := s.Gate.Authorize(p, access.OpManageAccounts); err != nil {
		return nil, err
	}
	return s.Accounts.Delete(ctx, role, userName)
}

func (s *Service) lawyer(ctx context.Context, p access.Principal) (*models.User, error) {
	return s.Accounts.Lookup(ctx, p.ID, models.RoleLawyer)
}
