package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/court-docket-api/models"
)

type caseRecord struct {
	c         models.Case
	hearings  []models.Hearing
	summaries []models.Summary
}

func (r *caseRecord) snapshot() models.Case {
	c := r.c
	c.Hearings = append([]models.Hearing{}, r.hearings...)
	c.Summaries = append([]models.Summary{}, r.summaries...)
	if r.c.Details.CompletionDate != nil {
		t := *r.c.Details.CompletionDate
		c.Details.CompletionDate = &t
	}
	return c
}

// Memory is a process-local store guarded by mutexes. Hearing dates are keyed
// by their instant to the millisecond so the check and insert happen under
// one lock.
type Memory struct {
	// Now is used to stamp start dates and creation times
	Now func() time.Time

	mu           sync.RWMutex
	cases        []*caseRecord
	byCIN        map[string]*caseRecord
	byID         map[primitive.ObjectID]*caseRecord
	hearingDates map[int64]primitive.ObjectID

	billingMu sync.Mutex
	entries   []*models.BillingEntry

	usersMu sync.RWMutex
	users   map[string]*models.User
}

var (
	_ CaseStore    = (*Memory)(nil)
	_ BillingStore = (*Memory)(nil)
	_ UserStore    = (*Memory)(nil)
)

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		Now:          time.Now,
		byCIN:        make(map[string]*caseRecord),
		byID:         make(map[primitive.ObjectID]*caseRecord),
		hearingDates: make(map[int64]primitive.ObjectID),
		users:        make(map[string]*models.User),
	}
}

// hearingKey identifies a hearing instant at the millisecond precision mongo
// stores dates with
func hearingKey(t time.Time) int64 {
	return t.UnixMilli()
}

// memoryTx runs CaseStore operations while Memory.mu is held, journaling undo
// steps so a failed unit can be rolled back.
type memoryTx struct {
	m    *Memory
	undo []func()
}

func (tx *memoryTx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

// Atomic holds the case lock for the whole of fn
func (m *Memory) Atomic(ctx context.Context, fn func(ctx context.Context, tx CaseStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memoryTx{m: m}
	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// CreateCase implements CaseStore
func (m *Memory) CreateCase(ctx context.Context, details models.CaseDetails, hearingDate time.Time) (*models.Case, error) {
	var created *models.Case
	err := m.Atomic(ctx, func(ctx context.Context, tx CaseStore) error {
		c, err := tx.CreateCase(ctx, details, hearingDate)
		created = c
		return err
	})
	return created, err
}

// FindByCIN implements CaseStore
func (m *Memory) FindByCIN(ctx context.Context, cin string) (*models.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findByCIN(cin)
}

// ListByStatus implements CaseStore
func (m *Memory) ListByStatus(ctx context.Context, status models.CaseStatus, window *models.DateRange) ([]models.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listByStatus(status, window), nil
}

// AddHearing implements CaseStore
func (m *Memory) AddHearing(ctx context.Context, caseID primitive.ObjectID, date time.Time) (*models.Hearing, error) {
	var h *models.Hearing
	err := m.Atomic(ctx, func(ctx context.Context, tx CaseStore) error {
		var err error
		h, err = tx.AddHearing(ctx, caseID, date)
		return err
	})
	return h, err
}

// AddSummary implements CaseStore
func (m *Memory) AddSummary(ctx context.Context, caseID primitive.ObjectID, content string) (*models.Summary, error) {
	var s *models.Summary
	err := m.Atomic(ctx, func(ctx context.Context, tx CaseStore) error {
		var err error
		s, err = tx.AddSummary(ctx, caseID, content)
		return err
	})
	return s, err
}

// SetStatus implements CaseStore
func (m *Memory) SetStatus(ctx context.Context, caseID primitive.ObjectID, status models.CaseStatus, completedAt *time.Time) error {
	return m.Atomic(ctx, func(ctx context.Context, tx CaseStore) error {
		return tx.SetStatus(ctx, caseID, status, completedAt)
	})
}

// TouchPending implements CaseStore
func (m *Memory) TouchPending(ctx context.Context, caseID primitive.ObjectID) error {
	return m.Atomic(ctx, func(ctx context.Context, tx CaseStore) error {
		return tx.TouchPending(ctx, caseID)
	})
}

// HearingOccupancy implements CaseStore
func (m *Memory) HearingOccupancy(ctx context.Context, month time.Month, year int) (map[int]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.occupancy(month, year), nil
}

func (m *Memory) findByCIN(cin string) (*models.Case, error) {
	r, ok := m.byCIN[cin]
	if !ok {
		return nil, fmt.Errorf("case %s: %w", cin, models.ErrNotFound)
	}
	c := r.snapshot()
	return &c, nil
}

func (m *Memory) listByStatus(status models.CaseStatus, window *models.DateRange) []models.Case {
	cases := []models.Case{}
	for _, r := range m.cases {
		d := r.c.Details
		if d.Status != status {
			continue
		}
		if window != nil {
			var at time.Time
			switch status {
			case models.CaseStatusResolved:
				if d.CompletionDate == nil {
					continue
				}
				at = *d.CompletionDate
			default:
				at = d.CaseStartDate
			}
			if !window.Contains(at) {
				continue
			}
		}
		cases = append(cases, r.snapshot())
	}
	return cases
}

func (m *Memory) occupancy(month time.Month, year int) map[int]bool {
	days := models.DaysIn(month, year)
	occupied := make(map[int]bool, days)
	for day := 1; day <= days; day++ {
		occupied[day] = false
	}
	for _, r := range m.cases {
		for _, h := range r.hearings {
			d := h.HearingDate.UTC()
			if d.Year() == year && d.Month() == month {
				occupied[d.Day()] = true
			}
		}
	}
	return occupied
}

func (tx *memoryTx) Atomic(ctx context.Context, fn func(ctx context.Context, tx CaseStore) error) error {
	return fn(ctx, tx)
}

func (tx *memoryTx) CreateCase(ctx context.Context, details models.CaseDetails, hearingDate time.Time) (*models.Case, error) {
	m := tx.m
	if _, taken := m.hearingDates[hearingKey(hearingDate)]; taken {
		return nil, fmt.Errorf("hearing on %s: %w", hearingDate.Format(time.RFC3339), models.ErrHearingConflict)
	}
	if details.CIN == "" {
		details.CIN = uuid.NewString()
	}
	if _, exists := m.byCIN[details.CIN]; exists {
		return nil, fmt.Errorf("case %s already exists: %w", details.CIN, models.ErrValidation)
	}
	if details.CaseStartDate.IsZero() {
		details.CaseStartDate = m.Now()
	}
	details.Status = models.CaseStatusPending
	details.CompletionDate = nil

	r := &caseRecord{c: models.Case{ID: primitive.NewObjectID(), Details: details}}
	m.cases = append(m.cases, r)
	m.byCIN[details.CIN] = r
	m.byID[r.c.ID] = r
	tx.undo = append(tx.undo, func() {
		m.cases = m.cases[:len(m.cases)-1]
		delete(m.byCIN, details.CIN)
		delete(m.byID, r.c.ID)
	})

	if _, err := tx.AddHearing(ctx, r.c.ID, hearingDate); err != nil {
		return nil, err
	}
	c := r.snapshot()
	return &c, nil
}

func (tx *memoryTx) FindByCIN(ctx context.Context, cin string) (*models.Case, error) {
	return tx.m.findByCIN(cin)
}

func (tx *memoryTx) ListByStatus(ctx context.Context, status models.CaseStatus, window *models.DateRange) ([]models.Case, error) {
	return tx.m.listByStatus(status, window), nil
}

func (tx *memoryTx) AddHearing(ctx context.Context, caseID primitive.ObjectID, date time.Time) (*models.Hearing, error) {
	m := tx.m
	r, ok := m.byID[caseID]
	if !ok {
		return nil, fmt.Errorf("case %s: %w", caseID.Hex(), models.ErrNotFound)
	}
	key := hearingKey(date)
	if _, taken := m.hearingDates[key]; taken {
		return nil, fmt.Errorf("hearing on %s: %w", date.Format(time.RFC3339), models.ErrHearingConflict)
	}
	h := models.Hearing{ID: primitive.NewObjectID(), CaseID: caseID, HearingDate: date}
	m.hearingDates[key] = h.ID
	r.hearings = append(r.hearings, h)
	tx.undo = append(tx.undo, func() {
		delete(m.hearingDates, key)
		r.hearings = r.hearings[:len(r.hearings)-1]
	})
	return &h, nil
}

func (tx *memoryTx) AddSummary(ctx context.Context, caseID primitive.ObjectID, content string) (*models.Summary, error) {
	m := tx.m
	r, ok := m.byID[caseID]
	if !ok {
		return nil, fmt.Errorf("case %s: %w", caseID.Hex(), models.ErrNotFound)
	}
	s := models.Summary{ID: primitive.NewObjectID(), CaseID: caseID, Content: content, CreatedAt: m.Now()}
	r.summaries = append(r.summaries, s)
	tx.undo = append(tx.undo, func() {
		r.summaries = r.summaries[:len(r.summaries)-1]
	})
	return &s, nil
}

func (tx *memoryTx) SetStatus(ctx context.Context, caseID primitive.ObjectID, status models.CaseStatus, completedAt *time.Time) error {
	r, ok := tx.m.byID[caseID]
	if !ok {
		return fmt.Errorf("case %s: %w", caseID.Hex(), models.ErrNotFound)
	}
	prev := r.c.Details
	r.c.Details.Status = status
	r.c.Details.CompletionDate = completedAt
	r.c.Version++
	tx.undo = append(tx.undo, func() {
		r.c.Details = prev
		r.c.Version--
	})
	return nil
}

func (tx *memoryTx) TouchPending(ctx context.Context, caseID primitive.ObjectID) error {
	r, ok := tx.m.byID[caseID]
	if !ok {
		return fmt.Errorf("case %s: %w", caseID.Hex(), models.ErrNotFound)
	}
	if r.c.Details.Status != models.CaseStatusPending {
		return fmt.Errorf("case %s: %w", caseID.Hex(), models.ErrAlreadyResolved)
	}
	r.c.Version++
	tx.undo = append(tx.undo, func() {
		r.c.Version--
	})
	return nil
}

func (tx *memoryTx) HearingOccupancy(ctx context.Context, month time.Month, year int) (map[int]bool, error) {
	return tx.m.occupancy(month, year), nil
}

// SumPending implements BillingStore
func (m *Memory) SumPending(ctx context.Context, lawyerID string) (decimal.Decimal, error) {
	m.billingMu.Lock()
	defer m.billingMu.Unlock()
	total := decimal.Zero
	for _, e := range m.entries {
		if e.LawyerID == lawyerID && e.PaymentStatus == models.PaymentStatusPending {
			total = total.Add(e.ChargeAmount)
		}
	}
	return total, nil
}

// InsertEntries implements BillingStore
func (m *Memory) InsertEntries(ctx context.Context, entries []models.BillingEntry) error {
	m.billingMu.Lock()
	defer m.billingMu.Unlock()
	for i := range entries {
		e := entries[i]
		if e.ID.IsZero() {
			e.ID = primitive.NewObjectID()
		}
		m.entries = append(m.entries, &e)
	}
	return nil
}

// InsertViewChargeOnce implements BillingStore
func (m *Memory) InsertViewChargeOnce(ctx context.Context, entry models.BillingEntry) (*models.BillingEntry, bool, error) {
	if entry.CaseRef == nil {
		return nil, false, fmt.Errorf("view charge without case: %w", models.ErrValidation)
	}
	m.billingMu.Lock()
	defer m.billingMu.Unlock()
	for _, e := range m.entries {
		if e.LawyerID == entry.LawyerID &&
			e.Source == models.ChargeSourceView &&
			e.PaymentStatus == models.PaymentStatusPending &&
			e.CaseRef != nil && e.CaseRef.CaseID == entry.CaseRef.CaseID {
			existing := *e
			return &existing, false, nil
		}
	}
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	stored := entry
	m.entries = append(m.entries, &stored)
	return &entry, true, nil
}

// ListByLawyer implements BillingStore
func (m *Memory) ListByLawyer(ctx context.Context, lawyerID string) ([]models.BillingEntry, error) {
	m.billingMu.Lock()
	defer m.billingMu.Unlock()
	bills := []models.BillingEntry{}
	for _, e := range m.entries {
		if e.LawyerID == lawyerID {
			bills = append(bills, *e)
		}
	}
	return bills, nil
}

// ClearPending implements BillingStore
func (m *Memory) ClearPending(ctx context.Context, lawyerID string) (int64, error) {
	m.billingMu.Lock()
	defer m.billingMu.Unlock()
	var n int64
	for _, e := range m.entries {
		if e.LawyerID == lawyerID && e.PaymentStatus == models.PaymentStatusPending {
			e.PaymentStatus = models.PaymentStatusPaid
			e.ChargeAmount = decimal.Zero
			n++
		}
	}
	return n, nil
}

// InsertUser implements UserStore
func (m *Memory) InsertUser(ctx context.Context, user models.User) (*models.User, error) {
	m.usersMu.Lock()
	defer m.usersMu.Unlock()
	if _, exists := m.users[user.Details.UserName]; exists {
		return nil, fmt.Errorf("user %s: %w", user.Details.UserName, models.ErrUserExists)
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	u := user
	m.users[user.Details.UserName] = &u
	return &user, nil
}

// FindByUserName implements UserStore
func (m *Memory) FindByUserName(ctx context.Context, userName string) (*models.User, error) {
	m.usersMu.RLock()
	defer m.usersMu.RUnlock()
	u, ok := m.users[userName]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userName, models.ErrNotFound)
	}
	found := *u
	return &found, nil
}

// FindByID implements UserStore
func (m *Memory) FindByID(ctx context.Context, id string) (*models.User, error) {
	m.usersMu.RLock()
	defer m.usersMu.RUnlock()
	for _, u := range m.users {
		if u.ID.Hex() == id {
			found := *u
			return &found, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
}

// DeleteUser implements UserStore
func (m *Memory) DeleteUser(ctx context.Context, userName string, role models.Role) (*models.User, error) {
	m.usersMu.Lock()
	defer m.usersMu.Unlock()
	u, ok := m.users[userName]
	if !ok || u.Details.Role != role {
		return nil, fmt.Errorf("%s %s: %w", role, userName, models.ErrNotFound)
	}
	delete(m.users, userName)
	return u, nil
}
