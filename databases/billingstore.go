package databases

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/court-docket-api/models"
	"github.com/linesmerrill/court-docket-api/store"
)

// BillingStore keeps billing entries in the billings collection. A partial
// unique index on PENDING view charges makes InsertViewChargeOnce race free.
type BillingStore struct {
	Billings BillingDatabase
}

var _ store.BillingStore = (*BillingStore)(nil)

// NewBillingStore builds a BillingStore over db
func NewBillingStore(db DatabaseHelper) *BillingStore {
	return &BillingStore{Billings: NewBillingDatabase(db)}
}

func pendingOf(lawyerID string) bson.M {
	return bson.M{"lawyerID": lawyerID, "paymentStatus": models.PaymentStatusPending}
}

// SumPending implements store.BillingStore
func (s *BillingStore) SumPending(ctx context.Context, lawyerID string) (decimal.Decimal, error) {
	total, err := s.Billings.SumAmount(ctx, pendingOf(lawyerID))
	if err != nil {
		return decimal.Zero, storageError(err, "sum pending for %s", lawyerID)
	}
	return total, nil
}

// InsertEntries implements store.BillingStore
func (s *BillingStore) InsertEntries(ctx context.Context, entries []models.BillingEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for i := range entries {
		if entries[i].ID.IsZero() {
			entries[i].ID = primitive.NewObjectID()
		}
	}
	return storageError(s.Billings.InsertMany(ctx, entries), "insert %d billing entries", len(entries))
}

// InsertViewChargeOnce implements store.BillingStore
func (s *BillingStore) InsertViewChargeOnce(ctx context.Context, entry models.BillingEntry) (*models.BillingEntry, bool, error) {
	if entry.CaseRef == nil {
		return nil, false, fmt.Errorf("view charge without case: %w", models.ErrValidation)
	}
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	_, err := s.Billings.InsertOne(ctx, entry)
	if err == nil {
		return &entry, true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, false, storageError(err, "insert view charge for %s", entry.LawyerID)
	}

	filter := pendingOf(entry.LawyerID)
	filter["source"] = models.ChargeSourceView
	filter["case.caseID"] = entry.CaseRef.CaseID
	existing, err := s.Billings.FindOne(ctx, filter)
	if err != nil {
		return nil, false, storageError(err, "find view charge for %s", entry.LawyerID)
	}
	return existing, false, nil
}

// ListByLawyer implements store.BillingStore
func (s *BillingStore) ListByLawyer(ctx context.Context, lawyerID string) ([]models.BillingEntry, error) {
	entries, err := s.Billings.Find(ctx, bson.M{"lawyerID": lawyerID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, storageError(err, "list bills for %s", lawyerID)
	}
	return entries, nil
}

// ClearPending implements store.BillingStore
func (s *BillingStore) ClearPending(ctx context.Context, lawyerID string) (int64, error) {
	zero, err := toDecimal128(decimal.Zero)
	if err != nil {
		return 0, err
	}
	n, err := s.Billings.UpdateMany(ctx, pendingOf(lawyerID), bson.M{"$set": bson.M{
		"paymentStatus": models.PaymentStatusPaid,
		"chargeAmount":  zero,
	}})
	if err != nil {
		return 0, storageError(err, "clear bills for %s", lawyerID)
	}
	return n, nil
}
