package databases

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/court-docket-api/models"
)

const billingName = "billings"

// billingDocument is the stored form of a models.BillingEntry. Amounts are
// kept as Decimal128 so sums are exact on the server.
type billingDocument struct {
	ID            primitive.ObjectID   `bson:"_id"`
	LawyerID      string               `bson:"lawyerID"`
	CaseRef       *models.CaseRef      `bson:"case,omitempty"`
	Source        models.ChargeSource  `bson:"source"`
	ChargeAmount  primitive.Decimal128 `bson:"chargeAmount"`
	PaymentStatus models.PaymentStatus `bson:"paymentStatus"`
	CreatedAt     time.Time            `bson:"createdAt"`
}

func newBillingDocument(e models.BillingEntry) (billingDocument, error) {
	amount, err := toDecimal128(e.ChargeAmount)
	if err != nil {
		return billingDocument{}, err
	}
	return billingDocument{
		ID:            e.ID,
		LawyerID:      e.LawyerID,
		CaseRef:       e.CaseRef,
		Source:        e.Source,
		ChargeAmount:  amount,
		PaymentStatus: e.PaymentStatus,
		CreatedAt:     e.CreatedAt,
	}, nil
}

func (d billingDocument) entry() (models.BillingEntry, error) {
	amount, err := fromDecimal128(d.ChargeAmount)
	if err != nil {
		return models.BillingEntry{}, err
	}
	return models.BillingEntry{
		ID:            d.ID,
		LawyerID:      d.LawyerID,
		CaseRef:       d.CaseRef,
		Source:        d.Source,
		ChargeAmount:  amount,
		PaymentStatus: d.PaymentStatus,
		CreatedAt:     d.CreatedAt,
	}, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("amount %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount %s: %w", v, err)
	}
	return d, nil
}

// BillingDatabase contains the methods to use with the billing database
type BillingDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.BillingEntry, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.BillingEntry, error)
	InsertOne(ctx context.Context, entry models.BillingEntry) (InsertOneResultHelper, error)
	InsertMany(ctx context.Context, entries []models.BillingEntry) error
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error)
	// SumAmount totals chargeAmount over the entries matching filter
	SumAmount(ctx context.Context, filter interface{}) (decimal.Decimal, error)
}

type billingDatabase struct {
	db DatabaseHelper
}

// NewBillingDatabase initializes a new instance of billing database with the provided db connection
func NewBillingDatabase(db DatabaseHelper) BillingDatabase {
	return &billingDatabase{
		db: db,
	}
}

func (b *billingDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.BillingEntry, error) {
	doc := billingDocument{}
	err := b.db.Collection(billingName).FindOne(ctx, filter, opts...).Decode(&doc)
	if err != nil {
		return nil, err
	}
	e, err := doc.entry()
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (b *billingDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.BillingEntry, error) {
	var docs []billingDocument
	curr, err := b.db.Collection(billingName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &docs)
	if err != nil {
		return nil, err
	}
	entries := make([]models.BillingEntry, 0, len(docs))
	for _, doc := range docs {
		e, err := doc.entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (b *billingDatabase) InsertOne(ctx context.Context, entry models.BillingEntry) (InsertOneResultHelper, error) {
	doc, err := newBillingDocument(entry)
	if err != nil {
		return nil, err
	}
	return b.db.Collection(billingName).InsertOne(ctx, doc)
}

func (b *billingDatabase) InsertMany(ctx context.Context, entries []models.BillingEntry) error {
	docs := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		doc, err := newBillingDocument(e)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	return b.db.Collection(billingName).InsertMany(ctx, docs)
}

func (b *billingDatabase) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error) {
	return b.db.Collection(billingName).UpdateMany(ctx, filter, update, opts...)
}

func (b *billingDatabase) SumAmount(ctx context.Context, filter interface{}) (decimal.Decimal, error) {
	pipeline := bson.A{
		bson.M{"$match": filter},
		bson.M{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$chargeAmount"}}},
	}
	curr, err := b.db.Collection(billingName).Aggregate(ctx, pipeline)
	if err != nil {
		return decimal.Zero, err
	}
	defer curr.Close(ctx)

	var totals []struct {
		Total primitive.Decimal128 `bson:"total"`
	}
	if err := curr.All(ctx, &totals); err != nil {
		return decimal.Zero, err
	}
	if len(totals) == 0 {
		return decimal.Zero, nil
	}
	return fromDecimal128(totals[0].Total)
}
