package databases

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/linesmerrill/court-docket-api/models"
)

// Indexes lists the indexes each collection needs. The unique ones carry the
// hearing date, user name and view charge constraints.
var Indexes = map[string][]mongo.IndexModel{
	caseName: {
		{Keys: bson.D{{Key: "case.cin", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "case.status", Value: 1}, {Key: "case.caseStartDate", Value: 1}}},
	},
	hearingName: {
		{Keys: bson.D{{Key: "hearingDate", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "caseID", Value: 1}}},
	},
	summaryName: {
		{Keys: bson.D{{Key: "caseID", Value: 1}, {Key: "createdAt", Value: 1}}},
	},
	billingName: {
		{Keys: bson.D{{Key: "lawyerID", Value: 1}, {Key: "paymentStatus", Value: 1}}},
		{
			Keys: bson.D{{Key: "lawyerID", Value: 1}, {Key: "case.caseID", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{
				"source":        models.ChargeSourceView,
				"paymentStatus": models.PaymentStatusPending,
			}),
		},
	},
	userName: {
		{Keys: bson.D{{Key: "user.userName", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
}

// EnsureIndexes creates every index in Indexes. It is safe to call on every start.
func EnsureIndexes(ctx context.Context, db DatabaseHelper) error {
	for name, idx := range Indexes {
		if err := db.Collection(name).CreateIndexes(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
		zap.S().Debugw("indexes ensured", "collection", name, "count", len(idx))
	}
	return nil
}
