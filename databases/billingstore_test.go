package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/court-docket-api/databases"
	"github.com/linesmerrill/court-docket-api/databases/mocks"
	"github.com/linesmerrill/court-docket-api/models"
)

func TestBillingStore_InsertViewChargeOnceDuplicate(t *testing.T) {
	dbHelper, colls := newHelpers("billings")
	caseID := primitive.NewObjectID()
	existingID := primitive.NewObjectID()
	amount, _ := primitive.ParseDecimal128("10")

	srHelper := &mocks.SingleResultHelper{}
	srHelper.On("Decode", mock.Anything).Return(nil).Run(decodeInto(bson.M{
		"_id":           existingID,
		"lawyerID":      "lawyer-1",
		"case":          bson.M{"caseID": caseID, "cin": "cin-1"},
		"source":        "VIEW",
		"chargeAmount":  amount,
		"paymentStatus": "PENDING",
	}))
	colls["billings"].On("InsertOne", context.Background(), mock.Anything).Return(nil, duplicateKey)
	colls["billings"].On("FindOne", context.Background(), mock.Anything).Return(srHelper)

	s := databases.NewBillingStore(dbHelper)
	stored, created, err := s.InsertViewChargeOnce(context.Background(), models.BillingEntry{
		LawyerID:      "lawyer-1",
		CaseRef:       &models.CaseRef{CaseID: caseID, CIN: "cin-1"},
		Source:        models.ChargeSourceView,
		ChargeAmount:  decimal.NewFromInt(10),
		PaymentStatus: models.PaymentStatusPending,
	})

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existingID, stored.ID)
	assert.True(t, stored.ChargeAmount.Equal(decimal.NewFromInt(10)))
}

func TestBillingStore_InsertViewChargeOnceRequiresCase(t *testing.T) {
	dbHelper, _ := newHelpers("billings")
	s := databases.NewBillingStore(dbHelper)

	_, _, err := s.InsertViewChargeOnce(context.Background(), models.BillingEntry{LawyerID: "lawyer-1"})
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestBillingStore_InsertEntriesEmpty(t *testing.T) {
	dbHelper, colls := newHelpers("billings")
	s := databases.NewBillingStore(dbHelper)

	assert.NoError(t, s.InsertEntries(context.Background(), nil))
	colls["billings"].AssertNotCalled(t, "InsertMany", mock.Anything, mock.Anything)
}

func TestBillingStore_ClearPending(t *testing.T) {
	dbHelper, colls := newHelpers("billings")
	colls["billings"].
		On("UpdateMany", context.Background(), bson.M{"lawyerID": "lawyer-1", "paymentStatus": models.PaymentStatusPending}, mock.Anything).
		Return(int64(3), nil)

	s := databases.NewBillingStore(dbHelper)
	n, err := s.ClearPending(context.Background(), "lawyer-1")

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
