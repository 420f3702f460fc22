package databases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/court-docket-api/databases"
	"github.com/linesmerrill/court-docket-api/databases/mocks"
	"github.com/linesmerrill/court-docket-api/lifecycle"
	"github.com/linesmerrill/court-docket-api/models"
)

func TestCaseStore_CreateCase(t *testing.T) {
	dbHelper, colls := newHelpers("cases", "hearings", "summaries")
	colls["cases"].On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)
	colls["hearings"].On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)

	s := databases.NewCaseStore(dbHelper)
	hearing := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	c, err := s.CreateCase(context.Background(), models.CaseDetails{DefendantName: "Tom Robinson"}, hearing)

	require.NoError(t, err)
	assert.NotEmpty(t, c.Details.CIN)
	assert.Equal(t, models.CaseStatusPending, c.Details.Status)
	assert.False(t, c.Details.CaseStartDate.IsZero())
	require.Len(t, c.Hearings, 1)
	assert.Equal(t, hearing, c.Hearings[0].HearingDate)
	assert.Equal(t, c.ID, c.Hearings[0].CaseID)
}

func TestCaseStore_CreateCaseHearingTaken(t *testing.T) {
	dbHelper, colls := newHelpers("cases", "hearings", "summaries")
	colls["cases"].On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)
	colls["hearings"].On("InsertOne", mock.Anything, mock.Anything).Return(nil, duplicateKey)

	s := databases.NewCaseStore(dbHelper)
	_, err := s.CreateCase(context.Background(), models.CaseDetails{}, time.Now())

	assert.True(t, errors.Is(err, models.ErrHearingConflict))
}

func TestCaseStore_CreateCaseStorageFault(t *testing.T) {
	dbHelper, colls := newHelpers("cases", "hearings", "summaries")
	colls["cases"].On("InsertOne", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))

	s := databases.NewCaseStore(dbHelper)
	_, err := s.CreateCase(context.Background(), models.CaseDetails{CIN: "cin-1"}, time.Now())

	assert.True(t, errors.Is(err, models.ErrStorage))
	assert.Contains(t, err.Error(), "mocked-error")
	colls["hearings"].AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestCaseStore_FindByCINNotFound(t *testing.T) {
	dbHelper, colls := newHelpers("cases", "hearings", "summaries")
	srHelper := &mocks.SingleResultHelper{}
	srHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	colls["cases"].On("FindOne", context.Background(), bson.M{"case.cin": "missing"}).Return(srHelper)

	s := databases.NewCaseStore(dbHelper)
	c, err := s.FindByCIN(context.Background(), "missing")

	assert.Nil(t, c)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestCaseStore_SetStatusUnknownCase(t *testing.T) {
	dbHelper, colls := newHelpers("cases", "hearings", "summaries")
	colls["cases"].On("UpdateOne", context.Background(), mock.Anything, mock.Anything).Return(int64(0), nil)

	s := databases.NewCaseStore(dbHelper)
	now := time.Now()
	err := s.SetStatus(context.Background(), [12]byte{1}, models.CaseStatusResolved, &now)

	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestCaseStore_HearingOccupancy(t *testing.T) {
	dbHelper, colls := newHelpers("cases", "hearings", "summaries")
	cursor := &mocks.CursorHelper{}
	cursor.On("Close", context.Background()).Return(nil)
	cursor.On("All", context.Background(), mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		out := args.Get(1).(*[]models.Hearing)
		*out = []models.Hearing{
			{HearingDate: time.Date(2024, time.February, 29, 23, 0, 0, 0, time.UTC)},
			{HearingDate: time.Date(2024, time.February, 3, 9, 0, 0, 0, time.UTC)},
		}
	})
	colls["hearings"].On("Find", context.Background(), mock.Anything).Return(cursor, nil)

	s := databases.NewCaseStore(dbHelper)
	occupied, err := s.HearingOccupancy(context.Background(), time.February, 2024)

	require.NoError(t, err)
	assert.Len(t, occupied, 29)
	assert.True(t, occupied[29])
	assert.True(t, occupied[3])
	assert.False(t, occupied[1])
}

func TestCaseStore_TouchPending(t *testing.T) {
	dbHelper, colls := newHelpers("cases", "hearings", "summaries")
	id := primitive.NewObjectID()
	colls["cases"].On("UpdateOne", context.Background(),
		bson.M{"_id": id, "case.status": models.CaseStatusPending},
		bson.M{"$inc": bson.M{"__v": 1}},
	).Return(int64(1), nil)

	s := databases.NewCaseStore(dbHelper)
	assert.NoError(t, s.TouchPending(context.Background(), id))
	colls["cases"].AssertExpectations(t)
}

func TestCaseStore_TouchPendingResolved(t *testing.T) {
	dbHelper, colls := newHelpers("cases", "hearings", "summaries")
	colls["cases"].On("UpdateOne", context.Background(), mock.Anything, mock.Anything).Return(int64(0), nil)

	s := databases.NewCaseStore(dbHelper)
	err := s.TouchPending(context.Background(), primitive.NewObjectID())
	assert.True(t, errors.Is(err, models.ErrAlreadyResolved))
}

func TestCaseStore_TouchPendingStorageFault(t *testing.T) {
	dbHelper, colls := newHelpers("cases", "hearings", "summaries")
	colls["cases"].On("UpdateOne", context.Background(), mock.Anything, mock.Anything).Return(int64(0), errors.New("mocked-error"))

	s := databases.NewCaseStore(dbHelper)
	err := s.TouchPending(context.Background(), primitive.NewObjectID())
	assert.True(t, errors.Is(err, models.ErrStorage))
}

// A case resolved by another transaction after this one read it as PENDING
// matches nothing on the guarded update, so no summary or hearing is written.
func TestCaseStore_UpdateStillPendingClaimsCaseDocument(t *testing.T) {
	dbHelper, colls := newHelpers("cases", "hearings", "summaries")
	id := primitive.NewObjectID()

	sr := &mocks.SingleResultHelper{}
	sr.On("Decode", mock.Anything).Return(nil).Run(decodeInto(bson.M{
		"_id":  id,
		"case": bson.M{"cin": "cin-1", "status": string(models.CaseStatusPending)},
		"__v":  int32(0),
	}))
	colls["cases"].On("FindOne", mock.Anything, bson.M{"case.cin": "cin-1"}).Return(sr)

	cursor := &mocks.CursorHelper{}
	cursor.On("All", mock.Anything, mock.Anything).Return(nil)
	cursor.On("Close", mock.Anything).Return(nil)
	colls["hearings"].On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursor, nil)
	colls["summaries"].On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursor, nil)

	colls["cases"].On("UpdateOne", mock.Anything,
		bson.M{"_id": id, "case.status": models.CaseStatusPending},
		bson.M{"$inc": bson.M{"__v": 1}},
	).Return(int64(0), nil)

	m := lifecycle.NewManager(databases.NewCaseStore(dbHelper))
	next := time.Date(2024, time.March, 8, 10, 0, 0, 0, time.UTC)
	_, err := m.UpdateStillPending(context.Background(), "cin-1", "adjourned", &next)

	assert.True(t, errors.Is(err, models.ErrAlreadyResolved))
	colls["cases"].AssertCalled(t, "UpdateOne", mock.Anything,
		bson.M{"_id": id, "case.status": models.CaseStatusPending},
		bson.M{"$inc": bson.M{"__v": 1}},
	)
	colls["summaries"].AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
	colls["hearings"].AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}
