package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/court-docket-api/databases"
	"github.com/linesmerrill/court-docket-api/databases/mocks"
	"github.com/linesmerrill/court-docket-api/models"
)

func TestUserStore_FindByUserName(t *testing.T) {
	dbHelper, colls := newHelpers("users")

	srHelperErr := &mocks.SingleResultHelper{}
	srHelperErr.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	srHelperCorrect := &mocks.SingleResultHelper{}
	srHelperCorrect.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.User)
		arg.Details.UserName = "atticus"
		arg.Details.Role = models.RoleLawyer
	})

	colls["users"].On("FindOne", context.Background(), bson.M{"user.userName": "nobody"}).Return(srHelperErr)
	colls["users"].On("FindOne", context.Background(), bson.M{"user.userName": "atticus"}).Return(srHelperCorrect)

	s := databases.NewUserStore(dbHelper)

	u, err := s.FindByUserName(context.Background(), "nobody")
	assert.Nil(t, u)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	u, err = s.FindByUserName(context.Background(), "atticus")
	require.NoError(t, err)
	assert.Equal(t, models.RoleLawyer, u.Details.Role)
}

func TestUserStore_FindByIDMalformed(t *testing.T) {
	dbHelper, colls := newHelpers("users")
	s := databases.NewUserStore(dbHelper)

	_, err := s.FindByID(context.Background(), "not-an-object-id")
	assert.True(t, errors.Is(err, models.ErrNotFound))
	colls["users"].AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
}

func TestUserStore_InsertUserTaken(t *testing.T) {
	dbHelper, colls := newHelpers("users")
	colls["users"].On("InsertOne", context.Background(), mock.Anything).Return(nil, duplicateKey)

	s := databases.NewUserStore(dbHelper)
	_, err := s.InsertUser(context.Background(), models.User{Details: models.UserDetails{UserName: "atticus"}})

	assert.True(t, errors.Is(err, models.ErrUserExists))
}
