package databases

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/court-docket-api/models"
	"github.com/linesmerrill/court-docket-api/store"
)

// UserStore keeps accounts in the users collection, unique on user.userName
type UserStore struct {
	Users UserDatabase
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore builds a UserStore over db
func NewUserStore(db DatabaseHelper) *UserStore {
	return &UserStore{Users: NewUserDatabase(db)}
}

// InsertUser implements store.UserStore
func (s *UserStore) InsertUser(ctx context.Context, user models.User) (*models.User, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if _, err := s.Users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("user %s: %w", user.Details.UserName, models.ErrUserExists)
		}
		return nil, storageError(err, "insert user %s", user.Details.UserName)
	}
	return &user, nil
}

// FindByUserName implements store.UserStore
func (s *UserStore) FindByUserName(ctx context.Context, userName string) (*models.User, error) {
	u, err := s.Users.FindOne(ctx, bson.M{"user.userName": userName})
	if err != nil {
		return nil, storageError(err, "user %s", userName)
	}
	return u, nil
}

// FindByID implements store.UserStore
func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	u, err := s.Users.FindOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, storageError(err, "user %s", id)
	}
	return u, nil
}

// DeleteUser implements store.UserStore
func (s *UserStore) DeleteUser(ctx context.Context, userName string, role models.Role) (*models.User, error) {
	u, err := s.Users.FindOne(ctx, bson.M{"user.userName": userName, "user.role": role})
	if err != nil {
		return nil, storageError(err, "%s %s", role, userName)
	}
	n, err := s.Users.DeleteOne(ctx, bson.M{"_id": u.ID})
	if err != nil {
		return nil, storageError(err, "delete %s %s", role, userName)
	}
	if n == 0 {
		return nil, fmt.Errorf("%s %s: %w", role, userName, models.ErrNotFound)
	}
	return u, nil
}
