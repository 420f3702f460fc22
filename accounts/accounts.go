// Package accounts manages the lawyer and judge accounts a registrar creates.
package accounts

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/court-docket-api/models"
	"github.com/linesmerrill/court-docket-api/store"
)

// NewAccount is the validated payload for a new lawyer or judge
type NewAccount struct {
	Name          string
	UserName      string
	Email         string
	ContactNumber string
	Password      string
}

// Service creates, deletes and looks up accounts
type Service struct {
	Store  store.UserStore
	Pepper string
	Cost   int
	Now    func() time.Time
}

// NewService returns a Service hashing with bcrypt.DefaultCost
func NewService(s store.UserStore, pepper string) *Service {
	return &Service{Store: s, Pepper: pepper, Cost: bcrypt.DefaultCost, Now: time.Now}
}

// Create stores a new account with the given role. Only lawyers and judges
// are managed here.
func (s *Service) Create(ctx context.Context, role models.Role, in NewAccount) (*models.User, error) {
	if role != models.RoleLawyer && role != models.RoleJudge {
		return nil, fmt.Errorf("cannot create %s accounts: %w", role, models.ErrValidation)
	}
	if _, err := s.Store.FindByUserName(ctx, in.UserName); err == nil {
		return nil, fmt.Errorf("user %s: %w", in.UserName, models.ErrUserExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password+s.Pepper), s.Cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.Store.InsertUser(ctx, models.User{
		Details: models.UserDetails{
			Name:          in.Name,
			UserName:      in.UserName,
			Role:          role,
			Email:         in.Email,
			ContactNumber: in.ContactNumber,
			PasswordHash:  string(hash),
			Salt:          saltOf(hash),
			CreatedAt:     s.Now(),
		},
	})
}

// Delete removes the named account if it holds role
func (s *Service) Delete(ctx context.Context, role models.Role, userName string) (*models.User, error) {
	return s.Store.DeleteUser(ctx, userName, role)
}

// Lookup finds an account by ID and checks its role
func (s *Service) Lookup(ctx context.Context, id string, role models.Role) (*models.User, error) {
	u, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Details.Role != role {
		return nil, fmt.Errorf("%s %s: %w", role, id, models.ErrNotFound)
	}
	return u, nil
}

// LookupByUserName finds an account by user name and checks its role
func (s *Service) LookupByUserName(ctx context.Context, userName string, role models.Role) (*models.User, error) {
	u, err := s.Store.FindByUserName(ctx, userName)
	if err != nil {
		return nil, err
	}
	if u.Details.Role != role {
		return nil, fmt.Errorf("%s %s: %w", role, userName, models.ErrNotFound)
	}
	return u, nil
}

// saltOf extracts the 22 character salt from a "$2a$10$..." bcrypt hash
func saltOf(hash []byte) string {
	if len(hash) < 29 {
		return ""
	}
	return string(hash[7:29])
}
