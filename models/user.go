package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role of a user
type Role string

// Roles
const (
	RoleRegistrar Role = "REGISTRAR"
	RoleJudge     Role = "JUDGE"
	RoleLawyer    Role = "LAWYER"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleRegistrar, RoleJudge, RoleLawyer:
		return true
	}
	return false
}

// User holds the structure for the users collection in mongo
type User struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details UserDetails        `json:"user" bson:"user"`
	Version int32              `json:"__v" bson:"__v"`
}

// UserDetails holds the structure for the inner user structure
type UserDetails struct {
	Name          string    `json:"name" bson:"name"`
	UserName      string    `json:"userName" bson:"userName"`
	Role          Role      `json:"role" bson:"role"`
	Email         string    `json:"email" bson:"email"`
	ContactNumber string    `json:"contactNumber" bson:"contactNumber"`
	PasswordHash  string    `json:"-" bson:"password"`
	Salt          string    `json:"-" bson:"salt"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}
