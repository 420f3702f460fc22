package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentStatus of a billing entry
type PaymentStatus string

// Payment statuses
const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// ChargeSource records which read produced a charge. Listing charges are never
// deduplicated, view charges are deduplicated per lawyer and case.
type ChargeSource string

// Charge sources
const (
	ChargeSourceView    ChargeSource = "VIEW"
	ChargeSourceListing ChargeSource = "LISTING"
)

// CaseRef links a billing entry to the case it was charged for
type CaseRef struct {
	CaseID primitive.ObjectID `json:"caseID" bson:"caseID"`
	CIN    string             `json:"cin" bson:"cin"`
}

// BillingEntry is a single charge against a lawyer
type BillingEntry struct {
	ID            primitive.ObjectID `json:"_id"`
	LawyerID      string             `json:"lawyerID"`
	CaseRef       *CaseRef           `json:"case,omitempty"`
	Source        ChargeSource       `json:"source"`
	ChargeAmount  decimal.Decimal    `json:"chargeAmount"`
	PaymentStatus PaymentStatus      `json:"paymentStatus"`
	CreatedAt     time.Time          `json:"createdAt"`
}
