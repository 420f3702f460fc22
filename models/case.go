package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CaseStatus is the lifecycle state of a case
type CaseStatus string

// Case statuses. RESOLVED is terminal.
const (
	CaseStatusPending  CaseStatus = "PENDING"
	CaseStatusResolved CaseStatus = "RESOLVED"
)

// Valid reports whether s is a known status
func (s CaseStatus) Valid() bool {
	return s == CaseStatusPending || s == CaseStatusResolved
}

// Case holds the structure for the cases collection in mongo. Hearings and
// Summaries live in their own collections and are attached on read.
type Case struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Details   CaseDetails        `json:"case" bson:"case"`
	Hearings  []Hearing          `json:"hearings" bson:"-"`
	Summaries []Summary          `json:"summaries" bson:"-"`
	Version   int32              `json:"__v" bson:"__v"`
}

// CaseDetails holds the inner case structure
type CaseDetails struct {
	CIN string `json:"cin" bson:"cin"`

	// Defendant
	DefendantName    string `json:"defendantName" bson:"defendantName"`
	DefendantAddress string `json:"defendantAddress" bson:"defendantAddress"`

	// Crime
	CrimeType        string    `json:"crimeType" bson:"crimeType"`
	CrimeDate        time.Time `json:"crimeDate" bson:"crimeDate"`
	CrimeLocation    string    `json:"crimeLocation" bson:"crimeLocation"`
	ArrestingOfficer string    `json:"arrestingOfficer" bson:"arrestingOfficer"`
	ArrestDate       time.Time `json:"arrestDate" bson:"arrestDate"`

	Status        CaseStatus `json:"status" bson:"status"`
	CaseStartDate time.Time  `json:"caseStartDate" bson:"caseStartDate"`
	// CompletionDate is set iff Status is RESOLVED
	CompletionDate *time.Time `json:"completionDate,omitempty" bson:"completionDate,omitempty"`
}

// Hearing holds the structure for the hearings collection in mongo
type Hearing struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	CaseID      primitive.ObjectID `json:"caseID" bson:"caseID"`
	HearingDate time.Time          `json:"hearingDate" bson:"hearingDate"`
}

// Summary holds the structure for the summaries collection in mongo. Summaries
// are append-only.
type Summary struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	CaseID    primitive.ObjectID `json:"caseID" bson:"caseID"`
	Content   string             `json:"content" bson:"content"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// LatestHearing returns the hearing with the greatest date, or nil when the
// case has none
func (c *Case) LatestHearing() *Hearing {
	var latest *Hearing
	for i := range c.Hearings {
		if latest == nil || c.Hearings[i].HearingDate.After(latest.HearingDate) {
			latest = &c.Hearings[i]
		}
	}
	return latest
}

// HearingAvailability is a single day of a month and whether a hearing falls on it
type HearingAvailability struct {
	Day      int  `json:"day"`
	Occupied bool `json:"occupied"`
}
