package databases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/court-docket-api/models"
	"github.com/linesmerrill/court-docket-api/store"
)

// CaseStore keeps cases, hearings and summaries in three collections. The
// unique index on hearings.hearingDate enforces one hearing per instant and
// Atomic wraps multi-collection writes in a transaction, which needs a
// replica set.
type CaseStore struct {
	Client    ClientHelper
	Cases     CaseDatabase
	Hearings  HearingDatabase
	Summaries SummaryDatabase
	Now       func() time.Time
}

var _ store.CaseStore = (*CaseStore)(nil)

// NewCaseStore builds a CaseStore over db
func NewCaseStore(db DatabaseHelper) *CaseStore {
	return &CaseStore{
		Client:    db.Client(),
		Cases:     NewCaseDatabase(db),
		Hearings:  NewHearingDatabase(db),
		Summaries: NewSummaryDatabase(db),
		Now:       time.Now,
	}
}

// Atomic runs fn in a transaction. Nested calls join the open session.
func (s *CaseStore) Atomic(ctx context.Context, fn func(ctx context.Context, tx store.CaseStore) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx, s)
	}
	return s.Client.WithTransaction(ctx, func(ctx context.Context) error {
		return fn(ctx, s)
	})
}

// CreateCase implements store.CaseStore
func (s *CaseStore) CreateCase(ctx context.Context, details models.CaseDetails, hearingDate time.Time) (*models.Case, error) {
	if details.CIN == "" {
		details.CIN = uuid.NewString()
	}
	if details.CaseStartDate.IsZero() {
		details.CaseStartDate = s.Now()
	}
	details.Status = models.CaseStatusPending
	details.CompletionDate = nil

	var created *models.Case
	err := s.Atomic(ctx, func(ctx context.Context, _ store.CaseStore) error {
		c := models.Case{ID: primitive.NewObjectID(), Details: details}
		if _, err := s.Cases.InsertOne(ctx, c); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("case %s already exists: %w", details.CIN, models.ErrValidation)
			}
			return storageError(err, "insert case %s", details.CIN)
		}
		h, err := s.insertHearing(ctx, c.ID, hearingDate)
		if err != nil {
			return err
		}
		c.Hearings = []models.Hearing{*h}
		c.Summaries = []models.Summary{}
		created = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// FindByCIN implements store.CaseStore
func (s *CaseStore) FindByCIN(ctx context.Context, cin string) (*models.Case, error) {
	c, err := s.Cases.FindOne(ctx, bson.M{"case.cin": cin})
	if err != nil {
		return nil, storageError(err, "case %s", cin)
	}
	cases := []models.Case{*c}
	if err := s.attach(ctx, cases); err != nil {
		return nil, err
	}
	return &cases[0], nil
}

// ListByStatus implements store.CaseStore
func (s *CaseStore) ListByStatus(ctx context.Context, status models.CaseStatus, window *models.DateRange) ([]models.Case, error) {
	filter := bson.M{"case.status": status}
	if window != nil {
		field := "case.caseStartDate"
		if status == models.CaseStatusResolved {
			field = "case.completionDate"
		}
		filter[field] = bson.M{"$gte": window.From, "$lt": window.To}
	}
	cases, err := s.Cases.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "case.caseStartDate", Value: 1}}))
	if err != nil {
		return nil, storageError(err, "list %s cases", status)
	}
	if err := s.attach(ctx, cases); err != nil {
		return nil, err
	}
	return cases, nil
}

// AddHearing implements store.CaseStore
func (s *CaseStore) AddHearing(ctx context.Context, caseID primitive.ObjectID, date time.Time) (*models.Hearing, error) {
	if err := s.exists(ctx, caseID); err != nil {
		return nil, err
	}
	return s.insertHearing(ctx, caseID, date)
}

// AddSummary implements store.CaseStore
func (s *CaseStore) AddSummary(ctx context.Context, caseID primitive.ObjectID, content string) (*models.Summary, error) {
	if err := s.exists(ctx, caseID); err != nil {
		return nil, err
	}
	summary := models.Summary{ID: primitive.NewObjectID(), CaseID: caseID, Content: content, CreatedAt: s.Now()}
	if _, err := s.Summaries.InsertOne(ctx, summary); err != nil {
		return nil, storageError(err, "insert summary for case %s", caseID.Hex())
	}
	return &summary, nil
}

// SetStatus implements store.CaseStore
func (s *CaseStore) SetStatus(ctx context.Context, caseID primitive.ObjectID, status models.CaseStatus, completedAt *time.Time) error {
	update := bson.M{
		"$set": bson.M{"case.status": status},
		"$inc": bson.M{"__v": 1},
	}
	if completedAt != nil {
		update["$set"].(bson.M)["case.completionDate"] = *completedAt
	} else {
		update["$unset"] = bson.M{"case.completionDate": ""}
	}
	matched, err := s.Cases.UpdateOne(ctx, bson.M{"_id": caseID}, update)
	if err != nil {
		return storageError(err, "set status of case %s", caseID.Hex())
	}
	if matched == 0 {
		return fmt.Errorf("case %s: %w", caseID.Hex(), models.ErrNotFound)
	}
	return nil
}

// TouchPending implements store.CaseStore. The guarded write puts the case
// document in the transaction's write set, so a concurrent transition of the
// same case aborts with a write conflict and is retried.
func (s *CaseStore) TouchPending(ctx context.Context, caseID primitive.ObjectID) error {
	matched, err := s.Cases.UpdateOne(ctx,
		bson.M{"_id": caseID, "case.status": models.CaseStatusPending},
		bson.M{"$inc": bson.M{"__v": 1}},
	)
	if err != nil {
		return storageError(err, "touch case %s", caseID.Hex())
	}
	if matched == 0 {
		return fmt.Errorf("case %s: %w", caseID.Hex(), models.ErrAlreadyResolved)
	}
	return nil
}

// HearingOccupancy implements store.CaseStore
func (s *CaseStore) HearingOccupancy(ctx context.Context, month time.Month, year int) (map[int]bool, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	hearings, err := s.Hearings.Find(ctx, bson.M{"hearingDate": bson.M{"$gte": from, "$lt": to}})
	if err != nil {
		return nil, storageError(err, "hearings in %s %d", month, year)
	}

	days := models.DaysIn(month, year)
	occupied := make(map[int]bool, days)
	for day := 1; day <= days; day++ {
		occupied[day] = false
	}
	for _, h := range hearings {
		occupied[h.HearingDate.UTC().Day()] = true
	}
	return occupied, nil
}

func (s *CaseStore) insertHearing(ctx context.Context, caseID primitive.ObjectID, date time.Time) (*models.Hearing, error) {
	h := models.Hearing{ID: primitive.NewObjectID(), CaseID: caseID, HearingDate: date}
	if _, err := s.Hearings.InsertOne(ctx, h); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("hearing on %s: %w", date.Format(time.RFC3339), models.ErrHearingConflict)
		}
		return nil, storageError(err, "insert hearing for case %s", caseID.Hex())
	}
	return &h, nil
}

func (s *CaseStore) exists(ctx context.Context, caseID primitive.ObjectID) error {
	_, err := s.Cases.FindOne(ctx, bson.M{"_id": caseID}, options.FindOne().SetProjection(bson.M{"_id": 1}))
	return storageError(err, "case %s", caseID.Hex())
}

// attach loads hearings and summaries for every case with one query per collection
func (s *CaseStore) attach(ctx context.Context, cases []models.Case) error {
	if len(cases) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(cases))
	index := make(map[primitive.ObjectID]int, len(cases))
	for i := range cases {
		ids = append(ids, cases[i].ID)
		index[cases[i].ID] = i
		cases[i].Hearings = []models.Hearing{}
		cases[i].Summaries = []models.Summary{}
	}
	filter := bson.M{"caseID": bson.M{"$in": ids}}

	hearings, err := s.Hearings.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "hearingDate", Value: 1}}))
	if err != nil {
		return storageError(err, "load hearings")
	}
	for _, h := range hearings {
		if i, ok := index[h.CaseID]; ok {
			cases[i].Hearings = append(cases[i].Hearings, h)
		}
	}

	summaries, err := s.Summaries.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return storageError(err, "load summaries")
	}
	for _, sm := range summaries {
		if i, ok := index[sm.CaseID]; ok {
			cases[i].Summaries = append(cases[i].Summaries, sm)
		}
	}
	return nil
}
