package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/court-docket-api/models"
)

const hearingName = "hearings"

// HearingDatabase contains the methods to use with the hearing database
type HearingDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Hearing, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type hearingDatabase struct {
	db DatabaseHelper
}

// NewHearingDatabase initializes a new instance of hearing database with the provided db connection
func NewHearingDatabase(db DatabaseHelper) HearingDatabase {
	return &hearingDatabase{
		db: db,
	}
}

func (h *hearingDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Hearing, error) {
	hearings := []models.Hearing{}
	curr, err := h.db.Collection(hearingName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &hearings)
	if err != nil {
		return nil, err
	}
	return hearings, nil
}

func (h *hearingDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return h.db.Collection(hearingName).InsertOne(ctx, document, opts...)
}
