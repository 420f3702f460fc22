package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/court-docket-api/models"
)

const summaryName = "summaries"

// SummaryDatabase contains the methods to use with the summary database
type SummaryDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Summary, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type summaryDatabase struct {
	db DatabaseHelper
}

// NewSummaryDatabase initializes a new instance of summary database with the provided db connection
func NewSummaryDatabase(db DatabaseHelper) SummaryDatabase {
	return &summaryDatabase{
		db: db,
	}
}

func (s *summaryDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Summary, error) {
	summaries := []models.Summary{}
	curr, err := s.db.Collection(summaryName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &summaries)
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *summaryDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return s.db.Collection(summaryName).InsertOne(ctx, document, opts...)
}
