package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ieatsighpies/fyp-survey-website/internal/model"
)

// SurveyResponseRepo persists accepted survey submissions
type SurveyResponseRepo interface {
	Insert(ctx context.Context, sessionID string, responses model.ResponseSet) (string, error)
}

type surveyResponseRepo struct {
	collection *mongo.Collection
}

// NewSurveyResponseRepo creates a new survey response repository
func NewSurveyResponseRepo(db *mongo.Database) SurveyResponseRepo {
	return &surveyResponseRepo{
		collection: db.Collection(SurveyCollection),
	}
}

func (r *surveyResponseRepo) Insert(ctx context.Context, sessionID string, responses model.ResponseSet) (string, error) {
	doc := bson.M{}
	for k, v := range responses {
		doc[k] = v
	}
	// Extra keys pass the schema validator; the seven answers must be present
	doc["session_id"] = sessionID
	doc["created_at"] = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	return oid.Hex(), nil
}
