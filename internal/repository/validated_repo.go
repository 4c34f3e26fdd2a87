package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ieatsighpies/fyp-survey-website/internal/model"
)

// ValidatedAnswerRepo persists revised answers saved during the validate
// stage. Every save is an independent insert; records never merge back into
// the original survey response.
type ValidatedAnswerRepo interface {
	Insert(ctx context.Context, answer *model.ValidatedAnswer) (string, error)
}

type validatedAnswerRepo struct {
	collection *mongo.Collection
}

// NewValidatedAnswerRepo creates a new validated answer repository
func NewValidatedAnswerRepo(db *mongo.Database) ValidatedAnswerRepo {
	return &validatedAnswerRepo{
		collection: db.Collection(ValidatedCollection),
	}
}

func (r *validatedAnswerRepo) Insert(ctx context.Context, answer *model.ValidatedAnswer) (string, error) {
	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, answer)
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	return oid.Hex(), nil
}
