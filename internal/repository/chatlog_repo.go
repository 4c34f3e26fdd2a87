package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ieatsighpies/fyp-survey-website/internal/model"
)

// ChatLogRepo persists completed user/assistant exchanges. A record is only
// written once both halves of the exchange exist.
type ChatLogRepo interface {
	Insert(ctx context.Context, log *model.ChatLog) (string, error)
}

type chatLogRepo struct {
	collection *mongo.Collection
}

// NewChatLogRepo creates a new chat log repository
func NewChatLogRepo(db *mongo.Database) ChatLogRepo {
	return &chatLogRepo{
		collection: db.Collection(ChatLogCollection),
	}
}

func (r *chatLogRepo) Insert(ctx context.Context, log *model.ChatLog) (string, error) {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, log)
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	return oid.Hex(), nil
}
