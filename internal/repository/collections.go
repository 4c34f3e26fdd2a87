// Package repository holds the MongoDB persistence layer. All three
// collections are insert-only from the service's point of view.
package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// SurveyCollection stores one document per accepted survey submission
	SurveyCollection = "survey_responses"
	// ChatLogCollection stores one document per user/assistant exchange
	ChatLogCollection = "chat_logs"
	// ValidatedCollection stores one document per saved revised answer
	ValidatedCollection = "validate_answers"
)

// surveyValidator enforces the survey response contract at the store:
// exactly the seven required keys, all strings. Violating documents are
// rejected by MongoDB with a schema-validation write error.
var surveyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": bson.A{
			"name", "simple_qn_1", "simple_qn_2",
			"medium_qn_1", "medium_qn_2",
			"complex_qn_1", "complex_qn_2",
		},
		"properties": bson.M{
			"name":         bson.M{"bsonType": "string"},
			"simple_qn_1":  bson.M{"bsonType": "string"},
			"simple_qn_2":  bson.M{"bsonType": "string"},
			"medium_qn_1":  bson.M{"bsonType": "string"},
			"medium_qn_2":  bson.M{"bsonType": "string"},
			"complex_qn_1": bson.M{"bsonType": "string"},
			"complex_qn_2": bson.M{"bsonType": "string"},
		},
	},
}

// EnsureCollections creates the three collections if they do not exist,
// attaching the schema validator to survey responses.
func EnsureCollections(ctx context.Context, db *mongo.Database) error {
	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	present := map[string]bool{}
	for _, name := range existing {
		present[name] = true
	}

	if !present[SurveyCollection] {
		opts := options.CreateCollection().
			SetValidator(surveyValidator).
			SetValidationLevel("strict").
			SetValidationAction("error")
		if err := db.CreateCollection(ctx, SurveyCollection, opts); err != nil {
			return fmt.Errorf("create %s: %w", SurveyCollection, err)
		}
	}
	for _, name := range []string{ChatLogCollection, ValidatedCollection} {
		if !present[name] {
			if err := db.CreateCollection(ctx, name); err != nil {
				return fmt.Errorf("create %s: %w", name, err)
			}
		}
	}
	return nil
}
