// dbtool is a maintenance CLI for the survey database: ensure creates the
// collections (with the survey schema validator), dump prints every stored
// document, purge deletes them all.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ieatsighpies/fyp-survey-website/internal/config"
	"github.com/ieatsighpies/fyp-survey-website/internal/logger"
	"github.com/ieatsighpies/fyp-survey-website/internal/repository"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: dbtool <ensure|dump|purge>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)

	switch os.Args[1] {
	case "ensure":
		if err := repository.EnsureCollections(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("ensure collections")
		}
		log.Info().Msg("collections ready")

	case "dump":
		if err := dump(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("dump")
		}

	case "purge":
		if err := purge(ctx, db, log); err != nil {
			log.Fatal().Err(err).Msg("purge")
		}

	default:
		fmt.Fprintln(os.Stderr, "unknown command:", os.Args[1])
		os.Exit(2)
	}
}

func collections(ctx context.Context, db *mongo.Database) ([]string, error) {
	return db.ListCollectionNames(ctx, bson.M{})
}

func dump(ctx context.Context, db *mongo.Database) error {
	names, err := collections(ctx, db)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Printf("--- %s ---\n", name)
		cursor, err := db.Collection(name).Find(ctx, bson.M{})
		if err != nil {
			return err
		}
		for cursor.Next(ctx) {
			out, err := bson.MarshalExtJSON(cursor.Current, false, false)
			if err != nil {
				cursor.Close(ctx)
				return err
			}
			fmt.Println(string(out))
		}
		if err := cursor.Err(); err != nil {
			cursor.Close(ctx)
			return err
		}
		cursor.Close(ctx)
	}
	return nil
}

func purge(ctx context.Context, db *mongo.Database, log zerolog.Logger) error {
	names, err := collections(ctx, db)
	if err != nil {
		return err
	}
	for _, name := range names {
		result, err := db.Collection(name).DeleteMany(ctx, bson.M{})
		if err != nil {
			return err
		}
		log.Info().Str("collection", name).Int64("deleted", result.DeletedCount).Msg("purged")
	}
	return nil
}
