package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection    = "users"
	blogsCollection    = "blogs"
	commentsCollection = "comments"
)

// ConnectMongo dials the server and pings it before returning the client.
func ConnectMongo(ctx context.Context, uri string, zlog zerolog.Logger) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	zlog.Info().Msg("connecting to MongoDB")
	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	zlog.Info().Msg("connected to MongoDB")
	return client, nil
}

// NewMongo builds a Database on the named database and ensures its indexes.
func NewMongo(ctx context.Context, client *mongo.Client, dbName string) (Database, error) {
	db := client.Database(dbName)

	if err := ensureMongoIndexes(ctx, db); err != nil {
		return Database{}, err
	}

	return New(
		NewMongoUserRepo(db.Collection(usersCollection)),
		NewMongoBlogPostRepo(db.Collection(blogsCollection)),
		NewMongoCommentRepo(db.Collection(commentsCollection)),
		client.Disconnect,
	), nil
}

func ensureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		blogsCollection: {
			{Keys: bson.D{{Key: "isPublished", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "author", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		commentsCollection: {
			{Keys: bson.D{{Key: "blog", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}
