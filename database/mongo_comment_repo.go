package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rpupo63/portfolio-blog-backend/models"
)

type MongoCommentRepo struct {
	col *mongo.Collection
}

func NewMongoCommentRepo(col *mongo.Collection) *MongoCommentRepo {
	return &MongoCommentRepo{col: col}
}

func (r *MongoCommentRepo) Add(ctx context.Context, comment *models.Comment) error {
	_, err := r.col.InsertOne(ctx, comment)
	return err
}

func (r *MongoCommentRepo) FindByIDs(ctx context.Context, ids []string) (map[string]*models.Comment, error) {
	result := make(map[string]*models.Comment, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var comments []*models.Comment
	if err := findAll(ctx, r.col, bson.M{"_id": bson.M{"$in": ids}}, nil, &comments); err != nil {
		return nil, err
	}
	for _, c := range comments {
		result[c.ID] = c
	}
	return result, nil
}

func (r *MongoCommentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *MongoCommentRepo) DeleteByPost(ctx context.Context, postID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"blog": postID})
	return err
}
