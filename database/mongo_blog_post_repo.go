package database

import (
	"context"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rpupo63/portfolio-blog-backend/models"
)

type MongoBlogPostRepo struct {
	col *mongo.Collection
}

func NewMongoBlogPostRepo(col *mongo.Collection) *MongoBlogPostRepo {
	return &MongoBlogPostRepo{col: col}
}

func (r *MongoBlogPostRepo) Add(ctx context.Context, post *models.BlogPost) error {
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []string{}
	}
	_, err := r.col.InsertOne(ctx, post)
	return err
}

func (r *MongoBlogPostRepo) FindByID(ctx context.Context, id string) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, mongoNotFound(err)
	}
	return &post, nil
}

func (r *MongoBlogPostRepo) FindPublished(ctx context.Context) ([]*models.BlogPost, error) {
	return r.findNewest(ctx, bson.M{"isPublished": true})
}

func (r *MongoBlogPostRepo) FindByAuthor(ctx context.Context, authorID string) ([]*models.BlogPost, error) {
	return r.findNewest(ctx, bson.M{"author": authorID})
}

func (r *MongoBlogPostRepo) findNewest(ctx context.Context, filter bson.M) ([]*models.BlogPost, error) {
	posts := []*models.BlogPost{}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if err := findAll(ctx, r.col, filter, opts, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *MongoBlogPostRepo) Update(ctx context.Context, post *models.BlogPost) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": post.ID}, bson.M{"$set": bson.M{
		"title":       post.Title,
		"subtitle":    post.Subtitle,
		"description": post.Description,
		"category":    post.Category,
		"thumbnail":   post.Thumbnail,
		"videoUrl":    post.VideoURL,
		"isPublished": post.IsPublished,
		"updatedAt":   post.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *MongoBlogPostRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ToggleLike flips membership with a single pipeline update so the
// read and the write happen on the server as one document operation.
func (r *MongoBlogPostRepo) ToggleLike(ctx context.Context, postID, userID string) ([]string, bool, error) {
	likes := bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}
	toggle := bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$in", Value: bson.A{userID, likes}}},
		bson.D{{Key: "$filter", Value: bson.D{
			{Key: "input", Value: likes},
			{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", userID}}}},
		}}},
		bson.D{{Key: "$concatArrays", Value: bson.A{likes, bson.A{userID}}}},
	}}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "likes", Value: toggle}}}},
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1})

	var post models.BlogPost
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": postID}, update, opts).Decode(&post); err != nil {
		return nil, false, mongoNotFound(err)
	}
	if post.Likes == nil {
		post.Likes = []string{}
	}
	return post.Likes, slices.Contains(post.Likes, userID), nil
}

func (r *MongoBlogPostRepo) AppendComment(ctx context.Context, postID, commentID string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$push": bson.M{"comments": commentID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}
