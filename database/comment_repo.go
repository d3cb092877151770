package database

import (
	"context"

	"github.com/rpupo63/portfolio-blog-backend/models"
	"gorm.io/gorm"
)

type CommentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{db}
}

// Add inserts a new comment into the database
func (r *CommentRepo) Add(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *CommentRepo) FindByIDs(ctx context.Context, ids []string) (map[string]*models.Comment, error) {
	result := make(map[string]*models.Comment, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var comments []*models.Comment
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&comments).Error; err != nil {
		return nil, err
	}
	for _, c := range comments {
		result[c.ID] = c
	}
	return result, nil
}

// Delete removes a comment by id
func (r *CommentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{}).Error
}

func (r *CommentRepo) DeleteByPost(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Comment{}).Error
}
