package database

import (
	"context"

	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rpupo63/portfolio-blog-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

type BlogPostRepo struct {
	db *gorm.DB
}

func NewBlogPostRepo(db *gorm.DB) *BlogPostRepo {
	return &BlogPostRepo{db}
}

// FindPublished returns all published blog posts, newest first
func (r *BlogPostRepo) FindPublished(ctx context.Context) ([]*models.BlogPost, error) {
	var blogPosts []*models.BlogPost
	err := r.db.WithContext(ctx).Where("is_published = ?", true).Order("created_at DESC").Find(&blogPosts).Error
	if err != nil {
		return nil, err
	}
	return blogPosts, r.loadRelations(r.db.WithContext(ctx), blogPosts...)
}

func (r *BlogPostRepo) FindByAuthor(ctx context.Context, authorID string) ([]*models.BlogPost, error) {
	var blogPosts []*models.BlogPost
	err := r.db.WithContext(ctx).Where("author = ?", authorID).Order("created_at DESC").Find(&blogPosts).Error
	if err != nil {
		return nil, err
	}
	return blogPosts, r.loadRelations(r.db.WithContext(ctx), blogPosts...)
}

// FindByID returns a blog post by its ID
func (r *BlogPostRepo) FindByID(ctx context.Context, id string) (*models.BlogPost, error) {
	var blogPost models.BlogPost
	db := r.db.WithContext(ctx).Clauses(dbresolver.Write)
	if err := db.Where("id = ?", id).First(&blogPost).Error; err != nil {
		return nil, notFound(err)
	}
	return &blogPost, r.loadRelations(db, &blogPost)
}

// Add inserts a new blog post into the database
func (r *BlogPostRepo) Add(ctx context.Context, blogPost *models.BlogPost) error {
	return r.db.WithContext(ctx).Create(blogPost).Error
}

// Update updates the editable columns of an existing blog post
func (r *BlogPostRepo) Update(ctx context.Context, blogPost *models.BlogPost) error {
	res := r.db.WithContext(ctx).Model(&models.BlogPost{}).Where("id = ?", blogPost.ID).Updates(map[string]interface{}{
		"title":        blogPost.Title,
		"subtitle":     blogPost.Subtitle,
		"description":  blogPost.Description,
		"category":     blogPost.Category,
		"thumbnail":    blogPost.Thumbnail,
		"video_url":    blogPost.VideoURL,
		"is_published": blogPost.IsPublished,
		"updated_at":   blogPost.UpdatedAt,
	})
	return affected(res)
}

// Delete removes a blog post together with its likes and comments
func (r *BlogPostRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.BlogLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return affected(tx.Where("id = ?", id).Delete(&models.BlogPost{}))
	})
}

// ToggleLike deletes the (post, user) row if it exists and inserts it otherwise.
// The composite primary key keeps a user in the set at most once even when two
// toggles race.
func (r *BlogPostRepo) ToggleLike(ctx context.Context, postID, userID string) ([]string, bool, error) {
	var likes []string
	liked := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.BlogPost{}).Where("id = ?", postID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.ErrNotFound
		}

		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.BlogLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			like := models.BlogLike{PostID: postID, UserID: userID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return err
			}
			liked = true
		}

		return tx.Model(&models.BlogLike{}).Where("post_id = ?", postID).Order("user_id").Pluck("user_id", &likes).Error
	})
	if err != nil {
		return nil, false, err
	}
	return likes, liked, nil
}

// AppendComment only checks the post still exists; the comment row itself
// carries the post reference.
func (r *BlogPostRepo) AppendComment(ctx context.Context, postID, commentID string) error {
	var count int64
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).Model(&models.BlogPost{}).Where("id = ?", postID).Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// loadRelations fills Likes and Comments from the join and comment tables.
func (r *BlogPostRepo) loadRelations(db *gorm.DB, posts ...*models.BlogPost) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, 0, len(posts))
	byID := make(map[string]*models.BlogPost, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
		byID[p.ID] = p
		p.Likes = []string{}
		p.Comments = []string{}
	}

	var likes []models.BlogLike
	if err := db.Where("post_id IN ?", ids).Order("user_id").Find(&likes).Error; err != nil {
		return err
	}
	for _, l := range likes {
		byID[l.PostID].Likes = append(byID[l.PostID].Likes, l.UserID)
	}

	var comments []models.Comment
	if err := db.Select("id", "post_id").Where("post_id IN ?", ids).Order("created_at ASC").Find(&comments).Error; err != nil {
		return err
	}
	for _, c := range comments {
		byID[c.PostID].Comments = append(byID[c.PostID].Comments, c.ID)
	}
	return nil
}
