package database

import (
	"context"
	"time"

	"github.com/rpupo63/portfolio-blog-backend/models"
)

// UserStore persists user accounts. Lookups return errs.ErrNotFound when
// nothing matches; Add returns errs.ErrAlreadyExists for a taken email.
type UserStore interface {
	Add(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	FindAll(ctx context.Context) ([]*models.User, error)
	SetRole(ctx context.Context, id string, role models.Role) error

	// SetOTP stores the code and its expiry in a single write.
	SetOTP(ctx context.Context, id, code string, expiresAt time.Time) error
	// VerifyAccount and ResetPassword only apply while the stored code equals
	// code and has not expired at now. Both clear the code and expiry. When the
	// condition does not hold they return errs.ErrNotFound.
	VerifyAccount(ctx context.Context, id, code string, now time.Time) error
	ResetPassword(ctx context.Context, id, code, passwordHash string, now time.Time) error
}

// BlogPostStore persists blog posts.
type BlogPostStore interface {
	Add(ctx context.Context, post *models.BlogPost) error
	FindByID(ctx context.Context, id string) (*models.BlogPost, error)
	// FindPublished and FindByAuthor order newest first.
	FindPublished(ctx context.Context) ([]*models.BlogPost, error)
	FindByAuthor(ctx context.Context, authorID string) ([]*models.BlogPost, error)
	// Update writes the editable fields only. Likes and comments are untouched.
	Update(ctx context.Context, post *models.BlogPost) error
	Delete(ctx context.Context, id string) error

	// ToggleLike atomically removes userID from the likes set when present and
	// adds it otherwise. It returns the resulting set and whether userID is in it.
	ToggleLike(ctx context.Context, postID, userID string) ([]string, bool, error)
	AppendComment(ctx context.Context, postID, commentID string) error
}

// CommentStore persists comments.
type CommentStore interface {
	Add(ctx context.Context, comment *models.Comment) error
	FindByIDs(ctx context.Context, ids []string) (map[string]*models.Comment, error)
	Delete(ctx context.Context, id string) error
	DeleteByPost(ctx context.Context, postID string) error
}

type Database struct {
	userRepo     UserStore
	blogPostRepo BlogPostStore
	commentRepo  CommentStore
	closer       func(ctx context.Context) error
}

// New assembles a Database from its repositories. closer may be nil.
func New(users UserStore, posts BlogPostStore, comments CommentStore, closer func(ctx context.Context) error) Database {
	return Database{
		userRepo:     users,
		blogPostRepo: posts,
		commentRepo:  comments,
		closer:       closer,
	}
}

// Accessor methods for each repository

func (d Database) UserRepo() UserStore {
	return d.userRepo
}

func (d Database) BlogPostRepo() BlogPostStore {
	return d.blogPostRepo
}

func (d Database) CommentRepo() CommentStore {
	return d.commentRepo
}

// Close releases the underlying connections.
func (d Database) Close(ctx context.Context) error {
	if d.closer == nil {
		return nil
	}
	return d.closer(ctx)
}
