package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rpupo63/portfolio-blog-backend/database"
	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rpupo63/portfolio-blog-backend/metrics"
	"github.com/rpupo63/portfolio-blog-backend/models"
)

// BlogService handles posts, likes and comments.
type BlogService struct {
	posts     database.BlogPostStore
	comments  database.CommentStore
	users     database.UserStore
	sanitizer *Sanitizer
	metrics   metrics.Recorder
	logger    zerolog.Logger
	now       func() time.Time
}

func NewBlogService(db database.Database, sanitizer *Sanitizer, rec metrics.Recorder, logger zerolog.Logger) *BlogService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if sanitizer == nil {
		sanitizer = NewSanitizer()
	}
	return &BlogService{
		posts:     db.BlogPostRepo(),
		comments:  db.CommentRepo(),
		users:     db.UserRepo(),
		sanitizer: sanitizer,
		metrics:   rec,
		logger:    logger.With().Str("serviceName", "blogService").Logger(),
		now:       time.Now,
	}
}

func (s *BlogService) WithClock(now func() time.Time) *BlogService {
	s.now = now
	return s
}

type CreatePostInput struct {
	Title       string
	Description string
	Subtitle    string
	Category    string
	Thumbnail   string
	VideoURL    string
}

// LikeResult is the state of a post's likes after a toggle.
type LikeResult struct {
	Likes []string
	Liked bool
}

func (s *BlogService) Create(ctx context.Context, userID string, in CreatePostInput) (*models.BlogPost, error) {
	title := strings.TrimSpace(in.Title)
	description := s.sanitizer.HTML(in.Description)
	if title == "" {
		return nil, errs.NewValidationError("title", "title is required")
	}
	if description == "" {
		return nil, errs.NewValidationError("description", "description is required")
	}

	author, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !author.Role.CanAuthor() {
		return nil, errs.NewInsufficientRoleError("only admins can create blogs")
	}

	now := s.now().UTC()
	post := &models.BlogPost{
		ID:          uuid.NewString(),
		Title:       title,
		Subtitle:    s.sanitizer.HTML(in.Subtitle),
		Description: description,
		Category:    strings.TrimSpace(in.Category),
		Thumbnail:   strings.TrimSpace(in.Thumbnail),
		VideoURL:    strings.TrimSpace(in.VideoURL),
		IsPublished: true,
		Author:      author.ID,
		Likes:       []string{},
		Comments:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.posts.Add(ctx, post); err != nil {
		return nil, errs.NewDatabaseError("add", "blog post", err)
	}

	s.logger.Info().Str("postID", post.ID).Str("userID", author.ID).Msg("blog post created")
	return post, nil
}

// ListPublished returns published posts, newest first, with their authors.
func (s *BlogService) ListPublished(ctx context.Context) ([]models.BlogPostView, error) {
	posts, err := s.posts.FindPublished(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "blog posts", err)
	}
	return s.views(ctx, posts)
}

// MyPosts returns every post the user authored, drafts included.
func (s *BlogService) MyPosts(ctx context.Context, userID string) ([]models.BlogPostView, error) {
	posts, err := s.posts.FindByAuthor(ctx, userID)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "blog posts", err)
	}
	return s.views(ctx, posts)
}

// GetByID returns a post with its author and its comments in the order they were added.
func (s *BlogService) GetByID(ctx context.Context, postID string) (models.BlogPostView, error) {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return models.BlogPostView{}, err
	}

	comments, err := s.comments.FindByIDs(ctx, post.Comments)
	if err != nil {
		return models.BlogPostView{}, errs.NewDatabaseError("list", "comments", err)
	}

	userIDs := []string{post.Author}
	for _, c := range comments {
		userIDs = append(userIDs, c.Author)
	}
	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return models.BlogPostView{}, errs.NewDatabaseError("list", "users", err)
	}

	view := models.NewBlogPostView(post, authorSummary(users[post.Author], true))
	for _, id := range post.Comments {
		c, ok := comments[id]
		if !ok {
			continue
		}
		commenter := models.AuthorSummary{ID: c.Author}
		if u := authorSummary(users[c.Author], false); u != nil {
			commenter = *u
		}
		view.Comments = append(view.Comments, models.CommentView{
			ID:        c.ID,
			Content:   c.Content,
			User:      commenter,
			CreatedAt: c.CreatedAt,
		})
	}
	return view, nil
}

// ToggleLike flips the caller's membership in the post's likes.
func (s *BlogService) ToggleLike(ctx context.Context, userID, postID string) (LikeResult, error) {
	likes, liked, err := s.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return LikeResult{}, errs.NewNotFound("blog post")
		}
		return LikeResult{}, errs.NewDatabaseError("toggle like on", "blog post", err)
	}

	s.metrics.RecordLikeToggle(liked)
	return LikeResult{Likes: likes, Liked: liked}, nil
}

func (s *BlogService) AddComment(ctx context.Context, userID, postID, content string) (*models.Comment, error) {
	content = s.sanitizer.Text(content)
	if content == "" {
		return nil, errs.NewValidationError("content", "comment cannot be empty")
	}

	if _, err := s.findPost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		Author:    userID,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.comments.Add(ctx, comment); err != nil {
		return nil, errs.NewDatabaseError("add", "comment", err)
	}

	if err := s.posts.AppendComment(ctx, postID, comment.ID); err != nil {
		if delErr := s.comments.Delete(ctx, comment.ID); delErr != nil {
			s.logger.Error().Err(delErr).Str("commentID", comment.ID).Msg("failed to roll back orphaned comment")
		}
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.NewNotFound("blog post")
		}
		return nil, errs.NewDatabaseError("attach comment to", "blog post", err)
	}

	s.metrics.RecordComment()
	return comment, nil
}

// Edit merges the non-empty fields of patch into the post. Authorship is not
// checked; the route restricts callers to admins.
func (s *BlogService) Edit(ctx context.Context, postID string, patch models.BlogPostPatch) (*models.BlogPost, error) {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	patch.Title = strings.TrimSpace(patch.Title)
	patch.Subtitle = s.sanitizer.HTML(patch.Subtitle)
	patch.Description = s.sanitizer.HTML(patch.Description)
	patch.Category = strings.TrimSpace(patch.Category)
	patch.Thumbnail = strings.TrimSpace(patch.Thumbnail)
	patch.VideoURL = strings.TrimSpace(patch.VideoURL)

	if !patch.Apply(post) {
		return post, nil
	}

	post.UpdatedAt = s.now().UTC()
	if err := s.posts.Update(ctx, post); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.NewNotFound("blog post")
		}
		return nil, errs.NewDatabaseError("update", "blog post", err)
	}
	return post, nil
}

// Delete removes a post. A main-admin may delete any post, an admin only their own.
func (s *BlogService) Delete(ctx context.Context, userID, postID string) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}

	switch {
	case user.Role == models.RoleMainAdmin:
	case user.Role == models.RoleAdmin && post.Author == user.ID:
	case user.Role == models.RoleAdmin:
		return errs.NewForbiddenError("admins can only delete their own blogs")
	default:
		return errs.NewInsufficientRoleError("only admins can delete blogs")
	}

	if err := s.posts.Delete(ctx, post.ID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.NewNotFound("blog post")
		}
		return errs.NewDatabaseError("delete", "blog post", err)
	}
	if err := s.comments.DeleteByPost(ctx, post.ID); err != nil {
		s.logger.Warn().Err(err).Str("postID", post.ID).Msg("failed to delete comments of removed post")
	}

	s.logger.Info().Str("postID", post.ID).Str("userID", user.ID).Msg("blog post deleted")
	return nil
}

func (s *BlogService) views(ctx context.Context, posts []*models.BlogPost) ([]models.BlogPostView, error) {
	authorIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.Author)
	}
	authors, err := s.users.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "users", err)
	}

	views := make([]models.BlogPostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, models.NewBlogPostView(p, authorSummary(authors[p.Author], true)))
	}
	return views, nil
}

func (s *BlogService) findPost(ctx context.Context, postID string) (*models.BlogPost, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.NewNotFound("blog post")
		}
		return nil, errs.NewDatabaseError("find", "blog post", err)
	}
	return post, nil
}

func (s *BlogService) findUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.NewUserNotFoundError()
		}
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	return user, nil
}

func authorSummary(u *models.User, withEmail bool) *models.AuthorSummary {
	if u == nil {
		return nil
	}
	summary := &models.AuthorSummary{ID: u.ID, Name: u.Name}
	if withEmail {
		summary.Email = u.Email
	}
	return summary
}
