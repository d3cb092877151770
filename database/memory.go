package database

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rpupo63/portfolio-blog-backend/models"
)

// memoryStore backs the in-process repositories. All three share one lock so
// cross-collection operations observe a consistent state.
type memoryStore struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	posts    map[string]*models.BlogPost
	comments map[string]*models.Comment
}

// NewMemory returns a Database held entirely in process memory. It is used
// for local development and tests.
func NewMemory() Database {
	s := &memoryStore{
		users:    make(map[string]*models.User),
		posts:    make(map[string]*models.BlogPost),
		comments: make(map[string]*models.Comment),
	}
	return New(&MemoryUserRepo{s}, &MemoryBlogPostRepo{s}, &MemoryCommentRepo{s}, nil)
}

type MemoryUserRepo struct {
	s *memoryStore
}

func copyUser(u *models.User) *models.User {
	c := *u
	if u.VerifyOTP != nil {
		code := *u.VerifyOTP
		c.VerifyOTP = &code
	}
	if u.VerifyOTPExpireAt != nil {
		at := *u.VerifyOTPExpireAt
		c.VerifyOTPExpireAt = &at
	}
	return &c
}

func (r *MemoryUserRepo) Add(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return errs.ErrAlreadyExists
		}
	}
	r.s.users[user.ID] = copyUser(user)
	return nil
}

func (r *MemoryUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, errs.ErrNotFound
}

func (r *MemoryUserRepo) FindByIDs(_ context.Context, ids []string) (map[string]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make(map[string]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			result[id] = copyUser(u)
		}
	}
	return result, nil
}

func (r *MemoryUserRepo) FindAll(_ context.Context) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, copyUser(u))
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r *MemoryUserRepo) SetRole(_ context.Context, id string, role models.Role) error {
	return r.mutate(id, func(u *models.User) bool {
		u.Role = role
		return true
	})
}

func (r *MemoryUserRepo) SetOTP(_ context.Context, id, code string, expiresAt time.Time) error {
	return r.mutate(id, func(u *models.User) bool {
		u.VerifyOTP = &code
		u.VerifyOTPExpireAt = &expiresAt
		return true
	})
}

func (r *MemoryUserRepo) VerifyAccount(_ context.Context, id, code string, now time.Time) error {
	return r.mutate(id, func(u *models.User) bool {
		if !otpMatches(u, code, now) {
			return false
		}
		u.IsAccountVerified = true
		u.VerifyOTP, u.VerifyOTPExpireAt = nil, nil
		return true
	})
}

func (r *MemoryUserRepo) ResetPassword(_ context.Context, id, code, passwordHash string, now time.Time) error {
	return r.mutate(id, func(u *models.User) bool {
		if !otpMatches(u, code, now) {
			return false
		}
		u.Password = passwordHash
		u.VerifyOTP, u.VerifyOTPExpireAt = nil, nil
		return true
	})
}

// mutate applies fn under the write lock; fn returning false means no match.
func (r *MemoryUserRepo) mutate(id string, fn func(u *models.User) bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok || !fn(u) {
		return errs.ErrNotFound
	}
	return nil
}

func otpMatches(u *models.User, code string, now time.Time) bool {
	return u.HasOTP() && *u.VerifyOTP == code && !now.After(*u.VerifyOTPExpireAt)
}

type MemoryBlogPostRepo struct {
	s *memoryStore
}

func copyPost(p *models.BlogPost) *models.BlogPost {
	c := *p
	c.Likes = append([]string{}, p.Likes...)
	c.Comments = append([]string{}, p.Comments...)
	return &c
}

func (r *MemoryBlogPostRepo) Add(_ context.Context, post *models.BlogPost) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[post.ID]; ok {
		return errs.ErrAlreadyExists
	}
	r.s.posts[post.ID] = copyPost(post)
	return nil
}

func (r *MemoryBlogPostRepo) FindByID(_ context.Context, id string) (*models.BlogPost, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return copyPost(p), nil
}

func (r *MemoryBlogPostRepo) FindPublished(_ context.Context) ([]*models.BlogPost, error) {
	return r.findNewest(func(p *models.BlogPost) bool { return p.IsPublished }), nil
}

func (r *MemoryBlogPostRepo) FindByAuthor(_ context.Context, authorID string) ([]*models.BlogPost, error) {
	return r.findNewest(func(p *models.BlogPost) bool { return p.Author == authorID }), nil
}

func (r *MemoryBlogPostRepo) findNewest(match func(p *models.BlogPost) bool) []*models.BlogPost {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	posts := []*models.BlogPost{}
	for _, p := range r.s.posts {
		if match(p) {
			posts = append(posts, copyPost(p))
		}
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts
}

func (r *MemoryBlogPostRepo) Update(_ context.Context, post *models.BlogPost) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.posts[post.ID]
	if !ok {
		return errs.ErrNotFound
	}
	stored.Title = post.Title
	stored.Subtitle = post.Subtitle
	stored.Description = post.Description
	stored.Category = post.Category
	stored.Thumbnail = post.Thumbnail
	stored.VideoURL = post.VideoURL
	stored.IsPublished = post.IsPublished
	stored.UpdatedAt = post.UpdatedAt
	return nil
}

func (r *MemoryBlogPostRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.s.posts, id)
	return nil
}

func (r *MemoryBlogPostRepo) ToggleLike(_ context.Context, postID, userID string) ([]string, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[postID]
	if !ok {
		return nil, false, errs.ErrNotFound
	}

	liked := !slices.Contains(p.Likes, userID)
	if liked {
		p.Likes = append(p.Likes, userID)
	} else {
		p.Likes = slices.DeleteFunc(p.Likes, func(id string) bool { return id == userID })
	}
	return append([]string{}, p.Likes...), liked, nil
}

func (r *MemoryBlogPostRepo) AppendComment(_ context.Context, postID, commentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[postID]
	if !ok {
		return errs.ErrNotFound
	}
	p.Comments = append(p.Comments, commentID)
	return nil
}

type MemoryCommentRepo struct {
	s *memoryStore
}

func (r *MemoryCommentRepo) Add(_ context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *comment
	r.s.comments[c.ID] = &c
	return nil
}

func (r *MemoryCommentRepo) FindByIDs(_ context.Context, ids []string) (map[string]*models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make(map[string]*models.Comment, len(ids))
	for _, id := range ids {
		if c, ok := r.s.comments[id]; ok {
			cp := *c
			result[id] = &cp
		}
	}
	return result, nil
}

func (r *MemoryCommentRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.comments, id)
	return nil
}

func (r *MemoryCommentRepo) DeleteByPost(_ context.Context, postID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, c := range r.s.comments {
		if c.PostID == postID {
			delete(r.s.comments, id)
		}
	}
	return nil
}
