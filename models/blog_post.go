package models

import "time"

// BlogPost represents a blog post. Likes holds liker user IDs (a set) and
// Comments holds comment IDs in the order they were added.
type BlogPost struct {
	ID          string    `json:"id" bson:"_id" gorm:"type:text;primaryKey;not null"`
	Title       string    `json:"title" bson:"title" gorm:"type:text;not null"`
	Subtitle    string    `json:"subtitle,omitempty" bson:"subtitle,omitempty" gorm:"type:text"`
	Description string    `json:"description" bson:"description" gorm:"type:text;not null"`
	Category    string    `json:"category,omitempty" bson:"category,omitempty" gorm:"type:text"`
	Thumbnail   string    `json:"thumbnail,omitempty" bson:"thumbnail,omitempty" gorm:"type:text"`
	VideoURL    string    `json:"videoUrl,omitempty" bson:"videoUrl,omitempty" gorm:"column:video_url;type:text"`
	IsPublished bool      `json:"isPublished" bson:"isPublished" gorm:"column:is_published;not null;default:true;index:idx_blog_posts_published"`
	Author      string    `json:"author" bson:"author" gorm:"type:text;not null;index:idx_blog_posts_author"`
	Likes       []string  `json:"likes" bson:"likes" gorm:"-"`
	Comments    []string  `json:"comments" bson:"comments" gorm:"-"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt" gorm:"type:timestamptz;not null"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt" gorm:"type:timestamptz;not null"`
}

// BlogLike is one row of the relational likes set; (PostID, UserID) is unique.
type BlogLike struct {
	PostID string `gorm:"type:text;not null;primaryKey"`
	UserID string `gorm:"type:text;not null;primaryKey"`
}

// BlogPostPatch carries the fields of a partial edit. Empty strings and a nil
// IsPublished leave the stored value unchanged.
type BlogPostPatch struct {
	Title       string
	Subtitle    string
	Description string
	Category    string
	Thumbnail   string
	VideoURL    string
	IsPublished *bool
}

// Apply merges the patch into p and reports whether anything changed.
func (patch BlogPostPatch) Apply(p *BlogPost) bool {
	changed := false
	set := func(dst *string, v string) {
		if v != "" && *dst != v {
			*dst = v
			changed = true
		}
	}
	set(&p.Title, patch.Title)
	set(&p.Subtitle, patch.Subtitle)
	set(&p.Description, patch.Description)
	set(&p.Category, patch.Category)
	set(&p.Thumbnail, patch.Thumbnail)
	set(&p.VideoURL, patch.VideoURL)
	if patch.IsPublished != nil && p.IsPublished != *patch.IsPublished {
		p.IsPublished = *patch.IsPublished
		changed = true
	}
	return changed
}

// BlogPostView is a post with its author, and optionally its comments, resolved.
type BlogPostView struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Subtitle    string         `json:"subtitle,omitempty"`
	Description string         `json:"description"`
	Category    string         `json:"category,omitempty"`
	Thumbnail   string         `json:"thumbnail,omitempty"`
	VideoURL    string         `json:"videoUrl,omitempty"`
	IsPublished bool           `json:"isPublished"`
	Author      *AuthorSummary `json:"author"`
	Likes       []string       `json:"likes"`
	Comments    []CommentView  `json:"comments"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// NewBlogPostView builds a view from a stored post. A nil author renders as null.
func NewBlogPostView(p *BlogPost, author *AuthorSummary) BlogPostView {
	likes := p.Likes
	if likes == nil {
		likes = []string{}
	}
	return BlogPostView{
		ID:          p.ID,
		Title:       p.Title,
		Subtitle:    p.Subtitle,
		Description: p.Description,
		Category:    p.Category,
		Thumbnail:   p.Thumbnail,
		VideoURL:    p.VideoURL,
		IsPublished: p.IsPublished,
		Author:      author,
		Likes:       likes,
		Comments:    []CommentView{},
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
