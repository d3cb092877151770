package models

import "time"

// Comment is attached to exactly one blog post and never edited.
type Comment struct {
	ID        string    `json:"id" bson:"_id" gorm:"type:text;primaryKey;not null"`
	PostID    string    `json:"blog" bson:"blog" gorm:"type:text;not null;index:idx_comments_post_created,priority:1"`
	Author    string    `json:"user" bson:"user" gorm:"type:text;not null"`
	Content   string    `json:"content" bson:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" gorm:"type:timestamptz;not null;index:idx_comments_post_created,priority:2"`
}

type CommentView struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	User      AuthorSummary `json:"user"`
	CreatedAt time.Time     `json:"createdAt"`
}
