// internal/domain/models/comment.go
package models

import "time"

// Comment is a reply attached to a post.
type Comment struct {
	ID        ID               `json:"id"`
	Content   string           `json:"content"`
	Author    Author           `json:"author"`
	PostID    ID               `json:"post_id"`
	PostTitle string           `json:"post_title,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	Likes     int              `json:"likes"`
	Status    ModerationStatus `json:"status"`
}

// PostLabel is the post reference shown next to a comment.
func (c Comment) PostLabel() string {
	if c.PostTitle != "" {
		return c.PostTitle
	}
	return "Publication #" + c.PostID.String()
}
