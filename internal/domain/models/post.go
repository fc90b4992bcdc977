// internal/domain/models/post.go
package models

import (
	"strings"
	"time"
)

// ModerationStatus is the moderation state shared by posts and comments.
//
// There is no "pending" state: the community API only reports these three.
type ModerationStatus string

const (
	StatusApproved ModerationStatus = "approved"
	StatusFlagged  ModerationStatus = "flagged"
	StatusRejected ModerationStatus = "rejected"
)

// ModerationStatuses lists every valid moderation status in display order.
var ModerationStatuses = []ModerationStatus{StatusApproved, StatusFlagged, StatusRejected}

// Label returns the display name used by the dashboard.
func (s ModerationStatus) Label() string {
	switch s {
	case StatusFlagged:
		return "Signalé"
	case StatusRejected:
		return "Rejeté"
	default:
		return "Approuvé"
	}
}

// Valid reports whether s is one of ModerationStatuses.
func (s ModerationStatus) Valid() bool {
	for _, v := range ModerationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Author is the author reference carried by posts and comments.
type Author struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Post is a forum publication.
type Post struct {
	ID        ID               `json:"id"`
	Title     string           `json:"title,omitempty"`
	Author    Author           `json:"author"`
	Content   string           `json:"content"`
	Tags      []string         `json:"tags"`
	Status    ModerationStatus `json:"status"`
	Views     int              `json:"views"`
	Comments  int              `json:"comments"`
	Likes     int              `json:"likes"`
	Liked     bool             `json:"liked"`
	CreatedAt time.Time        `json:"created_at"`
}

// HasTag reports whether the post carries tag (case-insensitive).
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Initials returns the avatar fallback text for a display name.
func Initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		r := []rune(part)
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	return b.String()
}
