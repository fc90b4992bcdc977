package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/dalemusser/communityhub/internal/domain/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var countPrinter = message.NewPrinter(language.English)

// FormatCount renders a card value with thousands separators ("2,847").
func FormatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}

// Users derives user stats bucketed by account status.
func Users(users []models.User, growth Growth) DerivedStats {
	return Compute(users, func(u models.User) models.UserStatus { return u.Status }, models.UserStatuses, growth)
}

// UsersByRole buckets users by role.
func UsersByRole(users []models.User) DerivedStats {
	return Compute(users, func(u models.User) models.Role { return u.Role }, models.Roles, nil)
}

// Posts derives post stats bucketed by moderation status.
func Posts(posts []models.Post, growth Growth) DerivedStats {
	return Compute(posts, func(p models.Post) models.ModerationStatus { return p.Status }, models.ModerationStatuses, growth)
}

// Comments derives comment stats bucketed by moderation status.
func Comments(comments []models.Comment, growth Growth) DerivedStats {
	return Compute(comments, func(c models.Comment) models.ModerationStatus { return c.Status }, models.ModerationStatuses, growth)
}

// TagStats summarizes the tag list.
type TagStats struct {
	Tags          int `json:"tags"`
	TotalPosts    int `json:"total_posts"`
	AveragePerTag int `json:"average_per_tag"`
}

// TagSummary totals post counts across tags. The average is rounded to
// the nearest integer and is 0 when there are no tags.
func TagSummary(tags []models.Tag) TagStats {
	s := TagStats{Tags: len(tags)}
	for _, t := range tags {
		s.TotalPosts += t.PostCount
	}
	if s.Tags > 0 {
		s.AveragePerTag = int(math.Round(float64(s.TotalPosts) / float64(s.Tags)))
	}
	return s
}

// EngagementStats totals post interactions.
type EngagementStats struct {
	Views    int `json:"views"`
	Comments int `json:"comments"`
	Likes    int `json:"likes"`
}

// Engagement sums views, comments and likes across posts.
func Engagement(posts []models.Post) EngagementStats {
	var e EngagementStats
	for _, p := range posts {
		e.Views += p.Views
		e.Comments += p.Comments
		e.Likes += p.Likes
	}
	return e
}

// ActiveRate is the share of users whose status is active, in percent.
// It is 0 for an empty list.
func ActiveRate(users []models.User) float64 {
	if len(users) == 0 {
		return 0
	}
	active := 0
	for _, u := range users {
		if u.Status == models.UserActive {
			active++
		}
	}
	return float64(active) / float64(len(users)) * 100
}

// MonthPoint is one month of activity.
type MonthPoint struct {
	Month    string `json:"month"` // "2025-06"
	Label    string `json:"label"` // "Juin"
	Posts    int    `json:"posts"`
	Comments int    `json:"comments"`
	Users    int    `json:"users"`
}

var monthLabels = [...]string{"Jan", "Fév", "Mar", "Avr", "Mai", "Juin", "Juil", "Aoû", "Sep", "Oct", "Nov", "Déc"}

// Monthly counts posts, comments and user sign-ups per calendar month for
// the n months ending with the month of now, oldest first. Items with a
// zero date or a date outside the window are ignored.
func Monthly(posts []models.Post, comments []models.Comment, users []models.User, now time.Time, n int) []MonthPoint {
	if n <= 0 {
		return []MonthPoint{}
	}
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(n - 1), 0)

	points := make([]MonthPoint, n)
	for i := range points {
		m := start.AddDate(0, i, 0)
		points[i] = MonthPoint{Month: m.Format("2006-01"), Label: monthLabels[m.Month()-1]}
	}

	slot := func(t time.Time) int {
		if t.IsZero() {
			return -1
		}
		t = t.UTC()
		i := (t.Year()-start.Year())*12 + int(t.Month()) - int(start.Month())
		if i < 0 || i >= n {
			return -1
		}
		return i
	}
	for _, p := range posts {
		if i := slot(p.CreatedAt); i >= 0 {
			points[i].Posts++
		}
	}
	for _, c := range comments {
		if i := slot(c.CreatedAt); i >= 0 {
			points[i].Comments++
		}
	}
	for _, u := range users {
		if i := slot(u.JoinDate); i >= 0 {
			points[i].Users++
		}
	}
	return points
}

// TagCount is how many loaded posts carry one tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagUsage counts how many loaded posts carry each tag, most used first,
// ties by name.
func TagUsage(posts []models.Post) []TagCount {
	counts := map[string]int{}
	for _, p := range posts {
		for _, t := range p.Tags {
			counts[t]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, TagCount{Tag: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}
