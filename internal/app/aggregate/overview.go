package aggregate

import (
	"fmt"
	"time"

	"github.com/dalemusser/communityhub/internal/domain/models"
)

// Card is one headline figure on the dashboard.
type Card struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Value  string `json:"value"`
	Change string `json:"change"`
}

// Snapshot is everything the dashboard reads. Previous sizes come from the
// load before the current one and drive the growth figures.
type Snapshot struct {
	Users    []models.User
	Posts    []models.Post
	Comments []models.Comment
	Tags     []models.Tag

	PrevUsers      int
	PrevPosts      int
	PrevComments   int
	PrevActiveRate float64
}

// OverviewStats is the dashboard payload.
type OverviewStats struct {
	Cards      []Card          `json:"cards"`
	Posts      DerivedStats    `json:"posts"`
	Comments   DerivedStats    `json:"comments"`
	Users      DerivedStats    `json:"users"`
	Roles      DerivedStats    `json:"roles"`
	Engagement EngagementStats `json:"engagement"`
	Activity   []MonthPoint    `json:"activity"`
	Tags       TagStats        `json:"tags"`
	TopTags    []TagCount      `json:"top_tags"`
}

// ActivityMonths is the width of the activity chart.
const ActivityMonths = 6

// Overview builds the dashboard from a snapshot.
func Overview(s Snapshot, now time.Time) OverviewStats {
	users := Users(s.Users, SincePrevious(s.PrevUsers))
	posts := Posts(s.Posts, SincePrevious(s.PrevPosts))
	comments := Comments(s.Comments, SincePrevious(s.PrevComments))

	rate := ActiveRate(s.Users)
	var rateDelta float64
	if s.PrevActiveRate > 0 {
		rateDelta = rate - s.PrevActiveRate
	}

	top := TagUsage(s.Posts)
	if len(top) > 5 {
		top = top[:5]
	}

	return OverviewStats{
		Cards: []Card{
			{Key: "users", Title: "Total Utilisateurs", Value: FormatCount(users.Total), Change: users.Growth},
			{Key: "posts", Title: "Publications", Value: FormatCount(posts.Total), Change: posts.Growth},
			{Key: "comments", Title: "Commentaires", Value: FormatCount(comments.Total), Change: comments.Growth},
			{Key: "engagement", Title: "Engagement", Value: fmt.Sprintf("%.1f%%", rate), Change: FormatGrowth(len(s.Users), rateDelta)},
		},
		Posts:      posts,
		Comments:   comments,
		Users:      users,
		Roles:      UsersByRole(s.Users),
		Engagement: Engagement(s.Posts),
		Activity:   Monthly(s.Posts, s.Comments, s.Users, now, ActivityMonths),
		Tags:       TagSummary(s.Tags),
		TopTags:    top,
	}
}
