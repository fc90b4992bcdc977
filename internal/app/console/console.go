// Package console wires the community API client, the normalizer, the four
// view-state stores and their mutation coordinators into the admin console
// the HTTP features drive.
//
// There is one Console per process. Its stores are shared by every operator
// session, so a selection made by one operator is visible to the others.
package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/communityhub/internal/app/aggregate"
	"github.com/dalemusser/communityhub/internal/app/ingest"
	"github.com/dalemusser/communityhub/internal/app/mutation"
	"github.com/dalemusser/communityhub/internal/app/store/viewstate"
	"github.com/dalemusser/communityhub/internal/app/system/communityapi"
	"github.com/dalemusser/communityhub/internal/domain/models"
	"go.uber.org/zap"
)

// Kind names an entity collection.
type Kind string

const (
	Users    Kind = "users"
	Posts    Kind = "posts"
	Comments Kind = "comments"
	Tags     Kind = "tags"
)

// Remote kinds are the ones fetched from the community API.
var Remote = []Kind{Users, Posts, Comments}

// ParseKind maps a path segment to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Users, Posts, Comments, Tags:
		return k, nil
	}
	return "", fmt.Errorf("unknown collection %q", s)
}

// Fetcher is the part of the community API the console reads and writes.
type Fetcher interface {
	ListUsers(ctx context.Context) ([]communityapi.Record, error)
	ListPosts(ctx context.Context) ([]communityapi.Record, error)
	ListComments(ctx context.Context) ([]communityapi.Record, error)
	UpdateComment(ctx context.Context, id, content string) (communityapi.Record, error)
	DeleteComment(ctx context.Context, id string) error
}

// Config holds the console dependencies.
type Config struct {
	API       Fetcher
	Normalize *ingest.Normalizer
	Timeout   func() time.Duration // per request; nil means timeouts.Remote
	Observers []mutation.Observer
	Log       *zap.Logger
	Now       func() time.Time
}

// Console is the admin data layer.
type Console struct {
	api     Fetcher
	norm    *ingest.Normalizer
	timeout func() time.Duration
	log     *zap.Logger
	now     func() time.Time

	users    *viewstate.Store[models.User]
	posts    *viewstate.Store[models.Post]
	comments *viewstate.Store[models.Comment]
	tags     *viewstate.Store[models.Tag]

	userEdits    *mutation.Coordinator[models.User]
	postEdits    *mutation.Coordinator[models.Post]
	commentEdits *mutation.Coordinator[models.Comment]
	tagEdits     *mutation.Coordinator[models.Tag]
}

// New builds a Console. Tags start from the default tag list; the other
// collections are empty until the first Refresh.
func New(cfg Config) *Console {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Normalize == nil {
		cfg.Normalize = ingest.New(ingest.Options{Log: cfg.Log})
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	timeout := cfg.Timeout
	c := &Console{
		api:     cfg.API,
		norm:    cfg.Normalize,
		timeout: timeout,
		log:     cfg.Log,
		now:     cfg.Now,

		users:    viewstate.New(userKey, userFields),
		posts:    viewstate.New(postKey, postFields),
		comments: viewstate.New(commentKey, commentFields),
		tags:     viewstate.New(tagKey, tagFields),
	}

	c.userEdits = mutation.New(mutation.Options[models.User]{
		Kind: "user", Store: c.users, Key: userKey, Timeout: timeout,
		Log: cfg.Log, Observers: cfg.Observers, Now: cfg.Now,
	})
	c.postEdits = mutation.New(mutation.Options[models.Post]{
		Kind: "post", Store: c.posts, Key: postKey, Timeout: timeout,
		Log: cfg.Log, Observers: cfg.Observers, Now: cfg.Now,
	})
	c.commentEdits = mutation.New(mutation.Options[models.Comment]{
		Kind: "comment", Store: c.comments, Key: commentKey, Timeout: timeout,
		Remote: commentRemote{api: cfg.API, norm: cfg.Normalize},
		Log:    cfg.Log, Observers: cfg.Observers, Now: cfg.Now,
	})
	c.tagEdits = mutation.New(mutation.Options[models.Tag]{
		Kind: "tag", Store: c.tags, Key: tagKey, Timeout: timeout,
		Log: cfg.Log, Observers: cfg.Observers, Now: cfg.Now,
	})

	c.tags.Load(c.tags.BeginLoad(), models.DefaultTags())
	return c
}

// UserStore and friends expose the stores for reads.
func (c *Console) UserStore() *viewstate.Store[models.User]       { return c.users }
func (c *Console) PostStore() *viewstate.Store[models.Post]       { return c.posts }
func (c *Console) CommentStore() *viewstate.Store[models.Comment] { return c.comments }
func (c *Console) TagStore() *viewstate.Store[models.Tag]         { return c.tags }

// UserEdits and friends expose the coordinators for writes.
func (c *Console) UserEdits() *mutation.Coordinator[models.User]       { return c.userEdits }
func (c *Console) PostEdits() *mutation.Coordinator[models.Post]       { return c.postEdits }
func (c *Console) CommentEdits() *mutation.Coordinator[models.Comment] { return c.commentEdits }
func (c *Console) TagEdits() *mutation.Coordinator[models.Tag]         { return c.tagEdits }

// Close unmounts every store; in-flight loads are discarded.
func (c *Console) Close() {
	c.users.Close()
	c.posts.Close()
	c.comments.Close()
	c.tags.Close()
}

// Stats builds the dashboard overview from the loaded collections.
func (c *Console) Stats() aggregate.OverviewStats {
	return aggregate.Overview(aggregate.Snapshot{
		Users:        c.users.Items(),
		Posts:        c.posts.Items(),
		Comments:     c.comments.Items(),
		Tags:         c.tags.Items(),
		PrevUsers:    c.users.PreviousLen(),
		PrevPosts:    c.posts.PreviousLen(),
		PrevComments: c.comments.PreviousLen(),
	}, c.now())
}

// KindStats derives the status stats for one collection. Tags have no
// status and report their post totals as a single bucket.
func (c *Console) KindStats(k Kind) aggregate.DerivedStats {
	switch k {
	case Users:
		return aggregate.Users(c.users.Items(), aggregate.SincePrevious(c.users.PreviousLen()))
	case Posts:
		return aggregate.Posts(c.posts.Items(), aggregate.SincePrevious(c.posts.PreviousLen()))
	case Comments:
		return aggregate.Comments(c.comments.Items(), aggregate.SincePrevious(c.comments.PreviousLen()))
	default:
		tags := c.tags.Items()
		return aggregate.Compute(tags, func(models.Tag) string { return "tags" }, []string{"tags"}, nil)
	}
}

// ErrNotRemote is returned when refreshing a client-local collection.
var ErrNotRemote = errors.New("console: collection is not fetched from the community API")
