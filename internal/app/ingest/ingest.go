// Package ingest turns raw community API records into canonical entities.
//
// Each batch goes through one Normalizer call. Identifiers are checked for
// presence and uniqueness; every other field is best-effort and falls back
// to the configured Fallback policy when absent. Records that cannot be
// identified are reported as *MalformedRecordError and either dropped or
// abort the whole batch, per BatchPolicy.
package ingest

import (
	"fmt"
	"strings"

	"github.com/dalemusser/communityhub/internal/app/system/communityapi"
	"github.com/dalemusser/communityhub/internal/app/system/inputval"
	"github.com/dalemusser/communityhub/internal/app/system/normalize"
	"github.com/dalemusser/communityhub/internal/domain/models"
	"go.uber.org/zap"
)

// BatchPolicy decides what a malformed record does to its batch.
type BatchPolicy int

const (
	// DropMalformed skips malformed records and reports them in Result.Dropped.
	DropMalformed BatchPolicy = iota
	// AbortOnMalformed fails the batch on the first malformed record.
	AbortOnMalformed
)

// ParseBatchPolicy maps "drop" and "abort" to a BatchPolicy.
func ParseBatchPolicy(s string) (BatchPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop":
		return DropMalformed, nil
	case "abort":
		return AbortOnMalformed, nil
	default:
		return DropMalformed, fmt.Errorf("unknown malformed record policy %q (want drop or abort)", s)
	}
}

func (p BatchPolicy) String() string {
	if p == AbortOnMalformed {
		return "abort"
	}
	return "drop"
}

// Result is a normalized batch.
type Result[T any] struct {
	Items   []T
	Dropped []*MalformedRecordError
}

// Options configures a Normalizer.
type Options struct {
	Policy   BatchPolicy
	Fallback FallbackFactory // nil means Deterministic("attijari.com")
	Log      *zap.Logger
}

// Normalizer converts raw record batches. It is stateless between calls and
// safe for concurrent use.
type Normalizer struct {
	policy   BatchPolicy
	fallback FallbackFactory
	log      *zap.Logger
}

// New returns a Normalizer.
func New(opts Options) *Normalizer {
	if opts.Fallback == nil {
		opts.Fallback = Deterministic("attijari.com")
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Normalizer{policy: opts.Policy, fallback: opts.Fallback, log: opts.Log}
}

// Users normalizes a GET /users batch.
func (n *Normalizer) Users(raw []communityapi.Record) (Result[models.User], error) {
	fb := n.fallback()
	return run(n, "user", raw, func(id models.ID, rec communityapi.Record) models.User {
		return userFrom(id, rec, fb)
	})
}

// Posts normalizes a GET /posts batch.
func (n *Normalizer) Posts(raw []communityapi.Record) (Result[models.Post], error) {
	fb := n.fallback()
	return run(n, "post", raw, func(id models.ID, rec communityapi.Record) models.Post {
		return postFrom(id, rec, fb)
	})
}

// Comments normalizes a GET /comments batch.
func (n *Normalizer) Comments(raw []communityapi.Record) (Result[models.Comment], error) {
	fb := n.fallback()
	return run(n, "comment", raw, func(id models.ID, rec communityapi.Record) models.Comment {
		return commentFrom(id, rec, fb)
	})
}

// Comment normalizes a single record, such as the body echoed by
// PUT /comments/{id}. The record must carry an identifier.
func (n *Normalizer) Comment(rec communityapi.Record) (models.Comment, error) {
	one := &Normalizer{policy: AbortOnMalformed, fallback: n.fallback, log: n.log}
	res, err := one.Comments([]communityapi.Record{rec})
	if err != nil {
		return models.Comment{}, err
	}
	return res.Items[0], nil
}

func run[T any](n *Normalizer, kind string, raw []communityapi.Record, build func(models.ID, communityapi.Record) T) (Result[T], error) {
	res := Result[T]{Items: make([]T, 0, len(raw))}
	seen := make(map[models.ID]int, len(raw))

	for i, rec := range raw {
		var bad *MalformedRecordError
		id, rawID, ok, unusable := recordID(rec)
		switch {
		case rec == nil:
			bad = &MalformedRecordError{Kind: kind, Index: i, Reason: reasonNotObject}
		case unusable:
			bad = &MalformedRecordError{Kind: kind, Index: i, ID: rawID, Reason: reasonBadID}
		case !ok:
			bad = &MalformedRecordError{Kind: kind, Index: i, Reason: reasonMissingID}
		default:
			if _, dup := seen[id]; dup {
				bad = &MalformedRecordError{Kind: kind, Index: i, ID: rawID, Reason: reasonDuplicateID}
			}
		}

		if bad != nil {
			if n.policy == AbortOnMalformed {
				n.log.Warn("aborting batch on malformed record",
					zap.String("kind", kind),
					zap.Int("index", i),
					zap.String("reason", bad.Reason))
				return Result[T]{}, bad
			}
			res.Dropped = append(res.Dropped, bad)
			continue
		}

		seen[id] = i
		res.Items = append(res.Items, build(id, rec))
	}

	if len(res.Dropped) > 0 {
		n.log.Warn("dropped malformed records",
			zap.String("kind", kind),
			zap.Int("dropped", len(res.Dropped)),
			zap.Int("kept", len(res.Items)),
			zap.Error(res.Dropped[0]))
	}
	return res, nil
}

func userFrom(id models.ID, rec communityapi.Record, fb Fallback) models.User {
	u := models.User{
		ID:     id,
		Name:   normalize.Name(str(rec, "name", "fullName")),
		Avatar: str(rec, "profileImage", "avatar", "image"),
	}
	if u.Name == "" {
		u.Name = normalize.FullName(str(rec, "firstName"), str(rec, "lastName"))
	}
	if u.Name == "" {
		u.Name = "Utilisateur " + id.String()
	}

	if email := normalize.Email(str(rec, "email")); inputval.IsValidEmail(email) {
		u.Email = email
	} else {
		u.Email = fb.Email(id, u.Name)
	}

	if r, ok := ParseRole(str(rec, "role")); ok {
		u.Role = r
	} else {
		u.Role = fb.Role()
	}
	if s, ok := ParseUserStatus(str(rec, "status")); ok {
		u.Status = s
	} else {
		u.Status = fb.UserStatus()
	}

	u.Posts, _ = num(rec, "posts", "postsCount", "postCount")
	u.Comments, _ = num(rec, "comments", "commentsCount", "commentCount")

	if t, ok := date(rec, "joinDate", "createdAt", "created_at"); ok {
		u.JoinDate = t
	} else {
		u.JoinDate = fb.JoinDate()
	}
	if la := str(rec, "lastActive", "last_active"); la != "" {
		u.LastActive = la
	} else {
		u.LastActive = fb.LastActive()
	}
	return u
}

func postFrom(id models.ID, rec communityapi.Record, fb Fallback) models.Post {
	p := models.Post{
		ID:      id,
		Title:   normalize.Name(str(rec, "title")),
		Author:  author(rec),
		Content: str(rec, "content", "body", "excerpt"),
		Tags:    tags(rec),
		Liked:   boolean(rec, "liked", "isLiked"),
	}
	if s, ok := ParseModerationStatus(str(rec, "status")); ok {
		p.Status = s
	} else {
		p.Status = fb.ModerationStatus()
	}
	p.Views, _ = num(rec, "views", "viewsCount", "viewCount")
	p.Comments, _ = num(rec, "comments", "commentsCount", "commentCount")
	p.Likes, _ = num(rec, "likes", "likesCount", "likeCount")
	p.CreatedAt, _ = date(rec, "date", "publishDate", "createdAt", "created_at")
	return p
}

func commentFrom(id models.ID, rec communityapi.Record, fb Fallback) models.Comment {
	c := models.Comment{
		ID:        id,
		Content:   str(rec, "content", "body"),
		Author:    author(rec),
		PostTitle: normalize.Name(str(rec, "postTitle", "post_title")),
	}
	if pid := str(rec, "postId", "post_id"); pid != "" {
		c.PostID = models.ParseID(pid)
	}
	if s, ok := ParseModerationStatus(str(rec, "status")); ok {
		c.Status = s
	} else {
		c.Status = fb.ModerationStatus()
	}
	c.Likes, _ = num(rec, "likesCount", "likes", "likeCount")
	c.CreatedAt, _ = date(rec, "date", "createdAt", "created_at")
	return c
}
