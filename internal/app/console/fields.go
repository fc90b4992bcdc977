package console

import (
	"context"
	"errors"
	"strconv"

	"github.com/dalemusser/communityhub/internal/app/ingest"
	"github.com/dalemusser/communityhub/internal/app/store/viewstate"
	"github.com/dalemusser/communityhub/internal/domain/models"
)

func userKey(u models.User) models.ID       { return u.ID }
func postKey(p models.Post) models.ID       { return p.ID }
func commentKey(c models.Comment) models.ID { return c.ID }
func tagKey(t models.Tag) models.ID         { return t.ID }

// Searchable text per collection.
func userFields(u models.User) []string { return []string{u.Name, u.Email} }

func postFields(p models.Post) []string {
	return append([]string{p.Title, p.Author.Name, p.Content}, p.Tags...)
}

func commentFields(c models.Comment) []string {
	return []string{c.Content, c.Author.Name, c.PostLabel()}
}

func tagFields(t models.Tag) []string { return []string{t.Name} }

// commentRemote writes comment edits and deletions through to the
// community API.
type commentRemote struct {
	api  Fetcher
	norm *ingest.Normalizer
}

// Update sends the new content and merges the server's echo over the local
// copy. Fields the echo does not carry keep their local values.
func (r commentRemote) Update(ctx context.Context, c models.Comment) (models.Comment, error) {
	rec, err := r.api.UpdateComment(ctx, c.ID.String(), c.Content)
	if err != nil {
		return models.Comment{}, err
	}
	echo, err := r.norm.Comment(rec)
	if err != nil {
		return c, nil
	}
	if echo.ID == c.ID && echo.Content != "" {
		c.Content = echo.Content
	}
	// An echo without a recognisable status keeps the loaded one; the
	// fallback would otherwise pick a fresh status for a content edit.
	if raw, ok := rec["status"].(string); ok {
		if st, ok := ingest.ParseModerationStatus(raw); ok {
			c.Status = st
		}
	}
	return c, nil
}

func (r commentRemote) Delete(ctx context.Context, id models.ID) error {
	return r.api.DeleteComment(ctx, id.String())
}

// Create is not offered by the community API.
func (commentRemote) Create(context.Context, models.Comment) (models.Comment, error) {
	return models.Comment{}, errors.ErrUnsupported
}

// nextID returns one past the largest numeric identifier in the store, or
// "1" when none are numeric.
func nextID[T any](s *viewstate.Store[T], key func(T) models.ID) models.ID {
	var max int64
	for _, it := range s.Items() {
		if n, err := strconv.ParseInt(key(it).String(), 10, 64); err == nil && n > max {
			max = n
		}
	}
	return models.IntID(max + 1)
}
