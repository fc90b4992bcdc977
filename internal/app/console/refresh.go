package console

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/communityhub/internal/app/ingest"
	"github.com/dalemusser/communityhub/internal/app/store/viewstate"
	"github.com/dalemusser/communityhub/internal/app/system/communityapi"
	"github.com/dalemusser/communityhub/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RefreshResult reports one collection refresh.
type RefreshResult struct {
	Kind    Kind   `json:"kind"`
	Loaded  int    `json:"loaded"`
	Dropped int    `json:"dropped"`
	Stale   bool   `json:"stale,omitempty"` // a newer load or Close superseded this one
	Error   string `json:"error,omitempty"`
}

// Refresh fetches and normalizes one collection and loads it into its
// store. On failure the store keeps its previous collection and records the
// error message.
func (c *Console) Refresh(ctx context.Context, k Kind) (RefreshResult, error) {
	switch k {
	case Users:
		return refresh(ctx, c, k, c.users, c.api.ListUsers, c.norm.Users)
	case Posts:
		return refresh(ctx, c, k, c.posts, c.api.ListPosts, c.norm.Posts)
	case Comments:
		return refresh(ctx, c, k, c.comments, c.api.ListComments, c.norm.Comments)
	default:
		return RefreshResult{Kind: k}, ErrNotRemote
	}
}

func refresh[T any](
	ctx context.Context,
	c *Console,
	k Kind,
	store *viewstate.Store[T],
	fetch func(context.Context) ([]communityapi.Record, error),
	normalize func([]communityapi.Record) (ingest.Result[T], error),
) (RefreshResult, error) {
	res := RefreshResult{Kind: k}
	tok := store.BeginLoad()

	cctx, cancel := timeouts.WithTimeout(ctx, c.requestTimeout(), c.log, "list "+string(k))
	raw, err := fetch(cctx)
	cancel()
	if err != nil {
		res.Error = communityapi.UserMessage(err)
		res.Stale = !store.Fail(tok, errors.New(res.Error))
		c.log.Warn("refresh failed", zap.String("kind", string(k)), zap.Error(err))
		return res, err
	}

	batch, err := normalize(raw)
	if err != nil {
		res.Error = "Données invalides : " + err.Error()
		res.Stale = !store.Fail(tok, errors.New(res.Error))
		return res, err
	}

	res.Loaded = len(batch.Items)
	res.Dropped = len(batch.Dropped)
	res.Stale = !store.Load(tok, batch.Items)
	if res.Stale {
		c.log.Debug("discarded stale refresh", zap.String("kind", string(k)))
	} else {
		c.log.Info("collection loaded",
			zap.String("kind", string(k)),
			zap.Int("loaded", res.Loaded),
			zap.Int("dropped", res.Dropped))
	}
	return res, nil
}

// RefreshAll refreshes users, posts and comments concurrently. Each
// collection succeeds or fails on its own; the returned error joins the
// failures.
func (c *Console) RefreshAll(ctx context.Context) ([]RefreshResult, error) {
	results := make([]RefreshResult, len(Remote))
	errs := make([]error, len(Remote))

	var g errgroup.Group
	for i, k := range Remote {
		g.Go(func() error {
			results[i], errs[i] = c.Refresh(ctx, k)
			return nil
		})
	}
	_ = g.Wait()
	return results, errors.Join(errs...)
}

func (c *Console) requestTimeout() time.Duration {
	if c.timeout != nil {
		return c.timeout()
	}
	return timeouts.Remote()
}
