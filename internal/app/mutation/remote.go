package mutation

import (
	"context"

	"github.com/dalemusser/communityhub/internal/domain/models"
)

// Remote is the server side of a collection.
type Remote[T any] interface {
	Update(ctx context.Context, item T) (T, error)
	Delete(ctx context.Context, id models.ID) error
	Create(ctx context.Context, item T) (T, error)
}

// LocalRemote accepts every change without a server round trip. It backs
// the collections the community API has no write path for (users, posts,
// tags).
type LocalRemote[T any] struct{}

func (LocalRemote[T]) Update(_ context.Context, item T) (T, error) { return item, nil }
func (LocalRemote[T]) Delete(context.Context, models.ID) error     { return nil }
func (LocalRemote[T]) Create(_ context.Context, item T) (T, error) { return item, nil }

// RemoteFuncs adapts plain functions to Remote. Nil functions behave like
// LocalRemote.
type RemoteFuncs[T any] struct {
	UpdateFunc func(context.Context, T) (T, error)
	DeleteFunc func(context.Context, models.ID) error
	CreateFunc func(context.Context, T) (T, error)
}

func (r RemoteFuncs[T]) Update(ctx context.Context, item T) (T, error) {
	if r.UpdateFunc == nil {
		return item, nil
	}
	return r.UpdateFunc(ctx, item)
}

func (r RemoteFuncs[T]) Delete(ctx context.Context, id models.ID) error {
	if r.DeleteFunc == nil {
		return nil
	}
	return r.DeleteFunc(ctx, id)
}

func (r RemoteFuncs[T]) Create(ctx context.Context, item T) (T, error) {
	if r.CreateFunc == nil {
		return item, nil
	}
	return r.CreateFunc(ctx, item)
}
