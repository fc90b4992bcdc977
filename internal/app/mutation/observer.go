package mutation

import (
	"context"
	"time"

	"github.com/dalemusser/communityhub/internal/domain/models"
)

// Operations reported to observers.
const (
	OpEdit   = "edit"
	OpDelete = "delete"
	OpCreate = "create"
)

// Outcome describes one finished mutation.
type Outcome struct {
	Kind   string // "user", "post", "comment", "tag"
	Op     string
	ID     models.ID
	Actor  Actor
	Before any // nil for create
	After  any // nil for delete and on failure
	Err    error
	At     time.Time
}

// Succeeded reports whether the remote call went through.
func (o Outcome) Succeeded() bool { return o.Err == nil }

// Observer is told about every finished mutation, successful or not.
// Observe runs after all locks are released.
type Observer interface {
	Observe(ctx context.Context, o Outcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, o Outcome)

func (f ObserverFunc) Observe(ctx context.Context, o Outcome) { f(ctx, o) }
