// Package mutation coordinates optimistic edits and confirmed deletes on a
// viewstate.Store.
//
// An edit is applied to the store immediately, then sent to the Remote; if
// the remote call fails the previous item is put back. A delete needs an
// explicit confirmation, removes the item immediately, and restores it at
// its former position if the remote call fails. Each call is attempted
// once with a bounded timeout. Only one save or delete may be in flight
// per identifier; a second one is rejected with ErrBusy. Different
// identifiers proceed independently.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/communityhub/internal/app/store/viewstate"
	"github.com/dalemusser/communityhub/internal/app/system/timeouts"
	"github.com/dalemusser/communityhub/internal/domain/models"
	"go.uber.org/zap"
)

// Options configures a Coordinator.
type Options[T any] struct {
	Kind      string
	Store     *viewstate.Store[T]
	Remote    Remote[T] // nil means LocalRemote
	Key       func(T) models.ID
	Timeout   func() time.Duration // nil means timeouts.Remote
	Log       *zap.Logger
	Observers []Observer
	Now       func() time.Time
}

// Coordinator is the only writer of its store besides loads.
type Coordinator[T any] struct {
	kind      string
	store     *viewstate.Store[T]
	remote    Remote[T]
	key       func(T) models.ID
	timeout   func() time.Duration
	log       *zap.Logger
	observers []Observer
	now       func() time.Time

	mu   sync.Mutex
	rows map[models.ID]RowState
}

// New returns a Coordinator over opts.Store.
func New[T any](opts Options[T]) *Coordinator[T] {
	if opts.Remote == nil {
		opts.Remote = LocalRemote[T]{}
	}
	if opts.Timeout == nil {
		opts.Timeout = timeouts.Remote
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Coordinator[T]{
		kind:      opts.Kind,
		store:     opts.Store,
		remote:    opts.Remote,
		key:       opts.Key,
		timeout:   opts.Timeout,
		log:       opts.Log.With(zap.String("kind", opts.Kind)),
		observers: opts.Observers,
		now:       opts.Now,
		rows:      make(map[models.ID]RowState),
	}
}

// Observe adds an observer. Call before the coordinator is shared.
func (c *Coordinator[T]) Observe(o Observer) {
	c.observers = append(c.observers, o)
}

// State returns the row state of id. Unknown ids are Idle.
func (c *Coordinator[T]) State(id models.ID) RowState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows[id]
}

// States returns every row that is not Idle.
func (c *Coordinator[T]) States() map[models.ID]RowState {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[models.ID]RowState, len(c.rows))
	for id, st := range c.rows {
		out[id] = st
	}
	return out
}

func (c *Coordinator[T]) setLocked(id models.ID, st RowState) {
	if st.Phase == Idle {
		delete(c.rows, id)
		return
	}
	c.rows[id] = st
}

// Open selects id for view or edit. Any other open row goes back to Idle,
// since only one item can be open at a time.
func (c *Coordinator[T]) Open(id models.ID, mode viewstate.Mode) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	st := c.rows[id]
	switch {
	case st.Phase.InFlight():
		return zero, ErrBusy
	case st.Phase == ConfirmingDelete:
		return zero, ErrInvalidTransition
	}

	item, err := c.store.Select(id, mode)
	if err != nil {
		return zero, ErrNotFound
	}
	for other, ost := range c.rows {
		if other != id && (ost.Phase == ViewOpen || ost.Phase == EditOpen) {
			delete(c.rows, other)
		}
	}
	phase := ViewOpen
	if mode == viewstate.ModeEdit {
		phase = EditOpen
	}
	c.setLocked(id, RowState{Phase: phase})
	return item, nil
}

// Close deselects id. A Failed row is dismissed back to Idle.
func (c *Coordinator[T]) Close(id models.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.DeselectID(id)
	switch c.rows[id].Phase {
	case ViewOpen, EditOpen, Failed:
		c.setLocked(id, RowState{})
	}
}

// Edit applies patch to the item optimistically and sends the result to the
// remote. On remote failure the previous item is restored and the error is
// returned. A patch error (such as a validation error) is returned before
// anything changes.
func (c *Coordinator[T]) Edit(ctx context.Context, id models.ID, patch func(T) (T, error)) (T, error) {
	var zero T
	actor, ok := ActorFrom(ctx)
	if !ok {
		return zero, ErrUnauthenticated
	}

	c.mu.Lock()
	st := c.rows[id]
	if st.Phase.InFlight() {
		c.mu.Unlock()
		return zero, ErrBusy
	}
	if st.Phase == ConfirmingDelete {
		c.mu.Unlock()
		return zero, ErrInvalidTransition
	}
	prev, found := c.store.Get(id)
	if !found {
		c.mu.Unlock()
		return zero, ErrNotFound
	}
	next, err := patch(prev)
	if err != nil {
		c.mu.Unlock()
		return zero, err
	}
	if c.key(next) != id {
		c.mu.Unlock()
		return zero, ErrKeyChanged
	}
	version, err := c.store.Replace(next)
	if err != nil {
		c.mu.Unlock()
		return zero, c.storeErr(err)
	}
	c.setLocked(id, RowState{Phase: Saving})
	c.mu.Unlock()

	cctx, cancel := timeouts.WithTimeout(ctx, c.timeout(), c.log, c.kind+" edit")
	confirmed, rerr := c.remote.Update(cctx, next)
	cancel()

	c.mu.Lock()
	if rerr != nil {
		if err := c.store.ReplaceIf(version, prev); err != nil && !errors.Is(err, viewstate.ErrStale) {
			c.log.Warn("rollback after failed edit not applied", zap.String("id", id.String()), zap.Error(err))
		}
		c.setLocked(id, RowState{Phase: Failed, Err: rerr.Error()})
	} else {
		if c.key(confirmed) != id {
			confirmed = next
		}
		if err := c.store.ReplaceIf(version, confirmed); err != nil && !errors.Is(err, viewstate.ErrStale) {
			c.log.Warn("confirmed edit not applied", zap.String("id", id.String()), zap.Error(err))
		}
		c.store.DeselectID(id)
		c.setLocked(id, RowState{})
	}
	c.mu.Unlock()

	out := Outcome{Kind: c.kind, Op: OpEdit, ID: id, Actor: actor, Before: prev, Err: rerr, At: c.now().UTC()}
	if rerr != nil {
		c.log.Warn("edit failed, rolled back", zap.String("id", id.String()), zap.Error(rerr))
		c.notify(ctx, out)
		return zero, rerr
	}
	out.After = confirmed
	c.log.Info("edit saved", zap.String("id", id.String()), zap.String("actor", actor.Email))
	c.notify(ctx, out)
	return confirmed, nil
}

// BeginDelete moves id to ConfirmingDelete. Nothing is removed yet. An
// open view or edit of id is closed, so a cancelled delete leaves the row
// Idle with nothing selected.
func (c *Coordinator[T]) BeginDelete(id models.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rows[id].Phase.InFlight() {
		return ErrBusy
	}
	if _, ok := c.store.Get(id); !ok {
		return ErrNotFound
	}
	c.store.DeselectID(id)
	c.setLocked(id, RowState{Phase: ConfirmingDelete})
	return nil
}

// CancelDelete answers "no" to the confirmation.
func (c *Coordinator[T]) CancelDelete(id models.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rows[id].Phase != ConfirmingDelete {
		return ErrInvalidTransition
	}
	c.setLocked(id, RowState{})
	return nil
}

// ConfirmDelete answers "yes": the item is removed, the remote delete is
// sent, and the item is restored at its former position if it fails.
func (c *Coordinator[T]) ConfirmDelete(ctx context.Context, id models.ID) error {
	actor, ok := ActorFrom(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	c.mu.Lock()
	switch c.rows[id].Phase {
	case Saving, Deleting:
		c.mu.Unlock()
		return ErrBusy
	case ConfirmingDelete:
	default:
		c.mu.Unlock()
		return ErrNotConfirmed
	}
	removed, err := c.store.Remove(id)
	if err != nil {
		c.setLocked(id, RowState{})
		c.mu.Unlock()
		return c.storeErr(err)
	}
	c.setLocked(id, RowState{Phase: Deleting})
	c.mu.Unlock()

	cctx, cancel := timeouts.WithTimeout(ctx, c.timeout(), c.log, c.kind+" delete")
	rerr := c.remote.Delete(cctx, id)
	cancel()

	c.mu.Lock()
	if rerr != nil {
		if err := c.store.InsertIf(removed); err != nil && !errors.Is(err, viewstate.ErrStale) {
			c.log.Warn("restore after failed delete not applied", zap.String("id", id.String()), zap.Error(err))
		}
		c.setLocked(id, RowState{Phase: Failed, Err: rerr.Error()})
	} else {
		c.setLocked(id, RowState{})
	}
	c.mu.Unlock()

	out := Outcome{Kind: c.kind, Op: OpDelete, ID: id, Actor: actor, Before: removed.Item, Err: rerr, At: c.now().UTC()}
	if rerr != nil {
		c.log.Warn("delete failed, restored", zap.String("id", id.String()), zap.Error(rerr))
	} else {
		c.log.Info("deleted", zap.String("id", id.String()), zap.String("actor", actor.Email))
	}
	c.notify(ctx, out)
	return rerr
}

// Delete is BeginDelete plus the decision: with confirm it runs
// ConfirmDelete, without it the row is left in ConfirmingDelete and
// ErrNotConfirmed is returned.
func (c *Coordinator[T]) Delete(ctx context.Context, id models.ID, confirm bool) error {
	if _, ok := ActorFrom(ctx); !ok {
		return ErrUnauthenticated
	}
	if c.State(id).Phase != ConfirmingDelete {
		if err := c.BeginDelete(id); err != nil {
			return err
		}
	}
	if !confirm {
		return ErrNotConfirmed
	}
	return c.ConfirmDelete(ctx, id)
}

// Create sends item to the remote and appends what it returns. Creation is
// not optimistic: the item appears only once the remote accepts it.
func (c *Coordinator[T]) Create(ctx context.Context, item T) (T, error) {
	var zero T
	actor, ok := ActorFrom(ctx)
	if !ok {
		return zero, ErrUnauthenticated
	}
	id := c.key(item)
	if id.IsZero() {
		return zero, fmt.Errorf("mutation: create %s: empty identifier", c.kind)
	}
	if _, exists := c.store.Get(id); exists {
		return zero, ErrDuplicate
	}

	cctx, cancel := timeouts.WithTimeout(ctx, c.timeout(), c.log, c.kind+" create")
	created, rerr := c.remote.Create(cctx, item)
	cancel()

	out := Outcome{Kind: c.kind, Op: OpCreate, ID: id, Actor: actor, Err: rerr, At: c.now().UTC()}
	if rerr != nil {
		c.log.Warn("create failed", zap.String("id", id.String()), zap.Error(rerr))
		c.notify(ctx, out)
		return zero, rerr
	}

	c.mu.Lock()
	err := c.store.Append(created)
	c.mu.Unlock()
	if err != nil {
		return zero, c.storeErr(err)
	}

	out.ID = c.key(created)
	out.After = created
	c.log.Info("created", zap.String("id", out.ID.String()), zap.String("actor", actor.Email))
	c.notify(ctx, out)
	return created, nil
}

func (c *Coordinator[T]) storeErr(err error) error {
	switch {
	case errors.Is(err, viewstate.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, viewstate.ErrDuplicate):
		return ErrDuplicate
	default:
		return err
	}
}

func (c *Coordinator[T]) notify(ctx context.Context, o Outcome) {
	for _, obs := range c.observers {
		obs.Observe(context.WithoutCancel(ctx), o)
	}
}
