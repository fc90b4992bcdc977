package mutation

import "errors"

var (
	// ErrBusy is returned when a save or delete is already in flight for the id.
	ErrBusy = errors.New("mutation: another change is in flight for this item")
	// ErrNotFound is returned when the id is not in the loaded collection.
	ErrNotFound = errors.New("mutation: item not found")
	// ErrNotConfirmed is returned when a delete was not confirmed.
	ErrNotConfirmed = errors.New("mutation: delete not confirmed")
	// ErrUnauthenticated is returned when no actor is attached to the context.
	ErrUnauthenticated = errors.New("mutation: not signed in")
	// ErrInvalidTransition is returned when the row state does not allow the action.
	ErrInvalidTransition = errors.New("mutation: action not allowed in current state")
	// ErrKeyChanged is returned when a patch changes the item identifier.
	ErrKeyChanged = errors.New("mutation: patch changed the identifier")
	// ErrDuplicate is returned by Create when the identifier already exists.
	ErrDuplicate = errors.New("mutation: identifier already exists")
)
