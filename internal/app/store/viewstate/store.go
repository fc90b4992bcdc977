// internal/app/store/viewstate/store.go
package viewstate

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/communityhub/internal/app/system/normalize"
	"github.com/dalemusser/communityhub/internal/domain/models"
)

var (
	// ErrNotFound is returned when an identifier is not in the collection.
	ErrNotFound = errors.New("viewstate: item not found")
	// ErrDuplicate is returned when inserting an identifier that already exists.
	ErrDuplicate = errors.New("viewstate: duplicate identifier")
	// ErrClosed is returned by writers after Close.
	ErrClosed = errors.New("viewstate: store closed")
	// ErrStale is returned by conditional writers when the collection was
	// reloaded since the version they were given.
	ErrStale = errors.New("viewstate: collection reloaded")
)

// Mode is what a selected item is open for.
type Mode int

const (
	ModeNone Mode = iota
	ModeView
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeView:
		return "view"
	case ModeEdit:
		return "edit"
	default:
		return "none"
	}
}

// ParseMode maps "view" and "edit" to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "view":
		return ModeView, true
	case "edit":
		return ModeEdit, true
	}
	return ModeNone, false
}

// MarshalText encodes the mode as its name.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// Token identifies one load. Results carrying an older token are stale.
type Token uint64

// Version counts successful loads. Writers report the version they acted
// on so a later undo can be skipped when a reload replaced the collection.
type Version uint64

// Removed is what Remove took out of the collection.
type Removed[T any] struct {
	Item    T
	Index   int
	Version Version
}

// Selection is the item currently open for view or edit.
type Selection[T any] struct {
	ID   models.ID `json:"id"`
	Mode Mode      `json:"mode"`
	Item T         `json:"item"`
}

// State is a point-in-time copy of a store.
type State[T any] struct {
	Items    []T           `json:"items"`
	Loading  bool          `json:"loading"`
	Error    string        `json:"error,omitempty"`
	Term     string        `json:"term,omitempty"`
	Selected *Selection[T] `json:"selected,omitempty"`
	LoadedAt time.Time     `json:"loaded_at,omitempty"`
}

// Store holds one entity collection and its view state: loading flag,
// last error, search term and the single open selection.
//
// The collection keeps insertion order. Only Load and the writer methods
// (Replace, ReplaceIf, Remove, InsertIf, InsertAt, Append) change it;
// everything else reads.
// A Store is safe for concurrent use.
type Store[T any] struct {
	key    func(T) models.ID
	fields func(T) []string

	mu       sync.RWMutex
	items    []T
	loading  bool
	errMsg   string
	term     string
	gen      Token
	version  Version
	closed   bool
	loaded   bool
	prevLen  int
	loadedAt time.Time
	selID    models.ID
	selMode  Mode
}

// New returns an empty Store. key returns an item's identifier; fields
// returns the strings search matches against.
func New[T any](key func(T) models.ID, fields func(T) []string) *Store[T] {
	return &Store[T]{key: key, fields: fields}
}

// BeginLoad marks the store loading and returns the token the matching
// Load or Fail must present. Starting a new load makes older tokens stale.
func (s *Store[T]) BeginLoad() Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if !s.closed {
		s.loading = true
	}
	return s.gen
}

// Load replaces the collection, clears the error and the loading flag.
// It returns false and changes nothing when tok is stale or the store is
// closed. A selection whose item is gone is cleared.
func (s *Store[T]) Load(tok Token, items []T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || tok != s.gen {
		return false
	}
	if s.loaded {
		s.prevLen = len(s.items)
	}
	s.items = append(make([]T, 0, len(items)), items...)
	s.version++
	s.loaded = true
	s.loading = false
	s.errMsg = ""
	s.loadedAt = time.Now().UTC()
	if s.selID != "" && s.indexLocked(s.selID) < 0 {
		s.selID, s.selMode = "", ModeNone
	}
	return true
}

// Fail clears the loading flag and records err. The previous collection
// stays readable. Stale tokens are ignored as in Load.
func (s *Store[T]) Fail(tok Token, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || tok != s.gen {
		return false
	}
	s.loading = false
	if err != nil {
		s.errMsg = err.Error()
	} else {
		s.errMsg = "chargement impossible"
	}
	return true
}

// ClearError dismisses the recorded error.
func (s *Store[T]) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}

// Version returns the current collection version.
func (s *Store[T]) Version() Version {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Close detaches the store: pending and future loads are discarded and
// writers return ErrClosed. Reads keep working on the last state.
func (s *Store[T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.loading = false
	s.mu.Unlock()
}

// Closed reports whether Close was called.
func (s *Store[T]) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Loading reports whether a load is in flight.
func (s *Store[T]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last load error message, or "".
func (s *Store[T]) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Items returns a copy of the collection in order.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T(nil), s.items...)
}

// Len returns the collection size.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// PreviousLen returns the collection size before the latest Load
// (0 until a second load).
func (s *Store[T]) PreviousLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prevLen
}

// Get returns the item with id.
func (s *Store[T]) Get(id models.ID) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

// Search returns the items with at least one search field containing term,
// ignoring case. A blank term returns every item. The collection is not
// modified.
func (s *Store[T]) Search(term string) []T {
	term = strings.ToLower(normalize.QueryParam(term))
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.items))
	for _, it := range s.items {
		if term == "" || s.matches(it, term) {
			out = append(out, it)
		}
	}
	return out
}

func (s *Store[T]) matches(it T, lowered string) bool {
	if s.fields == nil {
		return false
	}
	for _, f := range s.fields(it) {
		if strings.Contains(strings.ToLower(f), lowered) {
			return true
		}
	}
	return false
}

// SetTerm records the search term.
func (s *Store[T]) SetTerm(term string) {
	s.mu.Lock()
	s.term = normalize.QueryParam(term)
	s.mu.Unlock()
}

// Term returns the recorded search term.
func (s *Store[T]) Term() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.term
}

// Filtered is Search with the recorded term.
func (s *Store[T]) Filtered() []T { return s.Search(s.Term()) }

// Select opens id for view or edit, replacing any previous selection.
func (s *Store[T]) Select(id models.ID, mode Mode) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	i := s.indexLocked(id)
	if i < 0 {
		return zero, ErrNotFound
	}
	if mode == ModeNone {
		mode = ModeView
	}
	s.selID, s.selMode = id, mode
	return s.items[i], nil
}

// Deselect closes the current selection, if any.
func (s *Store[T]) Deselect() {
	s.mu.Lock()
	s.selID, s.selMode = "", ModeNone
	s.mu.Unlock()
}

// DeselectID closes the selection only if it is id.
func (s *Store[T]) DeselectID(id models.ID) {
	s.mu.Lock()
	if s.selID == id {
		s.selID, s.selMode = "", ModeNone
	}
	s.mu.Unlock()
}

// Selection returns the open item, if any.
func (s *Store[T]) Selection() (Selection[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectionLocked()
}

func (s *Store[T]) selectionLocked() (Selection[T], bool) {
	if s.selID == "" {
		return Selection[T]{}, false
	}
	i := s.indexLocked(s.selID)
	if i < 0 {
		return Selection[T]{}, false
	}
	return Selection[T]{ID: s.selID, Mode: s.selMode, Item: s.items[i]}, true
}

// Snapshot returns a copy of the whole state. Items are filtered by the
// recorded search term.
func (s *Store[T]) Snapshot() State[T] {
	items := s.Filtered()
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State[T]{
		Items:    items,
		Loading:  s.loading,
		Error:    s.errMsg,
		Term:     s.term,
		LoadedAt: s.loadedAt,
	}
	if sel, ok := s.selectionLocked(); ok {
		st.Selected = &sel
	}
	return st
}

// Replace swaps the item with the same identifier as item and returns the
// version it was applied to.
func (s *Store[T]) Replace(item T) (Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version, s.replaceLocked(item)
}

// ReplaceIf is Replace that only applies while the collection is still at
// version v.
func (s *Store[T]) ReplaceIf(v Version, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed && s.version != v {
		return ErrStale
	}
	return s.replaceLocked(item)
}

func (s *Store[T]) replaceLocked(item T) error {
	if s.closed {
		return ErrClosed
	}
	i := s.indexLocked(s.key(item))
	if i < 0 {
		return ErrNotFound
	}
	s.items[i] = item
	return nil
}

// Remove deletes id and returns what was removed so the caller can put it
// back with InsertIf.
func (s *Store[T]) Remove(id models.ID) (Removed[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Removed[T]{Index: -1}, ErrClosed
	}
	i := s.indexLocked(id)
	if i < 0 {
		return Removed[T]{Index: -1}, ErrNotFound
	}
	r := Removed[T]{Item: s.items[i], Index: i, Version: s.version}
	s.items = append(s.items[:i], s.items[i+1:]...)
	if s.selID == id {
		s.selID, s.selMode = "", ModeNone
	}
	return r, nil
}

// InsertIf puts r.Item back at r.Index while the collection is still at
// r.Version.
func (s *Store[T]) InsertIf(r Removed[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed && s.version != r.Version {
		return ErrStale
	}
	return s.insertLocked(r.Index, r.Item)
}

// InsertAt puts item at index i, clamped to the collection bounds.
func (s *Store[T]) InsertAt(i int, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(i, item)
}

// Append adds item at the end.
func (s *Store[T]) Append(item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(len(s.items), item)
}

func (s *Store[T]) insertLocked(i int, item T) error {
	if s.closed {
		return ErrClosed
	}
	if s.indexLocked(s.key(item)) >= 0 {
		return ErrDuplicate
	}
	if i < 0 {
		i = 0
	}
	if i > len(s.items) {
		i = len(s.items)
	}
	var zero T
	s.items = append(s.items, zero)
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = item
	return nil
}

func (s *Store[T]) indexLocked(id models.ID) int {
	for i, it := range s.items {
		if s.key(it) == id {
			return i
		}
	}
	return -1
}
