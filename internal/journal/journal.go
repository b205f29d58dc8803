// Package journal holds the user's mutable state for one catalog category:
// tried records, want-to-try marks, memos, custom entities, exclusions and
// the session filter selection.
//
// A Store has a single writer. Mutators are synchronous and hand a copy of
// the persisted state to the configured Saver after every change.
package journal

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pbaille/tastemap/internal/domain"
)

// ErrInvalidEntity is returned when a custom entity would be stored corrupt
var ErrInvalidEntity = errors.New("invalid custom entity")

// Saver receives the persisted subset of state after each mutation
type Saver interface {
	Save(domain.Snapshot)
}

type Option func(*Store)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the custom id suffix generator
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithSaver sets where snapshots go after a mutation
func WithSaver(saver Saver) Option {
	return func(s *Store) { s.saver = saver }
}

// Store is the state container of one category
type Store struct {
	cat   domain.Category
	now   func() time.Time
	newID func() string
	saver Saver

	tried     []domain.TriedRecord
	wantToTry []string
	memos     []domain.Memo
	custom    []domain.CustomEntity
	excluded  []string

	filter domain.FilterState

	listeners map[int]func()
	nextSub   int
}

// New creates an empty store for cat
func New(cat domain.Category, opts ...Option) *Store {
	s := &Store{
		cat:       cat,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
		filter:    domain.FilterState{Mode: domain.FilterAll},
		listeners: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Category returns the descriptor the store was built for
func (s *Store) Category() domain.Category {
	return s.cat
}

// SetSaver replaces the saver. Passing nil disables persistence.
func (s *Store) SetSaver(saver Saver) {
	s.saver = saver
}

// Subscribe registers fn to run after every state change, filters included
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

func (s *Store) notify() {
	for _, fn := range s.listeners {
		fn()
	}
}

// changed persists and notifies after a mutation of persisted state
func (s *Store) changed() {
	if s.saver != nil {
		s.saver.Save(s.Snapshot())
	}
	s.notify()
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// Tried

func (s *Store) MarkAsTried(id string) {
	if id == "" || s.IsTried(id) {
		return
	}
	s.tried = append(s.tried, domain.TriedRecord{ID: id, TriedAt: s.timestamp()})
	s.changed()
}

func (s *Store) UnmarkAsTried(id string) {
	idx := s.triedIndex(id)
	if idx < 0 {
		return
	}
	s.tried = append(s.tried[:idx:idx], s.tried[idx+1:]...)
	s.changed()
}

func (s *Store) IsTried(id string) bool {
	return s.triedIndex(id) >= 0
}

func (s *Store) TriedCount() int {
	return len(s.tried)
}

// TriedRecord returns the record for id, if any
func (s *Store) TriedRecord(id string) (domain.TriedRecord, bool) {
	if idx := s.triedIndex(id); idx >= 0 {
		return s.tried[idx], true
	}
	return domain.TriedRecord{}, false
}

// TriedRecords returns the records in the order they were added
func (s *Store) TriedRecords() []domain.TriedRecord {
	return append([]domain.TriedRecord(nil), s.tried...)
}

func (s *Store) triedIndex(id string) int {
	for i, t := range s.tried {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Want to try

func (s *Store) MarkAsWantToTry(id string) {
	if id == "" || s.IsWantToTry(id) {
		return
	}
	s.wantToTry = append(s.wantToTry, id)
	s.changed()
}

func (s *Store) UnmarkAsWantToTry(id string) {
	var ok bool
	if s.wantToTry, ok = removeString(s.wantToTry, id); ok {
		s.changed()
	}
}

func (s *Store) IsWantToTry(id string) bool {
	return indexOf(s.wantToTry, id) >= 0
}

func (s *Store) WantToTryCount() int {
	return len(s.wantToTry)
}

func (s *Store) WantToTryIDs() []string {
	return append([]string(nil), s.wantToTry...)
}

// Exclusions

func (s *Store) ExcludeEntity(id string) {
	if id == "" || s.IsExcluded(id) {
		return
	}
	s.excluded = append(s.excluded, id)
	s.changed()
}

func (s *Store) UnexcludeEntity(id string) {
	var ok bool
	if s.excluded, ok = removeString(s.excluded, id); ok {
		s.changed()
	}
}

func (s *Store) IsExcluded(id string) bool {
	return indexOf(s.excluded, id) >= 0
}

func (s *Store) ClearAllExcluded() {
	if len(s.excluded) == 0 {
		return
	}
	s.excluded = nil
	s.changed()
}

func (s *Store) ExcludedIDs() []string {
	return append([]string(nil), s.excluded...)
}

func (s *Store) ExcludedCount() int {
	return len(s.excluded)
}

// Filter state. Never persisted.

func (s *Store) Filter() domain.FilterState {
	return s.filter
}

func (s *Store) SetFilterMode(mode domain.FilterMode) {
	switch mode {
	case domain.FilterAll, domain.FilterTried, domain.FilterWantToTry:
	default:
		mode = domain.FilterAll
	}
	s.filter.Mode = mode
	s.notify()
}

func (s *Store) SetPrefectureFilter(prefecture string) {
	s.filter.Prefecture = strings.TrimSpace(prefecture)
	s.notify()
}

// SetGenreFilter sets the genre facet; values outside the category's genres
// clear it.
func (s *Store) SetGenreFilter(genre string) {
	if !s.cat.IsGenre(genre) {
		genre = ""
	}
	s.filter.Genre = genre
	s.notify()
}

func (s *Store) SetHideExcluded(hide bool) {
	s.filter.HideExcluded = hide
	s.notify()
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}

func removeString(list []string, v string) ([]string, bool) {
	idx := indexOf(list, v)
	if idx < 0 {
		return list, false
	}
	return append(list[:idx:idx], list[idx+1:]...), true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
