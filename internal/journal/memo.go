package journal

import (
	"context"
	"fmt"

	"github.com/pbaille/tastemap/internal/domain"
)

// PhotoSource acquires a photo URI, typically after user interaction.
// ok is false when the user cancelled.
type PhotoSource interface {
	Acquire(ctx context.Context) (uri string, ok bool, err error)
}

// PhotoSourceFunc adapts a function to PhotoSource
type PhotoSourceFunc func(ctx context.Context) (string, bool, error)

func (f PhotoSourceFunc) Acquire(ctx context.Context) (string, bool, error) {
	return f(ctx)
}

// SetMemo upserts the note and rating for id, keeping any photos.
// A rating outside 1..5 is stored as absent.
func (s *Store) SetMemo(id, note string, rating *int) {
	if id == "" {
		return
	}
	r := normalizeRating(rating)
	now := s.timestamp()

	if idx := s.memoIndex(id); idx >= 0 {
		m := &s.memos[idx]
		m.Note = note
		m.Rating = r
		m.UpdatedAt = now
	} else {
		s.memos = append(s.memos, domain.Memo{ID: id, Note: note, Rating: r, UpdatedAt: now})
	}
	s.changed()
}

// Memo returns a copy of the memo for id
func (s *Store) Memo(id string) (domain.Memo, bool) {
	idx := s.memoIndex(id)
	if idx < 0 {
		return domain.Memo{}, false
	}
	return copyMemo(s.memos[idx]), true
}

// Memos returns copies of all memos
func (s *Store) Memos() []domain.Memo {
	out := make([]domain.Memo, len(s.memos))
	for i, m := range s.memos {
		out[i] = copyMemo(m)
	}
	return out
}

// AddPhoto appends uri to the memo of id, creating the memo if needed.
// Adding beyond MaxPhotos is silently ignored.
func (s *Store) AddPhoto(id, uri string) {
	if id == "" || uri == "" {
		return
	}
	now := s.timestamp()

	idx := s.memoIndex(id)
	if idx < 0 {
		s.memos = append(s.memos, domain.Memo{ID: id, Photos: []string{uri}, UpdatedAt: now})
		s.changed()
		return
	}

	m := &s.memos[idx]
	if len(m.Photos) >= domain.MaxPhotos {
		return
	}
	m.Photos = append(m.Photos, uri)
	m.UpdatedAt = now
	s.changed()
}

// AttachPhoto waits for src and adds the photo it yields. Cancellation or an
// error leaves the store unchanged.
func (s *Store) AttachPhoto(ctx context.Context, id string, src PhotoSource) (bool, error) {
	uri, ok, err := src.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire photo: %w", err)
	}
	if !ok || uri == "" {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	before := len(s.Photos(id))
	s.AddPhoto(id, uri)
	return len(s.Photos(id)) > before, nil
}

// RemovePhoto drops every occurrence of uri from the memo of id. It only
// forgets the reference; the underlying file is not touched.
func (s *Store) RemovePhoto(id, uri string) {
	idx := s.memoIndex(id)
	if idx < 0 {
		return
	}
	m := &s.memos[idx]
	kept := make([]string, 0, len(m.Photos))
	for _, p := range m.Photos {
		if p != uri {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(m.Photos) {
		return
	}
	m.Photos = kept
	m.UpdatedAt = s.timestamp()
	s.changed()
}

// Photos returns the photo URIs of id in insertion order
func (s *Store) Photos(id string) []string {
	idx := s.memoIndex(id)
	if idx < 0 {
		return []string{}
	}
	return append([]string{}, s.memos[idx].Photos...)
}

func (s *Store) memoIndex(id string) int {
	for i, m := range s.memos {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func normalizeRating(rating *int) *int {
	if rating == nil || *rating < domain.MinRating || *rating > domain.MaxRating {
		return nil
	}
	r := *rating
	return &r
}

func copyMemo(m domain.Memo) domain.Memo {
	out := m
	if m.Rating != nil {
		r := *m.Rating
		out.Rating = &r
	}
	if m.Photos != nil {
		out.Photos = append([]string(nil), m.Photos...)
	}
	return out
}
