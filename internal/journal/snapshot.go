package journal

import (
	"github.com/pbaille/tastemap/internal/domain"
)

// Snapshot returns a deep copy of the persisted subset of state.
// Filter selections are not part of it.
func (s *Store) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		Tried:          s.TriedRecords(),
		WantToTry:      s.WantToTryIDs(),
		Memos:          s.Memos(),
		CustomEntities: s.CustomEntities(),
		Excluded:       s.ExcludedIDs(),
	}
}

// Restore replaces the persisted state with snap. Duplicate ids, empty ids,
// out-of-range ratings and photos beyond the cap are dropped. The saver is
// not called.
func (s *Store) Restore(snap domain.Snapshot) {
	s.tried = nil
	seen := make(map[string]bool)
	for _, t := range snap.Tried {
		if t.ID == "" || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		s.tried = append(s.tried, t)
	}

	s.wantToTry = dedupe(snap.WantToTry)
	s.excluded = dedupe(snap.Excluded)

	s.memos = nil
	seen = make(map[string]bool)
	for _, m := range snap.Memos {
		if m.ID == "" || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		m = copyMemo(m)
		m.Rating = normalizeRating(m.Rating)
		if len(m.Photos) > domain.MaxPhotos {
			m.Photos = m.Photos[:domain.MaxPhotos]
		}
		s.memos = append(s.memos, m)
	}

	s.custom = nil
	seen = make(map[string]bool)
	for _, e := range snap.CustomEntities {
		if e.ID == "" || e.Name == "" || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		e.Type = s.cat.NormalizeType(e.Type)
		e.Genre = s.cat.NormalizeGenre(e.Genre)
		s.custom = append(s.custom, e)
	}

	s.notify()
}

func dedupe(ids []string) []string {
	var out []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
