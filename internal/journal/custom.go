package journal

import (
	"fmt"
	"strings"

	"github.com/pbaille/tastemap/internal/domain"
	"github.com/pbaille/tastemap/pkg/logger"
)

// AddCustomEntity stores a user-created entity and returns its new id.
// Callers are expected to validate input; empty names and non-finite
// coordinates are still refused so no corrupt record is persisted.
func (s *Store) AddCustomEntity(fields domain.CustomFields) (string, error) {
	name := strings.TrimSpace(fields.Name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidEntity)
	}
	if !finite(fields.Lat) || !finite(fields.Lng) {
		return "", fmt.Errorf("%w: location is required", ErrInvalidEntity)
	}

	id := s.generateID()
	entity := domain.CustomEntity{
		ID:        id,
		Name:      name,
		Type:      s.cat.NormalizeType(fields.Type),
		Genre:     s.cat.NormalizeGenre(fields.Genre),
		Lat:       fields.Lat,
		Lng:       fields.Lng,
		Address:   strings.TrimSpace(fields.Address),
		CreatedAt: s.timestamp(),
	}
	s.custom = append(s.custom, entity)

	logger.Debug("Custom entity added", map[string]interface{}{
		"category": s.cat.ID,
		"id":       id,
	})
	s.changed()
	return id, nil
}

// generateID returns a prefixed id not used by any custom entity. Base ids
// never carry the prefix, so the result cannot collide with them either.
func (s *Store) generateID() string {
	for {
		id := s.cat.CustomPrefix + s.newID()
		if s.customIndex(id) < 0 {
			return id
		}
	}
}

// UpdateCustomEntity merges the non-nil fields of update. Unknown ids are ignored.
func (s *Store) UpdateCustomEntity(id string, update domain.CustomUpdate) {
	idx := s.customIndex(id)
	if idx < 0 {
		return
	}
	e := &s.custom[idx]
	if update.Name != nil {
		if name := strings.TrimSpace(*update.Name); name != "" {
			e.Name = name
		}
	}
	if update.Type != nil {
		e.Type = s.cat.NormalizeType(*update.Type)
	}
	if update.Genre != nil {
		e.Genre = s.cat.NormalizeGenre(*update.Genre)
	}
	if update.Lat != nil && finite(*update.Lat) {
		e.Lat = *update.Lat
	}
	if update.Lng != nil && finite(*update.Lng) {
		e.Lng = *update.Lng
	}
	if update.Address != nil {
		e.Address = strings.TrimSpace(*update.Address)
	}
	s.changed()
}

// DeleteCustomEntity removes a custom entity together with its tried record,
// want-to-try mark, memo and exclusion. Unknown ids are ignored.
func (s *Store) DeleteCustomEntity(id string) {
	idx := s.customIndex(id)
	if idx < 0 {
		return
	}
	s.custom = append(s.custom[:idx:idx], s.custom[idx+1:]...)

	if t := s.triedIndex(id); t >= 0 {
		s.tried = append(s.tried[:t:t], s.tried[t+1:]...)
	}
	s.wantToTry, _ = removeString(s.wantToTry, id)
	if m := s.memoIndex(id); m >= 0 {
		s.memos = append(s.memos[:m:m], s.memos[m+1:]...)
	}
	s.excluded, _ = removeString(s.excluded, id)

	logger.Debug("Custom entity deleted", map[string]interface{}{
		"category": s.cat.ID,
		"id":       id,
	})
	s.changed()
}

// CustomEntity returns the custom entity with id
func (s *Store) CustomEntity(id string) (domain.CustomEntity, bool) {
	if idx := s.customIndex(id); idx >= 0 {
		return s.custom[idx], true
	}
	return domain.CustomEntity{}, false
}

// CustomEntities returns the custom entities in creation order
func (s *Store) CustomEntities() []domain.CustomEntity {
	return append([]domain.CustomEntity(nil), s.custom...)
}

// IsCustomID reports whether id is in the custom namespace
func (s *Store) IsCustomID(id string) bool {
	return s.cat.IsCustomID(id)
}

func (s *Store) customIndex(id string) int {
	for i, e := range s.custom {
		if e.ID == id {
			return i
		}
	}
	return -1
}
