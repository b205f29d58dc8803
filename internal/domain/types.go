package domain

import (
	"strings"
	"time"
)

const (
	// MaxPhotos is the most photos a single memo can hold
	MaxPhotos = 4
	MinRating = 1
	MaxRating = 5
)

// BaseEntity is an immutable record from the reference dataset
type BaseEntity struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	NameReading     string  `json:"name_reading,omitempty"`
	Type            string  `json:"type"`
	Genre           string  `json:"genre,omitempty"`
	Lat             float64 `json:"lat"`
	Lng             float64 `json:"lng"`
	Prefecture      string  `json:"prefecture"`
	Address         string  `json:"address,omitempty"`
	Characteristics string  `json:"characteristics,omitempty"`
}

// CustomEntity is a user-created spot that is not in the reference dataset
type CustomEntity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Genre     string    `json:"genre,omitempty"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CustomFields holds the user-supplied fields of a new custom entity
type CustomFields struct {
	Name    string
	Type    string
	Genre   string
	Lat     float64
	Lng     float64
	Address string
}

// CustomUpdate is a partial update; nil fields are left unchanged
type CustomUpdate struct {
	Name    *string
	Type    *string
	Genre   *string
	Lat     *float64
	Lng     *float64
	Address *string
}

// TriedRecord marks that the user has tried the entity with ID
type TriedRecord struct {
	ID      string    `json:"id"`
	TriedAt time.Time `json:"triedAt"`
}

// Memo is the note, rating and photos attached to one entity
type Memo struct {
	ID        string    `json:"id"`
	Note      string    `json:"note"`
	Rating    *int      `json:"rating,omitempty"`
	Photos    []string  `json:"photos,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Pin is the map-displayable projection of a base or custom entity
type Pin struct {
	ID              string  `json:"id"`
	Lat             float64 `json:"lat"`
	Lng             float64 `json:"lng"`
	Name            string  `json:"name"`
	NameReading     string  `json:"nameReading"`
	Type            string  `json:"type"`
	Genre           string  `json:"genre,omitempty"`
	Address         string  `json:"address"`
	Prefecture      string  `json:"prefecture"`
	Characteristics string  `json:"characteristics,omitempty"`
	IsCustom        bool    `json:"isCustom"`
}

// FilterMode selects which marks a pin needs to be shown
type FilterMode string

const (
	FilterAll       FilterMode = "all"
	FilterTried     FilterMode = "tried"
	FilterWantToTry FilterMode = "wantToTry"
)

// ParseFilterMode accepts the canonical names plus a few CLI-friendly aliases
func ParseFilterMode(s string) (FilterMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, true
	case "tried":
		return FilterTried, true
	case "wanttotry", "want", "want-to-try":
		return FilterWantToTry, true
	}
	return FilterAll, false
}

// FilterState is the session-only filter selection of a screen
type FilterState struct {
	Mode         FilterMode `json:"filterMode"`
	Prefecture   string     `json:"prefectureFilter"`
	Genre        string     `json:"genreFilter"`
	HideExcluded bool       `json:"hideExcluded"`
}

// Snapshot is the persisted subset of a journal's state
type Snapshot struct {
	Tried          []TriedRecord  `json:"tried"`
	WantToTry      []string       `json:"wantToTry"`
	Memos          []Memo         `json:"memos"`
	CustomEntities []CustomEntity `json:"customEntities"`
	Excluded       []string       `json:"excluded"`
}

// Category describes one catalog (brewery, matcha, wagashi...)
type Category struct {
	ID            string   `yaml:"id" json:"id"`
	Label         string   `yaml:"label" json:"label"`
	StorageKey    string   `yaml:"storage_key" json:"storage_key"`
	CustomPrefix  string   `yaml:"custom_prefix" json:"custom_prefix"`
	DefaultName   string   `yaml:"default_name" json:"default_name"`
	Types         []string `yaml:"types" json:"types"`
	DefaultType   string   `yaml:"default_type" json:"default_type"`
	Genres        []string `yaml:"genres,omitempty" json:"genres,omitempty"`
	DefaultGenre  string   `yaml:"default_genre,omitempty" json:"default_genre,omitempty"`
	Dataset       string   `yaml:"dataset" json:"dataset"`
	SeedWantToTry []string `yaml:"seed_want_to_try,omitempty" json:"seed_want_to_try,omitempty"`
}

// HasGenre reports whether the category has a genre facet
func (c Category) HasGenre() bool {
	return len(c.Genres) > 0
}

// NormalizeType maps unknown or empty types to the default type
func (c Category) NormalizeType(t string) string {
	if contains(c.Types, t) {
		return t
	}
	return c.DefaultType
}

// NormalizeGenre maps unknown or empty genres to the default genre.
// Categories without a genre facet always get "".
func (c Category) NormalizeGenre(g string) string {
	if !c.HasGenre() {
		return ""
	}
	if contains(c.Genres, g) {
		return g
	}
	return c.DefaultGenre
}

// IsGenre reports whether g is one of the category's genres
func (c Category) IsGenre(g string) bool {
	return contains(c.Genres, g)
}

// IsCustomID reports whether id lives in the category's custom id namespace
func (c Category) IsCustomID(id string) bool {
	return c.CustomPrefix != "" && strings.HasPrefix(id, c.CustomPrefix)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
