// Package view derives what a screen renders from pins, marks and filters.
// Everything here is pure.
package view

import (
	"sort"

	"github.com/pbaille/tastemap/internal/domain"
)

// Marks is the per-id state the filter pipeline consults
type Marks interface {
	IsTried(id string) bool
	IsWantToTry(id string) bool
	IsExcluded(id string) bool
	ExcludedCount() int
}

// ModeCounts backs the filter buttons. All, Tried and WantToTry are counted
// after the prefecture and genre filters but before the mode and exclusion
// steps. Excluded is the size of the exclusion list.
type ModeCounts struct {
	All       int `json:"all"`
	Tried     int `json:"tried"`
	WantToTry int `json:"wantToTry"`
	Excluded  int `json:"excluded"`
	Displayed int `json:"displayed"`
}

// Facet is one value of a facet and how many pins carry it
type Facet struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Merge concatenates base and custom pins
func Merge(base, custom []domain.Pin) []domain.Pin {
	out := make([]domain.Pin, 0, len(base)+len(custom))
	out = append(out, base...)
	return append(out, custom...)
}

// DerivePins runs the pipeline: merge, prefecture, genre, mode, exclusion
func DerivePins(base, custom []domain.Pin, marks Marks, f domain.FilterState) []domain.Pin {
	pins := areaFiltered(base, custom, f)
	pins = byMode(pins, marks, f.Mode)
	if f.HideExcluded && marks.ExcludedCount() > 0 {
		pins = keep(pins, func(p domain.Pin) bool { return !marks.IsExcluded(p.ID) })
	}
	return pins
}

// Counts computes the filter button counts for f
func Counts(base, custom []domain.Pin, marks Marks, f domain.FilterState) ModeCounts {
	pins := areaFiltered(base, custom, f)

	c := ModeCounts{All: len(pins), Excluded: marks.ExcludedCount()}
	for _, p := range pins {
		if marks.IsTried(p.ID) {
			c.Tried++
		}
		if marks.IsWantToTry(p.ID) {
			c.WantToTry++
		}
	}
	c.Displayed = len(DerivePins(base, custom, marks, f))
	return c
}

// areaFiltered applies steps 1-3 of the pipeline
func areaFiltered(base, custom []domain.Pin, f domain.FilterState) []domain.Pin {
	pins := Merge(base, custom)
	if f.Prefecture != "" {
		pins = keep(pins, func(p domain.Pin) bool { return p.Prefecture == f.Prefecture })
	}
	if f.Genre != "" {
		pins = keep(pins, func(p domain.Pin) bool { return p.Genre == f.Genre })
	}
	return pins
}

func byMode(pins []domain.Pin, marks Marks, mode domain.FilterMode) []domain.Pin {
	switch mode {
	case domain.FilterTried:
		return keep(pins, func(p domain.Pin) bool { return marks.IsTried(p.ID) })
	case domain.FilterWantToTry:
		return keep(pins, func(p domain.Pin) bool { return marks.IsWantToTry(p.ID) })
	default:
		return pins
	}
}

func keep(pins []domain.Pin, pred func(domain.Pin) bool) []domain.Pin {
	out := make([]domain.Pin, 0, len(pins))
	for _, p := range pins {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

// PrefectureFacets counts pins per prefecture, most common first.
// Pins without a prefecture are not counted.
func PrefectureFacets(pins []domain.Pin) []Facet {
	return facets(pins, func(p domain.Pin) string { return p.Prefecture })
}

// GenreFacets counts pins per genre, most common first
func GenreFacets(pins []domain.Pin) []Facet {
	return facets(pins, func(p domain.Pin) string { return p.Genre })
}

func facets(pins []domain.Pin, value func(domain.Pin) string) []Facet {
	counts := make(map[string]int)
	for _, p := range pins {
		if v := value(p); v != "" {
			counts[v]++
		}
	}
	out := make([]Facet, 0, len(counts))
	for v, n := range counts {
		out = append(out, Facet{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// FindPin returns the pin with id
func FindPin(pins []domain.Pin, id string) (domain.Pin, bool) {
	for _, p := range pins {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Pin{}, false
}
