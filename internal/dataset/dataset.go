// Package dataset turns the static reference data into map pins.
package dataset

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/pbaille/tastemap/internal/domain"
	"github.com/pbaille/tastemap/pkg/logger"
)

//go:embed data/*.geojson
var builtin embed.FS

var ErrMissingCoordinates = errors.New("missing coordinates")

// FeatureCollection is the GeoJSON container of the reference dataset
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one dataset record. Coordinates are [longitude, latitude].
type Feature struct {
	Type     string `json:"type"`
	Geometry struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties Properties `json:"properties"`
}

type Properties struct {
	ID              string `json:"id,omitempty"`
	Name            string `json:"name"`
	NameReading     string `json:"name_reading,omitempty"`
	Type            string `json:"type"`
	Genre           string `json:"genre,omitempty"`
	Prefecture      string `json:"prefecture,omitempty"`
	AddrPrefecture  string `json:"addr:prefecture,omitempty"`
	Address         string `json:"address,omitempty"`
	AddrFull        string `json:"addr:full,omitempty"`
	Characteristics string `json:"characteristics,omitempty"`
}

// Load returns the base pins of the built-in dataset for cat
func Load(cat domain.Category) ([]domain.Pin, error) {
	data, err := builtin.ReadFile("data/" + cat.Dataset)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", cat.Dataset, err)
	}
	return decode(cat, data)
}

// LoadFile returns the base pins of a GeoJSON file on disk
func LoadFile(cat domain.Category, path string) ([]domain.Pin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return decode(cat, data)
}

func decode(cat domain.Category, data []byte) ([]domain.Pin, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return LoadBasePins(cat, fc.Features), nil
}

// LoadBasePins converts features into pins. Records that cannot be placed on
// the map, or whose id would clash, are logged and skipped.
func LoadBasePins(cat domain.Category, features []Feature) []domain.Pin {
	pins := make([]domain.Pin, 0, len(features))
	seen := make(map[string]bool, len(features))

	for i, f := range features {
		entity, err := featureToEntity(cat, f)
		if err != nil {
			logger.Warn("Skipping dataset record", map[string]interface{}{
				"category": cat.ID,
				"index":    i,
				"name":     f.Properties.Name,
				"reason":   err.Error(),
			})
			continue
		}
		if cat.IsCustomID(entity.ID) {
			logger.Warn("Skipping dataset record with reserved id", map[string]interface{}{
				"category": cat.ID,
				"id":       entity.ID,
			})
			continue
		}
		if seen[entity.ID] {
			logger.Warn("Skipping duplicate dataset id", map[string]interface{}{
				"category": cat.ID,
				"id":       entity.ID,
			})
			continue
		}
		seen[entity.ID] = true
		pins = append(pins, BaseEntityToPin(entity))
	}
	return pins
}

func featureToEntity(cat domain.Category, f Feature) (domain.BaseEntity, error) {
	if len(f.Geometry.Coordinates) < 2 {
		return domain.BaseEntity{}, ErrMissingCoordinates
	}
	lng, lat := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]
	if !finite(lat) || !finite(lng) {
		return domain.BaseEntity{}, ErrMissingCoordinates
	}

	p := f.Properties
	id := p.ID
	if id == "" {
		id = cat.ID + "-" + formatCoord(lng) + "-" + formatCoord(lat)
	}

	name := firstNonEmpty(p.Name, cat.DefaultName)
	prefecture := firstNonEmpty(p.Prefecture, p.AddrPrefecture)
	if prefecture == "" {
		prefecture = PrefectureFromCoords(lat, lng)
	}

	return domain.BaseEntity{
		ID:              id,
		Name:            name,
		NameReading:     firstNonEmpty(p.NameReading, name),
		Type:            cat.NormalizeType(p.Type),
		Genre:           cat.NormalizeGenre(p.Genre),
		Lat:             lat,
		Lng:             lng,
		Prefecture:      prefecture,
		Address:         firstNonEmpty(p.Address, p.AddrFull, prefecture),
		Characteristics: p.Characteristics,
	}, nil
}

// BaseEntityToPin flattens a dataset entity into a pin
func BaseEntityToPin(e domain.BaseEntity) domain.Pin {
	return domain.Pin{
		ID:              e.ID,
		Lat:             e.Lat,
		Lng:             e.Lng,
		Name:            e.Name,
		NameReading:     e.NameReading,
		Type:            e.Type,
		Genre:           e.Genre,
		Address:         e.Address,
		Prefecture:      e.Prefecture,
		Characteristics: e.Characteristics,
		IsCustom:        false,
	}
}

// CustomEntityToPin converts a user-created entity. Prefecture always comes
// from the coordinates.
func CustomEntityToPin(e domain.CustomEntity) domain.Pin {
	return domain.Pin{
		ID:          e.ID,
		Lat:         e.Lat,
		Lng:         e.Lng,
		Name:        e.Name,
		NameReading: e.Name,
		Type:        e.Type,
		Genre:       e.Genre,
		Address:     e.Address,
		Prefecture:  PrefectureFromCoords(e.Lat, e.Lng),
		IsCustom:    true,
	}
}

// CustomEntitiesToPins converts entities in order
func CustomEntitiesToPins(entities []domain.CustomEntity) []domain.Pin {
	pins := make([]domain.Pin, len(entities))
	for i, e := range entities {
		pins[i] = CustomEntityToPin(e)
	}
	return pins
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
