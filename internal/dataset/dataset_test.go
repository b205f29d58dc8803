package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pbaille/tastemap/internal/category"
	"github.com/pbaille/tastemap/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCategory(t *testing.T, id string) domain.Category {
	t.Helper()
	reg, err := category.Load("")
	require.NoError(t, err)
	cat, err := reg.Get(id)
	require.NoError(t, err)
	return cat
}

func point(lng, lat float64, props Properties) Feature {
	var f Feature
	f.Type = "Feature"
	f.Geometry.Type = "Point"
	f.Geometry.Coordinates = []float64{lng, lat}
	f.Properties = props
	return f
}

func TestPrefectureFromCoords(t *testing.T) {
	assert.Equal(t, "北海道", PrefectureFromCoords(43.0677, 141.3503))
	assert.Equal(t, "沖縄県", PrefectureFromCoords(26.2124, 127.6809))
	assert.Equal(t, "", PrefectureFromCoords(0, 0))
	// Kyoto city sits inside the Shiga box, which is checked first
	assert.Equal(t, "滋賀県", PrefectureFromCoords(35.0301, 135.7688))
}

func TestLoadBasePins_Defaults(t *testing.T) {
	cat := mustCategory(t, "wagashi")

	pins := LoadBasePins(cat, []Feature{
		point(141.3503, 43.0677, Properties{ID: "w-1", Name: "六花亭", Type: "shop", Genre: "baked"}),
		point(139.7, 35.6, Properties{Name: "", Type: "bakery", Genre: "cake", Prefecture: "東京都"}),
		point(136.6589, 36.5613, Properties{ID: "w-3", Name: "森八", Type: "shop", AddrPrefecture: "石川県", AddrFull: "石川県金沢市"}),
	})
	require.Len(t, pins, 3)

	assert.Equal(t, "北海道", pins[0].Prefecture)
	assert.Equal(t, "北海道", pins[0].Address)
	assert.Equal(t, "六花亭", pins[0].NameReading)
	assert.False(t, pins[0].IsCustom)

	assert.Equal(t, "wagashi-139.7-35.6", pins[1].ID)
	assert.Equal(t, "和菓子屋", pins[1].Name)
	assert.Equal(t, "shop", pins[1].Type)
	assert.Equal(t, "other", pins[1].Genre)
	assert.Equal(t, "東京都", pins[1].Prefecture)

	assert.Equal(t, "石川県", pins[2].Prefecture)
	assert.Equal(t, "石川県金沢市", pins[2].Address)
}

func TestLoadBasePins_SkipsBadRecords(t *testing.T) {
	cat := mustCategory(t, "brewery")

	noCoords := Feature{Properties: Properties{ID: "b-0", Name: "nowhere"}}
	pins := LoadBasePins(cat, []Feature{
		noCoords,
		point(138.44, 36.29, Properties{ID: "b-1", Name: "ok", Type: "brewpub", Genre: "ignored"}),
		point(138.44, 36.29, Properties{ID: "b-1", Name: "dup"}),
		point(138.44, 36.29, Properties{ID: "custom-123", Name: "reserved"}),
	})
	require.Len(t, pins, 1)
	assert.Equal(t, "b-1", pins[0].ID)
	assert.Equal(t, "brewpub", pins[0].Type)
	assert.Equal(t, "", pins[0].Genre)
}

func TestLoad_Builtin(t *testing.T) {
	reg, err := category.Load("")
	require.NoError(t, err)

	for _, id := range reg.IDs() {
		cat, err := reg.Get(id)
		require.NoError(t, err)

		pins, err := Load(cat)
		require.NoError(t, err, id)
		require.NotEmpty(t, pins, id)

		ids := make(map[string]bool, len(pins))
		for _, p := range pins {
			ids[p.ID] = true
			assert.NotEmpty(t, p.Prefecture, p.ID)
		}
		for _, seed := range cat.SeedWantToTry {
			assert.True(t, ids[seed], "seed %s missing from %s dataset", seed, id)
		}
	}
}

func TestLoadFile(t *testing.T) {
	cat := mustCategory(t, "matcha")
	path := filepath.Join(t.TempDir(), "m.geojson")
	data := `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[135.8,34.89]},"properties":{"id":"m-1","name":"x","type":"tea_house"}},
		{"type":"Feature","geometry":{"type":"Point","coordinates":[]},"properties":{"id":"m-2","name":"y"}}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	pins, err := LoadFile(cat, path)
	require.NoError(t, err)
	require.Len(t, pins, 1)
	assert.Equal(t, "tea_house", pins[0].Type)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = LoadFile(cat, path)
	assert.Error(t, err)
}

func TestCustomEntityToPin(t *testing.T) {
	e := domain.CustomEntity{
		ID:        "custom-1",
		Name:      "近所の団子屋",
		Type:      "shop",
		Genre:     "mochi",
		Lat:       43.06,
		Lng:       141.35,
		CreatedAt: time.Now(),
	}
	pin := CustomEntityToPin(e)
	assert.True(t, pin.IsCustom)
	assert.Equal(t, "北海道", pin.Prefecture)
	assert.Equal(t, e.Name, pin.NameReading)
	assert.Equal(t, "mochi", pin.Genre)

	pins := CustomEntitiesToPins([]domain.CustomEntity{e, {ID: "custom-2", Lat: 0, Lng: 0}})
	require.Len(t, pins, 2)
	assert.Equal(t, "", pins[1].Prefecture)
}

func TestRegions(t *testing.T) {
	rs := Regions()
	require.Len(t, rs, 8)

	total := 0
	for _, r := range rs {
		total += len(r.Prefectures)
	}
	assert.Equal(t, len(Prefectures()), total)

	assert.Equal(t, "近畿", RegionOf("京都府"))
	assert.Equal(t, "", RegionOf("ハワイ"))

	r, ok := FindRegion("北海道")
	require.True(t, ok)
	assert.Equal(t, []string{"北海道"}, r.Prefectures)

	rs[0].Prefectures[0] = "changed"
	assert.Equal(t, "北海道", Regions()[0].Prefectures[0])
}
