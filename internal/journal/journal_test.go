package journal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/pbaille/tastemap/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSaver struct {
	saved []domain.Snapshot
}

func (r *recordingSaver) Save(snap domain.Snapshot) {
	r.saved = append(r.saved, snap)
}

func wagashiCategory() domain.Category {
	return domain.Category{
		ID:           "wagashi",
		StorageKey:   "my-wagashi-storage",
		CustomPrefix: "custom-",
		DefaultName:  "和菓子屋",
		Types:        []string{"shop", "cafe", "factory"},
		DefaultType:  "shop",
		Genres:       []string{"mochi", "an", "other"},
		DefaultGenre: "other",
	}
}

func setupJournalTest(t *testing.T) (*Store, *recordingSaver) {
	t.Helper()
	saver := &recordingSaver{}
	clock := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	seq := 0
	s := New(wagashiCategory(),
		WithSaver(saver),
		WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("%04d", seq)
		}),
	)
	return s, saver
}

func intPtr(v int) *int { return &v }

func nan() float64 { return math.NaN() }

func TestStore_MarkAsTried_Idempotent(t *testing.T) {
	s, saver := setupJournalTest(t)

	s.MarkAsTried("a")
	first := s.TriedRecords()
	s.MarkAsTried("a")

	assert.Equal(t, first, s.TriedRecords())
	assert.Equal(t, 1, s.TriedCount())
	assert.True(t, s.IsTried("a"))
	assert.Len(t, saver.saved, 1)
}

func TestStore_UnmarkAsTried_Inverse(t *testing.T) {
	s, _ := setupJournalTest(t)
	s.MarkAsTried("b")
	before := s.TriedRecords()

	s.MarkAsTried("a")
	s.UnmarkAsTried("a")

	assert.False(t, s.IsTried("a"))
	assert.Equal(t, before, s.TriedRecords())

	rec, ok := s.TriedRecord("b")
	require.True(t, ok)
	assert.Equal(t, "b", rec.ID)
	assert.False(t, rec.TriedAt.IsZero())
}

func TestStore_UnknownIDs_NoOp(t *testing.T) {
	s, saver := setupJournalTest(t)

	s.UnmarkAsTried("x")
	s.UnmarkAsWantToTry("x")
	s.UnexcludeEntity("x")
	s.RemovePhoto("x", "file://a.jpg")
	s.UpdateCustomEntity("custom-x", domain.CustomUpdate{})
	s.DeleteCustomEntity("custom-x")
	s.ClearAllExcluded()
	s.MarkAsTried("")

	assert.Empty(t, saver.saved)
	_, ok := s.Memo("x")
	assert.False(t, ok)
	assert.Equal(t, []string{}, s.Photos("x"))
}

func TestStore_WantToTryAndExclusion_Idempotent(t *testing.T) {
	s, _ := setupJournalTest(t)

	s.MarkAsWantToTry("a")
	s.MarkAsWantToTry("a")
	s.ExcludeEntity("a")
	s.ExcludeEntity("a")

	assert.Equal(t, 1, s.WantToTryCount())
	assert.Equal(t, []string{"a"}, s.ExcludedIDs())

	s.UnmarkAsWantToTry("a")
	s.UnexcludeEntity("a")
	assert.False(t, s.IsWantToTry("a"))
	assert.False(t, s.IsExcluded("a"))
}

func TestStore_Independence(t *testing.T) {
	s, _ := setupJournalTest(t)

	s.MarkAsWantToTry("a")
	s.ExcludeEntity("a")
	s.SetMemo("a", "good", intPtr(4))

	s.MarkAsTried("a")
	assert.True(t, s.IsWantToTry("a"))
	assert.True(t, s.IsExcluded("a"))
	memo, ok := s.Memo("a")
	require.True(t, ok)
	assert.Equal(t, "good", memo.Note)

	s.UnmarkAsWantToTry("a")
	assert.True(t, s.IsTried("a"))
	assert.True(t, s.IsExcluded("a"))

	s.ClearAllExcluded()
	assert.True(t, s.IsTried("a"))
	assert.Equal(t, 0, s.ExcludedCount())
	_, ok = s.Memo("a")
	assert.True(t, ok)
}

func TestStore_SetMemo_Upsert(t *testing.T) {
	s, _ := setupJournalTest(t)

	s.AddPhoto("a", "file://1.jpg")
	s.SetMemo("a", "first", intPtr(3))
	first, _ := s.Memo("a")

	s.SetMemo("a", "second", nil)
	memo, ok := s.Memo("a")
	require.True(t, ok)

	assert.Equal(t, "second", memo.Note)
	assert.Nil(t, memo.Rating)
	assert.Equal(t, []string{"file://1.jpg"}, memo.Photos)
	assert.True(t, memo.UpdatedAt.After(first.UpdatedAt))
	assert.Len(t, s.Memos(), 1)
}

func TestStore_SetMemo_RatingRange(t *testing.T) {
	s, _ := setupJournalTest(t)

	s.SetMemo("a", "", intPtr(0))
	memo, _ := s.Memo("a")
	assert.Nil(t, memo.Rating)

	s.SetMemo("a", "", intPtr(6))
	memo, _ = s.Memo("a")
	assert.Nil(t, memo.Rating)

	s.SetMemo("a", "", intPtr(5))
	memo, _ = s.Memo("a")
	require.NotNil(t, memo.Rating)
	assert.Equal(t, 5, *memo.Rating)

	// returned memos are copies
	*memo.Rating = 1
	again, _ := s.Memo("a")
	assert.Equal(t, 5, *again.Rating)
}

func TestStore_AddPhoto_Cap(t *testing.T) {
	s, saver := setupJournalTest(t)

	for i := 1; i <= 5; i++ {
		s.AddPhoto("a", fmt.Sprintf("file://%d.jpg", i))
	}

	assert.Equal(t, []string{"file://1.jpg", "file://2.jpg", "file://3.jpg", "file://4.jpg"}, s.Photos("a"))
	assert.Len(t, saver.saved, 4)

	memo, ok := s.Memo("a")
	require.True(t, ok)
	assert.Equal(t, "", memo.Note)
}

func TestStore_RemovePhoto(t *testing.T) {
	s, _ := setupJournalTest(t)
	s.AddPhoto("a", "file://1.jpg")
	s.AddPhoto("a", "file://2.jpg")

	s.RemovePhoto("a", "file://1.jpg")
	assert.Equal(t, []string{"file://2.jpg"}, s.Photos("a"))

	s.RemovePhoto("a", "file://missing.jpg")
	assert.Equal(t, []string{"file://2.jpg"}, s.Photos("a"))
}

func TestStore_AttachPhoto(t *testing.T) {
	s, saver := setupJournalTest(t)
	ctx := context.Background()

	cancelled := PhotoSourceFunc(func(ctx context.Context) (string, bool, error) {
		return "", false, nil
	})
	added, err := s.AttachPhoto(ctx, "a", cancelled)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, saver.saved)

	denied := PhotoSourceFunc(func(ctx context.Context) (string, bool, error) {
		return "", false, errors.New("permission denied")
	})
	_, err = s.AttachPhoto(ctx, "a", denied)
	assert.Error(t, err)
	_, ok := s.Memo("a")
	assert.False(t, ok)

	picked := PhotoSourceFunc(func(ctx context.Context) (string, bool, error) {
		return "file://picked.jpg", true, nil
	})
	added, err = s.AttachPhoto(ctx, "a", picked)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{"file://picked.jpg"}, s.Photos("a"))
}

func TestStore_AddCustomEntity(t *testing.T) {
	s, saver := setupJournalTest(t)

	id1, err := s.AddCustomEntity(domain.CustomFields{Name: " 団子屋 ", Type: "kiosk", Genre: "mochi", Lat: 35.0, Lng: 135.7})
	require.NoError(t, err)
	id2, err := s.AddCustomEntity(domain.CustomFields{Name: "茶屋", Lat: 35.0, Lng: 135.7})
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
	assert.True(t, s.IsCustomID(id1))
	assert.True(t, s.IsCustomID(id2))
	assert.Len(t, saver.saved, 2)

	e, ok := s.CustomEntity(id1)
	require.True(t, ok)
	assert.Equal(t, "団子屋", e.Name)
	assert.Equal(t, "shop", e.Type)
	assert.Equal(t, "mochi", e.Genre)
	assert.False(t, e.CreatedAt.IsZero())

	e2, _ := s.CustomEntity(id2)
	assert.Equal(t, "other", e2.Genre)
}

func TestStore_AddCustomEntity_RegeneratesTakenID(t *testing.T) {
	suffixes := []string{"same", "same", "other"}
	s := New(wagashiCategory(), WithIDGenerator(func() string {
		next := suffixes[0]
		suffixes = suffixes[1:]
		return next
	}))

	id1, err := s.AddCustomEntity(domain.CustomFields{Name: "a", Lat: 1, Lng: 1})
	require.NoError(t, err)
	id2, err := s.AddCustomEntity(domain.CustomFields{Name: "b", Lat: 1, Lng: 1})
	require.NoError(t, err)

	assert.Equal(t, "custom-same", id1)
	assert.Equal(t, "custom-other", id2)
}

func TestStore_AddCustomEntity_Invalid(t *testing.T) {
	s, saver := setupJournalTest(t)

	_, err := s.AddCustomEntity(domain.CustomFields{Name: "  ", Lat: 1, Lng: 1})
	assert.ErrorIs(t, err, ErrInvalidEntity)

	_, err = s.AddCustomEntity(domain.CustomFields{Name: "x", Lat: nan(), Lng: 1})
	assert.ErrorIs(t, err, ErrInvalidEntity)

	assert.Empty(t, s.CustomEntities())
	assert.Empty(t, saver.saved)
}

func TestStore_UpdateCustomEntity(t *testing.T) {
	s, _ := setupJournalTest(t)
	id, err := s.AddCustomEntity(domain.CustomFields{Name: "a", Type: "cafe", Lat: 1, Lng: 2, Address: "x"})
	require.NoError(t, err)

	name := "b"
	genre := "unknown"
	lat := 43.0
	blank := ""
	s.UpdateCustomEntity(id, domain.CustomUpdate{Name: &name, Genre: &genre, Lat: &lat, Address: &blank})

	e, _ := s.CustomEntity(id)
	assert.Equal(t, "b", e.Name)
	assert.Equal(t, "cafe", e.Type)
	assert.Equal(t, "other", e.Genre)
	assert.Equal(t, 43.0, e.Lat)
	assert.Equal(t, 2.0, e.Lng)
	assert.Equal(t, "", e.Address)

	s.UpdateCustomEntity(id, domain.CustomUpdate{Name: &blank})
	e, _ = s.CustomEntity(id)
	assert.Equal(t, "b", e.Name)
}

func TestStore_DeleteCustomEntity_Cascade(t *testing.T) {
	s, _ := setupJournalTest(t)
	id, err := s.AddCustomEntity(domain.CustomFields{Name: "x", Lat: 1, Lng: 1})
	require.NoError(t, err)

	s.MarkAsTried(id)
	s.MarkAsWantToTry(id)
	s.AddPhoto(id, "file://1.jpg")
	s.AddPhoto(id, "file://2.jpg")
	s.ExcludeEntity(id)
	s.MarkAsTried("base-1")

	s.DeleteCustomEntity(id)

	_, ok := s.CustomEntity(id)
	assert.False(t, ok)
	assert.False(t, s.IsTried(id))
	assert.False(t, s.IsWantToTry(id))
	assert.False(t, s.IsExcluded(id))
	_, ok = s.Memo(id)
	assert.False(t, ok)
	assert.True(t, s.IsTried("base-1"))
}

func TestStore_DeleteCustomEntity_IgnoresBaseIDs(t *testing.T) {
	s, saver := setupJournalTest(t)
	s.MarkAsTried("wagashi-toraya")
	n := len(saver.saved)

	s.DeleteCustomEntity("wagashi-toraya")

	assert.True(t, s.IsTried("wagashi-toraya"))
	assert.Len(t, saver.saved, n)
}

func TestStore_FilterSetters(t *testing.T) {
	s, saver := setupJournalTest(t)
	calls := 0
	unsubscribe := s.Subscribe(func() { calls++ })

	assert.Equal(t, domain.FilterAll, s.Filter().Mode)

	s.SetFilterMode(domain.FilterTried)
	s.SetPrefectureFilter(" 京都府 ")
	s.SetGenreFilter("mochi")
	s.SetHideExcluded(true)

	f := s.Filter()
	assert.Equal(t, domain.FilterTried, f.Mode)
	assert.Equal(t, "京都府", f.Prefecture)
	assert.Equal(t, "mochi", f.Genre)
	assert.True(t, f.HideExcluded)
	assert.Equal(t, 4, calls)
	assert.Empty(t, saver.saved)

	s.SetGenreFilter("cake")
	s.SetFilterMode("bogus")
	assert.Equal(t, "", s.Filter().Genre)
	assert.Equal(t, domain.FilterAll, s.Filter().Mode)

	unsubscribe()
	s.MarkAsTried("a")
	assert.Equal(t, 6, calls)
}

func TestStore_SnapshotRestore(t *testing.T) {
	s, _ := setupJournalTest(t)
	id, err := s.AddCustomEntity(domain.CustomFields{Name: "x", Genre: "an", Lat: 1, Lng: 1})
	require.NoError(t, err)
	s.MarkAsTried("a")
	s.MarkAsWantToTry(id)
	s.SetMemo("a", "note", intPtr(2))
	s.AddPhoto("a", "file://1.jpg")
	s.ExcludeEntity("b")
	s.SetFilterMode(domain.FilterTried)

	snap := s.Snapshot()

	restored := New(wagashiCategory())
	restored.Restore(snap)

	assert.Equal(t, snap, restored.Snapshot())
	assert.Equal(t, domain.FilterAll, restored.Filter().Mode)
}

func TestStore_Restore_Sanitizes(t *testing.T) {
	s := New(wagashiCategory())
	s.Restore(domain.Snapshot{
		Tried:     []domain.TriedRecord{{ID: "a"}, {ID: "a"}, {ID: ""}},
		WantToTry: []string{"a", "a", ""},
		Memos: []domain.Memo{
			{ID: "a", Rating: intPtr(9), Photos: []string{"1", "2", "3", "4", "5"}},
			{ID: "a", Note: "dup"},
		},
		CustomEntities: []domain.CustomEntity{
			{ID: "custom-1", Name: "x", Type: "??"},
			{ID: "custom-2"},
		},
		Excluded: []string{"b", "b"},
	})

	assert.Equal(t, 1, s.TriedCount())
	assert.Equal(t, []string{"a"}, s.WantToTryIDs())
	memo, ok := s.Memo("a")
	require.True(t, ok)
	assert.Nil(t, memo.Rating)
	assert.Len(t, memo.Photos, domain.MaxPhotos)
	require.Len(t, s.CustomEntities(), 1)
	assert.Equal(t, "shop", s.CustomEntities()[0].Type)
	assert.Equal(t, []string{"b"}, s.ExcludedIDs())
}

func TestStore_Snapshot_IsDeepCopy(t *testing.T) {
	s, saver := setupJournalTest(t)
	s.AddPhoto("a", "file://1.jpg")

	saved := saver.saved[0]
	s.AddPhoto("a", "file://2.jpg")

	assert.Equal(t, []string{"file://1.jpg"}, saved.Memos[0].Photos)
}
