package persist

import (
	"context"
	"fmt"

	"github.com/pbaille/tastemap/internal/domain"
	"github.com/pbaille/tastemap/internal/journal"
	"github.com/pbaille/tastemap/pkg/logger"
)

const seededSuffix = ":seeded"

// SeededKey is where the first-run seeding flag of a storage key lives
func SeededKey(storageKey string) string {
	return storageKey + seededSuffix
}

// Open rehydrates a journal for cat from kv, applies first-run seeding and
// attaches an adapter so later mutations are persisted. The journal is ready
// only once Open returns.
func Open(ctx context.Context, cat domain.Category, kv KV, opts ...journal.Option) (*journal.Store, *Adapter, error) {
	a := New(kv, cat.StorageKey)
	s := journal.New(cat, opts...)

	snap, _ := a.Load(ctx)
	s.Restore(snap)

	if err := ctx.Err(); err != nil {
		a.Close(context.Background())
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}

	a.seed(ctx, s, cat)
	s.SetSaver(a)
	return s, a, nil
}

// seed fills an empty want-to-try list with the category's recommendations,
// once per install. The flag is kept under its own key so a user who empties
// the list later is not seeded again.
func (a *Adapter) seed(ctx context.Context, s *journal.Store, cat domain.Category) {
	seededKey := SeededKey(cat.StorageKey)

	_, seeded, err := a.kv.Get(ctx, seededKey)
	if err != nil {
		// Without the flag we cannot tell a fresh install from an emptied
		// list; leave the list alone.
		a.log.Warn("Could not read seeding flag", map[string]interface{}{"error": err.Error()})
		return
	}
	if seeded {
		return
	}

	if s.WantToTryCount() == 0 && len(cat.SeedWantToTry) > 0 {
		for _, id := range cat.SeedWantToTry {
			s.MarkAsWantToTry(id)
		}
		if err := a.write(ctx, s.Snapshot()); err != nil {
			a.log.Error("Failed to persist seeded state", err)
		}
		logger.Info("Seeded want-to-try list", map[string]interface{}{
			"category": cat.ID,
			"count":    s.WantToTryCount(),
		})
	}

	if err := a.kv.Set(ctx, seededKey, []byte("true")); err != nil {
		a.log.Error("Failed to store seeding flag", err)
	}
}
