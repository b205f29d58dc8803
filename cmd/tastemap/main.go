package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pbaille/tastemap/internal/category"
	"github.com/pbaille/tastemap/internal/config"
	"github.com/pbaille/tastemap/internal/dataset"
	"github.com/pbaille/tastemap/internal/domain"
	"github.com/pbaille/tastemap/internal/journal"
	"github.com/pbaille/tastemap/internal/persist"
	"github.com/pbaille/tastemap/internal/store"
	"github.com/pbaille/tastemap/internal/view"
	"github.com/pbaille/tastemap/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	cfg        *config.Config
	dbPath     string
	categoryID string
)

func main() {
	cfg = config.Load()
	logger.Initialize(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	rootCmd := &cobra.Command{
		Use:          "tastemap",
		Short:        "Map journal for craft breweries, matcha and wagashi spots",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", cfg.DBPath, "database path")
	rootCmd.PersistentFlags().StringVarP(&categoryID, "category", "c", cfg.Category, "catalog category")

	rootCmd.AddCommand(pinsCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(markCmd("try", "Mark a spot as tried", (*journal.Store).MarkAsTried))
	rootCmd.AddCommand(markCmd("untry", "Remove the tried mark", (*journal.Store).UnmarkAsTried))
	rootCmd.AddCommand(markCmd("want", "Add a spot to want-to-try", (*journal.Store).MarkAsWantToTry))
	rootCmd.AddCommand(markCmd("unwant", "Remove a spot from want-to-try", (*journal.Store).UnmarkAsWantToTry))
	rootCmd.AddCommand(markCmd("exclude", "Hide a spot from filtered views", (*journal.Store).ExcludeEntity))
	rootCmd.AddCommand(markCmd("include", "Stop hiding a spot", (*journal.Store).UnexcludeEntity))
	rootCmd.AddCommand(excludedCmd())
	rootCmd.AddCommand(memoCmd())
	rootCmd.AddCommand(photoCmd())
	rootCmd.AddCommand(customCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(facetsCmd())
	rootCmd.AddCommand(regionsCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(resetCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// session is one command's view of a category: the journal, its persistence
// and the reference pins
type session struct {
	cat     domain.Category
	db      *store.Store
	journal *journal.Store
	adapter *persist.Adapter
	base    []domain.Pin
}

func openSession(ctx context.Context) (*session, error) {
	reg, err := category.Load(cfg.CategoriesFile)
	if err != nil {
		return nil, err
	}
	cat, err := reg.Get(categoryID)
	if err != nil {
		return nil, err
	}

	base, err := dataset.Load(cat)
	if err != nil {
		return nil, err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := store.New(dbPath)
	if err != nil {
		return nil, err
	}

	j, adapter, err := persist.Open(ctx, cat, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &session{cat: cat, db: db, journal: j, adapter: adapter, base: base}, nil
}

// Close waits for pending writes, bounded by the flush timeout
func (s *session) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.FlushTimeout)
	defer cancel()
	if err := s.adapter.Close(ctx); err != nil {
		logger.Warn("Pending writes were not flushed", map[string]interface{}{"error": err.Error()})
	}
	s.db.Close()
}

func (s *session) customPins() []domain.Pin {
	return dataset.CustomEntitiesToPins(s.journal.CustomEntities())
}

func (s *session) allPins() []domain.Pin {
	return view.Merge(s.base, s.customPins())
}

// resolve finds a pin by exact id, then by unique id prefix
func (s *session) resolve(id string) (domain.Pin, error) {
	pins := s.allPins()
	if p, ok := view.FindPin(pins, id); ok {
		return p, nil
	}

	var matches []domain.Pin
	for _, p := range pins {
		if strings.HasPrefix(p.ID, id) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Pin{}, fmt.Errorf("entry not found: %s", id)
	case 1:
		return matches[0], nil
	default:
		return domain.Pin{}, fmt.Errorf("ambiguous id %s (%d matches)", id, len(matches))
	}
}

func withSession(fn func(cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(cmd, s, args)
	}
}

func statusIcon(j *journal.Store, id string) string {
	switch {
	case j.IsTried(id):
		return "✓"
	case j.IsWantToTry(id):
		return "♥"
	default:
		return "○"
	}
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
