package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pbaille/tastemap/internal/category"
	"github.com/pbaille/tastemap/internal/dataset"
	"github.com/pbaille/tastemap/internal/domain"
	"github.com/pbaille/tastemap/internal/journal"
	"github.com/pbaille/tastemap/internal/view"
	"github.com/spf13/cobra"
)

func pinsCmd() *cobra.Command {
	var (
		mode         string
		prefecture   string
		region       string
		genre        string
		hideExcluded bool
		limit        int
	)

	cmd := &cobra.Command{
		Use:   "pins",
		Short: "List spots with the current filters",
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			m, ok := domain.ParseFilterMode(mode)
			if !ok {
				return fmt.Errorf("unknown mode: %s (all, tried, wantToTry)", mode)
			}

			if region != "" {
				r, ok := dataset.FindRegion(region)
				if !ok {
					return fmt.Errorf("unknown region: %s", region)
				}
				switch {
				case len(r.Prefectures) == 1:
					prefecture = r.Prefectures[0]
				case prefecture == "":
					fmt.Printf("%s: choose one of %s with --prefecture\n", r.Name, strings.Join(r.Prefectures, " "))
				case dataset.RegionOf(prefecture) != r.Name:
					return fmt.Errorf("%s is not in %s", prefecture, r.Name)
				}
			}
			if genre != "" && !s.cat.IsGenre(genre) {
				return fmt.Errorf("unknown genre for %s: %s", s.cat.ID, genre)
			}

			j := s.journal
			j.SetFilterMode(m)
			j.SetPrefectureFilter(prefecture)
			j.SetGenreFilter(genre)
			j.SetHideExcluded(hideExcluded)

			custom := s.customPins()
			f := j.Filter()
			counts := view.Counts(s.base, custom, j, f)
			pins := view.DerivePins(s.base, custom, j, f)

			fmt.Printf("all %d  tried %d  want %d  (%d excluded)\n", counts.All, counts.Tried, counts.WantToTry, counts.Excluded)
			if len(pins) == 0 {
				fmt.Println("No spots match.")
				return nil
			}

			for i, p := range pins {
				if limit > 0 && i >= limit {
					fmt.Printf("... %d more\n", len(pins)-limit)
					break
				}
				fmt.Printf("%s %s  %s  %s\n", statusIcon(j, p.ID), p.ID, truncate(p.Name, 30), pinLabel(p))
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "all", "all, tried or wantToTry")
	cmd.Flags().StringVarP(&prefecture, "prefecture", "p", "", "only this prefecture")
	cmd.Flags().StringVarP(&region, "region", "r", "", "area group (see 'regions')")
	cmd.Flags().StringVarP(&genre, "genre", "g", "", "only this genre")
	cmd.Flags().BoolVar(&hideExcluded, "hide-excluded", false, "hide excluded spots")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of spots to show (0 = all)")
	return cmd
}

func pinLabel(p domain.Pin) string {
	parts := []string{p.Type}
	if p.Genre != "" {
		parts = append(parts, p.Genre)
	}
	if p.Prefecture != "" {
		parts = append(parts, p.Prefecture)
	}
	if p.IsCustom {
		parts = append(parts, "custom")
	}
	return strings.Join(parts, " · ")
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show spot details",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			p, err := s.resolve(args[0])
			if err != nil {
				return err
			}
			j := s.journal

			fmt.Printf("ID:      %s\n", p.ID)
			fmt.Printf("Name:    %s (%s)\n", p.Name, p.NameReading)
			fmt.Printf("Kind:    %s\n", pinLabel(p))
			if p.Address != "" {
				fmt.Printf("Address: %s\n", p.Address)
			}
			fmt.Printf("Coords:  %.5f, %.5f\n", p.Lat, p.Lng)
			if p.Characteristics != "" {
				fmt.Printf("Notes:   %s\n", p.Characteristics)
			}

			if rec, ok := j.TriedRecord(p.ID); ok {
				fmt.Printf("Tried:   %s\n", rec.TriedAt.Local().Format("2006-01-02 15:04"))
			}
			if j.IsWantToTry(p.ID) {
				fmt.Println("Want to try")
			}
			if j.IsExcluded(p.ID) {
				fmt.Println("Excluded")
			}

			if memo, ok := j.Memo(p.ID); ok {
				fmt.Printf("\nMemo (updated %s):\n", memo.UpdatedAt.Local().Format("2006-01-02 15:04"))
				if memo.Rating != nil {
					fmt.Printf("  %s\n", strings.Repeat("★", *memo.Rating)+strings.Repeat("☆", domain.MaxRating-*memo.Rating))
				}
				if memo.Note != "" {
					fmt.Printf("  %s\n", memo.Note)
				}
				for _, uri := range memo.Photos {
					fmt.Printf("  - %s\n", uri)
				}
			}
			return nil
		}),
	}
}

func markCmd(use, short string, apply func(*journal.Store, string)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			p, err := s.resolve(args[0])
			if err != nil {
				return err
			}
			apply(s.journal, p.ID)
			fmt.Printf("%s %s  %s\n", statusIcon(s.journal, p.ID), p.ID, p.Name)
			return nil
		}),
	}
}

func excludedCmd() *cobra.Command {
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "excluded",
		Short: "List excluded spots",
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			if clearAll {
				s.journal.ClearAllExcluded()
				fmt.Println("Cleared all exclusions.")
				return nil
			}

			ids := s.journal.ExcludedIDs()
			if len(ids) == 0 {
				fmt.Println("Nothing excluded.")
				return nil
			}
			pins := s.allPins()
			for _, id := range ids {
				name := "(unknown)"
				if p, ok := view.FindPin(pins, id); ok {
					name = p.Name
				}
				fmt.Printf("%s  %s\n", id, name)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&clearAll, "clear", false, "remove every exclusion")
	return cmd
}

func memoCmd() *cobra.Command {
	var rating int

	cmd := &cobra.Command{
		Use:   "memo [id] [note]",
		Short: "Write a note and rating for a spot",
		Args:  cobra.MinimumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			p, err := s.resolve(args[0])
			if err != nil {
				return err
			}
			note := strings.Join(args[1:], " ")

			var r *int
			if cmd.Flags().Changed("rating") {
				if rating < domain.MinRating || rating > domain.MaxRating {
					return fmt.Errorf("rating must be between %d and %d", domain.MinRating, domain.MaxRating)
				}
				r = &rating
			}
			s.journal.SetMemo(p.ID, note, r)
			fmt.Printf("Saved memo for %s\n", p.Name)
			return nil
		}),
	}

	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "rating from 1 to 5")
	return cmd
}

func photoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photo",
		Short: "Manage photos attached to a spot",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add [id] [path]",
		Short: "Attach a photo file",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			p, err := s.resolve(args[0])
			if err != nil {
				return err
			}
			added, err := s.journal.AttachPhoto(cmd.Context(), p.ID, fileSource(args[1]))
			if err != nil {
				return err
			}
			if !added {
				fmt.Printf("Not added: %s already has %d photos.\n", p.Name, domain.MaxPhotos)
				return nil
			}
			fmt.Printf("Added photo %d/%d to %s\n", len(s.journal.Photos(p.ID)), domain.MaxPhotos, p.Name)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm [id] [uri]",
		Short: "Detach a photo (the file is kept)",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			p, err := s.resolve(args[0])
			if err != nil {
				return err
			}
			s.journal.RemovePhoto(p.ID, args[1])
			fmt.Printf("%d photos left on %s\n", len(s.journal.Photos(p.ID)), p.Name)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ls [id]",
		Short: "List photos of a spot",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			p, err := s.resolve(args[0])
			if err != nil {
				return err
			}
			photos := s.journal.Photos(p.ID)
			if len(photos) == 0 {
				fmt.Println("No photos.")
				return nil
			}
			for i, uri := range photos {
				marker := " "
				if i == 0 {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, uri)
			}
			return nil
		}),
	})

	return cmd
}

// fileSource turns a local path into a file:// URI
func fileSource(path string) journal.PhotoSource {
	return journal.PhotoSourceFunc(func(ctx context.Context) (string, bool, error) {
		if strings.TrimSpace(path) == "" {
			return "", false, nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(abs); err != nil {
			return "", false, fmt.Errorf("photo file: %w", err)
		}
		return "file://" + filepath.ToSlash(abs), true, nil
	})
}

func customCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "custom",
		Short: "Manage spots you added yourself",
	}
	cmd.AddCommand(customAddCmd())
	cmd.AddCommand(customUpdateCmd())

	cmd.AddCommand(&cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a custom spot and everything recorded about it",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			if !s.journal.IsCustomID(args[0]) {
				return fmt.Errorf("%s is not a custom spot", args[0])
			}
			if _, ok := s.journal.CustomEntity(args[0]); !ok {
				return fmt.Errorf("entry not found: %s", args[0])
			}
			s.journal.DeleteCustomEntity(args[0])
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List custom spots",
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			entities := s.journal.CustomEntities()
			if len(entities) == 0 {
				fmt.Println("No custom spots yet. Use 'tastemap custom add' to create one.")
				return nil
			}
			for _, e := range entities {
				fmt.Printf("%s  %s  %s\n", e.ID, truncate(e.Name, 30), e.CreatedAt.Local().Format("2006-01-02"))
			}
			return nil
		}),
	})
	return cmd
}

func customAddCmd() *cobra.Command {
	var f domain.CustomFields

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a spot that is not in the dataset",
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
				return fmt.Errorf("location is required (--lat and --lng)")
			}
			id, err := s.journal.AddCustomEntity(f)
			if err != nil {
				return err
			}
			e, _ := s.journal.CustomEntity(id)
			fmt.Printf("Added %s: %s (%s)\n", id, e.Name, dataset.PrefectureFromCoords(e.Lat, e.Lng))
			return nil
		}),
	}

	cmd.Flags().StringVar(&f.Name, "name", "", "spot name")
	cmd.Flags().StringVar(&f.Type, "type", "", "spot type")
	cmd.Flags().StringVar(&f.Genre, "genre", "", "genre, where the category has one")
	cmd.Flags().Float64Var(&f.Lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&f.Lng, "lng", 0, "longitude")
	cmd.Flags().StringVar(&f.Address, "address", "", "free-text address")
	cmd.MarkFlagRequired("name")
	return cmd
}

func customUpdateCmd() *cobra.Command {
	var (
		name, typ, genre, address string
		lat, lng                  float64
	)

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Edit a custom spot",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			if _, ok := s.journal.CustomEntity(args[0]); !ok {
				return fmt.Errorf("entry not found: %s", args[0])
			}

			var u domain.CustomUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				u.Name = &name
			}
			if flags.Changed("type") {
				u.Type = &typ
			}
			if flags.Changed("genre") {
				u.Genre = &genre
			}
			if flags.Changed("lat") {
				u.Lat = &lat
			}
			if flags.Changed("lng") {
				u.Lng = &lng
			}
			if flags.Changed("address") {
				u.Address = &address
			}
			s.journal.UpdateCustomEntity(args[0], u)

			e, _ := s.journal.CustomEntity(args[0])
			fmt.Printf("Updated %s: %s\n", e.ID, e.Name)
			return nil
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "spot name")
	cmd.Flags().StringVar(&typ, "type", "", "spot type")
	cmd.Flags().StringVar(&genre, "genre", "", "genre")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude")
	cmd.Flags().StringVar(&address, "address", "", "free-text address")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show journal totals",
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			j := s.journal
			fmt.Printf("Category:     %s (%s)\n", s.cat.ID, s.cat.Label)
			fmt.Printf("Spots:        %d (%d custom)\n", len(s.base)+len(j.CustomEntities()), len(j.CustomEntities()))
			fmt.Printf("Tried:        %d\n", j.TriedCount())
			fmt.Printf("Want to try:  %d\n", j.WantToTryCount())
			fmt.Printf("Memos:        %d\n", len(j.Memos()))
			fmt.Printf("Excluded:     %d\n", j.ExcludedCount())
			return nil
		}),
	}
}

func facetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "Count spots per prefecture and genre",
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			pins := s.allPins()

			fmt.Println("Prefectures:")
			for _, f := range view.PrefectureFacets(pins) {
				fmt.Printf("  %-6s %d\n", f.Value, f.Count)
			}
			if s.cat.HasGenre() {
				fmt.Println("Genres:")
				for _, f := range view.GenreFacets(pins) {
					fmt.Printf("  %-8s %d\n", f.Value, f.Count)
				}
			}
			return nil
		}),
	}
}

func regionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List area groups and their prefectures",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, r := range dataset.Regions() {
				fmt.Printf("%s: %s\n", r.Name, strings.Join(r.Prefectures, " "))
			}
			return nil
		},
	}
}

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List catalog categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := category.Load(cfg.CategoriesFile)
			if err != nil {
				return err
			}
			for _, id := range reg.IDs() {
				c, _ := reg.Get(id)
				marker := " "
				if id == categoryID {
					marker = "*"
				}
				fmt.Printf("%s %-8s %s  types: %s\n", marker, c.ID, c.Label, strings.Join(c.Types, ", "))
			}
			return nil
		},
	}
}

func resetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget everything saved for the current category",
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			if !yes {
				return fmt.Errorf("this deletes the %s journal; pass --yes to confirm", s.cat.ID)
			}
			ctx := cmd.Context()
			keys, err := s.db.Keys(ctx)
			if err != nil {
				return err
			}
			removed := 0
			for _, key := range keys {
				if key != s.cat.StorageKey && !strings.HasPrefix(key, s.cat.StorageKey+":") {
					continue
				}
				if err := s.db.Delete(ctx, key); err != nil {
					return err
				}
				removed++
			}
			fmt.Printf("Removed %d keys for %s\n", removed, s.cat.ID)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
