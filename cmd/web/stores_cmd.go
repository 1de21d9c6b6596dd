package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"finitefield.org/mall-web/internal/config"
	"finitefield.org/mall-web/internal/directory"
	"finitefield.org/mall-web/internal/i18n"
	"finitefield.org/mall-web/internal/observability"
	"finitefield.org/mall-web/internal/prefs"
)

type storesFlags struct {
	search        string
	category      string
	floor         int
	view          string
	lang          string
	onlyNew       bool
	promotions    bool
	loyalty       bool
	clearCategory bool
	clearFloor    bool
}

func newStoresCmd() *cobra.Command {
	var f storesFlags
	cmd := &cobra.Command{
		Use:   "stores",
		Short: "Query the store directory from the terminal",
		Long: `Prints the filtered store directory as a table.

Category, floor and view flags are saved to the configured preference
backend, so a later run without flags restores them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runStores(cmd.Context(), cfg, cmd, f, cmd.OutOrStdout())
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.search, "search", "s", "", "case-insensitive name search")
	fl.StringVar(&f.category, "category", "", "category key, e.g. sportswear")
	fl.IntVar(&f.floor, "floor", 0, "floor number")
	fl.StringVar(&f.view, "view", "", "view mode: list or map")
	fl.StringVar(&f.lang, "lang", "", "language for category labels")
	fl.BoolVar(&f.onlyNew, "new", false, "only new stores")
	fl.BoolVar(&f.promotions, "promotions", false, "only stores with promotions")
	fl.BoolVar(&f.loyalty, "loyalty", false, "only stores with a loyalty program")
	fl.BoolVar(&f.clearCategory, "clear-category", false, "remove the saved category filter")
	fl.BoolVar(&f.clearFloor, "clear-floor", false, "remove the saved floor filter")
	return cmd
}

func runStores(ctx context.Context, cfg config.Config, cmd *cobra.Command, f storesFlags, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	bundle, err := i18n.Default(cfg.I18n.Fallback, cfg.I18n.Supported)
	if err != nil {
		return err
	}
	store, err := prefs.Open(ctx, prefs.Config{
		Backend:     cfg.Prefs.Backend,
		SQLitePath:  cfg.Prefs.SQLitePath,
		RedisURL:    cfg.Prefs.RedisURL,
		RedisPrefix: cfg.Prefs.RedisPrefix,
		TTL:         cfg.Prefs.TTL,
	})
	if err != nil {
		return fmt.Errorf("open preference store: %w", err)
	}
	defer store.Close()

	st := directory.New(ctx, directory.Options{
		Catalog: directory.DemoCatalog(),
		Loaded:  true,
		Storage: store,
		Logger:  logger,
	})
	defer st.Close()

	changed := cmd.Flags().Changed
	switch {
	case f.clearCategory:
		st.SetActiveCategory("")
	case changed("category"):
		st.SetActiveCategory(directory.Category(f.category))
	}
	switch {
	case f.clearFloor:
		st.SetActiveFloor(0)
	case changed("floor"):
		st.SetActiveFloor(f.floor)
	}
	if changed("view") {
		st.SetViewMode(directory.ParseViewMode(f.view))
	}
	st.SetSearchTerm(f.search)
	if f.onlyNew {
		st.ToggleShowOnlyNew()
	}
	if f.promotions {
		st.ToggleShowOnlyWithPromotions()
	}
	if f.loyalty {
		st.ToggleShowOnlyWithLoyalty()
	}

	lang := bundle.Normalize(f.lang)
	return printStores(out, bundle, lang, st.Snapshot())
}

func printStores(out io.Writer, bundle *i18n.Bundle, lang string, snap directory.Snapshot) error {
	p := snap.Preferences
	category, floor := "-", "-"
	if p.ActiveCategory != "" {
		category = bundle.T(lang, p.ActiveCategory.LabelKey())
	}
	if p.ActiveFloor != 0 {
		floor = fmt.Sprint(p.ActiveFloor)
	}
	fmt.Fprintf(out, "category: %s  floor: %s  view: %s\n", category, floor, p.ViewMode)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tFLOOR\tFLAGS")
	for _, s := range snap.Filtered {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", s.ID, s.Name, bundle.T(lang, s.Category.LabelKey()), s.Floor, storeFlags(s))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%d of %d stores\n", len(snap.Filtered), len(snap.Stores))
	return err
}

func storeFlags(s directory.Store) string {
	var flags []string
	if s.IsNew {
		flags = append(flags, "new")
	}
	if s.HasPromotions {
		flags = append(flags, "promo")
	}
	if s.HasLoyaltyProgram {
		flags = append(flags, "loyalty")
	}
	if s.TemporarilyClosed {
		flags = append(flags, "closed")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}
