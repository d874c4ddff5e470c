package main

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"comic_backend/core"
	"comic_backend/db"
	"comic_backend/modelcatalog"
)

func newCatalogCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Query the model compatibility catalog",
		Long: `Query which checkpoints, adapters (LoRAs) and conditioners (ControlNets)
are known and which of them can be combined. The built-in tables are used
unless CATALOG_DB_PATH points at a seeded catalog database.`,
	}
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print as JSON")

	cmd.AddCommand(
		newCatalogCheckpointsCommand(a, &asJSON),
		newCatalogDetectCommand(a, &asJSON),
		newCatalogAdaptersCommand(a, &asJSON),
		newCatalogStackCommand(a, &asJSON),
		newCatalogConditionersCommand(a, &asJSON),
		newCatalogTriggersCommand(a),
		newCatalogSeedCommand(a),
	)
	return cmd
}

func newCatalogCheckpointsCommand(a *app, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "checkpoints",
		Short: "List known checkpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd.Context()); err != nil {
				return err
			}
			list := a.catalog.Checkpoints()
			if *asJSON {
				return writeJSON(a.stdout, list)
			}
			t := newTable(a.stdout, "FILENAME", "NAME", "FAMILY", "DESCRIPTION")
			for _, c := range list {
				t.row(c.Filename, c.Name, c.Family, c.Description)
			}
			return t.flush()
		},
	}
}

func newCatalogDetectCommand(a *app, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <checkpoint>...",
		Short: "Detect the model family of checkpoint filenames",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd.Context()); err != nil {
				return err
			}
			families := make(map[string]modelcatalog.ModelFamily, len(args))
			for _, name := range args {
				families[name] = a.catalog.DetectModelFamily(name)
			}
			if *asJSON {
				return writeJSON(a.stdout, families)
			}
			t := newTable(a.stdout, "CHECKPOINT", "FAMILY", "KNOWN")
			for _, name := range args {
				_, known := a.catalog.Checkpoint(name)
				t.row(name, families[name], known)
			}
			return t.flush()
		},
	}
}

func newCatalogAdaptersCommand(a *app, asJSON *bool) *cobra.Command {
	var categories []string
	var family string
	cmd := &cobra.Command{
		Use:   "adapters <checkpoint>",
		Short: "List adapters compatible with a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd.Context()); err != nil {
				return err
			}

			var override *modelcatalog.ModelFamily
			if family != "" {
				fam, err := modelcatalog.ParseModelFamily(family)
				if err != nil {
					return err
				}
				override = &fam
			}
			cats := make([]modelcatalog.Category, 0, len(categories))
			for _, name := range categories {
				c, err := modelcatalog.ParseCategory(name)
				if err != nil {
					return err
				}
				cats = append(cats, c)
			}

			list := a.catalog.CompatibleAdapters(args[0], override)
			if len(cats) > 0 {
				list = lo.Filter(list, func(e modelcatalog.AdapterEntry, _ int) bool {
					return lo.Contains(cats, e.Category)
				})
			}
			if *asJSON {
				return writeJSON(a.stdout, list)
			}
			return writeAdapterTable(a, list)
		},
	}
	cmd.Flags().StringSliceVar(&categories, "category", nil, "only these categories (style, character, quality, ...)")
	cmd.Flags().StringVar(&family, "family", "", "treat the checkpoint as this family")
	return cmd
}

func writeAdapterTable(a *app, list []modelcatalog.AdapterEntry) error {
	t := newTable(a.stdout, "FILENAME", "CATEGORY", "POSITION", "STRENGTH", "TRIGGERS")
	for _, e := range list {
		t.row(e.Filename, e.Category, e.StackPosition,
			fmt.Sprintf("%.2f (%.2f-%.2f)", e.Strength.Recommended, e.Strength.Min, e.Strength.Max),
			e.TriggerWords)
	}
	return t.flush()
}

func newCatalogStackCommand(a *app, asJSON *bool) *cobra.Command {
	var useCase string
	cmd := &cobra.Command{
		Use:   "stack <checkpoint>",
		Short: "Show the recommended adapter stack for a use case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd.Context()); err != nil {
				return err
			}
			uc, err := modelcatalog.ParseUseCase(useCase)
			if err != nil {
				return err
			}
			stack := a.catalog.RecommendedStack(args[0], uc)
			if *asJSON {
				return writeJSON(a.stdout, stack)
			}
			t := newTable(a.stdout, "#", "ADAPTER", "CATEGORY", "STRENGTH")
			for i, e := range stack {
				t.row(i+1, e.Adapter.Filename, e.Adapter.Category, fmt.Sprintf("%.2f", e.Strength))
			}
			if err := t.flush(); err != nil {
				return err
			}
			if words := a.catalog.ExtractTriggerWords(stack.Names()); len(words) > 0 {
				fmt.Fprintf(a.stdout, "\nTrigger words: %s\n", strings.Join(words, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&useCase, "use-case", string(modelcatalog.UseCaseGeneral), "comic, realistic, anime or general")
	return cmd
}

func newCatalogConditionersCommand(a *app, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "conditioners <checkpoint>",
		Short: "List conditioners usable with a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd.Context()); err != nil {
				return err
			}
			list := a.catalog.CompatibleConditioners(args[0])
			if *asJSON {
				return writeJSON(a.stdout, list)
			}
			t := newTable(a.stdout, "FILENAME", "TYPE", "FAMILY")
			for _, c := range list {
				t.row(c.Filename, c.ConditionType, c.Family)
			}
			return t.flush()
		},
	}
}

func newCatalogTriggersCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "triggers <adapter>...",
		Short: "Print the trigger words of adapters, deduplicated",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(a.stdout, strings.Join(a.catalog.ExtractTriggerWords(args), ", "))
			return err
		},
	}
}

func newCatalogSeedCommand(a *app) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the built-in catalog rows to the catalog database",
		Long: `Write the built-in catalog rows to the catalog database, replacing any rows
already stored. The database is created and migrated when missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				if a.config.CatalogDBPath == "" {
					if _, err := core.EnsureDataDirectory(); err != nil {
						return err
					}
				}
				path = a.config.CatalogPathOrDefault()
			}
			database, err := db.NewDatabase(path)
			if err != nil {
				return err
			}
			defer database.Close()

			store := db.NewCatalogStore(database, a.logger.Named("db"))
			if err := store.Seed(cmd.Context(), modelcatalog.Builtin()); err != nil {
				return err
			}
			seededAt, _, err := store.SeededAt(cmd.Context())
			if err != nil {
				return err
			}
			a.logger.Info("Catalog database seeded", zap.String("path", path))
			_, err = fmt.Fprintf(a.stdout, "Seeded %s at %s\n", path, seededAt.Format("2006-01-02 15:04:05 MST"))
			return err
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "database file (default CATALOG_DB_PATH or the data directory)")
	return cmd
}
