package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"comic_backend/layout"
	"comic_backend/modelcatalog"
	"comic_backend/presets"
)

func newPresetsCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List size, quality and model presets",
	}
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print as JSON")

	cmd.AddCommand(
		newPresetSizesCommand(a, &asJSON),
		newPresetQualitiesCommand(a, &asJSON),
		newPresetModelsCommand(a, &asJSON),
		newPresetCategoriesCommand(a, &asJSON),
		newPresetClosestCommand(a, &asJSON),
	)
	return cmd
}

func newPresetSizesCommand(a *app, asJSON *bool) *cobra.Command {
	var useCase, category string
	cmd := &cobra.Command{
		Use:   "sizes",
		Short: "List size presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sizes := presets.Sizes()
			list := sizes.List()
			if useCase != "" {
				list = sizes.FindForUseCase(useCase)
			}
			if category != "" {
				cat, err := presets.ParseSizeCategory(category)
				if err != nil {
					return err
				}
				list = lo.Filter(list, func(p presets.SizePreset, _ int) bool {
					return presets.CategoryForRatio(p.AspectRatio) == cat
				})
			}
			if *asJSON {
				return writeJSON(a.stdout, list)
			}
			return writeSizeTable(a, list)
		},
	}
	cmd.Flags().StringVar(&useCase, "use-case", "", "only presets suggested for this use (substring match)")
	cmd.Flags().StringVar(&category, "category", "", "only presets in this aspect category")
	return cmd
}

func writeSizeTable(a *app, list []presets.SizePreset) error {
	t := newTable(a.stdout, "ID", "NAME", "RATIO", "SDXL", "FLUX", "SD15", "USES")
	for _, p := range list {
		t.row(p.ID, p.Name, fmt.Sprintf("%.3f", p.AspectRatio),
			dims(p, modelcatalog.FamilySDXL), dims(p, modelcatalog.FamilyFlux), dims(p, modelcatalog.FamilySD15),
			strings.Join(p.SuggestedUses, ", "))
	}
	return t.flush()
}

func dims(p presets.SizePreset, f modelcatalog.ModelFamily) string {
	d, ok := p.DimensionsFor(f)
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

func newPresetQualitiesCommand(a *app, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "qualities",
		Short: "List quality presets from cheapest to most expensive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := presets.Qualities().List()
			if *asJSON {
				return writeJSON(a.stdout, list)
			}
			t := newTable(a.stdout, "ID", "NAME", "STEPS", "CFG", "SAMPLER", "SCHEDULER", "COST", "AREA")
			for _, q := range list {
				t.row(q.ID, q.Name, q.Steps, q.CFG, q.Sampler, q.Scheduler,
					fmt.Sprintf("%.2fx", q.RelativeCost), fmt.Sprintf("%.2fx", q.AreaScale))
			}
			return t.flush()
		},
	}
}

func newPresetModelsCommand(a *app, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List model presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := presets.Models().List()
			if *asJSON {
				return writeJSON(a.stdout, list)
			}
			t := newTable(a.stdout, "ID", "NAME", "CHECKPOINT", "FAMILY")
			for _, m := range list {
				t.row(m.ID, m.Name, m.Checkpoint, m.Family)
			}
			return t.flush()
		},
	}
}

func newPresetCategoriesCommand(a *app, asJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Group size presets by aspect category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := presets.Sizes().GroupByCategory()
			if *asJSON {
				out := make(map[string][]string, len(groups))
				for cat, list := range groups {
					out[cat.String()] = lo.Map(list, func(p presets.SizePreset, _ int) string { return p.ID })
				}
				return writeJSON(a.stdout, out)
			}
			t := newTable(a.stdout, "CATEGORY", "PRESETS")
			for _, cat := range presets.ListSizeCategories() {
				ids := lo.Map(groups[cat], func(p presets.SizePreset, _ int) string { return p.ID })
				t.row(cat, strings.Join(ids, ", "))
			}
			return t.flush()
		},
	}
}

func newPresetClosestCommand(a *app, asJSON *bool) *cobra.Command {
	var tolerance float64
	cmd := &cobra.Command{
		Use:   "closest <ratio>",
		Short: "Find the size preset nearest an aspect ratio",
		Long: `Find the size preset nearest an aspect ratio (width/height). The ratio may
be a decimal such as 0.667 or a fraction such as 2:3 or 1024/1536.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ratio, err := parseRatio(args[0])
			if err != nil {
				return err
			}
			p, ok := presets.Sizes().FindClosest(ratio, tolerance)
			if !ok {
				return fmt.Errorf("no size preset within %.0f%% of ratio %.4f", tolerance*100, ratio)
			}
			if *asJSON {
				return writeJSON(a.stdout, p)
			}
			return writeSizeTable(a, []presets.SizePreset{p})
		},
	}
	cmd.Flags().Float64Var(&tolerance, "tolerance", presets.DefaultTolerance, "maximum relative aspect error")
	return cmd
}

// parseRatio accepts "0.75", "3:4" or "768/1024".
func parseRatio(s string) (float64, error) {
	for _, sep := range []string{":", "/"} {
		w, h, ok := strings.Cut(s, sep)
		if !ok {
			continue
		}
		num, err1 := strconv.ParseFloat(strings.TrimSpace(w), 64)
		den, err2 := strconv.ParseFloat(strings.TrimSpace(h), 64)
		if err1 != nil || err2 != nil || num <= 0 || den <= 0 {
			return 0, fmt.Errorf("invalid aspect ratio %q", s)
		}
		return num / den, nil
	}
	r, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || r <= 0 {
		return 0, fmt.Errorf("invalid aspect ratio %q", s)
	}
	return r, nil
}

func newTemplatesCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List page layout templates, including any loaded from LAYOUT_TEMPLATES_PATH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd.Context()); err != nil {
				return err
			}
			list := a.layout.Templates()
			if asJSON {
				return writeJSON(a.stdout, list)
			}
			t := newTable(a.stdout, "ID", "NAME", "PAGE", "SLOTS")
			for _, tpl := range list {
				ids := lo.Map(tpl.Slots, func(s layout.Slot, _ int) string { return s.ID })
				t.row(tpl.ID, tpl.Name, tpl.PageSize, strings.Join(ids, ", "))
			}
			return t.flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
