package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"comic_backend/composer"
	"comic_backend/modelcatalog"
)

func newComposeCommand(a *app) *cobra.Command {
	var (
		flags          resolveFlags
		preset         string
		images         []string
		conditions     []string
		adapters       []string
		useCase        string
		prompt         string
		negativePrompt string
	)
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Compose a multi-condition generation request and print it as JSON",
		Long: `Compose a generation request from one to five conditions, a resolved
configuration and an adapter stack. Conditions come either from a composition
preset fed with --image, or from repeated --condition type=image[:strength].
The first condition is primary; the others become prompt hints.`,
		Example: `  panelcfg compose --preset pose-depth --image ref.png --prompt "hero lands on a rooftop"
  panelcfg compose --condition pose=pose.png:0.9 --condition depth=scene.png --size comic-panel
  panelcfg compose --condition lineart=sketch.png --use-case comic --adapter detail_tweaker_xl.safetensors:0.4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd.Context()); err != nil {
				return err
			}
			if preset == "" && len(conditions) == 0 {
				return fmt.Errorf("either --preset or --condition is required")
			}

			cfg, err := flags.resolve(cmd, a)
			if err != nil {
				return err
			}

			var recommended modelcatalog.ResolvedAdapterStack
			if useCase != "" {
				uc, err := modelcatalog.ParseUseCase(useCase)
				if err != nil {
					return err
				}
				recommended = a.catalog.RecommendedStack(cfg.Model, uc)
			}
			stack, err := parseAdapters(a.catalog, recommended, adapters)
			if err != nil {
				return err
			}

			req := composer.Request{
				Prompt:         prompt,
				NegativePrompt: negativePrompt,
				Config:         cfg,
				Adapters:       stack,
			}

			var out composer.ComposedRequest
			if preset != "" {
				out, err = a.composer.ComposePreset(preset, images, req)
			} else {
				if req.Conditions, err = parseConditions(conditions); err != nil {
					return err
				}
				out, err = a.composer.Compose(req)
			}
			if err != nil {
				return err
			}
			for _, w := range out.Warnings {
				a.logger.Warn("Composition warning", zap.String("request_id", out.ID), zap.String("warning", w))
			}
			return writeJSON(a.stdout, out)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&preset, "preset", "", "composition preset id")
	cmd.Flags().StringArrayVar(&images, "image", nil, "preset input image; one image feeds every layer")
	cmd.Flags().StringArrayVar(&conditions, "condition", nil, "condition as type=image[:strength], repeatable")
	cmd.Flags().StringArrayVar(&adapters, "adapter", nil, "adapter as filename[:strength], repeatable")
	cmd.Flags().StringVar(&useCase, "use-case", "", "start from the recommended adapter stack for this use case")
	cmd.Flags().StringVar(&prompt, "prompt", "", "positive prompt")
	cmd.Flags().StringVar(&negativePrompt, "negative-prompt", "", "negative prompt")
	cmd.MarkFlagsMutuallyExclusive("preset", "condition")
	cmd.MarkFlagsRequiredTogether("preset", "image")
	return cmd
}

// splitStrength splits "value:0.7" into value and strength. A suffix that
// is not a number belongs to the value, so "C:\img.png" stays whole.
func splitStrength(s string) (string, *float64) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return s, nil
	}
	v, err := strconv.ParseFloat(s[i+1:], 64)
	if err != nil {
		return s, nil
	}
	return s[:i], &v
}

func parseConditions(specs []string) ([]composer.Condition, error) {
	out := make([]composer.Condition, 0, len(specs))
	for _, spec := range specs {
		typeName, rest, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("invalid condition %q: want type=image[:strength]", spec)
		}
		t, err := modelcatalog.ParseConditionType(typeName)
		if err != nil {
			return nil, err
		}
		image, strength := splitStrength(rest)
		out = append(out, composer.Condition{Type: t, SourceImage: image, Strength: strength})
	}
	return out, nil
}

// parseAdapters looks up each filename[:strength] in the catalog and merges
// the result with the recommended stack into one ordered stack. An adapter
// named in both appears once. A missing strength uses the adapter's
// recommended value; an explicit one is clamped to the adapter's range.
func parseAdapters(catalog *modelcatalog.Catalog, recommended modelcatalog.ResolvedAdapterStack, specs []string) (modelcatalog.ResolvedAdapterStack, error) {
	entries := lo.Map(recommended, func(e modelcatalog.StackEntry, _ int) modelcatalog.AdapterEntry { return e.Adapter })
	strengths := make(map[string]float64)
	for _, spec := range specs {
		name, strength := splitStrength(spec)
		entry, ok := catalog.Adapter(name)
		if !ok {
			return nil, fmt.Errorf("unknown adapter: %s", name)
		}
		entries = append(entries, entry)
		if strength != nil {
			strengths[entry.Filename] = entry.Strength.Clamp(*strength)
		}
	}
	entries = lo.UniqBy(entries, func(e modelcatalog.AdapterEntry) string { return e.Filename })

	stack := modelcatalog.BuildStack(entries)
	for i := range stack {
		if s, ok := strengths[stack[i].Adapter.Filename]; ok {
			stack[i].Strength = s
		}
	}
	return stack, nil
}

func newConditionsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conditions",
		Short: "Condition types, strengths, presets and derivation helpers",
	}
	cmd.AddCommand(
		newConditionStrengthsCommand(a),
		newConditionPresetsCommand(a),
		newConditionDeriveCommand(a),
		newConditionMaskCommand(a),
	)
	return cmd
}

func newConditionStrengthsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "strengths",
		Short: "Show the recommended strength range per condition type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := newTable(a.stdout, "TYPE", "MIN", "DEFAULT", "MAX", "HINT", "NOTES")
			for _, ct := range modelcatalog.ListConditionTypes() {
				r := composer.RecommendedStrength(ct)
				t.row(ct, r.Min, r.Default, r.Max, composer.AccuracyHint(ct), r.Notes)
			}
			return t.flush()
		},
	}
}

func newConditionPresetsCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List composition presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := composer.ListPresets()
			if asJSON {
				return writeJSON(a.stdout, list)
			}
			t := newTable(a.stdout, "ID", "NAME", "LAYERS", "DESCRIPTION")
			for _, p := range list {
				layers := make([]string, len(p.Layers))
				for i, l := range p.Layers {
					layers[i] = fmt.Sprintf("%s@%.2f", l.Type, l.Strength)
				}
				t.row(p.ID, p.Name, strings.Join(layers, " + "), p.Description)
			}
			return t.flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newConditionDeriveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "derive <type> <image>",
		Short: "Describe the preprocessor that derives a condition from an image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := modelcatalog.ParseConditionType(args[0])
			if err != nil {
				return err
			}
			derived, err := composer.DeriveCondition(t, args[1])
			if err != nil {
				return err
			}
			return writeJSON(a.stdout, derived)
		},
	}
}

func newConditionMaskCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mask <category>",
		Short: "Describe the automatic mask for a category (face, hands, person, background)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := composer.AutoMask(composer.MaskCategory(args[0]))
			if err != nil {
				return err
			}
			return writeJSON(a.stdout, spec)
		},
	}
}
