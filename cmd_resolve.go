package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"comic_backend/genconfig"
	"comic_backend/modelcatalog"
	"comic_backend/sizing"
)

// resolveFlags are the resolution inputs shared by resolve and compose.
type resolveFlags struct {
	size, quality, modelPreset string
	template, slot, page       string
	panel                      string
	strategy                   string

	width, height, steps int
	cfg                  float64
	sampler, scheduler   string
	model, family        string
}

func (f *resolveFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.size, "size", "", "size preset id")
	fs.StringVar(&f.quality, "quality", "", "quality preset id (default standard)")
	fs.StringVar(&f.modelPreset, "model-preset", "", "model preset id")
	fs.StringVar(&f.template, "template", "", "layout template id; requires --slot")
	fs.StringVar(&f.slot, "slot", "", "slot id within --template")
	fs.StringVar(&f.page, "page", "", "page size id the template is printed on")
	fs.StringVar(&f.panel, "panel", "", "resolve a panel from the --panels file instead of presets")
	fs.StringVar(&f.strategy, "strategy", "", "sizing strategy for this call (slot-aware or context-free)")

	fs.IntVar(&f.width, "width", 0, "width override")
	fs.IntVar(&f.height, "height", 0, "height override")
	fs.IntVar(&f.steps, "steps", 0, "steps override")
	fs.Float64Var(&f.cfg, "cfg", 0, "CFG scale override")
	fs.StringVar(&f.sampler, "sampler", "", "sampler override")
	fs.StringVar(&f.scheduler, "scheduler", "", "scheduler override")
	fs.StringVar(&f.model, "model", "", "checkpoint override")
	fs.StringVar(&f.family, "family", "", "model family override")

	cmd.MarkFlagsRequiredTogether("template", "slot")
	cmd.MarkFlagsMutuallyExclusive("panel", "template")
	cmd.MarkFlagsMutuallyExclusive("panel", "size")
}

// overrides builds the override set from the flags the user actually set,
// so an explicit zero still reaches validation.
func (f *resolveFlags) overrides(cmd *cobra.Command) (*genconfig.Overrides, error) {
	changed := cmd.Flags().Changed
	ov := &genconfig.Overrides{}
	if changed("width") {
		ov.Width = &f.width
	}
	if changed("height") {
		ov.Height = &f.height
	}
	if changed("steps") {
		ov.Steps = &f.steps
	}
	if changed("cfg") {
		ov.CFG = &f.cfg
	}
	if changed("sampler") {
		ov.Sampler = &f.sampler
	}
	if changed("scheduler") {
		ov.Scheduler = &f.scheduler
	}
	if changed("model") {
		ov.Model = &f.model
	}
	if changed("family") {
		fam, err := modelcatalog.ParseModelFamily(f.family)
		if err != nil {
			return nil, err
		}
		ov.Family = &fam
	}
	return ov, nil
}

// resolve runs the engine for the flags. The app must be set up.
func (f *resolveFlags) resolve(cmd *cobra.Command, a *app) (genconfig.ResolvedConfig, error) {
	ov, err := f.overrides(cmd)
	if err != nil {
		return genconfig.ResolvedConfig{}, err
	}

	var cfg genconfig.ResolvedConfig
	if f.panel != "" {
		cfg, err = a.engine.ConfigForPanel(cmd.Context(), f.panel, ov)
	} else {
		opts := genconfig.ResolveOptions{
			SizePreset:    f.size,
			QualityPreset: f.quality,
			ModelPreset:   f.modelPreset,
			Overrides:     ov,
		}
		if f.template != "" {
			opts.Slot = &genconfig.SlotRef{TemplateID: f.template, SlotID: f.slot, PageSize: f.page}
		}
		if f.strategy != "" {
			if opts.Strategy, err = a.strategyByName(f.strategy); err != nil {
				return genconfig.ResolvedConfig{}, err
			}
		}
		cfg, err = a.engine.Resolve(opts)
	}
	if err != nil {
		return genconfig.ResolvedConfig{}, err
	}
	a.logger.Debug("Configuration resolved", zap.Object("config", cfg))
	return cfg, nil
}

func newResolveCommand(a *app) *cobra.Command {
	var flags resolveFlags
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a generation configuration and print it as JSON",
		Long: `Resolve a generation configuration from presets, an optional layout slot
and explicit overrides. Layers apply in order: model default, model preset,
size preset, quality preset, slot, overrides. The output records the source
of every field.`,
		Example: `  panelcfg resolve --size comic-panel --quality high
  panelcfg resolve --template six-grid --slot row1-left --page us-comic --model-preset anime
  panelcfg resolve --panels panels.yaml --panel p-12 --steps 40`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd.Context()); err != nil {
				return err
			}
			cfg, err := flags.resolve(cmd, a)
			if err != nil {
				return err
			}
			return writeJSON(a.stdout, cfg)
		},
	}
	flags.register(cmd)
	return cmd
}

func newSlotCommand(a *app) *cobra.Command {
	var family, quality, page string
	cmd := &cobra.Command{
		Use:   "slot <template> <slot>",
		Short: "Compute slot-aware dimensions for one layout slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd.Context()); err != nil {
				return err
			}
			fam, err := modelcatalog.ParseModelFamily(family)
			if err != nil {
				return err
			}
			dims, err := a.engine.DimensionsForSlot(args[0], args[1], sizing.Options{
				Family:   fam,
				Quality:  quality,
				PageSize: page,
			})
			if err != nil {
				return err
			}
			return writeJSON(a.stdout, dims)
		},
	}
	cmd.Flags().StringVar(&family, "family", modelcatalog.DefaultFamily.String(), "model family")
	cmd.Flags().StringVar(&quality, "quality", "", "quality preset id")
	cmd.Flags().StringVar(&page, "page", "", "page size id")
	return cmd
}
