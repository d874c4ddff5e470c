package validation

import (
	"context"
	"errors"
	"fmt"

	"comic_backend/composer"
	"comic_backend/core"
	"comic_backend/db"
	"comic_backend/genconfig"
	"comic_backend/layout"
	"comic_backend/modelcatalog"
	"comic_backend/presets"
	"comic_backend/sizing"
)

// CheckResult is the outcome of a single check.
type CheckResult struct {
	Status  StepStatus
	Message string
	Error   error
}

func pass(format string, args ...any) CheckResult {
	return CheckResult{Status: StepPassed, Message: fmt.Sprintf(format, args...)}
}

func warn(format string, args ...any) CheckResult {
	return CheckResult{Status: StepWarning, Message: fmt.Sprintf(format, args...)}
}

func skip(format string, args ...any) CheckResult {
	return CheckResult{Status: StepSkipped, Message: fmt.Sprintf(format, args...)}
}

func fail(message string, err error) CheckResult {
	return CheckResult{Status: StepFailed, Message: message, Error: err}
}

// CheckEnvFile reports whether the dotenv file exists. A missing optional
// file is a warning since every setting can come from the environment.
func CheckEnvFile(path string, required bool) CheckResult {
	if path == "" {
		path = core.DefaultEnvFile
	}
	err := CheckFileExists(path)
	switch {
	case err == nil:
		return pass("%s found", path)
	case isNotExist(err) && !required:
		return warn("%s not found, using process environment", path)
	case isNotExist(err):
		return fail("environment file missing", core.ErrEnvFileMissing(path))
	default:
		return fail("environment file unreadable", err)
	}
}

// CheckSizingStrategy verifies that name selects a sizing strategy.
func CheckSizingStrategy(name string) CheckResult {
	s, err := sizing.ByName(name, layout.NewRegistry(), presets.Qualities())
	if err != nil {
		return fail("unknown sizing strategy", core.ErrInvalidStrategy(name, core.ValidStrategies))
	}
	return pass("%s", s.Name())
}

// CheckSizePresets runs the size catalog invariants: aspect tolerance, grid
// alignment and the megapixel band.
func CheckSizePresets(sizes *presets.SizeCatalog) CheckResult {
	if err := sizes.Validate(); err != nil {
		return fail("size presets violate invariants", err)
	}
	return pass("%d presets", len(sizes.List()))
}

// CheckQualityPresets verifies that steps and pixel budget never fall as
// the relative cost rises.
func CheckQualityPresets(qualities *presets.QualityCatalog) CheckResult {
	list := qualities.List()
	if len(list) == 0 {
		return fail("no quality presets", errors.New("quality catalog is empty"))
	}
	for i := 1; i < len(list); i++ {
		prev, cur := list[i-1], list[i]
		if cur.Steps < prev.Steps || cur.AreaScale < prev.AreaScale {
			return fail("quality presets out of order",
				fmt.Errorf("%s costs more than %s but has fewer steps or a smaller area", cur.ID, prev.ID))
		}
	}
	return pass("%d presets, %s to %s", len(list), list[0].ID, list[len(list)-1].ID)
}

// CheckLayoutTemplates loads the template file into a scratch registry. An
// empty path is skipped.
func CheckLayoutTemplates(path string) CheckResult {
	if path == "" {
		return skip("%s not set, built-in templates only", core.EnvLayoutTemplatesPath)
	}
	if err := CheckFileExists(path); err != nil {
		if isNotExist(err) {
			return fail("template file missing", core.ErrTemplatesNotFound(path))
		}
		return fail("template file unreadable", err)
	}
	registry := layout.NewRegistry()
	n, err := registry.LoadFile(path)
	if err != nil {
		return fail("template file invalid", core.ErrInvalidTemplates(path, err.Error()))
	}
	return pass("%d templates loaded, %d total", n, len(registry.Templates()))
}

// CheckCatalogDatabase opens the catalog store read-only in intent: schema
// migrations run, rows are not seeded. It returns the stored catalog, or
// nil when the built-in catalog applies.
func CheckCatalogDatabase(ctx context.Context, path string) (CheckResult, *modelcatalog.Catalog) {
	if path == "" {
		return skip("%s not set, built-in catalog", core.EnvCatalogDBPath), nil
	}
	database, err := db.NewDatabase(path)
	if err != nil {
		return fail("cannot open catalog database", core.ErrCatalogUnavailable(path, err.Error())), nil
	}
	defer database.Close()

	c, err := db.NewCatalogStore(database, nil).Load(ctx)
	if errors.Is(err, db.ErrEmptyCatalog) {
		return warn("store is empty, built-in rows are seeded on first use"), nil
	}
	if err != nil {
		return fail("cannot read catalog database", core.ErrCatalogUnavailable(path, err.Error())), nil
	}
	return pass("%d checkpoints, %d adapters, %d conditioners",
		len(c.Checkpoints()), len(c.Adapters()), len(c.Conditioners())), c
}

// CheckModelCatalog validates catalog rows and warns when the default model
// or a model preset names a checkpoint the catalog does not list.
func CheckModelCatalog(c *modelcatalog.Catalog, models *presets.ModelPresetCatalog, defaultModel string) CheckResult {
	if err := c.Validate(); err != nil {
		return fail("catalog rows violate invariants", err)
	}
	var missing []string
	if _, ok := c.Checkpoint(defaultModel); !ok {
		missing = append(missing, fmt.Sprintf("default model %s (detected as %s)", defaultModel, c.DetectModelFamily(defaultModel)))
	}
	for _, p := range models.List() {
		if _, ok := c.Checkpoint(p.Checkpoint); !ok {
			missing = append(missing, fmt.Sprintf("model preset %s (%s)", p.ID, p.Checkpoint))
		}
	}
	if len(missing) > 0 {
		return warn("not in catalog: %v", missing)
	}
	return pass("%d checkpoints, default %s is %s", len(c.Checkpoints()), defaultModel, c.DetectModelFamily(defaultModel))
}

// CheckCompositionPresets composes every composition preset against the
// default configuration and fails on the first error. Composer warnings,
// such as type substitutions, are counted but do not fail the check.
func CheckCompositionPresets(c *modelcatalog.Catalog, defaultModel string) CheckResult {
	engine := genconfig.New(genconfig.WithCatalog(c), genconfig.WithDefaultModel(defaultModel))
	cfg, err := engine.Resolve(genconfig.ResolveOptions{})
	if err != nil {
		return fail("cannot resolve default configuration", err)
	}

	comp := composer.New(composer.WithCatalog(c), composer.WithIDFunc(func() string { return "validation" }))
	warnings := 0
	list := composer.ListPresets()
	for _, p := range list {
		req, err := comp.ComposePreset(p.ID, []string{"validation.png"}, composer.Request{Prompt: "validation", Config: cfg})
		if err != nil {
			return fail(fmt.Sprintf("preset %s does not compose", p.ID), err)
		}
		warnings += len(req.Warnings)
	}
	return pass("%d presets compose, %d composer warnings", len(list), warnings)
}
