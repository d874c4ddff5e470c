package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"comic_backend/composer"
	"comic_backend/core"
	"comic_backend/db"
	"comic_backend/genconfig"
	"comic_backend/layout"
	"comic_backend/logging"
	"comic_backend/modelcatalog"
	"comic_backend/presets"
	"comic_backend/sizing"
)

// app is the state shared by every command of one invocation. Commands call
// loadConfig before doing anything and setup before touching the engine.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// flags
	envFile     string
	envRequired bool
	panelsFile  string

	config   *core.Config
	logger   *logging.Logger
	layout   *layout.Registry
	catalog  *modelcatalog.Catalog
	database *db.Database
	engine   *genconfig.Engine
	composer *composer.Composer
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:  stdout,
		stderr:  stderr,
		envFile: core.DefaultEnvFile,
		logger:  logging.NewNopLogger(),
	}
}

// loadConfig loads the env file, reads the configuration and builds the
// logger. Console log output goes to stderr so stdout stays parseable.
func (a *app) loadConfig() error {
	if a.config != nil {
		return nil
	}
	if err := core.LoadEnvFile(a.envFile, a.envRequired); err != nil {
		return err
	}
	config, err := core.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewLoggerWithOptions(config.LoggerOptions(zapcore.AddSync(a.stderr)))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.config = config
	a.logger = logger
	a.logger.Debug("Configuration loaded",
		zap.String("default_model", config.DefaultModel),
		zap.String("sizing_strategy", config.SizingStrategy),
		zap.String("layout_templates", config.LayoutTemplatesPath),
		zap.String("catalog_db", config.CatalogDBPath),
		zap.Bool("dev_mode", config.DevMode),
	)
	return nil
}

// setup builds the layout registry, catalog, engine and composer. It
// installs the engine as the process default.
func (a *app) setup(ctx context.Context) error {
	if a.engine != nil {
		return nil
	}
	if err := a.loadConfig(); err != nil {
		return err
	}

	registry := layout.NewRegistry()
	if path := a.config.LayoutTemplatesPath; path != "" {
		n, err := registry.LoadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return core.ErrTemplatesNotFound(path)
		case err != nil:
			return core.ErrInvalidTemplates(path, err.Error())
		}
		a.logger.Info("Layout templates loaded", zap.String("path", path), zap.Int("templates", n))
	}

	catalog := modelcatalog.Builtin()
	if path := a.config.CatalogDBPath; path != "" {
		database, err := db.NewDatabase(path)
		if err != nil {
			return core.ErrCatalogUnavailable(path, err.Error())
		}
		a.database = database
		catalog, err = db.NewCatalogStore(database, a.logger.Named("db")).LoadOrSeed(ctx, catalog)
		if err != nil {
			return core.ErrCatalogUnavailable(path, err.Error())
		}
	}

	strategy, err := sizing.ByName(a.config.SizingStrategy, registry, presets.Qualities())
	if err != nil {
		return core.ErrInvalidStrategy(a.config.SizingStrategy, core.ValidStrategies)
	}

	opts := []genconfig.Option{
		genconfig.WithLogger(a.logger.Named("genconfig")),
		genconfig.WithCatalog(catalog),
		genconfig.WithLayout(registry),
		genconfig.WithDefaultModel(a.config.DefaultModel),
		genconfig.WithStrategy(strategy),
	}
	if a.panelsFile != "" {
		panels, err := genconfig.LoadStaticPanels(a.panelsFile)
		if err != nil {
			return err
		}
		opts = append(opts, genconfig.WithPanelLocator(panels))
		a.logger.Debug("Panels loaded", zap.String("path", a.panelsFile), zap.Int("panels", len(panels)))
	}

	a.layout = registry
	a.catalog = catalog
	a.engine = genconfig.New(opts...)
	genconfig.SetDefault(a.engine)
	a.composer = composer.New(
		composer.WithCatalog(catalog),
		composer.WithLogger(a.logger.Named("composer")),
	)
	return nil
}

// strategyByName returns a strategy over the loaded layout, for per-call
// strategy selection.
func (a *app) strategyByName(name string) (sizing.Strategy, error) {
	s, err := sizing.ByName(name, a.layout, presets.Qualities())
	if err != nil {
		return nil, core.ErrInvalidStrategy(name, core.ValidStrategies)
	}
	return s, nil
}

// close releases the catalog database and flushes the logger.
func (a *app) close() {
	if a.database != nil {
		if err := a.database.Close(); err != nil {
			a.logger.Warn("Failed to close catalog database", zap.Error(err))
		}
		a.database = nil
	}
	_ = a.logger.Sync()
}
