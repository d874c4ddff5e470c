package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"comic_backend/logging"
	"comic_backend/modelcatalog"
)

// ErrEmptyCatalog is returned by Load when no rows have been seeded.
var ErrEmptyCatalog = errors.New("db: catalog store is empty")

const metaSeededAt = "seeded_at"

// CatalogStore reads and writes compatibility catalog rows.
type CatalogStore struct {
	db     *Database
	logger *logging.Logger
}

// NewCatalogStore returns a store over db. A nil logger discards output.
func NewCatalogStore(db *Database, logger *logging.Logger) *CatalogStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CatalogStore{db: db, logger: logger}
}

// Seed replaces every stored row with the rows of c, in one transaction.
func (s *CatalogStore) Seed(ctx context.Context, c *modelcatalog.Catalog) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"checkpoints", "adapters", "conditioners"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i, e := range c.Checkpoints() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO checkpoints (filename, position, name, family, compatible_families, description)
			VALUES (?, ?, ?, ?, ?, ?)`,
			e.Filename, i, e.Name, e.Family.String(), joinFamilies(e.CompatibleFamilies), e.Description)
		if err != nil {
			return fmt.Errorf("failed to insert checkpoint %s: %w", e.Filename, err)
		}
	}

	for i, e := range c.Adapters() {
		useCases := lo.Map(e.UseCases, func(u modelcatalog.UseCase, _ int) string { return string(u) })
		_, err := tx.ExecContext(ctx, `
			INSERT INTO adapters (
				filename, position, name, family, compatible_families, category, stack_position,
				strength_min, strength_recommended, strength_max, trigger_words, use_cases
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.Filename, i, e.Name, e.Family.String(), joinFamilies(e.CompatibleFamilies),
			e.Category.String(), e.StackPosition.String(),
			e.Strength.Min, e.Strength.Recommended, e.Strength.Max,
			e.TriggerWords, strings.Join(useCases, ","))
		if err != nil {
			return fmt.Errorf("failed to insert adapter %s: %w", e.Filename, err)
		}
	}

	for i, e := range c.Conditioners() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO conditioners (filename, position, name, condition_type, family, compatible_families)
			VALUES (?, ?, ?, ?, ?, ?)`,
			e.Filename, i, e.Name, e.ConditionType.String(), e.Family.String(), joinFamilies(e.CompatibleFamilies))
		if err != nil {
			return fmt.Errorf("failed to insert conditioner %s: %w", e.Filename, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO catalog_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaSeededAt, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record seed time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	s.logger.Info("catalog seeded",
		zap.Int("checkpoints", len(c.Checkpoints())),
		zap.Int("adapters", len(c.Adapters())),
		zap.Int("conditioners", len(c.Conditioners())))
	return nil
}

// Load reads every row and builds a validated catalog. Rows keep their
// seeded order.
func (s *CatalogStore) Load(ctx context.Context) (*modelcatalog.Catalog, error) {
	checkpoints, err := s.loadCheckpoints(ctx)
	if err != nil {
		return nil, err
	}
	if len(checkpoints) == 0 {
		return nil, ErrEmptyCatalog
	}
	adapters, err := s.loadAdapters(ctx)
	if err != nil {
		return nil, err
	}
	conditioners, err := s.loadConditioners(ctx)
	if err != nil {
		return nil, err
	}

	c, err := modelcatalog.New(checkpoints, adapters, conditioners)
	if err != nil {
		return nil, fmt.Errorf("stored catalog is invalid: %w", err)
	}
	return c, nil
}

// LoadOrSeed loads the stored catalog, seeding it from fallback first when
// the store is empty.
func (s *CatalogStore) LoadOrSeed(ctx context.Context, fallback *modelcatalog.Catalog) (*modelcatalog.Catalog, error) {
	c, err := s.Load(ctx)
	if !errors.Is(err, ErrEmptyCatalog) {
		return c, err
	}
	s.logger.Info("catalog store empty, seeding built-in rows", zap.String("path", s.db.Path()))
	if err := s.Seed(ctx, fallback); err != nil {
		return nil, err
	}
	return s.Load(ctx)
}

// SeededAt returns when the store was last seeded.
func (s *CatalogStore) SeededAt(ctx context.Context) (time.Time, bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT value FROM catalog_meta WHERE key = ?`, metaSeededAt)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query catalog meta: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return time.Time{}, false, rows.Err()
	}
	var value string
	if err := rows.Scan(&value); err != nil {
		return time.Time{}, false, fmt.Errorf("failed to scan seed time: %w", err)
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid seed time %q: %w", value, err)
	}
	return t, true, nil
}

func (s *CatalogStore) loadCheckpoints(ctx context.Context) ([]modelcatalog.CheckpointEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT filename, name, family, compatible_families, description
		FROM checkpoints ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query checkpoints: %w", err)
	}
	defer rows.Close()

	var out []modelcatalog.CheckpointEntry
	for rows.Next() {
		var e modelcatalog.CheckpointEntry
		var family, compatible string
		if err := rows.Scan(&e.Filename, &e.Name, &family, &compatible, &e.Description); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		if e.Family, e.CompatibleFamilies, err = parseFamilies(family, compatible); err != nil {
			return nil, fmt.Errorf("checkpoint %s: %w", e.Filename, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *CatalogStore) loadAdapters(ctx context.Context) ([]modelcatalog.AdapterEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT filename, name, family, compatible_families, category, stack_position,
		       strength_min, strength_recommended, strength_max, trigger_words, use_cases
		FROM adapters ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query adapters: %w", err)
	}
	defer rows.Close()

	var out []modelcatalog.AdapterEntry
	for rows.Next() {
		var e modelcatalog.AdapterEntry
		var family, compatible, category, position, useCases string
		err := rows.Scan(&e.Filename, &e.Name, &family, &compatible, &category, &position,
			&e.Strength.Min, &e.Strength.Recommended, &e.Strength.Max, &e.TriggerWords, &useCases)
		if err != nil {
			return nil, fmt.Errorf("failed to scan adapter: %w", err)
		}
		if e.Family, e.CompatibleFamilies, err = parseFamilies(family, compatible); err != nil {
			return nil, fmt.Errorf("adapter %s: %w", e.Filename, err)
		}
		if e.Category, err = modelcatalog.ParseCategory(category); err != nil {
			return nil, fmt.Errorf("adapter %s: %w", e.Filename, err)
		}
		if e.StackPosition, err = modelcatalog.ParseStackPosition(position); err != nil {
			return nil, fmt.Errorf("adapter %s: %w", e.Filename, err)
		}
		for _, u := range splitList(useCases) {
			uc, err := modelcatalog.ParseUseCase(u)
			if err != nil {
				return nil, fmt.Errorf("adapter %s: %w", e.Filename, err)
			}
			e.UseCases = append(e.UseCases, uc)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *CatalogStore) loadConditioners(ctx context.Context) ([]modelcatalog.ConditionerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT filename, name, condition_type, family, compatible_families
		FROM conditioners ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query conditioners: %w", err)
	}
	defer rows.Close()

	var out []modelcatalog.ConditionerEntry
	for rows.Next() {
		var e modelcatalog.ConditionerEntry
		var conditionType, family, compatible string
		if err := rows.Scan(&e.Filename, &e.Name, &conditionType, &family, &compatible); err != nil {
			return nil, fmt.Errorf("failed to scan conditioner: %w", err)
		}
		if e.ConditionType, err = modelcatalog.ParseConditionType(conditionType); err != nil {
			return nil, fmt.Errorf("conditioner %s: %w", e.Filename, err)
		}
		if e.Family, e.CompatibleFamilies, err = parseFamilies(family, compatible); err != nil {
			return nil, fmt.Errorf("conditioner %s: %w", e.Filename, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func joinFamilies(fams []modelcatalog.ModelFamily) string {
	return strings.Join(lo.Map(fams, func(f modelcatalog.ModelFamily, _ int) string { return f.String() }), ",")
}

func parseFamilies(family, compatible string) (modelcatalog.ModelFamily, []modelcatalog.ModelFamily, error) {
	f, err := modelcatalog.ParseModelFamily(family)
	if err != nil {
		return 0, nil, err
	}
	var fams []modelcatalog.ModelFamily
	for _, name := range splitList(compatible) {
		cf, err := modelcatalog.ParseModelFamily(name)
		if err != nil {
			return 0, nil, err
		}
		fams = append(fams, cf)
	}
	return f, fams, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return lo.Map(strings.Split(s, ","), func(p string, _ int) string { return strings.TrimSpace(p) })
}
