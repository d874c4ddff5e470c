package modelcatalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
)

var (
	// ErrDuplicateFilename is returned when two rows of one table share a filename.
	ErrDuplicateFilename = errors.New("modelcatalog: duplicate filename")

	// ErrInvalidStrength is returned when an adapter's strength range is not
	// ordered min <= recommended <= max with min >= 0.
	ErrInvalidStrength = errors.New("modelcatalog: invalid strength range")

	// ErrNoCompatibleFamilies is returned for a row whose compatible family
	// list is empty.
	ErrNoCompatibleFamilies = errors.New("modelcatalog: no compatible families")
)

// Catalog is an immutable set of checkpoint, adapter and conditioner rows.
// It is safe for concurrent use.
type Catalog struct {
	checkpoints  []CheckpointEntry
	adapters     []AdapterEntry
	conditioners []ConditionerEntry

	checkpointIndex map[string]int
	adapterIndex    map[string]int
}

// New builds a catalog from the given rows after validating them. The slices
// are copied; later changes by the caller do not affect the catalog.
func New(checkpoints []CheckpointEntry, adapters []AdapterEntry, conditioners []ConditionerEntry) (*Catalog, error) {
	c := &Catalog{
		checkpoints:     slices.Clone(checkpoints),
		adapters:        slices.Clone(adapters),
		conditioners:    slices.Clone(conditioners),
		checkpointIndex: make(map[string]int, len(checkpoints)),
		adapterIndex:    make(map[string]int, len(adapters)),
	}
	for i, cp := range c.checkpoints {
		c.checkpointIndex[normalizeFilename(cp.Filename)] = i
	}
	for i, a := range c.adapters {
		c.adapterIndex[normalizeFilename(a.Filename)] = i
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// normalizeFilename strips directories and lowercases so that
// "loras/Foo.safetensors" and "foo.safetensors" address the same row.
func normalizeFilename(name string) string {
	return strings.ToLower(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
}

// Checkpoints returns a copy of the checkpoint rows in catalog order.
func (c *Catalog) Checkpoints() []CheckpointEntry { return slices.Clone(c.checkpoints) }

// Adapters returns a copy of the adapter rows in catalog order.
func (c *Catalog) Adapters() []AdapterEntry { return slices.Clone(c.adapters) }

// Conditioners returns a copy of the conditioner rows in catalog order.
func (c *Catalog) Conditioners() []ConditionerEntry { return slices.Clone(c.conditioners) }

// Checkpoint looks up a checkpoint row by filename.
func (c *Catalog) Checkpoint(filename string) (CheckpointEntry, bool) {
	i, ok := c.checkpointIndex[normalizeFilename(filename)]
	if !ok {
		return CheckpointEntry{}, false
	}
	return c.checkpoints[i], true
}

// Adapter looks up an adapter row by filename.
func (c *Catalog) Adapter(filename string) (AdapterEntry, bool) {
	i, ok := c.adapterIndex[normalizeFilename(filename)]
	if !ok {
		return AdapterEntry{}, false
	}
	return c.adapters[i], true
}

// DetectModelFamily returns the family of a checkpoint. Catalog rows win;
// otherwise the filename naming convention is applied, defaulting to sdxl.
func (c *Catalog) DetectModelFamily(filename string) ModelFamily {
	if cp, ok := c.Checkpoint(filename); ok {
		return cp.Family
	}
	f, _ := InferFamilyFromName(filepath.Base(filename))
	return f
}

// CompatibleAdapters returns every adapter usable with the checkpoint, in
// catalog order. familyOverride, when non-nil, replaces detection.
func (c *Catalog) CompatibleAdapters(checkpoint string, familyOverride *ModelFamily) []AdapterEntry {
	family := c.DetectModelFamily(checkpoint)
	if familyOverride != nil {
		family = *familyOverride
	}
	accepted := family.CompatibleWith()
	return lo.Filter(c.adapters, func(a AdapterEntry, _ int) bool {
		return lo.Some(a.CompatibleFamilies, accepted)
	})
}

// Suggest is CompatibleAdapters restricted to the given categories. With no
// categories it returns every compatible adapter.
func (c *Catalog) Suggest(checkpoint string, categories ...Category) []AdapterEntry {
	compatible := c.CompatibleAdapters(checkpoint, nil)
	if len(categories) == 0 {
		return compatible
	}
	return lo.Filter(compatible, func(a AdapterEntry, _ int) bool {
		return lo.Contains(categories, a.Category)
	})
}

// BuildStack orders adapters first, middle, last and applies each adapter's
// recommended strength. Entries sharing a position keep their input order.
//
// This is a pure function.
func BuildStack(adapters []AdapterEntry) ResolvedAdapterStack {
	stack := make(ResolvedAdapterStack, 0, len(adapters))
	for _, a := range adapters {
		stack = append(stack, StackEntry{Adapter: a, Strength: a.Strength.Recommended})
	}
	slices.SortStableFunc(stack, func(x, y StackEntry) int {
		return int(x.Adapter.StackPosition) - int(y.Adapter.StackPosition)
	})
	return stack
}

// RecommendedStack returns a curated stack for the checkpoint: the first
// compatible style adapter curated for useCase, plus the first compatible
// quality adapter when one is available. The general use case always asks for
// a quality adapter and takes any compatible style adapter tagged general.
func (c *Catalog) RecommendedStack(checkpoint string, useCase UseCase) ResolvedAdapterStack {
	compatible := c.CompatibleAdapters(checkpoint, nil)

	var picked []AdapterEntry
	style, ok := lo.Find(compatible, func(a AdapterEntry) bool {
		return a.Category == CategoryStyle && lo.Contains(a.UseCases, useCase)
	})
	if ok {
		picked = append(picked, style)
	}

	quality, ok := lo.Find(compatible, func(a AdapterEntry) bool {
		return a.Category == CategoryQuality
	})
	if ok {
		picked = append(picked, quality)
	}
	return BuildStack(picked)
}

// ExtractTriggerWords collects the trigger phrases of the named adapters in
// catalog order. Unknown filenames and adapters without a phrase are skipped.
func (c *Catalog) ExtractTriggerWords(filenames []string) []string {
	wanted := lo.SliceToMap(filenames, func(name string) (string, struct{}) {
		return normalizeFilename(name), struct{}{}
	})
	var words []string
	for _, a := range c.adapters {
		if _, ok := wanted[normalizeFilename(a.Filename)]; !ok {
			continue
		}
		if a.TriggerWords == "" {
			continue
		}
		words = append(words, a.TriggerWords)
	}
	return words
}

// CompatibleConditioners returns the conditioners usable with the checkpoint.
func (c *Catalog) CompatibleConditioners(checkpoint string) []ConditionerEntry {
	return c.conditionersFor(c.DetectModelFamily(checkpoint))
}

func (c *Catalog) conditionersFor(family ModelFamily) []ConditionerEntry {
	accepted := family.CompatibleWith()
	return lo.Filter(c.conditioners, func(e ConditionerEntry, _ int) bool {
		return lo.Some(e.CompatibleFamilies, accepted)
	})
}

// ConditionerFor picks the conditioner for a condition type. A conditioner
// built for the family itself is preferred over a cross-family one.
func (c *Catalog) ConditionerFor(family ModelFamily, t ConditionType) (ConditionerEntry, bool) {
	candidates := lo.Filter(c.conditionersFor(family), func(e ConditionerEntry, _ int) bool {
		return e.ConditionType == t
	})
	if len(candidates) == 0 {
		return ConditionerEntry{}, false
	}
	if own, ok := lo.Find(candidates, func(e ConditionerEntry) bool { return e.Family == family }); ok {
		return own, true
	}
	return candidates[0], true
}

// Validate checks the structural invariants of every row and returns all
// violations joined together.
func (c *Catalog) Validate() error {
	var errs []error

	checkDupes := func(table string, names []string) {
		dupes := lo.FindDuplicates(lo.Map(names, func(n string, _ int) string { return normalizeFilename(n) }))
		for _, d := range dupes {
			errs = append(errs, fmt.Errorf("%w: %s %s", ErrDuplicateFilename, table, d))
		}
	}
	checkDupes("checkpoint", lo.Map(c.checkpoints, func(e CheckpointEntry, _ int) string { return e.Filename }))
	checkDupes("adapter", lo.Map(c.adapters, func(e AdapterEntry, _ int) string { return e.Filename }))
	checkDupes("conditioner", lo.Map(c.conditioners, func(e ConditionerEntry, _ int) string { return e.Filename }))

	for _, cp := range c.checkpoints {
		if len(cp.CompatibleFamilies) == 0 {
			errs = append(errs, fmt.Errorf("%w: checkpoint %s", ErrNoCompatibleFamilies, cp.Filename))
		}
	}
	for _, a := range c.adapters {
		if len(a.CompatibleFamilies) == 0 {
			errs = append(errs, fmt.Errorf("%w: adapter %s", ErrNoCompatibleFamilies, a.Filename))
		}
		s := a.Strength
		if s.Min < 0 || s.Min > s.Recommended || s.Recommended > s.Max {
			errs = append(errs, fmt.Errorf("%w: adapter %s (%.2f/%.2f/%.2f)",
				ErrInvalidStrength, a.Filename, s.Min, s.Recommended, s.Max))
		}
	}
	for _, e := range c.conditioners {
		if len(e.CompatibleFamilies) == 0 {
			errs = append(errs, fmt.Errorf("%w: conditioner %s", ErrNoCompatibleFamilies, e.Filename))
		}
	}
	return errors.Join(errs...)
}

// DetectModelFamily queries the built-in catalog.
func DetectModelFamily(filename string) ModelFamily {
	return Builtin().DetectModelFamily(filename)
}

// CompatibleAdapters queries the built-in catalog.
func CompatibleAdapters(checkpoint string, familyOverride *ModelFamily) []AdapterEntry {
	return Builtin().CompatibleAdapters(checkpoint, familyOverride)
}

// ExtractTriggerWords queries the built-in catalog.
func ExtractTriggerWords(filenames []string) []string {
	return Builtin().ExtractTriggerWords(filenames)
}
