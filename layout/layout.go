// Package layout describes comic page templates: the page sizes they are
// printed at and the named slots (panels) each template divides a page into.
//
// Slot rectangles are expressed as fractions of the page, so a slot's pixel
// aspect ratio depends on the page size it is projected onto.
package layout

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
)

var (
	// ErrInvalidTemplate is returned when a template fails validation.
	ErrInvalidTemplate = errors.New("layout: invalid template")

	// ErrUnknownPageSize is returned when a template references a page size
	// that is not registered.
	ErrUnknownPageSize = errors.New("layout: unknown page size")
)

// PageSize is a named physical page format.
type PageSize struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	// AspectRatio is width/height of the page.
	AspectRatio float64 `json:"aspect_ratio" yaml:"aspect_ratio"`
}

// Slot is a panel rectangle in page-relative coordinates (0..1).
type Slot struct {
	ID string  `json:"id" yaml:"id"`
	X  float64 `json:"x" yaml:"x"`
	Y  float64 `json:"y" yaml:"y"`
	W  float64 `json:"w" yaml:"w"`
	H  float64 `json:"h" yaml:"h"`
}

// Template is a page layout.
type Template struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	// PageSize is the id of the page format the template is designed for.
	PageSize string `json:"page_size" yaml:"page_size"`
	Slots    []Slot `json:"slots" yaml:"slots"`
}

// SlotGeometry is what a sizing strategy needs to know about one slot.
type SlotGeometry struct {
	TemplateID string
	SlotID     string
	// AspectRatio is the slot's pixel ratio on the template's own page size.
	AspectRatio float64
	// AreaWeight is the slot's share of the template's total slot area.
	AreaWeight float64
	SlotCount  int
	// W and H are the page-relative slot extents.
	W, H float64
	// PageAspect is the aspect ratio of the template's own page size.
	PageAspect float64
}

// AspectOn returns the slot's pixel ratio when the page is printed at
// pageAspect instead of the template's own page size.
func (g SlotGeometry) AspectOn(pageAspect float64) float64 {
	if g.H <= 0 || pageAspect <= 0 {
		return g.AspectRatio
	}
	return g.W * pageAspect / g.H
}

// GeometryProvider resolves slot references and page sizes.
type GeometryProvider interface {
	SlotGeometry(templateID, slotID string) (SlotGeometry, bool)
	PageSize(id string) (PageSize, bool)
}

// Registry is the in-memory GeometryProvider. It starts with the built-in
// page sizes and templates; more can be registered at startup.
type Registry struct {
	mu        sync.RWMutex
	pages     map[string]PageSize
	templates map[string]Template
	order     []string
}

// NewRegistry returns a registry holding the built-in page sizes and
// templates.
func NewRegistry() *Registry {
	r := &Registry{
		pages:     make(map[string]PageSize),
		templates: make(map[string]Template),
	}
	for _, p := range BuiltinPageSizes() {
		r.pages[p.ID] = p
	}
	for _, t := range BuiltinTemplates() {
		if err := r.Register(t); err != nil {
			panic("layout: built-in template is invalid: " + err.Error())
		}
	}
	return r
}

// RegisterPageSize adds or replaces a page size.
func (r *Registry) RegisterPageSize(p PageSize) error {
	if p.ID == "" || !positive(p.AspectRatio) {
		return fmt.Errorf("%w: page size %q needs an id and a positive aspect ratio", ErrInvalidTemplate, p.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages[p.ID] = p
	return nil
}

// Register validates and adds a template. A template with an existing id
// replaces the earlier one.
func (r *Registry) Register(t Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pages[t.PageSize]; !ok {
		return fmt.Errorf("%w: %q (template %s)", ErrUnknownPageSize, t.PageSize, t.ID)
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if _, exists := r.templates[t.ID]; !exists {
		r.order = append(r.order, t.ID)
	}
	t.Slots = slices.Clone(t.Slots)
	r.templates[t.ID] = t
	return nil
}

// Template returns a registered template.
func (r *Registry) Template(id string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[id]
	return t, ok
}

// Templates lists registered templates in registration order.
func (r *Registry) Templates() []Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.templates[id])
	}
	return out
}

// PageSize returns a registered page size.
func (r *Registry) PageSize(id string) (PageSize, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pages[id]
	return p, ok
}

// SlotGeometry resolves a slot reference.
func (r *Registry) SlotGeometry(templateID, slotID string) (SlotGeometry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.templates[templateID]
	if !ok {
		return SlotGeometry{}, false
	}
	idx := slices.IndexFunc(t.Slots, func(s Slot) bool { return s.ID == slotID })
	if idx < 0 {
		return SlotGeometry{}, false
	}
	page := r.pages[t.PageSize]
	s := t.Slots[idx]

	total := 0.0
	for _, other := range t.Slots {
		total += other.W * other.H
	}
	return SlotGeometry{
		TemplateID:  templateID,
		SlotID:      slotID,
		AspectRatio: s.W * page.AspectRatio / s.H,
		AreaWeight:  s.W * s.H / total,
		SlotCount:   len(t.Slots),
		W:           s.W,
		H:           s.H,
		PageAspect:  page.AspectRatio,
	}, true
}

const boundsEpsilon = 1e-6

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// positive reports whether v is a finite number above zero. NaN is not.
func positive(v float64) bool { return finite(v) && v > 0 }

// Validate checks slot ids are unique and every slot lies inside the page.
func (t Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidTemplate)
	}
	if len(t.Slots) == 0 {
		return fmt.Errorf("%w: %s has no slots", ErrInvalidTemplate, t.ID)
	}
	seen := make(map[string]bool, len(t.Slots))
	for _, s := range t.Slots {
		if s.ID == "" {
			return fmt.Errorf("%w: %s has a slot without id", ErrInvalidTemplate, t.ID)
		}
		if seen[s.ID] {
			return fmt.Errorf("%w: %s repeats slot %s", ErrInvalidTemplate, t.ID, s.ID)
		}
		seen[s.ID] = true
		if !positive(s.W) || !positive(s.H) || !finite(s.X) || !finite(s.Y) {
			return fmt.Errorf("%w: %s/%s has non-positive extent", ErrInvalidTemplate, t.ID, s.ID)
		}
		if s.X < 0 || s.Y < 0 || s.X+s.W > 1+boundsEpsilon || s.Y+s.H > 1+boundsEpsilon {
			return fmt.Errorf("%w: %s/%s lies outside the page", ErrInvalidTemplate, t.ID, s.ID)
		}
	}
	return nil
}
