package layout

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TemplateFile is the on-disk format of a layout template file.
//
//	page_sizes:
//	  - {id: tabloid, name: Tabloid, aspect_ratio: 0.647}
//	templates:
//	  - id: three-tier
//	    page_size: tabloid
//	    slots:
//	      - {id: top, x: 0, y: 0, w: 1, h: 0.333}
type TemplateFile struct {
	PageSizes []PageSize `yaml:"page_sizes"`
	Templates []Template `yaml:"templates"`
}

// ParseTemplateFile decodes template YAML without registering anything.
func ParseTemplateFile(data []byte) (*TemplateFile, error) {
	var f TemplateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode layout templates: %w", err)
	}
	return &f, nil
}

// LoadFile reads a template file and registers its page sizes, then its
// templates. Registration stops at the first invalid entry; entries before
// it stay registered.
func (r *Registry) LoadFile(path string) (int, error) {
	if strings.TrimSpace(path) == "" {
		return 0, fmt.Errorf("layout template path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read layout templates: %w", err)
	}
	f, err := ParseTemplateFile(data)
	if err != nil {
		return 0, err
	}

	for _, p := range f.PageSizes {
		if err := r.RegisterPageSize(p); err != nil {
			return 0, err
		}
	}
	for i, t := range f.Templates {
		if err := r.Register(t); err != nil {
			return i, fmt.Errorf("%s: %w", path, err)
		}
	}
	return len(f.Templates), nil
}
