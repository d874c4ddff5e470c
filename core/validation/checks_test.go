package validation

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"comic_backend/core"
	"comic_backend/db"
	"comic_backend/modelcatalog"
	"comic_backend/presets"
)

const threeTierYAML = `
page_sizes:
  - {id: tabloid, name: Tabloid, aspect_ratio: 0.647}
templates:
  - id: three-tier
    name: Three tier
    page_size: tabloid
    slots:
      - {id: top, x: 0, y: 0, w: 1, h: 0.25}
      - {id: middle, x: 0, y: 0.25, w: 1, h: 0.5}
      - {id: bottom, x: 0, y: 0.75, w: 1, h: 0.25}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckEnvFile(t *testing.T) {
	present := writeFile(t, ".env", "DEV_MODE=true\n")
	missing := filepath.Join(t.TempDir(), ".env")

	tests := []struct {
		name     string
		path     string
		required bool
		want     StepStatus
		code     string
	}{
		{"present", present, true, StepPassed, ""},
		{"missing optional", missing, false, StepWarning, ""},
		{"missing required", missing, true, StepFailed, core.ErrCodeEnvFileMissing},
		{"directory", filepath.Dir(present), false, StepFailed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckEnvFile(tt.path, tt.required)
			if got.Status != tt.want {
				t.Errorf("status = %s, want %s (%s)", got.Status, tt.want, got.Message)
			}
			if code := core.GetErrorCode(got.Error); code != tt.code {
				t.Errorf("error code = %q, want %q", code, tt.code)
			}
		})
	}
}

func TestCheckSizingStrategy(t *testing.T) {
	for _, name := range core.ValidStrategies {
		if got := CheckSizingStrategy(name); got.Status != StepPassed || got.Message != name {
			t.Errorf("CheckSizingStrategy(%q) = %+v", name, got)
		}
	}
	got := CheckSizingStrategy("fancy")
	if got.Status != StepFailed || core.GetErrorCode(got.Error) != core.ErrCodeInvalidStrategy {
		t.Errorf("CheckSizingStrategy(fancy) = %+v", got)
	}
}

func TestCheckPresetCatalogs(t *testing.T) {
	if got := CheckSizePresets(presets.Sizes()); got.Status != StepPassed {
		t.Errorf("built-in sizes: %+v", got)
	}
	got := CheckQualityPresets(presets.Qualities())
	if got.Status != StepPassed || got.Message != "4 presets, draft to ultra" {
		t.Errorf("built-in qualities: %+v", got)
	}

	inverted, err := presets.NewQualityCatalog([]presets.QualityPreset{
		{ID: "cheap", Steps: 30, CFG: 7, RelativeCost: 1, AreaScale: 1},
		{ID: "pricey", Steps: 20, CFG: 7, RelativeCost: 2, AreaScale: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := CheckQualityPresets(inverted); got.Status != StepFailed || !strings.Contains(got.Error.Error(), "pricey") {
		t.Errorf("inverted qualities: %+v", got)
	}
}

func TestCheckLayoutTemplates(t *testing.T) {
	tests := []struct {
		name string
		path string
		want StepStatus
		code string
	}{
		{"unset", "", StepSkipped, ""},
		{"valid", writeFile(t, "layouts.yaml", threeTierYAML), StepPassed, ""},
		{"missing", filepath.Join(t.TempDir(), "none.yaml"), StepFailed, core.ErrCodeTemplatesNotFound},
		{"invalid", writeFile(t, "bad.yaml", "templates:\n  - id: broken\n    page_size: a4\n"), StepFailed, core.ErrCodeInvalidTemplates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckLayoutTemplates(tt.path)
			if got.Status != tt.want {
				t.Errorf("status = %s, want %s (%s: %v)", got.Status, tt.want, got.Message, got.Error)
			}
			if code := core.GetErrorCode(got.Error); code != tt.code {
				t.Errorf("error code = %q, want %q", code, tt.code)
			}
		})
	}
}

func TestCheckCatalogDatabase(t *testing.T) {
	ctx := context.Background()

	t.Run("unset", func(t *testing.T) {
		got, c := CheckCatalogDatabase(ctx, "")
		if got.Status != StepSkipped || c != nil {
			t.Errorf("got %+v, catalog %v", got, c)
		}
	})

	t.Run("empty store", func(t *testing.T) {
		got, c := CheckCatalogDatabase(ctx, filepath.Join(t.TempDir(), "catalog.db"))
		if got.Status != StepWarning || c != nil {
			t.Errorf("got %+v, catalog %v", got, c)
		}
	})

	t.Run("seeded store", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.db")
		database, err := db.NewDatabase(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := db.NewCatalogStore(database, nil).Seed(ctx, modelcatalog.Builtin()); err != nil {
			t.Fatal(err)
		}
		database.Close()

		got, c := CheckCatalogDatabase(ctx, path)
		if got.Status != StepPassed || c == nil {
			t.Fatalf("got %+v", got)
		}
		if len(c.Checkpoints()) != len(modelcatalog.BuiltinCheckpoints()) {
			t.Errorf("checkpoints = %d", len(c.Checkpoints()))
		}
	})

	t.Run("unopenable", func(t *testing.T) {
		// a directory where the database file should be
		path := t.TempDir()
		got, _ := CheckCatalogDatabase(ctx, path)
		if got.Status != StepFailed || core.GetErrorCode(got.Error) != core.ErrCodeCatalogUnavailable {
			t.Errorf("got %+v", got)
		}
	})
}

func TestCheckModelCatalog(t *testing.T) {
	builtin := modelcatalog.Builtin()

	if got := CheckModelCatalog(builtin, presets.Models(), modelcatalog.DefaultCheckpoint); got.Status != StepPassed {
		t.Errorf("built-in catalog: %+v", got)
	}

	got := CheckModelCatalog(builtin, presets.Models(), "myCustomPony.safetensors")
	if got.Status != StepWarning || !strings.Contains(got.Message, "myCustomPony.safetensors") {
		t.Errorf("unknown default model: %+v", got)
	}

	models, err := presets.NewModelPresetCatalog([]presets.ModelPreset{
		{ID: "mine", Name: "Mine", Checkpoint: "mine.safetensors", Family: modelcatalog.FamilySDXL},
	})
	if err != nil {
		t.Fatal(err)
	}
	got = CheckModelCatalog(builtin, models, modelcatalog.DefaultCheckpoint)
	if got.Status != StepWarning || !strings.Contains(got.Message, "model preset mine") {
		t.Errorf("unknown preset checkpoint: %+v", got)
	}

}

func TestCheckCompositionPresets(t *testing.T) {
	got := CheckCompositionPresets(modelcatalog.Builtin(), modelcatalog.DefaultCheckpoint)
	if got.Status != StepPassed {
		t.Fatalf("got %+v", got)
	}
	if !strings.HasPrefix(got.Message, "6 presets compose") {
		t.Errorf("message = %q", got.Message)
	}
}
