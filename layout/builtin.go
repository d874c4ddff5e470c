package layout

import "fmt"

// BuiltinPageSizes returns the shipped page formats.
func BuiltinPageSizes() []PageSize {
	return []PageSize{
		{ID: "a4", Name: "A4 portrait", AspectRatio: 0.7071},
		{ID: "us-comic", Name: "US comic book", AspectRatio: 0.6463},
		{ID: "manga-b5", Name: "Manga B5", AspectRatio: 0.7082},
		{ID: "square", Name: "Square", AspectRatio: 1.0},
		{ID: "landscape-a4", Name: "A4 landscape", AspectRatio: 1.4142},
		{ID: "strip", Name: "Newspaper strip", AspectRatio: 3.0},
	}
}

// grid builds a cols x rows template with slots named rowN-left/rowN-right
// for two columns and rowN-colM otherwise.
func grid(id, name, page string, cols, rows int) Template {
	t := Template{ID: id, Name: name, PageSize: page}
	w, h := 1/float64(cols), 1/float64(rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			t.Slots = append(t.Slots, Slot{
				ID: gridSlotID(cols, r, c),
				X:  float64(c) * w,
				Y:  float64(r) * h,
				W:  w,
				H:  h,
			})
		}
	}
	return t
}

func gridSlotID(cols, r, c int) string {
	if cols == 2 {
		if c == 0 {
			return fmt.Sprintf("row%d-left", r+1)
		}
		return fmt.Sprintf("row%d-right", r+1)
	}
	return fmt.Sprintf("row%d-col%d", r+1, c+1)
}

// BuiltinTemplates returns the shipped page templates.
func BuiltinTemplates() []Template {
	return []Template{
		{ID: "single", Name: "Single splash", PageSize: "a4", Slots: []Slot{
			{ID: "full", X: 0, Y: 0, W: 1, H: 1},
		}},
		{ID: "two-tier", Name: "Two tiers", PageSize: "a4", Slots: []Slot{
			{ID: "top", X: 0, Y: 0, W: 1, H: 0.5},
			{ID: "bottom", X: 0, Y: 0.5, W: 1, H: 0.5},
		}},
		grid("four-grid", "Four grid", "a4", 2, 2),
		grid("six-grid", "Six grid", "a4", 2, 3),
		{ID: "strip-3", Name: "Three panel strip", PageSize: "strip", Slots: []Slot{
			{ID: "panel-1", X: 0, Y: 0, W: 1.0 / 3, H: 1},
			{ID: "panel-2", X: 1.0 / 3, Y: 0, W: 1.0 / 3, H: 1},
			{ID: "panel-3", X: 2.0 / 3, Y: 0, W: 1.0 / 3, H: 1},
		}},
		{ID: "manga-dynamic", Name: "Manga dynamic", PageSize: "manga-b5", Slots: []Slot{
			{ID: "top-wide", X: 0, Y: 0, W: 1, H: 0.35},
			{ID: "mid-left", X: 0, Y: 0.35, W: 0.6, H: 0.35},
			{ID: "mid-right", X: 0.6, Y: 0.35, W: 0.4, H: 0.35},
			{ID: "bottom", X: 0, Y: 0.7, W: 1, H: 0.3},
		}},
	}
}
