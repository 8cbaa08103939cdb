package segment

import (
	"github.com/garment-labs/labelaudit/internal/pdfpage"
)

// GridConfig describes the fixed column layout of a label print sheet. All
// horizontal measures are points; vertical bounds are ratios of page height.
type GridConfig struct {
	Columns     int     `yaml:"columns"`
	SkipFirst   bool    `yaml:"skip_first"`   // first column is the printer legend strip
	Zoom        float64 `yaml:"zoom"`         // render zoom for region images
	ColumnWidth float64 `yaml:"column_width"` // 0 = page width / columns
	LeftOffset  float64 `yaml:"left_offset"`
	TopRatio    float64 `yaml:"top_ratio"`
	BottomRatio float64 `yaml:"bottom_ratio"`
}

// CareGrid is the layout of sewn-in care label sheets.
func CareGrid() GridConfig {
	return GridConfig{
		Columns:     8,
		SkipFirst:   true,
		Zoom:        3.0,
		ColumnWidth: 88.0,
		LeftOffset:  45.0,
		TopRatio:    0.22,
		BottomRatio: 0.61,
	}
}

// HangGrid is the layout of RFID hang tag sheets; columns divide the page
// evenly and the tag body runs deeper down the page.
func HangGrid() GridConfig {
	return GridConfig{
		Columns:     8,
		SkipFirst:   true,
		Zoom:        3.0,
		TopRatio:    0.22,
		BottomRatio: 0.92,
	}
}

// Region is one label cell on a page. Page is 1-based; Position is the raw
// column index, so with a skipped legend column positions start at 1.
type Region struct {
	Rect     pdfpage.Rect
	Page     int
	Position int
}

// Regions computes the clip rectangle of every label column on one page.
// Columns are clamped to the page and degenerate cells are dropped, so a
// narrow page yields fewer regions than Columns.
func (g GridConfig) Regions(page int, pageWidth, pageHeight float64) []Region {
	cols := g.Columns
	if cols <= 0 {
		cols = 8
	}
	width := g.ColumnWidth
	if width <= 0 {
		width = pageWidth / float64(cols)
	}
	top := pageHeight * g.TopRatio
	bottom := pageHeight * g.BottomRatio

	start := 0
	if g.SkipFirst {
		start = 1
	}
	var regions []Region
	for i := start; i < cols; i++ {
		x0 := clamp(g.LeftOffset+float64(i)*width, 0, pageWidth)
		x1 := clamp(g.LeftOffset+float64(i+1)*width, 0, pageWidth)
		if x1 <= x0 {
			continue
		}
		regions = append(regions, Region{
			Rect:     pdfpage.Rect{X0: x0, Y0: top, X1: x1, Y1: bottom},
			Page:     page,
			Position: i,
		})
	}
	return regions
}

// labelIndex is the 1-based image name index for a region position.
func (g GridConfig) labelIndex(position int) int {
	if g.SkipFirst {
		return position
	}
	return position + 1
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
