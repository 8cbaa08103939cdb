package segment

import (
	"testing"

	"github.com/garment-labs/labelaudit/internal/pdfpage"
)

func TestCareGridRegions(t *testing.T) {
	grid := CareGrid()

	t.Run("wide page keeps all seven label columns", func(t *testing.T) {
		regions := grid.Regions(1, 792, 612)
		if len(regions) != 7 {
			t.Fatalf("len(regions) = %d, want 7", len(regions))
		}
		for idx, r := range regions {
			wantPos := idx + 1
			if r.Position != wantPos {
				t.Errorf("regions[%d].Position = %d, want %d", idx, r.Position, wantPos)
			}
			if r.Page != 1 {
				t.Errorf("regions[%d].Page = %d, want 1", idx, r.Page)
			}
		}
		first := regions[0].Rect
		want := pdfpage.Rect{X0: 133, Y0: 612 * 0.22, X1: 221, Y1: 612 * 0.61}
		if first != want {
			t.Errorf("first rect = %+v, want %+v", first, want)
		}
	})

	t.Run("narrow page clamps and drops degenerate columns", func(t *testing.T) {
		regions := grid.Regions(1, 612, 792)
		if len(regions) != 6 {
			t.Fatalf("len(regions) = %d, want 6", len(regions))
		}
		last := regions[len(regions)-1]
		if last.Position != 6 {
			t.Errorf("last position = %d, want 6", last.Position)
		}
		if last.Rect.X1 != 612 {
			t.Errorf("last X1 = %v, want clamped to 612", last.Rect.X1)
		}
	})
}

func TestHangGridRegions(t *testing.T) {
	grid := HangGrid()
	regions := grid.Regions(2, 792, 612)

	if len(regions) != 7 {
		t.Fatalf("len(regions) = %d, want 7", len(regions))
	}
	// column width defaults to page width / columns
	first := regions[0].Rect
	want := pdfpage.Rect{X0: 99, Y0: 612 * 0.22, X1: 198, Y1: 612 * 0.92}
	if first != want {
		t.Errorf("first rect = %+v, want %+v", first, want)
	}
	if regions[0].Page != 2 {
		t.Errorf("Page = %d, want 2", regions[0].Page)
	}
}

func TestRegionsWithoutSkip(t *testing.T) {
	grid := GridConfig{Columns: 4, TopRatio: 0, BottomRatio: 1}
	regions := grid.Regions(1, 400, 100)

	if len(regions) != 4 {
		t.Fatalf("len(regions) = %d, want 4", len(regions))
	}
	if regions[0].Position != 0 {
		t.Errorf("first position = %d, want 0", regions[0].Position)
	}
	if regions[0].Rect.X1 != 100 {
		t.Errorf("X1 = %v, want 100", regions[0].Rect.X1)
	}
}
