package entity

import (
	"testing"

	"github.com/garment-labs/labelaudit/constants"
)

func TestMergeItemsParentFallback(t *testing.T) {
	parent := ParentInfo{StyleNumber: "AVD100", Color: "BLACK SOOT"}
	items := []LabelItem{
		{Fields: Fields{Size: "M", UPC: "036000291452"}, Page: 1, Position: 2},
		{Fields: Fields{StyleNumber: "AV23DQ001", Size: "L", Color: "SALSA DELIGHT"}, Page: 1, Position: 3},
	}

	merged := MergeItems(items, parent)
	if len(merged) != 2 {
		t.Fatalf("merged = %d items, want 2", len(merged))
	}

	first := merged[0]
	if first.StyleNumber != "AVD100" {
		t.Errorf("style = %q, want parent fallback AVD100", first.StyleNumber)
	}
	if first.Color != "BLACK SOOT" {
		t.Errorf("color = %q, want parent fallback BLACK SOOT", first.Color)
	}
	if first.UPC != "036000291452" {
		t.Errorf("upc = %q, want 036000291452", first.UPC)
	}

	second := merged[1]
	if second.StyleNumber != "AV23DQ001" {
		t.Errorf("style = %q, own value must win over parent", second.StyleNumber)
	}
	if second.Color != "SALSA DELIGHT" {
		t.Errorf("color = %q, own value must win over parent", second.Color)
	}
}

func TestMergeItemsUPCPreference(t *testing.T) {
	tests := []struct {
		name string
		item LabelItem
		want string
	}{
		{
			name: "validated code wins",
			item: LabelItem{Fields: Fields{UPC: "036000291452", UPCCandidate: "111111111111"}, Barcode: "4006381333931"},
			want: "036000291452",
		},
		{
			name: "barcode beats candidate",
			item: LabelItem{Fields: Fields{UPCCandidate: "111111111111"}, Barcode: "4006381333931"},
			want: "4006381333931",
		},
		{
			name: "candidate as last resort",
			item: LabelItem{Fields: Fields{UPCCandidate: "111111111111"}},
			want: "111111111111",
		},
		{
			name: "nothing scanned",
			item: LabelItem{},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := MergeItems([]LabelItem{tt.item}, ParentInfo{})
			if merged[0].UPC != tt.want {
				t.Errorf("upc = %q, want %q", merged[0].UPC, tt.want)
			}
		})
	}
}

func TestMergeItemsDropsComposition(t *testing.T) {
	items := []LabelItem{{
		Fields: Fields{
			Size:        "M",
			Composition: []Composition{{Percent: 100, Material: "COTTON"}},
		},
	}}

	merged := MergeItems(items, ParentInfo{})
	if merged[0].Raw.Composition != nil {
		t.Errorf("raw composition = %v, want nil", merged[0].Raw.Composition)
	}
	if items[0].Composition == nil {
		t.Error("merge must not mutate the input item")
	}
}

func TestAbsorbRoutesByDocType(t *testing.T) {
	result := ExtractResult{
		CareLabels: []MergedItem{},
		HangTags:   []MergedItem{},
	}

	result.Absorb(DocumentResult{
		DocType:    constants.DocTypeCareLabel,
		ParentInfo: ParentInfo{StyleNumber: "AVD100"},
		CareLabels: []LabelItem{{Fields: Fields{Size: "M"}}},
	})
	result.Absorb(DocumentResult{
		DocType:  constants.DocTypeHangTag,
		HangTags: []LabelItem{{Fields: Fields{StyleNumber: "AV23DQ001"}}, {Fields: Fields{StyleNumber: "AV23DQ002"}}},
	})

	if len(result.CareLabels) != 1 || len(result.HangTags) != 2 {
		t.Fatalf("absorbed %d care and %d hang, want 1 and 2", len(result.CareLabels), len(result.HangTags))
	}
	if result.CareLabels[0].StyleNumber != "AVD100" {
		t.Errorf("care style = %q, want parent fallback AVD100", result.CareLabels[0].StyleNumber)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "", "c"); got != "c" {
		t.Errorf("FirstNonEmpty = %q, want c", got)
	}
	if got := FirstNonEmpty(); got != "" {
		t.Errorf("FirstNonEmpty() = %q, want empty", got)
	}
}
