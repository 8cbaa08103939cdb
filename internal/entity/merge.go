package entity

import "github.com/garment-labs/labelaudit/constants"

// MergedItem is the flattened item shape served by the extract API and
// consumed by reconciliation: matching keys hoisted to the top level with
// parent fallbacks applied, the full item kept under raw.
type MergedItem struct {
	StyleNumber string    `json:"style_number"`
	Size        string    `json:"size"`
	Color       string    `json:"color"`
	UPC         string    `json:"upc"`
	Raw         LabelItem `json:"raw"`
}

// ExtractResult groups merged items from every uploaded document by type.
type ExtractResult struct {
	CareLabels []MergedItem `json:"care_labels"`
	HangTags   []MergedItem `json:"hang_tags"`
}

// Absorb merges one document's items into the grouped result under its
// routed type.
func (r *ExtractResult) Absorb(doc DocumentResult) {
	switch doc.DocType {
	case constants.DocTypeCareLabel:
		r.CareLabels = append(r.CareLabels, MergeItems(doc.CareLabels, doc.ParentInfo)...)
	case constants.DocTypeHangTag:
		r.HangTags = append(r.HangTags, MergeItems(doc.HangTags, doc.ParentInfo)...)
	}
}

// MergeItems flattens label items, filling style and color from the parent
// header when an item lacks its own. The strongest available code wins:
// checksum-valid upc, then scanned barcode, then unvalidated candidate.
// Composition is dropped from the raw copy.
func MergeItems(items []LabelItem, parent ParentInfo) []MergedItem {
	merged := make([]MergedItem, 0, len(items))
	for _, it := range items {
		raw := it
		raw.Composition = nil
		merged = append(merged, MergedItem{
			StyleNumber: FirstNonEmpty(it.StyleNumber, parent.StyleNumber),
			Size:        it.Size,
			Color:       FirstNonEmpty(it.Color, parent.Color),
			UPC:         FirstNonEmpty(it.UPC, it.Barcode, it.UPCCandidate),
			Raw:         raw,
		})
	}
	return merged
}

// FirstNonEmpty returns the first non-empty value.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
