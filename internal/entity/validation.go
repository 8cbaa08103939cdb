package entity

import "github.com/garment-labs/labelaudit/constants"

// ExpectedRow is one spreadsheet-declared style/size/color/UPC record,
// already normalized: uppercase collapsed text, digits-only UPC values.
type ExpectedRow struct {
	Style   string `json:"style"`
	Size    string `json:"size"`
	Color   string `json:"color"`
	CareUPC string `json:"care_upc"`
	HangUPC string `json:"hang_upc"`
}

// SideMatch is the verdict for one side (care label or hang tag) of a row.
// Item is nil when no extracted item matched.
type SideMatch struct {
	Match       constants.MatchLevel `json:"match"`
	UPCExpected string               `json:"upc_expected"`
	UPCActual   string               `json:"upc_actual"`
	UPCMatches  bool                 `json:"upc_matches"`
	Item        *MergedItem          `json:"item"`
}

// MatchResult pairs one expected row with its care-label and hang-tag
// verdicts.
type MatchResult struct {
	Row       ExpectedRow `json:"row"`
	CareLabel SideMatch   `json:"care_label"`
	HangTag   SideMatch   `json:"hang_tag"`
}

// ValidationSummary aggregates UPC agreement over all rows. A row can count
// toward one side, both, or neither.
type ValidationSummary struct {
	Rows             int `json:"rows"`
	CareLabelMatches int `json:"care_label_matches"`
	HangTagMatches   int `json:"hang_tag_matches"`
}

// ValidationReport is the reconciliation output for one spreadsheet.
type ValidationReport struct {
	Summary ValidationSummary `json:"summary"`
	Results []MatchResult     `json:"results"`
}
