// Package reconcile matches spreadsheet rows against extracted label items
// and scores UPC agreement per row.
package reconcile

import (
	"github.com/garment-labs/labelaudit/constants"
	"github.com/garment-labs/labelaudit/internal/entity"
	"github.com/garment-labs/labelaudit/internal/textnorm"
	"github.com/garment-labs/labelaudit/internal/upc"
)

// matchKey is the normalized matching view of one extracted item. The item
// pointer refers back to the caller's slice so results echo the original.
type matchKey struct {
	style string
	size  string
	color string
	item  *entity.MergedItem
}

func keys(items []entity.MergedItem) []matchKey {
	out := make([]matchKey, len(items))
	for i := range items {
		out[i] = matchKey{
			style: textnorm.CollapseUpper(items[i].StyleNumber),
			size:  textnorm.CollapseUpper(items[i].Size),
			color: textnorm.CollapseUpper(items[i].Color),
			item:  &items[i],
		}
	}
	return out
}

// matchItem finds the extracted item that best matches the row, trying key
// combinations strongest first. Items are scanned in extraction order, the
// first hit at a level wins, and items are never consumed, so one item can
// satisfy several rows. A row without a style never matches.
func matchItem(row entity.ExpectedRow, items []matchKey) (*entity.MergedItem, constants.MatchLevel) {
	if row.Style == "" {
		return nil, constants.MatchNone
	}
	levels := []struct {
		level constants.MatchLevel
		match func(k matchKey) bool
	}{
		{constants.MatchStyleSizeColor, func(k matchKey) bool {
			return k.style == row.Style && k.size == row.Size && k.color == row.Color
		}},
		{constants.MatchStyleSize, func(k matchKey) bool {
			return k.style == row.Style && k.size == row.Size
		}},
		{constants.MatchStyleColor, func(k matchKey) bool {
			return k.style == row.Style && k.color == row.Color
		}},
		{constants.MatchStyle, func(k matchKey) bool {
			return k.style == row.Style
		}},
	}
	for _, lv := range levels {
		for i := range items {
			if lv.match(items[i]) {
				return items[i].item, lv.level
			}
		}
	}
	return nil, constants.MatchNone
}

func scoreSide(row entity.ExpectedRow, expected string, items []matchKey) entity.SideMatch {
	item, level := matchItem(row, items)
	actual := ""
	if item != nil {
		actual = upc.Digits(item.UPC)
	}
	return entity.SideMatch{
		Match:       level,
		UPCExpected: expected,
		UPCActual:   actual,
		UPCMatches:  expected != "" && expected == actual,
		Item:        item,
	}
}

func normalizeRow(row entity.ExpectedRow) entity.ExpectedRow {
	return entity.ExpectedRow{
		Style:   textnorm.CollapseUpper(row.Style),
		Size:    textnorm.CollapseUpper(row.Size),
		Color:   textnorm.CollapseUpper(row.Color),
		CareUPC: upc.Digits(row.CareUPC),
		HangUPC: upc.Digits(row.HangUPC),
	}
}

// Validate scores every expected row against the care-label and hang-tag item
// sets. Rows are re-normalized on entry so callers may pass values straight
// from an API payload.
func Validate(rows []entity.ExpectedRow, careItems, hangItems []entity.MergedItem) entity.ValidationReport {
	care := keys(careItems)
	hang := keys(hangItems)

	summary := entity.ValidationSummary{Rows: len(rows)}
	results := make([]entity.MatchResult, 0, len(rows))
	for _, row := range rows {
		row = normalizeRow(row)
		careSide := scoreSide(row, row.CareUPC, care)
		hangSide := scoreSide(row, row.HangUPC, hang)
		if careSide.UPCMatches {
			summary.CareLabelMatches++
		}
		if hangSide.UPCMatches {
			summary.HangTagMatches++
		}
		results = append(results, entity.MatchResult{
			Row:       row,
			CareLabel: careSide,
			HangTag:   hangSide,
		})
	}
	return entity.ValidationReport{Summary: summary, Results: results}
}
