// Package classify decides whether a print sheet holds care labels or RFID
// hang tags by scoring fixed text signals on the first page.
package classify

import (
	"regexp"

	"github.com/garment-labs/labelaudit/constants"
	"github.com/garment-labs/labelaudit/internal/entity"
	"github.com/garment-labs/labelaudit/internal/textnorm"
)

type signal struct {
	pattern string
	re      *regexp.Regexp
}

func compile(patterns ...string) []signal {
	out := make([]signal, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, signal{pattern: p, re: regexp.MustCompile(`(?i)` + p)})
	}
	return out
}

// Signal sets are matched case-insensitively against normalized page text.
// Each hit counts one point for its side.
var (
	careSignals = compile(
		`\bRN#?\b`,
		`\bMade In\b`,
		`\bHecho En\b`,
		`Exclusive of Decoration`,
		`Body & Pocket`,
		`Inner Layer`,
	)
	rfidSignals = compile(
		`WALMART\.COM/AVIA`,
		`Find more at Walmart\.com`,
		`REGISTERED TRADEMARK`,
		`AVIA STRETCH`,
		`\bBLACK\s+SOOT\b`,
		`\bSALSA\s+DELIGHT\b`,
	)
)

// Classify scores the text against both signal sets and picks the higher
// side. Ties go to care_label; two zero scores mean unknown. The matched
// pattern sources are returned as evidence.
func Classify(text string) entity.ClassificationResult {
	normalized := textnorm.Normalize(text)
	res := entity.ClassificationResult{
		Type: constants.DocTypeUnknown,
		Evidence: entity.ClassifierEvidence{
			CareLabel: []string{},
			RFID:      []string{},
		},
	}
	for _, s := range careSignals {
		if s.re.MatchString(normalized) {
			res.CareScore++
			res.Evidence.CareLabel = append(res.Evidence.CareLabel, s.pattern)
		}
	}
	for _, s := range rfidSignals {
		if s.re.MatchString(normalized) {
			res.RFIDScore++
			res.Evidence.RFID = append(res.Evidence.RFID, s.pattern)
		}
	}
	switch {
	case res.CareScore == 0 && res.RFIDScore == 0:
		res.Type = constants.DocTypeUnknown
	case res.CareScore >= res.RFIDScore:
		res.Type = constants.DocTypeCareLabel
	default:
		res.Type = constants.DocTypeHangTag
	}
	return res
}
