// Package fields turns the text of a single label region into structured
// garment metadata. Rule sets are compiled per document type from a Catalog
// and applied to raw region text; most rules match the normalized form, while
// line-oriented and mixed-case rules read the raw text directly.
package fields

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/garment-labs/labelaudit/constants"
	"github.com/garment-labs/labelaudit/internal/entity"
	"github.com/garment-labs/labelaudit/internal/textnorm"
	"github.com/garment-labs/labelaudit/internal/upc"
)

// sizeTokens lists letter sizes longest-first so XL never matches inside XXL.
var sizeTokens = []string{"XXXL", "XXL", "XL", "L", "M", "S", "XS"}

// numericSizeMap converts a numeric size range to its letter size. Bare "20"
// and "22" appear on extended-size labels without a range.
var numericSizeMap = map[string]string{
	"0-2":   "XS",
	"4-6":   "S",
	"8-10":  "M",
	"12-14": "L",
	"16-18": "XL",
	"20":    "XXL",
	"22":    "XXXL",
}

var (
	reSizeToken   = regexp.MustCompile(`\b(` + strings.Join(sizeTokens, "|") + `)\b`)
	reSizeRanged  = regexp.MustCompile(`\b(` + strings.Join(sizeTokens, "|") + `)\b\s*\(([^)]+)\)`)
	reNumericSize = regexp.MustCompile(`\b(\d{1,2}\s*-\s*\d{1,2}|\d{1,2})\b`)
	reRNLoose     = regexp.MustCompile(`RN#?\s*(\d+)`)
	reRNStrict    = regexp.MustCompile(`RN#\s*(\d+)`)
	reCountry     = regexp.MustCompile(`(?i)(?:Made In|Hecho En)\s+([A-Za-z ]+)`)
	reComposition = regexp.MustCompile(`(\d{1,3})%\s*([A-Za-z][A-Za-z\s/&-]+)`)
	reExclusive   = regexp.MustCompile(`(?i)Exclusive of Decoration`)
)

// RuleSet holds the compiled patterns for one document type. A nil pattern
// disables that rule.
type RuleSet struct {
	docType constants.DocType

	sizeRanged  *regexp.Regexp // letter size with required parenthesized range
	sizeToken   *regexp.Regexp // bare letter size
	rangeAfter  map[string]*regexp.Regexp
	numericSize *regexp.Regexp
	rn          *regexp.Regexp
	style       *regexp.Regexp
	country     *regexp.Regexp
	composition *regexp.Regexp
	exclusive   *regexp.Regexp
	color       *regexp.Regexp
	colorCode   *regexp.Regexp
}

// CareRules builds the rule set for sewn-in care labels: bare letter sizes
// with a numeric fallback, loose RN, origin, fiber composition, and the
// decoration exclusivity flag. Care sheets carry color in the header only, so
// no color rule.
func CareRules(cat Catalog) *RuleSet {
	rangeAfter := make(map[string]*regexp.Regexp, len(sizeTokens))
	for _, tok := range sizeTokens {
		rangeAfter[tok] = regexp.MustCompile(tok + `\s*\(([^)]+)\)`)
	}
	return &RuleSet{
		docType:     constants.DocTypeCareLabel,
		sizeToken:   reSizeToken,
		rangeAfter:  rangeAfter,
		numericSize: reNumericSize,
		rn:          reRNLoose,
		style:       regexp.MustCompile(`\b(` + cat.brandPrefix() + `[A-Z0-9]+)\b`),
		country:     reCountry,
		composition: reComposition,
		exclusive:   reExclusive,
	}
}

// HangRules builds the rule set for RFID hang tags: the letter size must carry
// its parenthesized range, RN requires the # sign, and the style shape is the
// stricter prefix-digits-letters-digits form. Hang tags print color and a
// trailing color code.
func HangRules(cat Catalog) *RuleSet {
	colors := colorPattern(cat.Colors, false)
	return &RuleSet{
		docType:    constants.DocTypeHangTag,
		sizeRanged: reSizeRanged,
		rn:         reRNStrict,
		style:      regexp.MustCompile(`(` + cat.brandPrefix() + `\d+[A-Z]+\d+)`),
		color:      regexp.MustCompile(`(?i)` + colors),
		colorCode:  regexp.MustCompile(`(?i)` + colors + `\s+(\d+)`),
	}
}

// DocType reports which document type this rule set was compiled for.
func (r *RuleSet) DocType() constants.DocType {
	return r.docType
}

// Extract runs every enabled rule against the region text and returns the
// populated record. Missing fields stay zero.
func (r *RuleSet) Extract(raw string) entity.Fields {
	normalized := textnorm.Normalize(raw)
	var f entity.Fields

	f.Size, f.SizeRange = r.extractSize(normalized)

	if r.rn != nil {
		if m := r.rn.FindStringSubmatch(normalized); m != nil {
			f.RNNumber = m[1]
		}
	}

	if code := upc.FirstValid(normalized); code != "" {
		f.UPC = code
	} else if cand := upc.Candidate(normalized); cand != "" {
		f.UPCCandidate = cand
	}

	if r.country != nil {
		if m := r.country.FindStringSubmatch(raw); m != nil {
			f.CountryOfOrigin = strings.TrimSpace(m[1])
		}
	}

	if r.composition != nil {
		f.Composition = extractComposition(r.composition, raw)
	}

	if r.exclusive != nil && r.exclusive.MatchString(raw) {
		f.ExclusiveOfDecoration = true
	}

	if r.style != nil {
		if m := r.style.FindStringSubmatch(normalized); m != nil {
			f.StyleNumber = m[1]
		}
	}

	if r.color != nil {
		if m := r.color.FindStringSubmatch(normalized); m != nil {
			f.Color = textnorm.CollapseUpper(m[1])
		}
	}

	if r.colorCode != nil {
		if m := r.colorCode.FindStringSubmatch(normalized); m != nil {
			f.ColorCode = m[2]
		}
	}

	return f
}

// extractSize resolves size and size range for the document type. Ranged mode
// requires the parenthesized range next to the token. Token mode takes the
// first letter size and then looks for that token's own range anywhere in the
// text; if no letter size appears, a numeric range maps back to a letter size
// where the catalog knows the mapping.
func (r *RuleSet) extractSize(normalized string) (size, sizeRange string) {
	if r.sizeRanged != nil {
		if m := r.sizeRanged.FindStringSubmatch(normalized); m != nil {
			return m[1], m[2]
		}
		return "", ""
	}
	if r.sizeToken != nil {
		if m := r.sizeToken.FindStringSubmatch(normalized); m != nil {
			size = m[1]
			if ra := r.rangeAfter[size]; ra != nil {
				if rm := ra.FindStringSubmatch(normalized); rm != nil {
					sizeRange = rm[1]
				}
			}
			return size, sizeRange
		}
	}
	if r.numericSize != nil {
		if m := r.numericSize.FindStringSubmatch(normalized); m != nil {
			sizeRange = strings.ReplaceAll(m[1], " ", "")
			return numericSizeMap[sizeRange], sizeRange
		}
	}
	return "", ""
}

func extractComposition(re *regexp.Regexp, raw string) []entity.Composition {
	var comps []entity.Composition
	for _, m := range re.FindAllStringSubmatch(raw, -1) {
		pct, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		material := strings.Trim(strings.Join(strings.Fields(m[2]), " "), " .;/")
		if material == "" {
			continue
		}
		comps = append(comps, entity.Composition{Percent: pct, Material: material})
	}
	return comps
}
