package fields

import (
	"regexp"
	"strings"

	"github.com/garment-labs/labelaudit/internal/entity"
	"github.com/garment-labs/labelaudit/internal/textnorm"
)

// Header lines are matched against raw page text; normalizing first would
// erase the newlines that delimit the values.
var (
	reParentReference = regexp.MustCompile(`Reference #:\s*([^\n]+)`)
	reParentJob       = regexp.MustCompile(`Job #:\s*([^\n]+)`)
	reParentStyle     = regexp.MustCompile(`Style #:\s*([^\n]+)`)
	reParentPO        = regexp.MustCompile(`PO #:\s*([^\n]+)`)
	reParentDate      = regexp.MustCompile(`Date:\s*([^\n]+)`)
)

// ParentRules extracts the header block shared by every label on a sheet:
// the reference/job/style/PO/date lines, the known product and manufacturer
// literals, and the sheet color. The same rules serve both document types.
type ParentRules struct {
	products      []Product
	manufacturers []Manufacturer
	color         *regexp.Regexp
}

// NewParentRules compiles the header rules from the catalog. Color accepts
// the catalog's OCR variants in addition to the canonical names.
func NewParentRules(cat Catalog) *ParentRules {
	vocab := make([]string, 0, len(cat.Colors)+len(cat.ColorVariants))
	vocab = append(vocab, cat.Colors...)
	vocab = append(vocab, cat.ColorVariants...)
	return &ParentRules{
		products:      cat.Products,
		manufacturers: cat.Manufacturers,
		color:         regexp.MustCompile(`(?i)` + colorPattern(vocab, true)),
	}
}

// Extract pulls the header fields from the first page's text. Fields that do
// not appear stay empty.
func (p *ParentRules) Extract(raw string) entity.ParentInfo {
	var info entity.ParentInfo

	if m := reParentReference.FindStringSubmatch(raw); m != nil {
		info.Reference = strings.TrimSpace(m[1])
	}
	if m := reParentJob.FindStringSubmatch(raw); m != nil {
		info.JobNumber = strings.TrimSpace(m[1])
	}
	if m := reParentStyle.FindStringSubmatch(raw); m != nil {
		info.StyleNumber = strings.TrimSpace(m[1])
	}
	if m := reParentPO.FindStringSubmatch(raw); m != nil {
		info.PONumber = strings.TrimSpace(m[1])
	}
	if m := reParentDate.FindStringSubmatch(raw); m != nil {
		info.Date = strings.TrimSpace(m[1])
	}

	for _, prod := range p.products {
		if strings.Contains(raw, prod.Literal) {
			info.ProductName = prod.Name
			break
		}
	}

	for _, mfr := range p.manufacturers {
		if strings.Contains(raw, mfr.Name) {
			info.Manufacturer = mfr.Name
			info.ManufacturerLocation = mfr.Location
			break
		}
	}

	normalized := textnorm.Normalize(raw)
	if m := p.color.FindStringSubmatch(normalized); m != nil {
		info.Color = textnorm.CollapseUpper(m[1])
	}

	return info
}
