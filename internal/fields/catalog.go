package fields

import (
	"regexp"
	"strings"
)

// Product maps a literal header phrase to its display name.
type Product struct {
	Literal string `yaml:"literal"`
	Name    string `yaml:"name"`
}

// Manufacturer maps a literal header phrase to the maker and its location.
type Manufacturer struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
}

// Catalog is the site-specific vocabulary behind the pattern rules: the brand
// style prefix, the known color names, and the fixed header literals. Grid
// profiles carry one per program.
type Catalog struct {
	BrandPrefix   string         `yaml:"brand_prefix"`
	Colors        []string       `yaml:"colors"`
	ColorVariants []string       `yaml:"color_variants"` // OCR misreads accepted in the header block only
	Products      []Product      `yaml:"products"`
	Manufacturers []Manufacturer `yaml:"manufacturers"`
}

// DefaultCatalog returns the vocabulary for the AVIA activewear program.
func DefaultCatalog() Catalog {
	return Catalog{
		BrandPrefix:   "AV",
		Colors:        []string{"BLACK SOOT", "SALSA DELIGHT"},
		ColorVariants: []string{"BLAC SOOT"},
		Products: []Product{
			{Literal: "STRETCH WOVEN DRESS", Name: "Stretch Woven Dress"},
		},
		Manufacturers: []Manufacturer{
			{Name: "r-pac International Corporation", Location: "Taiwan"},
		},
	}
}

func (c Catalog) brandPrefix() string {
	if c.BrandPrefix == "" {
		return "AV"
	}
	return regexp.QuoteMeta(c.BrandPrefix)
}

// colorPattern joins color names into one alternation, with each name's inner
// spaces matching any whitespace run.
func colorPattern(colors []string, wordBound bool) string {
	alts := make([]string, 0, len(colors))
	for _, c := range colors {
		parts := strings.Fields(c)
		for i := range parts {
			parts[i] = regexp.QuoteMeta(parts[i])
		}
		alts = append(alts, strings.Join(parts, `\s+`))
	}
	p := "(" + strings.Join(alts, "|") + ")"
	if wordBound {
		p = `\b` + p + `\b`
	}
	return p
}
