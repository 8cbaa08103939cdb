// Package profiles carries the per-program extraction profile: grid geometry
// for each document type plus the field vocabulary. Profiles are data, not
// code; a YAML file can override any part of the compiled-in defaults.
package profiles

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/garment-labs/labelaudit/internal/common"
	"github.com/garment-labs/labelaudit/internal/fields"
	"github.com/garment-labs/labelaudit/internal/segment"
)

// Profile bundles everything extraction needs to know about one label
// program.
type Profile struct {
	Name     string             `yaml:"name"`
	CareGrid segment.GridConfig `yaml:"care_grid"`
	HangGrid segment.GridConfig `yaml:"hang_grid"`
	Catalog  fields.Catalog     `yaml:"catalog"`
}

// Default returns the built-in profile for the r-pac Avia program.
func Default() Profile {
	return Profile{
		Name:     "rpac-avia",
		CareGrid: segment.CareGrid(),
		HangGrid: segment.HangGrid(),
		Catalog:  fields.DefaultCatalog(),
	}
}

// Load reads a YAML profile file on top of the defaults, so a file only has
// to name the keys it changes.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("invalid profile %s: %w", path, err)
	}
	return p, nil
}

// Validate rejects values the extraction grid cannot work with. Zero columns
// or an inverted vertical band would silently produce empty or negative
// regions; an empty color vocabulary degenerates the hang-tag color pattern
// into match-everything.
func (p Profile) Validate() error {
	v := common.NewValidator()
	v.Field("name", p.Name, common.Required)
	validateGrid(v, "care_grid", p.CareGrid)
	validateGrid(v, "hang_grid", p.HangGrid)
	if len(p.Catalog.Colors) == 0 {
		v.Field("catalog.colors", p.Catalog.Colors, ruleError("must list at least one color"))
	}
	return v.Error()
}

func validateGrid(v *common.Validator, prefix string, g segment.GridConfig) {
	v.Field(prefix+".columns", g.Columns, common.Positive)
	v.Field(prefix+".zoom", g.Zoom, common.Positive)
	v.Field(prefix+".top_ratio", g.TopRatio, common.Ratio)
	v.Field(prefix+".bottom_ratio", g.BottomRatio, common.Ratio)
	if g.BottomRatio <= g.TopRatio {
		v.Field(prefix+".bottom_ratio", g.BottomRatio, ruleError("must be greater than top_ratio"))
	}
}

// ruleError builds a rule that always fails with the given message, for
// checks decided by the caller.
func ruleError(message string) common.ValidationRule {
	return func(fieldName string, value interface{}) *common.ValidationError {
		return &common.ValidationError{Field: fieldName, Value: value, Message: message}
	}
}
