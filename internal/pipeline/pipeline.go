// Package pipeline coordinates per-document processing: classify the first
// page, route to the matching grid and rule table, extract items, and attach
// the document-level parent header.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/garment-labs/labelaudit/constants"
	"github.com/garment-labs/labelaudit/internal/classify"
	"github.com/garment-labs/labelaudit/internal/entity"
	"github.com/garment-labs/labelaudit/internal/fields"
	"github.com/garment-labs/labelaudit/internal/profiles"
	"github.com/garment-labs/labelaudit/internal/segment"
)

// Pipeline runs one document end to end. Safe for concurrent use; all state
// is built once at construction.
type Pipeline struct {
	seg     *segment.Segmenter
	profile profiles.Profile
	care    *fields.RuleSet
	hang    *fields.RuleSet
	parent  *fields.ParentRules
	logger  *slog.Logger
}

func New(seg *segment.Segmenter, profile profiles.Profile, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		seg:     seg,
		profile: profile,
		care:    fields.CareRules(profile.Catalog),
		hang:    fields.HangRules(profile.Catalog),
		parent:  fields.NewParentRules(profile.Catalog),
		logger:  logger,
	}
}

// Classify reads the first page (OCR fallback included) and scores its text.
func (p *Pipeline) Classify(ctx context.Context, path string) (entity.ClassificationResult, error) {
	text, err := p.seg.ReadPage(ctx, path, 1)
	if err != nil {
		return entity.ClassificationResult{}, fmt.Errorf("read page 1: %w", err)
	}
	res := classify.Classify(text)
	p.logger.Info("pipeline.classify.ok",
		"file", filepath.Base(path),
		"type", res.Type,
		"care_score", res.CareScore,
		"rfid_score", res.RFIDScore,
	)
	return res, nil
}

// Process classifies one document and extracts items down the routed path.
// Unknown documents try the care-label path first and fall back to hang tags
// when it yields no items. The returned DocType is the routed type, never
// unknown.
func (p *Pipeline) Process(ctx context.Context, path string) (entity.DocumentResult, error) {
	pageText, err := p.seg.ReadPage(ctx, path, 1)
	if err != nil {
		return entity.DocumentResult{}, fmt.Errorf("read page 1: %w", err)
	}
	cls := classify.Classify(pageText)

	result := entity.DocumentResult{ParentInfo: p.parent.Extract(pageText)}
	switch cls.Type {
	case constants.DocTypeCareLabel:
		items, err := p.seg.Extract(ctx, path, p.profile.CareGrid, p.care)
		if err != nil {
			return result, fmt.Errorf("extract care labels: %w", err)
		}
		result.DocType = constants.DocTypeCareLabel
		result.CareLabels = items
	case constants.DocTypeHangTag:
		items, err := p.seg.Extract(ctx, path, p.profile.HangGrid, p.hang)
		if err != nil {
			return result, fmt.Errorf("extract hang tags: %w", err)
		}
		result.DocType = constants.DocTypeHangTag
		result.HangTags = items
	default:
		items, err := p.seg.Extract(ctx, path, p.profile.CareGrid, p.care)
		if err != nil {
			return result, fmt.Errorf("extract care labels: %w", err)
		}
		if len(items) > 0 {
			result.DocType = constants.DocTypeCareLabel
			result.CareLabels = items
			break
		}
		hangItems, err := p.seg.Extract(ctx, path, p.profile.HangGrid, p.hang)
		if err != nil {
			return result, fmt.Errorf("extract hang tags: %w", err)
		}
		result.DocType = constants.DocTypeHangTag
		result.HangTags = hangItems
	}

	p.logger.Info("pipeline.process.ok",
		"file", filepath.Base(path),
		"classified", cls.Type,
		"routed", result.DocType,
		"care_items", len(result.CareLabels),
		"hang_items", len(result.HangTags),
	)
	return result, nil
}
