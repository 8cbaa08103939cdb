// Package segment slices label sheet pages into their printed column grid
// and extracts one item per region, falling back to OCR when a region has no
// usable embedded text.
package segment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/garment-labs/labelaudit/internal/entity"
	"github.com/garment-labs/labelaudit/internal/fields"
	"github.com/garment-labs/labelaudit/internal/pdfpage"
)

// PageSource provides geometry, clip text, and rasterization for one PDF.
// *pdfpage.Engine is the production implementation.
type PageSource interface {
	PageSizes(ctx context.Context, path string) ([]pdfpage.Size, error)
	PageText(ctx context.Context, path string, page int) (string, error)
	RegionText(ctx context.Context, path string, page int, clip pdfpage.Rect) (string, error)
	RenderPage(ctx context.Context, path string, page int, zoom float64, dest string) error
	RenderRegion(ctx context.Context, path string, page int, clip pdfpage.Rect, zoom float64, dest string) error
}

// TextRecognizer turns a rendered image into text.
type TextRecognizer interface {
	Image(ctx context.Context, path string) (string, error)
}

// BarcodeReader reads the first barcode payload from a rendered image.
type BarcodeReader interface {
	First(ctx context.Context, path string) (string, error)
}

// Regions with fewer printable characters than this get the OCR fallback.
const ocrFallbackThreshold = 20

type Config struct {
	// ArtifactDir keeps every region image on disk and records its path on
	// the item. Empty means region images live in a temp dir for the
	// duration of the call.
	ArtifactDir string
	// PageZoom is the render zoom for whole-page OCR in ReadPage; default 2.0.
	PageZoom float64
}

// Segmenter extracts label items from sheet PDFs. The OCR and barcode
// collaborators are optional; a nil collaborator disables that capability and
// extraction continues on embedded text alone.
type Segmenter struct {
	pdf      PageSource
	ocr      TextRecognizer
	barcodes BarcodeReader
	cfg      Config
	logger   *slog.Logger
}

func New(pdf PageSource, ocr TextRecognizer, barcodes BarcodeReader, cfg Config, logger *slog.Logger) *Segmenter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PageZoom <= 0 {
		cfg.PageZoom = 2.0
	}
	return &Segmenter{pdf: pdf, ocr: ocr, barcodes: barcodes, cfg: cfg, logger: logger}
}

// ReadPage returns the text of one page for classification and header
// extraction. When the embedded text is too thin and OCR is available, the
// page is rendered and the recognized text appended.
func (s *Segmenter) ReadPage(ctx context.Context, path string, page int) (string, error) {
	text, err := s.pdf.PageText(ctx, path, page)
	if err != nil {
		return "", err
	}
	if s.ocr == nil || nonWhitespaceLen(text) >= ocrFallbackThreshold {
		return text, nil
	}

	tmp, err := os.MkdirTemp("", "labelaudit-*")
	if err != nil {
		s.logger.Warn("segment.page_ocr_skipped", "error", err)
		return text, nil
	}
	defer func() {
		if err := os.RemoveAll(tmp); err != nil {
			s.logger.Warn("segment.tmpdir_cleanup_failed", "dir", tmp, "error", err)
		}
	}()

	dest := filepath.Join(tmp, fmt.Sprintf("page%d.png", page))
	if err := s.pdf.RenderPage(ctx, path, page, s.cfg.PageZoom, dest); err != nil {
		s.logger.Warn("segment.page_render_failed", "page", page, "error", err)
		return text, nil
	}
	ocrText, err := s.ocr.Image(ctx, dest)
	if err != nil {
		s.logger.Warn("segment.page_ocr_failed", "page", page, "error", err)
		return text, nil
	}
	return text + "\n" + ocrText, nil
}

// Extract walks every page of the document through the grid and returns one
// item per region in page then column order. A region always yields an item,
// even when no field matched; callers rely on the item count per sheet.
func (s *Segmenter) Extract(ctx context.Context, path string, grid GridConfig, rules *fields.RuleSet) ([]entity.LabelItem, error) {
	sizes, err := s.pdf.PageSizes(ctx, path)
	if err != nil {
		return nil, err
	}

	imageDir, err := s.imageDir()
	if err != nil {
		return nil, err
	}
	if imageDir != "" && s.cfg.ArtifactDir == "" {
		defer func() {
			if err := os.RemoveAll(imageDir); err != nil {
				s.logger.Warn("segment.tmpdir_cleanup_failed", "dir", imageDir, "error", err)
			}
		}()
	}

	items := []entity.LabelItem{}
	for _, size := range sizes {
		for _, region := range grid.Regions(size.Page, size.Width, size.Height) {
			items = append(items, s.extractRegion(ctx, path, grid, region, rules, imageDir))
		}
	}
	s.logger.Debug("segment.extract",
		"path", path, "doc_type", rules.DocType(), "pages", len(sizes), "items", len(items),
	)
	return items, nil
}

func (s *Segmenter) extractRegion(ctx context.Context, path string, grid GridConfig, region Region, rules *fields.RuleSet, imageDir string) entity.LabelItem {
	text, err := s.pdf.RegionText(ctx, path, region.Page, region.Rect)
	if err != nil {
		s.logger.Warn("segment.region_text_failed",
			"page", region.Page, "position", region.Position, "error", err)
		text = ""
	}

	needOCR := s.ocr != nil && nonWhitespaceLen(text) < ocrFallbackThreshold
	needImage := s.cfg.ArtifactDir != "" || s.barcodes != nil || needOCR

	var imgPath string
	if needImage && imageDir != "" {
		dest := filepath.Join(imageDir, fmt.Sprintf("page%d_label%d.png", region.Page, grid.labelIndex(region.Position)))
		if err := s.pdf.RenderRegion(ctx, path, region.Page, region.Rect, grid.Zoom, dest); err != nil {
			s.logger.Warn("segment.render_failed",
				"page", region.Page, "position", region.Position, "error", err)
		} else {
			imgPath = dest
		}
	}

	var ocrText string
	if needOCR && imgPath != "" {
		if ocrText, err = s.ocr.Image(ctx, imgPath); err != nil {
			s.logger.Warn("segment.region_ocr_failed",
				"page", region.Page, "position", region.Position, "error", err)
			ocrText = ""
		}
	}

	item := entity.LabelItem{
		Fields:   rules.Extract(joinNonBlank(text, ocrText)),
		Page:     region.Page,
		Position: region.Position,
	}

	if s.barcodes != nil && imgPath != "" {
		if payload, err := s.barcodes.First(ctx, imgPath); err != nil {
			s.logger.Warn("segment.barcode_failed",
				"page", region.Page, "position", region.Position, "error", err)
		} else {
			item.Barcode = payload
		}
	}
	if s.cfg.ArtifactDir != "" && imgPath != "" {
		item.ImagePath = imgPath
	}
	return item
}

// imageDir resolves where region images go: the artifact dir when configured,
// a temp dir when some capability needs images, or nothing at all.
func (s *Segmenter) imageDir() (string, error) {
	if s.cfg.ArtifactDir != "" {
		if err := os.MkdirAll(s.cfg.ArtifactDir, 0o755); err != nil {
			return "", fmt.Errorf("artifact dir: %w", err)
		}
		return s.cfg.ArtifactDir, nil
	}
	if s.ocr == nil && s.barcodes == nil {
		return "", nil
	}
	tmp, err := os.MkdirTemp("", "labelaudit-*")
	if err != nil {
		return "", fmt.Errorf("temp image dir: %w", err)
	}
	return tmp, nil
}

func nonWhitespaceLen(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

func joinNonBlank(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
