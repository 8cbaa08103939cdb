// Package pdfpage reads page geometry, embedded text, and rendered images out
// of PDF files through the poppler command line tools.
package pdfpage

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/garment-labs/labelaudit/internal/execx"
)

// Config names the poppler binaries; empty fields fall back to PATH lookup.
type Config struct {
	Pdfinfo   string
	Pdftotext string
	Pdftoppm  string
}

// Rect is a page-space rectangle in points, origin top-left.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Size is one page's media box in points. Page is 1-based.
type Size struct {
	Page   int
	Width  float64
	Height float64
}

type Engine struct {
	cfg    Config
	runner execx.Runner
}

func NewEngine(cfg Config, runner execx.Runner) *Engine {
	if cfg.Pdfinfo == "" {
		cfg.Pdfinfo = "pdfinfo"
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if runner == nil {
		runner = execx.ExecRunner{}
	}
	return &Engine{cfg: cfg, runner: runner}
}

// pdfinfo -f 1 -l -1 prints one "Page N size: W x H pts" line per page.
var rePageSize = regexp.MustCompile(`(?m)^Page\s+(\d+)\s+size:\s+([0-9.]+)\s+x\s+([0-9.]+)\s+pts`)

// PageSizes returns the media box of every page, in page order.
func (e *Engine) PageSizes(ctx context.Context, path string) ([]Size, error) {
	out, _, err := e.runner.Run(ctx, e.cfg.Pdfinfo, "-f", "1", "-l", "-1", path)
	if err != nil {
		return nil, fmt.Errorf("pdfinfo: %w", err)
	}
	var sizes []Size
	for _, m := range rePageSize.FindAllStringSubmatch(string(out), -1) {
		page, _ := strconv.Atoi(m[1])
		w, _ := strconv.ParseFloat(m[2], 64)
		h, _ := strconv.ParseFloat(m[3], 64)
		sizes = append(sizes, Size{Page: page, Width: w, Height: h})
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("pdfinfo: no page sizes for %q", path)
	}
	return sizes, nil
}

// PageText extracts the embedded text of one page. Page is 1-based.
func (e *Engine) PageText(ctx context.Context, path string, page int) (string, error) {
	return e.text(ctx, path, page, nil)
}

// RegionText extracts the embedded text inside clip on one page.
func (e *Engine) RegionText(ctx context.Context, path string, page int, clip Rect) (string, error) {
	return e.text(ctx, path, page, &clip)
}

func (e *Engine) text(ctx context.Context, path string, page int, clip *Rect) (string, error) {
	args := []string{"-f", strconv.Itoa(page), "-l", strconv.Itoa(page)}
	if clip != nil {
		// pdftotext crops on integer point coordinates; floor the origin and
		// ceil the extent so the region never loses its edge glyphs.
		x := int(math.Floor(clip.X0))
		y := int(math.Floor(clip.Y0))
		w := int(math.Ceil(clip.X1)) - x
		h := int(math.Ceil(clip.Y1)) - y
		args = append(args,
			"-x", strconv.Itoa(x),
			"-y", strconv.Itoa(y),
			"-W", strconv.Itoa(w),
			"-H", strconv.Itoa(h),
		)
	}
	args = append(args, "-enc", "UTF-8", "-eol", "unix", path, "-")
	out, _, err := e.runner.Run(ctx, e.cfg.Pdftotext, args...)
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

// RenderPage rasterizes one full page to a PNG at dest. Zoom is relative to
// 72 DPI, so zoom 2.0 renders at 144 DPI.
func (e *Engine) RenderPage(ctx context.Context, path string, page int, zoom float64, dest string) error {
	return e.render(ctx, path, page, zoom, nil, dest)
}

// RenderRegion rasterizes the clip rectangle of one page to a PNG at dest.
func (e *Engine) RenderRegion(ctx context.Context, path string, page int, clip Rect, zoom float64, dest string) error {
	return e.render(ctx, path, page, zoom, &clip, dest)
}

func (e *Engine) render(ctx context.Context, path string, page int, zoom float64, clip *Rect, dest string) error {
	if zoom <= 0 {
		zoom = 1.0
	}
	args := []string{
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		"-r", strconv.Itoa(int(math.Round(72 * zoom))),
	}
	if clip != nil {
		// pdftoppm crop coordinates are in output pixels, so scale by zoom.
		x := int(math.Floor(clip.X0 * zoom))
		y := int(math.Floor(clip.Y0 * zoom))
		w := int(math.Ceil(clip.X1*zoom)) - x
		h := int(math.Ceil(clip.Y1*zoom)) - y
		args = append(args,
			"-x", strconv.Itoa(x),
			"-y", strconv.Itoa(y),
			"-W", strconv.Itoa(w),
			"-H", strconv.Itoa(h),
		)
	}
	// pdftoppm appends the .png suffix itself
	args = append(args, "-png", "-singlefile", path, strings.TrimSuffix(dest, ".png"))
	if _, _, err := e.runner.Run(ctx, e.cfg.Pdftoppm, args...); err != nil {
		return fmt.Errorf("pdftoppm: %w", err)
	}
	return nil
}
