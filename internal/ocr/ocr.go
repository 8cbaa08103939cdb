// Package ocr runs tesseract against rendered label images.
package ocr

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/garment-labs/labelaudit/internal/execx"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang        string // default "eng"
	PSM         int    // page segmentation mode; default 6 (uniform block of text)
	TessdataDir string
}

type Engine struct {
	cfg    Config
	runner execx.Runner
}

func NewEngine(cfg Config, runner execx.Runner) *Engine {
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	if runner == nil {
		runner = execx.ExecRunner{}
	}
	return &Engine{cfg: cfg, runner: runner}
}

var reBoxNoise = regexp.MustCompile(`(?m)^\s*[_\-]{3,}\s*$`)

// Image OCRs one image file and returns the recognized text with obvious
// box-drawing noise lines removed.
func (e *Engine) Image(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.Lang, "--psm", strconv.Itoa(e.cfg.PSM)}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang> --psm <n>
	out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}
