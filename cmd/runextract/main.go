package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/garment-labs/labelaudit/internal/barcode"
	"github.com/garment-labs/labelaudit/internal/common"
	"github.com/garment-labs/labelaudit/internal/execx"
	"github.com/garment-labs/labelaudit/internal/ocr"
	"github.com/garment-labs/labelaudit/internal/pdfpage"
	"github.com/garment-labs/labelaudit/internal/pipeline"
	"github.com/garment-labs/labelaudit/internal/profiles"
	"github.com/garment-labs/labelaudit/internal/segment"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runextract <pdf-path>")
		os.Exit(2)
	}
	path := os.Args[1]
	if _, err := os.Stat(path); err != nil {
		logger.Error("cannot read file", "file", path, "error", err)
		os.Exit(2)
	}

	cfg := common.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	profile := profiles.Default()
	if cfg.Extract.ProfilePath != "" {
		p, err := profiles.Load(cfg.Extract.ProfilePath)
		if err != nil {
			logger.Error("load profile", "path", cfg.Extract.ProfilePath, "error", err)
			os.Exit(1)
		}
		profile = p
	}

	runner := execx.ExecRunner{}
	engine := pdfpage.NewEngine(pdfpage.Config{
		Pdfinfo:   cfg.PDF.Pdfinfo,
		Pdftotext: cfg.PDF.Pdftotext,
		Pdftoppm:  cfg.PDF.Pdftoppm,
	}, runner)
	recognizer := ocr.NewEngine(ocr.Config{
		Tesseract:   cfg.OCR.Tesseract,
		Lang:        cfg.OCR.Lang,
		TessdataDir: cfg.OCR.TessdataDir,
	}, runner)
	decoder := barcode.NewDecoder(barcode.Config{Zbarimg: cfg.Barcode.Zbarimg}, runner)
	seg := segment.New(engine, recognizer, decoder, segment.Config{ArtifactDir: cfg.Extract.ArtifactDir}, logger)
	pipe := pipeline.New(seg, profile, logger)

	start := time.Now()
	result, err := pipe.Process(ctx, path)
	dur := time.Since(start)

	if err != nil {
		logger.Error("extraction failed",
			"file", path, "error", err, "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	logger.Info("extraction OK",
		"file", path,
		"doc_type", result.DocType,
		"care_labels", len(result.CareLabels),
		"hang_tags", len(result.HangTags),
		"duration_ms", dur.Milliseconds())

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
