package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garment-labs/labelaudit/constants"
	"github.com/garment-labs/labelaudit/internal/barcode"
	"github.com/garment-labs/labelaudit/internal/common"
	"github.com/garment-labs/labelaudit/internal/entity"
	"github.com/garment-labs/labelaudit/internal/execx"
	"github.com/garment-labs/labelaudit/internal/export"
	"github.com/garment-labs/labelaudit/internal/ocr"
	"github.com/garment-labs/labelaudit/internal/pdfpage"
	"github.com/garment-labs/labelaudit/internal/pipeline"
	"github.com/garment-labs/labelaudit/internal/profiles"
	"github.com/garment-labs/labelaudit/internal/reconcile"
	"github.com/garment-labs/labelaudit/internal/repository"
	"github.com/garment-labs/labelaudit/internal/segment"
	"github.com/garment-labs/labelaudit/internal/sheet"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem     = flag.Bool("inmem", false, "use an in-memory SQLite run store")
		pdfs      = flag.String("pdfs", "", "comma-separated PDF paths to process")
		dir       = flag.String("dir", "", "directory to scan for PDFs")
		sheetPath = flag.String("sheet", "", "expected-UPC spreadsheet; enables validation")
		out       = flag.String("out", "", "output XLSX report path (with -sheet; defaults to validation_report.xlsx)")
		jsonPath  = flag.String("json", "", "write the result payload as JSON to this path")
	)
	flag.Parse()

	if *pdfs == "" && *dir == "" {
		printError("Error: either -pdfs or -dir is required\n")
		os.Exit(1)
	}
	if *sheetPath != "" && *out == "" {
		*out = "validation_report.xlsx"
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()

	paths, err := collectPDFs(*pdfs, *dir)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		printError("Error: no PDF files found\n")
		os.Exit(1)
	}

	storeCfg := repository.Config{
		DSN:             cfg.Database.DSN,
		SQLitePath:      cfg.Database.SQLitePath,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}
	if *inmem {
		storeCfg = repository.Config{SQLitePath: ":memory:"}
	}
	store, err := repository.Open(ctx, storeCfg, logger)
	if err != nil {
		logger.Error("failed to open run store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	profile := profiles.Default()
	if cfg.Extract.ProfilePath != "" {
		profile, err = profiles.Load(cfg.Extract.ProfilePath)
		if err != nil {
			logger.Error("failed to load profile", "path", cfg.Extract.ProfilePath, "error", err)
			os.Exit(1)
		}
	}
	logger.Info("using profile", "name", profile.Name)

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

	result := entity.ExtractResult{
		CareLabels: []entity.MergedItem{},
		HangTags:   []entity.MergedItem{},
	}
	names := make([]string, 0, len(paths))
	processed := 0
	failures := 0
	for _, path := range paths {
		logger.Info("processing file", "file", path)
		doc, err := pipe.Process(ctx, path)
		if err != nil {
			logger.Error("failed to process file", "file", path, "error", err)
			failures++
			continue
		}
		result.Absorb(doc)
		names = append(names, filepath.Base(path))
		processed++
	}

	payload, err := json.Marshal(result)
	if err != nil {
		logger.Error("failed to encode result", "error", err)
		os.Exit(1)
	}
	saveRun(ctx, store, constants.RunKindExtraction, names, payload,
		len(result.CareLabels)+len(result.HangTags), logger)

	var report *entity.ValidationReport
	if *sheetPath != "" {
		rows, err := sheet.ReadExpectedFile(*sheetPath)
		if err != nil {
			logger.Error("failed to read sheet", "sheet", *sheetPath, "error", err)
			os.Exit(1)
		}
		r := reconcile.Validate(rows, result.CareLabels, result.HangTags)
		report = &r

		reportPayload, err := json.Marshal(report)
		if err != nil {
			logger.Error("failed to encode report", "error", err)
			os.Exit(1)
		}
		payload = reportPayload
		saveRun(ctx, store, constants.RunKindValidation, append(names, filepath.Base(*sheetPath)),
			reportPayload, report.Summary.Rows, logger)

		xlsxBytes, err := export.NewService(logger).ValidationReportXLSX(*report)
		if err != nil {
			logger.Error("failed to render report", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
			logger.Error("failed to write output file", "output", *out, "error", err)
			os.Exit(1)
		}
	}

	if *jsonPath != "" {
		if err := os.WriteFile(*jsonPath, payload, 0644); err != nil {
			logger.Error("failed to write JSON file", "output", *jsonPath, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("batch complete",
		"files_processed", processed,
		"failures", failures,
		"care_labels", len(result.CareLabels),
		"hang_tags", len(result.HangTags))

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files processed: %d\n", processed)
	fmt.Printf("- Failures: %d\n", failures)
	fmt.Printf("- Care labels: %d\n", len(result.CareLabels))
	fmt.Printf("- Hang tags: %d\n", len(result.HangTags))
	if report != nil {
		fmt.Printf("- Rows validated: %d\n", report.Summary.Rows)
		fmt.Printf("- Care label UPC matches: %d\n", report.Summary.CareLabelMatches)
		fmt.Printf("- Hang tag UPC matches: %d\n", report.Summary.HangTagMatches)
		fmt.Printf("- Report: %s\n", *out)
	}
}

// collectPDFs merges the -pdfs list with a recursive -dir scan.
func collectPDFs(list, dir string) ([]string, error) {
	var paths []string
	if list != "" {
		for _, p := range strings.Split(list, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				paths = append(paths, p)
			}
		}
	}
	if dir != "" {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && constants.IsPDFName(d.Name()) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
	}
	return paths, nil
}

func saveRun(ctx context.Context, store repository.RunStore, kind constants.RunKind, names []string, payload []byte, count int, logger *slog.Logger) {
	run := &entity.Run{
		ID:        uuid.New(),
		Kind:      kind,
		Filenames: names,
		Payload:   payload,
		ItemCount: count,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.SaveRun(ctx, run); err != nil {
		logger.Error("failed to save run", "kind", kind, "error", err)
		return
	}
	logger.Info("run saved", "kind", kind, "run_id", run.ID)
}
