package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garment-labs/labelaudit/internal/barcode"
	"github.com/garment-labs/labelaudit/internal/common"
	"github.com/garment-labs/labelaudit/internal/execx"
	"github.com/garment-labs/labelaudit/internal/export"
	"github.com/garment-labs/labelaudit/internal/ocr"
	"github.com/garment-labs/labelaudit/internal/pdfpage"
	"github.com/garment-labs/labelaudit/internal/pipeline"
	"github.com/garment-labs/labelaudit/internal/profiles"
	"github.com/garment-labs/labelaudit/internal/repository"
	"github.com/garment-labs/labelaudit/internal/segment"
	"github.com/garment-labs/labelaudit/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		SQLitePath:      cfg.Database.SQLitePath,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("opening run store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	profile := profiles.Default()
	if cfg.Extract.ProfilePath != "" {
		profile, err = profiles.Load(cfg.Extract.ProfilePath)
		if err != nil {
			logger.Error("loading profile", "path", cfg.Extract.ProfilePath, "error", err)
			os.Exit(1)
		}
		logger.Info("profile loaded", "path", cfg.Extract.ProfilePath, "name", profile.Name)
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
	handler := server.NewHandler(pipe, store, export.NewService(logger), logger)
	router := server.SetupRouter(handler, cfg.Server)

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("stopped")
}
