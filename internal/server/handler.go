// Package server exposes the extraction pipeline over HTTP. Handlers stay
// thin: parse the multipart form, call the pipeline, translate errors to
// status codes.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/garment-labs/labelaudit/constants"
	"github.com/garment-labs/labelaudit/internal/entity"
	"github.com/garment-labs/labelaudit/internal/export"
	"github.com/garment-labs/labelaudit/internal/pipeline"
	"github.com/garment-labs/labelaudit/internal/reconcile"
	"github.com/garment-labs/labelaudit/internal/repository"
	"github.com/garment-labs/labelaudit/internal/sheet"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler carries the wired services behind the HTTP surface.
type Handler struct {
	pipeline *pipeline.Pipeline
	store    repository.RunStore
	export   *export.Service
	logger   *slog.Logger
}

func NewHandler(p *pipeline.Pipeline, store repository.RunStore, exp *export.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{pipeline: p, store: store, export: exp, logger: logger}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Classify runs the document classifier over one uploaded PDF without
// extracting anything.
func (h *Handler) Classify(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided."})
		return
	}
	if !isPDFUpload(file) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file: " + file.Filename})
		return
	}

	dir, paths, err := h.saveUploads(c, []*multipart.FileHeader{file})
	if err != nil {
		h.logger.Error("save upload failed", "file", file.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store upload"})
		return
	}
	defer os.RemoveAll(dir)

	result, err := h.pipeline.Classify(c.Request.Context(), paths[0])
	if err != nil {
		h.logger.Error("classify failed", "file", file.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Extract processes every uploaded PDF and responds with the merged items
// grouped by routed document type.
func (h *Handler) Extract(c *gin.Context) {
	files, ok := h.formFiles(c)
	if !ok {
		return
	}

	dir, paths, err := h.saveUploads(c, files)
	if err != nil {
		h.logger.Error("save uploads failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store uploads"})
		return
	}
	defer os.RemoveAll(dir)

	result, ok := h.extractAll(c, files, paths)
	if !ok {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := pipeline.CheckExtractPayload(payload); err != nil {
		h.logger.Error("extract payload rejected", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.saveRun(c, constants.RunKindExtraction, filenames(files), payload,
		len(result.CareLabels)+len(result.HangTags))
	c.Data(http.StatusOK, "application/json", payload)
}

// Validate extracts the uploaded PDFs and reconciles the merged items against
// the expected spreadsheet rows.
func (h *Handler) Validate(c *gin.Context) {
	files, ok := h.formFiles(c)
	if !ok {
		return
	}
	sheetFile, err := c.FormFile("sheet")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No sheet provided."})
		return
	}
	if _, ok := constants.SheetExtensions[constants.NormalizeExt(filepath.Ext(sheetFile.Filename))]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported sheet: " + sheetFile.Filename})
		return
	}

	src, err := sheetFile.Open()
	if err != nil {
		h.logger.Error("open sheet failed", "file", sheetFile.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read sheet"})
		return
	}
	defer src.Close()
	rows, err := sheet.ReadExpected(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sheet: " + err.Error()})
		return
	}

	dir, paths, err := h.saveUploads(c, files)
	if err != nil {
		h.logger.Error("save uploads failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store uploads"})
		return
	}
	defer os.RemoveAll(dir)

	result, ok := h.extractAll(c, files, paths)
	if !ok {
		return
	}
	report := reconcile.Validate(rows, result.CareLabels, result.HangTags)

	payload, err := json.Marshal(report)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := pipeline.CheckValidationPayload(payload); err != nil {
		h.logger.Error("validation payload rejected", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.saveRun(c, constants.RunKindValidation, append(filenames(files), sheetFile.Filename),
		payload, report.Summary.Rows)
	c.Data(http.StatusOK, "application/json", payload)
}

func (h *Handler) ListExtractions(c *gin.Context) {
	h.listRuns(c, constants.RunKindExtraction)
}

func (h *Handler) ListValidations(c *gin.Context) {
	h.listRuns(c, constants.RunKindValidation)
}

func (h *Handler) GetExtraction(c *gin.Context) {
	run, ok := h.getRun(c, constants.RunKindExtraction)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *Handler) GetValidation(c *gin.Context) {
	run, ok := h.getRun(c, constants.RunKindValidation)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, run)
}

// ValidationReportXLSX renders a stored validation run as a workbook for
// download.
func (h *Handler) ValidationReportXLSX(c *gin.Context) {
	run, ok := h.getRun(c, constants.RunKindValidation)
	if !ok {
		return
	}
	var report entity.ValidationReport
	if err := json.Unmarshal(run.Payload, &report); err != nil {
		h.logger.Error("decode stored report failed", "id", run.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stored payload is not a validation report"})
		return
	}
	data, err := h.export.ValidationReportXLSX(report)
	if err != nil {
		h.logger.Error("render report failed", "id", run.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render report failed"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "validation_"+run.ID.String()+".xlsx"))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// formFiles pulls the "files" uploads out of the multipart form and rejects
// anything that is not a PDF. A false return means the error response was
// already written.
func (h *Handler) formFiles(c *gin.Context) ([]*multipart.FileHeader, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided."})
		return nil, false
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided."})
		return nil, false
	}
	for _, fh := range files {
		if !isPDFUpload(fh) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file: " + fh.Filename})
			return nil, false
		}
	}
	return files, true
}

// saveUploads copies the uploads into a scratch directory so the poppler
// tools can read them from disk. The caller removes the directory.
func (h *Handler) saveUploads(c *gin.Context, files []*multipart.FileHeader) (string, []string, error) {
	dir, err := os.MkdirTemp("", "labelaudit-upload-*")
	if err != nil {
		return "", nil, fmt.Errorf("scratch dir: %w", err)
	}
	paths := make([]string, 0, len(files))
	for i, fh := range files {
		dst := filepath.Join(dir, fmt.Sprintf("%03d_%s", i, filepath.Base(fh.Filename)))
		if err := c.SaveUploadedFile(fh, dst); err != nil {
			os.RemoveAll(dir)
			return "", nil, fmt.Errorf("save upload %s: %w", fh.Filename, err)
		}
		paths = append(paths, dst)
	}
	return dir, paths, nil
}

// extractAll runs the pipeline over every saved upload and merges the items
// by routed type. A false return means the error response was already
// written.
func (h *Handler) extractAll(c *gin.Context, files []*multipart.FileHeader, paths []string) (entity.ExtractResult, bool) {
	result := entity.ExtractResult{
		CareLabels: []entity.MergedItem{},
		HangTags:   []entity.MergedItem{},
	}
	for i, fh := range files {
		doc, err := h.pipeline.Process(c.Request.Context(), paths[i])
		if err != nil {
			h.logger.Error("process failed", "file", fh.Filename, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": fh.Filename + ": " + err.Error()})
			return result, false
		}
		result.Absorb(doc)
	}
	return result, true
}

// saveRun persists the run when a store is configured and advertises the ID
// in a response header. Store failures are logged, not surfaced: the caller
// already has its result.
func (h *Handler) saveRun(c *gin.Context, kind constants.RunKind, names []string, payload []byte, count int) {
	run := &entity.Run{
		ID:        uuid.New(),
		Kind:      kind,
		Filenames: names,
		Payload:   payload,
		ItemCount: count,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.SaveRun(c.Request.Context(), run); err != nil {
		h.logger.Error("save run failed", "kind", kind, "error", err)
		return
	}
	c.Header("X-Run-ID", run.ID.String())
}

// runSummary is the list-view shape: run metadata without the stored payload.
type runSummary struct {
	ID        uuid.UUID         `json:"id"`
	Kind      constants.RunKind `json:"kind"`
	Filenames []string          `json:"filenames"`
	ItemCount int               `json:"item_count"`
	CreatedAt time.Time         `json:"created_at"`
}

func (h *Handler) listRuns(c *gin.Context, kind constants.RunKind) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	runs, err := h.store.ListRuns(c.Request.Context(), kind, limit)
	if err != nil {
		h.logger.Error("list runs failed", "kind", kind, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list runs failed"})
		return
	}
	out := make([]runSummary, 0, len(runs))
	for _, r := range runs {
		out = append(out, runSummary{
			ID:        r.ID,
			Kind:      r.Kind,
			Filenames: r.Filenames,
			ItemCount: r.ItemCount,
			CreatedAt: r.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"runs": out})
}

// getRun loads a stored run and checks it has the expected kind; a run of the
// other kind is not found under this route. A false return means the error
// response was already written.
func (h *Handler) getRun(c *gin.Context, kind constants.RunKind) (*entity.Run, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a UUID"})
		return nil, false
	}
	run, err := h.store.GetRun(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return nil, false
		}
		h.logger.Error("get run failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get run failed"})
		return nil, false
	}
	if run.Kind != kind {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return nil, false
	}
	return run, true
}

func isPDFUpload(fh *multipart.FileHeader) bool {
	if _, ok := constants.PDFContentTypes[fh.Header.Get("Content-Type")]; ok {
		return true
	}
	return constants.IsPDFName(fh.Filename)
}

func filenames(files []*multipart.FileHeader) []string {
	names := make([]string, 0, len(files))
	for _, fh := range files {
		names = append(names, fh.Filename)
	}
	return names
}
