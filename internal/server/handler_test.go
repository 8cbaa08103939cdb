package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/garment-labs/labelaudit/constants"
	"github.com/garment-labs/labelaudit/internal/common"
	"github.com/garment-labs/labelaudit/internal/entity"
	"github.com/garment-labs/labelaudit/internal/export"
	"github.com/garment-labs/labelaudit/internal/pdfpage"
	"github.com/garment-labs/labelaudit/internal/pipeline"
	"github.com/garment-labs/labelaudit/internal/profiles"
	"github.com/garment-labs/labelaudit/internal/repository"
	"github.com/garment-labs/labelaudit/internal/segment"
)

// docFixture is the text one stubbed document yields: the whole-page text for
// classification and headers, and the per-region text every grid cell
// returns.
type docFixture struct {
	pageText   string
	regionText string
}

// stubSource serves fixtures keyed by a substring of the document path, so
// one source can back several uploads in a single request.
type stubSource struct {
	docs map[string]docFixture
}

func (s *stubSource) fixture(path string) docFixture {
	for key, doc := range s.docs {
		if strings.Contains(path, key) {
			return doc
		}
	}
	return docFixture{}
}

func (s *stubSource) PageSizes(ctx context.Context, path string) ([]pdfpage.Size, error) {
	return []pdfpage.Size{{Page: 1, Width: 792, Height: 612}}, nil
}

func (s *stubSource) PageText(ctx context.Context, path string, page int) (string, error) {
	return s.fixture(path).pageText, nil
}

func (s *stubSource) RegionText(ctx context.Context, path string, page int, clip pdfpage.Rect) (string, error) {
	return s.fixture(path).regionText, nil
}

func (s *stubSource) RenderPage(ctx context.Context, path string, page int, zoom float64, dest string) error {
	return nil
}

func (s *stubSource) RenderRegion(ctx context.Context, path string, page int, clip pdfpage.Rect, zoom float64, dest string) error {
	return nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := repository.NewSQLiteStore(context.Background(), ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	src := &stubSource{docs: map[string]docFixture{
		"care": {
			pageText:   "Reference #: 77\nStyle #: AVD100\nRN# 12345 Made In Vietnam wash cold",
			regionText: "M (8-10) RN# 67890 MADE IN CHINA 100% Cotton 0 36000 29145 2",
		},
		"hang": {
			pageText:   "Find more at Walmart.com REGISTERED TRADEMARK AVIA STRETCH",
			regionText: "XL (16-18)\nBLACK SOOT 001\nAV23DQ001\nRN# 4093\nEAN 4 006381 333931",
		},
	}}
	seg := segment.New(src, nil, nil, segment.Config{}, logger)
	pipe := pipeline.New(seg, profiles.Default(), logger)
	h := NewHandler(pipe, store, export.NewService(logger), logger)
	return SetupRouter(h, common.ServerConfig{AllowedOrigins: []string{"*"}})
}

func addPDF(t *testing.T, w *multipart.Writer, field, name string) {
	t.Helper()
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 stub"))
	require.NoError(t, err)
}

func addSheet(t *testing.T, w *multipart.Writer, name string, rows [][]string) {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, value))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	part, err := w.CreateFormFile("sheet", name)
	require.NoError(t, err)
	_, err = part.Write(buf.Bytes())
	require.NoError(t, err)
}

func doRequest(router *gin.Engine, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/health", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestClassify(t *testing.T) {
	router := newTestRouter(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	addPDF(t, w, "file", "care_sheet.pdf")
	require.NoError(t, w.Close())

	rec := doRequest(router, http.MethodPost, "/classify", &body, w.FormDataContentType())

	require.Equal(t, http.StatusOK, rec.Code)
	var result entity.ClassificationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, constants.DocTypeCareLabel, result.Type)
	assert.Equal(t, 2, result.CareScore)
	assert.Equal(t, 0, result.RFIDScore)
}

func TestClassifyMissingFile(t *testing.T) {
	router := newTestRouter(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.Close())

	rec := doRequest(router, http.MethodPost, "/classify", &body, w.FormDataContentType())

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"No files provided."}`, rec.Body.String())
}

func TestExtract(t *testing.T) {
	router := newTestRouter(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	addPDF(t, w, "files", "care_sheet.pdf")
	addPDF(t, w, "files", "hang_tags.pdf")
	require.NoError(t, w.Close())

	rec := doRequest(router, http.MethodPost, "/extract", &body, w.FormDataContentType())

	require.Equal(t, http.StatusOK, rec.Code)
	var result entity.ExtractResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.CareLabels, 7)
	require.Len(t, result.HangTags, 7)

	care := result.CareLabels[0]
	assert.Equal(t, "AVD100", care.StyleNumber)
	assert.Equal(t, "M", care.Size)
	assert.Equal(t, "036000291452", care.UPC)
	assert.Nil(t, care.Raw.Composition)

	hang := result.HangTags[0]
	assert.Equal(t, "AV23DQ001", hang.StyleNumber)
	assert.Equal(t, "XL", hang.Size)
	assert.Equal(t, "BLACK SOOT", hang.Color)
	assert.Equal(t, "4006381333931", hang.UPC)

	runID := rec.Header().Get("X-Run-ID")
	require.NotEmpty(t, runID)

	rec = doRequest(router, http.MethodGet, "/extractions/"+runID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var run entity.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, constants.RunKindExtraction, run.Kind)
	assert.Equal(t, []string{"care_sheet.pdf", "hang_tags.pdf"}, run.Filenames)
	assert.Equal(t, 14, run.ItemCount)

	var stored entity.ExtractResult
	require.NoError(t, json.Unmarshal(run.Payload, &stored))
	assert.Len(t, stored.CareLabels, 7)
}

func TestExtractNoFiles(t *testing.T) {
	router := newTestRouter(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.Close())

	rec := doRequest(router, http.MethodPost, "/extract", &body, w.FormDataContentType())

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"No files provided."}`, rec.Body.String())
}

func TestExtractUnsupportedFile(t *testing.T) {
	router := newTestRouter(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	addPDF(t, w, "files", "care_sheet.pdf")
	addPDF(t, w, "files", "notes.txt")
	require.NoError(t, w.Close())

	rec := doRequest(router, http.MethodPost, "/extract", &body, w.FormDataContentType())

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Unsupported file: notes.txt"}`, rec.Body.String())
}

func TestExtractAcceptsPDFContentType(t *testing.T) {
	router := newTestRouter(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="files"; filename="care-scan.bin"`)
	header.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 stub"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rec := doRequest(router, http.MethodPost, "/extract", &body, w.FormDataContentType())

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestValidate(t *testing.T) {
	router := newTestRouter(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	addPDF(t, w, "files", "care_sheet.pdf")
	addPDF(t, w, "files", "hang_tags.pdf")
	addSheet(t, w, "expected.xlsx", [][]string{
		{"Style", "Size", "Color", "Care Label UPC", "Hang Tag UPC"},
		{"AVD100", "M", "", "036000291452", ""},
		{"AV23DQ001", "XL", "BLACK SOOT", "", "4006381333931"},
	})
	require.NoError(t, w.Close())

	rec := doRequest(router, http.MethodPost, "/validate", &body, w.FormDataContentType())

	require.Equal(t, http.StatusOK, rec.Code)
	var report entity.ValidationReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 2, report.Summary.Rows)
	assert.Equal(t, 1, report.Summary.CareLabelMatches)
	assert.Equal(t, 1, report.Summary.HangTagMatches)
	require.Len(t, report.Results, 2)

	first := report.Results[0]
	assert.Equal(t, constants.MatchStyleSizeColor, first.CareLabel.Match)
	assert.True(t, first.CareLabel.UPCMatches)
	assert.Equal(t, constants.MatchNone, first.HangTag.Match)

	second := report.Results[1]
	assert.Equal(t, constants.MatchStyleSizeColor, second.HangTag.Match)
	assert.True(t, second.HangTag.UPCMatches)
	assert.Equal(t, constants.MatchNone, second.CareLabel.Match)

	runID := rec.Header().Get("X-Run-ID")
	require.NotEmpty(t, runID)

	rec = doRequest(router, http.MethodGet, "/validations/"+runID+"/report.xlsx", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	workbook, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer workbook.Close()
	rows, err := workbook.GetRows("Validation")
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, "AVD100", rows[1][1])
	assert.Equal(t, []string{"Rows", "2"}, rows[4][:2])
}

func TestValidateMissingSheet(t *testing.T) {
	router := newTestRouter(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	addPDF(t, w, "files", "care_sheet.pdf")
	require.NoError(t, w.Close())

	rec := doRequest(router, http.MethodPost, "/validate", &body, w.FormDataContentType())

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"No sheet provided."}`, rec.Body.String())
}

func TestValidateUnsupportedSheet(t *testing.T) {
	router := newTestRouter(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	addPDF(t, w, "files", "care_sheet.pdf")
	part, err := w.CreateFormFile("sheet", "expected.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("style,size\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rec := doRequest(router, http.MethodPost, "/validate", &body, w.FormDataContentType())

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Unsupported sheet: expected.csv"}`, rec.Body.String())
}

func TestListRuns(t *testing.T) {
	router := newTestRouter(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	addPDF(t, w, "files", "care_sheet.pdf")
	require.NoError(t, w.Close())
	rec := doRequest(router, http.MethodPost, "/extract", &body, w.FormDataContentType())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodGet, "/extractions", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Runs []struct {
			ID        string            `json:"id"`
			Kind      constants.RunKind `json:"kind"`
			ItemCount int               `json:"item_count"`
			CreatedAt time.Time         `json:"created_at"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Runs, 1)
	assert.Equal(t, constants.RunKindExtraction, listing.Runs[0].Kind)
	assert.Equal(t, 7, listing.Runs[0].ItemCount)
	assert.False(t, listing.Runs[0].CreatedAt.IsZero())

	rec = doRequest(router, http.MethodGet, "/validations", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"runs":[]}`, rec.Body.String())
}

func TestListRunsBadLimit(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/extractions?limit=zero", nil, "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRunKindMismatch(t *testing.T) {
	router := newTestRouter(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	addPDF(t, w, "files", "care_sheet.pdf")
	require.NoError(t, w.Close())
	rec := doRequest(router, http.MethodPost, "/extract", &body, w.FormDataContentType())
	require.Equal(t, http.StatusOK, rec.Code)
	runID := rec.Header().Get("X-Run-ID")
	require.NotEmpty(t, runID)

	rec = doRequest(router, http.MethodGet, "/validations/"+runID, nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"run not found"}`, rec.Body.String())
}

func TestGetRunBadID(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/extractions/not-a-uuid", nil, "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"id must be a UUID"}`, rec.Body.String())
}

func TestGetRunMissing(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/extractions/6b1e415f-8473-4b47-a15e-dfc6784e2ad5", nil, "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"run not found"}`, rec.Body.String())
}
