package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftconvert/server/pkg/analytics"
	"github.com/swiftconvert/server/pkg/analyze"
	"github.com/swiftconvert/server/pkg/config"
	"github.com/swiftconvert/server/pkg/convert"
	"github.com/swiftconvert/server/pkg/document"
	"github.com/swiftconvert/server/pkg/extract"
	"github.com/swiftconvert/server/pkg/interfaces"
	"github.com/swiftconvert/server/pkg/ocr"
	"github.com/swiftconvert/server/pkg/pipeline"
	"github.com/swiftconvert/server/pkg/storage"
	"github.com/swiftconvert/server/pkg/types"
	"github.com/swiftconvert/server/pkg/utils"
)

type fakeOCREngine struct{}

func (fakeOCREngine) Name() string    { return "standard" }
func (fakeOCREngine) Available() bool { return true }
func (fakeOCREngine) Recognize(ctx context.Context, imagePath string) (*types.OcrResult, error) {
	return &types.OcrResult{Text: "recognized text", Confidence: 0.9, WordCount: 2, Engine: "standard"}, nil
}

type fakeDetector struct{}

func (fakeDetector) Detect(text string) *types.LanguageDetection {
	return &types.LanguageDetection{
		PrimaryLanguage: "en",
		Confidence:      0.97,
		AllLanguages:    []types.LanguageGuess{{Language: "en", Confidence: 0.97}},
	}
}

type testHarness struct {
	server  *Server
	handler http.Handler
	store   *storage.Store
}

func newTestHarness(t *testing.T, mutate func(*Deps)) *testHarness {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	log := zerolog.Nop()
	store, err := storage.NewStore(cfg.DataDir, cfg.MaxFileSize, log)
	require.NoError(t, err)

	detector := fakeDetector{}
	selector := ocr.NewSelector(true, types.OCREngineStandard,
		map[types.OCREngineKind]interfaces.OCREngine{types.OCREngineStandard: fakeOCREngine{}})
	extractor := extract.NewExtractor(t.TempDir(), float64(cfg.OCRDPI), detector, log)
	classifier := analyze.NewClassifier(cfg.ClassifierThreshold)
	translator := analyze.DisabledTranslator{}
	sink := analytics.NoopSink{}
	orch := pipeline.NewOrchestrator(extractor, selector, classifier, detector, translator,
		document.NewSynthesizer(), sink, store, log)

	deps := Deps{
		Config:     cfg,
		Store:      store,
		Router:     convert.NewRouter(convert.NewConverter(cfg.SofficePath, t.TempDir(), log)),
		Extractor:  extractor,
		Engines:    selector,
		Classifier: classifier,
		Detector:   detector,
		Translator: translator,
		Orch:       orch,
		Sink:       sink,
		Log:        log,
	}
	if mutate != nil {
		mutate(&deps)
	}

	srv := New(deps)
	return &testHarness{server: srv, handler: srv.Routes(), store: store}
}

func (h *testHarness) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func multipartUpload(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func dirEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestHealth(t *testing.T) {
	h := newTestHarness(t, nil)

	rec := h.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "2.0.0", body["version"])
}

func TestFormats(t *testing.T) {
	h := newTestHarness(t, nil)

	rec := h.do(t, httptest.NewRequest(http.MethodGet, "/api/formats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	formats, ok := body["formats"].([]interface{})
	require.True(t, ok)
	assert.Contains(t, formats, "pdf")
	assert.Contains(t, formats, "docx")

	conversions, ok := body["conversions"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, conversions, "csv")
}

func TestConfigEndpoint(t *testing.T) {
	h := newTestHarness(t, nil)

	rec := h.do(t, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ocrEnabled"])
	assert.Equal(t, false, body["translationEnabled"])
	assert.Equal(t, false, body["billingEnabled"])
}

func TestConvertTextToDocx(t *testing.T) {
	h := newTestHarness(t, nil)

	buf, contentType := multipartUpload(t, "notes.txt",
		[]byte("Hello world\nSecond line\n"), map[string]string{"toFormat": "docx"})
	req := httptest.NewRequest(http.MethodPost, "/api/convert", buf)
	req.Header.Set("Content-Type", contentType)

	rec := h.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	filename, _ := body["filename"].(string)
	assert.True(t, strings.HasSuffix(filename, ".docx"))
	assert.Equal(t, "/api/download/"+filename, body["downloadUrl"])

	// output artifact exists, input upload is gone
	_, err := os.Stat(h.store.OutputPath(filename))
	assert.NoError(t, err)
	assert.Empty(t, dirEntries(t, h.store.UploadDir))
}

// partialOutputRouter yields a strategy that writes the output file and then
// fails, the way a timed-out render tool leaves its artifact behind.
type partialOutputRouter struct{}

func (partialOutputRouter) Route(source, target string) (convert.Strategy, error) {
	return func(ctx context.Context, in, out string) (string, error) {
		if err := os.WriteFile(out, []byte("partial artifact"), 0o644); err != nil {
			return "", err
		}
		return "", utils.NewError(utils.ErrorTypeTimeout, "conversion timed out", nil)
	}, nil
}

func TestConvertFailureRemovesPartialOutput(t *testing.T) {
	h := newTestHarness(t, func(d *Deps) {
		d.Router = partialOutputRouter{}
	})

	buf, contentType := multipartUpload(t, "notes.txt", []byte("text"), map[string]string{"toFormat": "pdf"})
	req := httptest.NewRequest(http.MethodPost, "/api/convert", buf)
	req.Header.Set("Content-Type", contentType)

	rec := h.do(t, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	assert.Empty(t, dirEntries(t, h.store.OutputDir))
	assert.Empty(t, dirEntries(t, h.store.UploadDir))
}

func TestConvertMissingTargetFormat(t *testing.T) {
	h := newTestHarness(t, nil)

	buf, contentType := multipartUpload(t, "notes.txt", []byte("text"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/convert", buf)
	req.Header.Set("Content-Type", contentType)

	rec := h.do(t, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "target format not specified")
	assert.Empty(t, dirEntries(t, h.store.UploadDir))
}

func TestConvertUnsupportedPair(t *testing.T) {
	h := newTestHarness(t, nil)

	buf, contentType := multipartUpload(t, "book.xlsx", []byte("data"), map[string]string{"toFormat": "pptx"})
	req := httptest.NewRequest(http.MethodPost, "/api/convert", buf)
	req.Header.Set("Content-Type", contentType)

	rec := h.do(t, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Supported targets for XLSX: csv")
	assert.Empty(t, dirEntries(t, h.store.UploadDir))
}

func TestConvertRejectsDisallowedExtension(t *testing.T) {
	h := newTestHarness(t, nil)

	buf, contentType := multipartUpload(t, "payload.exe", []byte("MZ"), map[string]string{"toFormat": "pdf"})
	req := httptest.NewRequest(http.MethodPost, "/api/convert", buf)
	req.Header.Set("Content-Type", contentType)

	rec := h.do(t, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported file format")
}

func TestConvertNoFile(t *testing.T) {
	h := newTestHarness(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader("toFormat=pdf"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := h.do(t, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no file uploaded")
}

func TestOCRTextFile(t *testing.T) {
	h := newTestHarness(t, nil)

	buf, contentType := multipartUpload(t, "invoice.txt",
		[]byte("Invoice total amount due: 100 payment terms net 30"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/ocr", buf)
	req.Header.Set("Content-Type", contentType)

	rec := h.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["text"], "Invoice total")
	assert.Equal(t, 1.0, body["confidence"])
	assert.Equal(t, "en", body["language"])
	require.Contains(t, body, "classification")
	assert.Empty(t, dirEntries(t, h.store.UploadDir))
}

func TestOCRAcceptsDPIOverride(t *testing.T) {
	h := newTestHarness(t, nil)

	buf, contentType := multipartUpload(t, "note.txt",
		[]byte("plain text body for extraction"), map[string]string{"dpi": "150"})
	req := httptest.NewRequest(http.MethodPost, "/api/ocr", buf)
	req.Header.Set("Content-Type", contentType)

	rec := h.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestOCRRejectsBadDPI(t *testing.T) {
	h := newTestHarness(t, nil)

	for _, dpi := range []string{"abc", "-50", "0"} {
		buf, contentType := multipartUpload(t, "note.txt", []byte("text"), map[string]string{"dpi": dpi})
		req := httptest.NewRequest(http.MethodPost, "/api/ocr", buf)
		req.Header.Set("Content-Type", contentType)

		rec := h.do(t, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, "dpi=%s", dpi)
		assert.Contains(t, rec.Body.String(), "dpi must be a positive number")
	}
	assert.Empty(t, dirEntries(t, h.store.UploadDir))
}

func TestParseDPI(t *testing.T) {
	got, err := parseDPI("")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	got, err = parseDPI("300")
	require.NoError(t, err)
	assert.Equal(t, 300.0, got)

	_, err = parseDPI("not-a-number")
	require.Error(t, err)
}

func TestOCRDisabled(t *testing.T) {
	h := newTestHarness(t, func(d *Deps) {
		d.Engines = ocr.NewSelector(false, types.OCREngineStandard, nil)
	})

	buf, contentType := multipartUpload(t, "scan.png", []byte("not a real png"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/ocr", buf)
	req.Header.Set("Content-Type", contentType)

	rec := h.do(t, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "OCR is disabled")
	assert.Empty(t, dirEntries(t, h.store.UploadDir))
}

func TestOCRAndConvertTextToDocx(t *testing.T) {
	h := newTestHarness(t, nil)

	buf, contentType := multipartUpload(t, "letter.txt",
		[]byte("Dear customer, thank you for your purchase."),
		map[string]string{"toFormat": "docx"})
	req := httptest.NewRequest(http.MethodPost, "/api/ocr-and-convert", buf)
	req.Header.Set("Content-Type", contentType)

	rec := h.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	filename, _ := body["filename"].(string)
	assert.True(t, strings.HasSuffix(filename, ".docx"))

	ocrBlock, ok := body["ocr"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 1.0, ocrBlock["confidence"])
	assert.Equal(t, "en", ocrBlock["language"])

	_, err := os.Stat(h.store.OutputPath(filename))
	assert.NoError(t, err)
	assert.Empty(t, dirEntries(t, h.store.UploadDir))
}

func TestClassifyEndpoint(t *testing.T) {
	h := newTestHarness(t, nil)

	payload := `{"text": "Invoice number 42, total amount due 100, payment due date next month"}`
	req := httptest.NewRequest(http.MethodPost, "/api/classify-document", strings.NewReader(payload))
	rec := h.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	result, ok := body["result"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "invoice", result["category"])
}

func TestClassifyEmptyText(t *testing.T) {
	h := newTestHarness(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/classify-document", strings.NewReader(`{"text": "  "}`))
	rec := h.do(t, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no text provided")
}

func TestDetectLanguageEndpoint(t *testing.T) {
	h := newTestHarness(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/detect-language",
		strings.NewReader(`{"text": "The quick brown fox jumps over the lazy dog"}`))
	rec := h.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	result, ok := body["result"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "en", result["primary_language"])
}

func TestTranslateDisabled(t *testing.T) {
	h := newTestHarness(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/translate",
		strings.NewReader(`{"text": "Bonjour le monde", "target_language": "en"}`))
	rec := h.do(t, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "translation is disabled")
}

func TestQualityScoreMissingOutput(t *testing.T) {
	h := newTestHarness(t, nil)

	payload := `{"input_file": "in.pdf", "output_file": "missing.docx", "conversion_type": "pdf_to_docx"}`
	req := httptest.NewRequest(http.MethodPost, "/api/quality-score", strings.NewReader(payload))
	rec := h.do(t, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQualityScoreMissingParameters(t *testing.T) {
	h := newTestHarness(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/quality-score", strings.NewReader(`{"input_file": "a"}`))
	rec := h.do(t, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing required parameters")
}

func TestAnalyticsEndpoint(t *testing.T) {
	h := newTestHarness(t, nil)

	rec := h.do(t, httptest.NewRequest(http.MethodGet, "/api/analytics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body, "insights")
}

func TestCheckoutWithoutBilling(t *testing.T) {
	h := newTestHarness(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/create-checkout-session", strings.NewReader(`{"currency": "usd"}`))
	rec := h.do(t, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "billing is disabled")
}

func TestWebhookWithoutBilling(t *testing.T) {
	h := newTestHarness(t, nil)

	rec := h.do(t, httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader("{}")))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDownloadIsOneShot(t *testing.T) {
	h := newTestHarness(t, nil)

	path := h.store.OutputPath("result.docx")
	require.NoError(t, os.WriteFile(path, []byte("artifact bytes"), 0o644))

	rec := h.do(t, httptest.NewRequest(http.MethodGet, "/api/download/result.docx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="result.docx"`, rec.Header().Get("Content-Disposition"))
	data, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "artifact bytes", string(data))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	rec = h.do(t, httptest.NewRequest(http.MethodGet, "/api/download/result.docx", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadSanitizesTraversal(t *testing.T) {
	h := newTestHarness(t, nil)

	secret := filepath.Join(filepath.Dir(h.store.OutputDir), "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("keep out"), 0o644))

	rec := h.do(t, httptest.NewRequest(http.MethodGet, "/api/download/..%2Fsecret.txt", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, err := os.Stat(secret)
	assert.NoError(t, err)
}
