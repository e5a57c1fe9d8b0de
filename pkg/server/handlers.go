package server

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/swiftconvert/server/pkg/analyze"
	"github.com/swiftconvert/server/pkg/constants"
	"github.com/swiftconvert/server/pkg/convert"
	"github.com/swiftconvert/server/pkg/interfaces"
	"github.com/swiftconvert/server/pkg/pipeline"
	"github.com/swiftconvert/server/pkg/types"
	"github.com/swiftconvert/server/pkg/utils"
)

const version = "2.0.0"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "SwiftConvert backend is running",
		"version": version,
	})
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	formats := make([]string, 0, len(types.AllowedExtensions))
	for ext := range types.AllowedExtensions {
		formats = append(formats, ext)
	}
	sort.Strings(formats)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"formats":     formats,
		"conversions": convert.SupportedConversions,
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stripePublicKey": s.cfg.StripePublicKey,
		"pricing": map[string]interface{}{
			"pro": map[string]interface{}{
				"inr": s.cfg.ProPlanPriceINR,
				"usd": s.cfg.ProPlanPriceUSD,
			},
		},
		"maxFileSize":        s.cfg.MaxFileSize,
		"ocrEnabled":         s.cfg.OCREnabled,
		"translationEnabled": s.cfg.TranslationEnabled(),
		"billingEnabled":     s.cfg.BillingEnabled(),
	})
}

// saveUpload parses the multipart form and persists the "file" part.
func (s *Server) saveUpload(r *http.Request) (path, ext, storedName string, err error) {
	if err := r.ParseMultipartForm(constants.MaxMultipartMemory); err != nil {
		return "", "", "", utils.NewValidationError("no file uploaded", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", "", utils.NewValidationError("no file uploaded", err)
	}
	defer file.Close()

	if header.Filename == "" {
		return "", "", "", utils.NewValidationError("no file selected", nil)
	}
	if !types.IsAllowedExtension(utils.FileExtension(header.Filename)) {
		return "", "", "", utils.NewValidationError("unsupported file format", nil)
	}
	return s.store.Save(file, header.Filename)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	toFormat := strings.ToLower(r.FormValue("toFormat"))

	inputPath, sourceExt, storedName, err := s.saveUpload(r)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	defer func() {
		if !s.store.Remove(inputPath) {
			s.log.Warn().Str("path", inputPath).Msg("failed to remove input file")
		}
	}()

	if toFormat == "" {
		writeError(w, s.log, utils.NewValidationError("target format not specified", nil))
		return
	}
	if err := s.store.CheckSize(inputPath); err != nil {
		writeError(w, s.log, err)
		return
	}

	strategy, err := s.router.Route(sourceExt, toFormat)
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	outputName := utils.ReplaceExtension(storedName, toFormat)
	outputPath := s.store.OutputPath(outputName)

	s.log.Info().Str("source", sourceExt).Str("target", toFormat).Msg("starting conversion")
	start := time.Now()
	if _, err := strategy(r.Context(), inputPath, outputPath); err != nil {
		if _, statErr := os.Stat(outputPath); statErr == nil {
			os.Remove(outputPath)
		}
		s.recordConversion(r, sourceExt, toFormat, false, start, err)
		writeError(w, s.log, err)
		return
	}
	s.recordConversion(r, sourceExt, toFormat, true, start, nil)

	s.store.Sweep(s.cfg.SweepMaxAge)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"filename":    outputName,
		"downloadUrl": "/api/download/" + outputName,
	})
}

// recordConversion sends best-effort telemetry for the direct conversion
// endpoint.
func (s *Server) recordConversion(r *http.Request, source, target string, success bool, start time.Time, cause error) {
	if cause != nil {
		if err := s.sink.LogError(r.Context(), interfaces.ErrorEvent{
			ErrorType:    string(utils.GetErrorType(cause)),
			SourceFormat: source,
			TargetFormat: target,
			Message:      cause.Error(),
		}); err != nil {
			s.log.Warn().Err(err).Msg("failed to log error event")
		}
	}
	if err := s.sink.LogConversion(r.Context(), interfaces.ConversionEvent{
		SourceFormat: source,
		TargetFormat: target,
		Success:      success,
		DurationMS:   time.Since(start).Milliseconds(),
	}); err != nil {
		s.log.Warn().Err(err).Msg("failed to log conversion event")
	}
}

func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	inputPath, sourceExt, _, err := s.saveUpload(r)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	defer func() {
		if !s.store.Remove(inputPath) {
			s.log.Warn().Str("path", inputPath).Msg("failed to remove input file")
		}
	}()

	engine, err := s.engines.Select(r.FormValue("engine"))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	dpi, err := parseDPI(r.FormValue("dpi"))
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	result, err := s.extractor.ExtractAt(r.Context(), inputPath, sourceExt, engine, dpi)
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"text":           result.Text,
		"confidence":     result.Confidence,
		"language":       result.Language,
		"word_count":     result.WordCount,
		"blocks":         result.Blocks,
		"per_page":       result.PerPage,
		"engine":         result.Engine,
		"classification": s.classifier.Classify(result.Text),
	})
}

func (s *Server) handleOCRAndConvert(w http.ResponseWriter, r *http.Request) {
	inputPath, sourceExt, storedName, err := s.saveUpload(r)
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	toFormat := strings.ToLower(r.FormValue("toFormat"))
	if toFormat == "" {
		toFormat = "docx"
	}
	translateTo := ""
	if strings.EqualFold(r.FormValue("translate"), "true") {
		translateTo = r.FormValue("targetLang")
		if translateTo == "" {
			translateTo = "en"
		}
	}

	dpi, err := parseDPI(r.FormValue("dpi"))
	if err != nil {
		s.store.Remove(inputPath)
		writeError(w, s.log, err)
		return
	}

	outputName := utils.ReplaceExtension(storedName, toFormat)
	req := pipeline.Request{
		InputPath:    inputPath,
		SourceFormat: sourceExt,
		TargetFormat: toFormat,
		Engine:       r.FormValue("engine"),
		DPI:          dpi,
		TranslateTo:  translateTo,
	}

	// the orchestrator removes the input file on every exit path
	result, err := s.orch.Run(r.Context(), req, s.store.OutputPath(outputName))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	s.store.Sweep(s.cfg.SweepMaxAge)

	language := ""
	if result.Language != nil {
		language = result.Language.PrimaryLanguage
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"filename":    outputName,
		"downloadUrl": "/api/download/" + outputName,
		"ocr": map[string]interface{}{
			"confidence": result.OCR.Confidence,
			"word_count": result.OCR.WordCount,
			"language":   language,
			"per_page":   result.OCR.PerPage,
		},
		"classification": result.Classification,
		"translation":    result.Translation,
	})
}

// parseDPI reads the optional per-request rasterization density. Empty means
// the configured default; the extractor clamps out-of-range values.
func parseDPI(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	dpi, err := strconv.ParseFloat(value, 64)
	if err != nil || dpi <= 0 {
		return 0, utils.NewValidationError("dpi must be a positive number", err)
	}
	return dpi, nil
}

type textRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"target_language"`
	SourceLanguage string `json:"source_language"`
}

func decodeText(r *http.Request) (*textRequest, error) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, utils.NewValidationError("malformed JSON body", err)
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, utils.NewValidationError("no text provided", nil)
	}
	return &req, nil
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	req, err := decodeText(r)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  s.classifier.Classify(req.Text),
	})
}

func (s *Server) handleDetectLanguage(w http.ResponseWriter, r *http.Request) {
	req, err := decodeText(r)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  s.detector.Detect(req.Text),
	})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeText(r)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	target := req.TargetLanguage
	if target == "" {
		target = "en"
	}
	result, err := s.translator.Translate(r.Context(), req.Text, req.SourceLanguage, target)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRecommendFormat(w http.ResponseWriter, r *http.Request) {
	inputPath, sourceExt, _, err := s.saveUpload(r)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	defer func() {
		if !s.store.Remove(inputPath) {
			s.log.Warn().Str("path", inputPath).Msg("failed to remove input file")
		}
	}()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"source_format":   sourceExt,
		"recommendations": analyze.RecommendFormat(inputPath, sourceExt, nil),
	})
}

func (s *Server) handleQualityScore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InputFile      string `json:"input_file"`
		OutputFile     string `json:"output_file"`
		ConversionType string `json:"conversion_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.log, utils.NewValidationError("malformed JSON body", err))
		return
	}
	if req.InputFile == "" || req.OutputFile == "" || req.ConversionType == "" {
		writeError(w, s.log, utils.NewValidationError("missing required parameters", nil))
		return
	}

	outputPath := s.store.OutputPath(req.OutputFile)
	if _, err := os.Stat(outputPath); err != nil {
		writeError(w, s.log, utils.NewNotFoundError("output file not found", err))
		return
	}
	inputPath := s.store.UploadPath(req.InputFile)

	report, err := analyze.QualityScore(inputPath, outputPath, req.ConversionType)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"quality_score":  report.QualityScore,
		"confidence":     report.Confidence,
		"metrics":        report.Metrics,
		"recommendation": report.Recommendation,
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	insights, err := s.sink.Insights(r.Context())
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"insights": insights,
	})
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if s.gateway == nil {
		writeError(w, s.log, utils.NewDisabledError("billing is disabled on this server"))
		return
	}
	var req struct {
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, s.log, utils.NewValidationError("malformed JSON body", err))
		return
	}

	baseURL := "https://" + r.Host
	if r.TLS == nil {
		baseURL = "http://" + r.Host
	}
	sess, err := s.gateway.CreateCheckoutSession(r.Context(), req.Currency, baseURL)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.gateway == nil {
		writeError(w, s.log, utils.NewDisabledError("billing is disabled on this server"))
		return
	}
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, s.log, utils.NewValidationError("invalid payload", err))
		return
	}
	if err := s.gateway.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleDownload streams the artifact and deletes it after the transfer.
// Downloads are one-shot; the sweep covers files never fetched.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := utils.SanitizeFileName(chi.URLParam(r, "filename"))
	path := s.store.OutputPath(name)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		writeError(w, s.log, utils.NewNotFoundError("file not found", err))
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeFile(w, r, path)

	if !s.store.Remove(path) {
		s.log.Warn().Str("path", path).Msg("failed to remove downloaded file")
	}
}
