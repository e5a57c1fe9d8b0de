// Package pipeline composes extraction, analysis, translation, and document
// synthesis into the OCR-to-document flow.
package pipeline

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/swiftconvert/server/pkg/analyze"
	"github.com/swiftconvert/server/pkg/extract"
	"github.com/swiftconvert/server/pkg/interfaces"
	"github.com/swiftconvert/server/pkg/ocr"
	"github.com/swiftconvert/server/pkg/storage"
	"github.com/swiftconvert/server/pkg/types"
	"github.com/swiftconvert/server/pkg/utils"
)

// Request describes one OCR-to-document invocation.
type Request struct {
	InputPath    string
	SourceFormat string
	TargetFormat string

	// Engine optionally overrides the default OCR engine.
	Engine string

	// DPI optionally overrides the rasterization density for scanned inputs;
	// zero keeps the configured default.
	DPI float64

	// TranslateTo requests translation into the given language; empty skips
	// translation.
	TranslateTo string
}

// Result is the orchestrator's response payload.
type Result struct {
	OutputPath     string                      `json:"-"`
	OCR            *types.OcrResult            `json:"ocr"`
	Classification *types.ClassificationResult `json:"classification"`
	Language       *types.LanguageDetection    `json:"language,omitempty"`
	Translation    *types.TranslationResult    `json:"translation,omitempty"`
	DurationMS     int64                       `json:"duration_ms"`
}

// Orchestrator runs the extract -> analyze -> translate -> synthesize flow
// with guaranteed cleanup of the uploaded input on every exit path.
type Orchestrator struct {
	extractor   *extract.Extractor
	engines     *ocr.Selector
	classifier  *analyze.Classifier
	detector    interfaces.LanguageDetector
	translator  interfaces.Translator
	synthesizer interfaces.Synthesizer
	sink        interfaces.AnalyticsSink
	store       *storage.Store
	log         zerolog.Logger
}

// NewOrchestrator wires the pipeline dependencies together.
func NewOrchestrator(
	extractor *extract.Extractor,
	engines *ocr.Selector,
	classifier *analyze.Classifier,
	detector interfaces.LanguageDetector,
	translator interfaces.Translator,
	synthesizer interfaces.Synthesizer,
	sink interfaces.AnalyticsSink,
	store *storage.Store,
	log zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		extractor:   extractor,
		engines:     engines,
		classifier:  classifier,
		detector:    detector,
		translator:  translator,
		synthesizer: synthesizer,
		sink:        sink,
		store:       store,
		log:         log,
	}
}

// Run executes the pipeline. The uploaded input file is removed before Run
// returns, whether it succeeds or fails; no uploaded file survives past the
// request that created it.
func (o *Orchestrator) Run(ctx context.Context, req Request, outputPath string) (result *Result, err error) {
	start := time.Now()
	defer func() {
		if !o.store.Remove(req.InputPath) {
			o.log.Warn().Str("path", req.InputPath).Msg("failed to remove input file")
		}
		o.record(ctx, req, result, err, time.Since(start))
	}()

	engine, err := o.engines.Select(req.Engine)
	if err != nil {
		return nil, err
	}

	ocrResult, err := o.extractor.ExtractAt(ctx, req.InputPath, req.SourceFormat, engine, req.DPI)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(ocrResult.Text) == "" {
		return nil, utils.NewValidationError(
			"no text could be extracted from the document; the scan quality may be too poor to read", nil)
	}

	classification := o.classifier.Classify(ocrResult.Text)
	var language *types.LanguageDetection
	if o.detector != nil {
		language = o.detector.Detect(ocrResult.Text)
	}

	text := ocrResult.Text
	var translation *types.TranslationResult
	if req.TranslateTo != "" && o.translator.Enabled() {
		sourceLang := ""
		if language != nil && language.PrimaryLanguage != "unknown" {
			sourceLang = language.PrimaryLanguage
		}
		translation, err = o.translator.Translate(ctx, text, sourceLang, req.TranslateTo)
		if err != nil {
			// keep the OCR value of the request; translation is optional
			o.log.Warn().Err(err).Msg("translation failed, keeping original text")
			translation = nil
			err = nil
		}
		if translation != nil && translation.Success {
			text = translation.Translated
		}
	}

	if _, err = o.synthesizer.Synthesize(text, outputPath, req.TargetFormat); err != nil {
		if _, statErr := os.Stat(outputPath); statErr == nil {
			os.Remove(outputPath)
		}
		return nil, err
	}

	return &Result{
		OutputPath:     outputPath,
		OCR:            ocrResult,
		Classification: classification,
		Language:       language,
		Translation:    translation,
		DurationMS:     time.Since(start).Milliseconds(),
	}, nil
}

// record logs the analytics event. Sink failures are swallowed; telemetry
// never fails a request.
func (o *Orchestrator) record(ctx context.Context, req Request, result *Result, runErr error, elapsed time.Duration) {
	if runErr != nil {
		if sinkErr := o.sink.LogError(ctx, interfaces.ErrorEvent{
			ErrorType:    string(utils.GetErrorType(runErr)),
			SourceFormat: req.SourceFormat,
			TargetFormat: req.TargetFormat,
			Message:      runErr.Error(),
		}); sinkErr != nil {
			o.log.Warn().Err(sinkErr).Msg("failed to log error event")
		}
	}

	confidence := 0.0
	if result != nil && result.OCR != nil {
		confidence = result.OCR.Confidence
	}
	if sinkErr := o.sink.LogConversion(ctx, interfaces.ConversionEvent{
		SourceFormat:  req.SourceFormat,
		TargetFormat:  req.TargetFormat,
		Success:       runErr == nil,
		OCRConfidence: confidence,
		DurationMS:    elapsed.Milliseconds(),
	}); sinkErr != nil {
		o.log.Warn().Err(sinkErr).Msg("failed to log conversion event")
	}
}
