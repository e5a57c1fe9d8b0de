// Package interfaces declares the external capabilities the conversion core
// depends on. Implementations live in their own packages; the pipeline only
// sees these contracts.
package interfaces

import (
	"context"

	"github.com/swiftconvert/server/pkg/types"
)

// OCREngine recognizes text in a single image file.
type OCREngine interface {
	// Name returns the engine token ("standard", "binarized", ...).
	Name() string

	// Available reports whether the engine can run in this process.
	Available() bool

	// Recognize extracts text from an image. An unreadable image is an
	// error; an image with no text yields a result with empty text and
	// confidence 0, not an error.
	Recognize(ctx context.Context, imagePath string) (*types.OcrResult, error)
}

// Translator translates text between languages. Network-dependent.
type Translator interface {
	// Enabled reports whether the translation capability is configured.
	Enabled() bool

	// Translate returns a TranslationResult; on failure the result carries
	// Success=false and callers fall back to the original text.
	Translate(ctx context.Context, text, sourceLang, targetLang string) (*types.TranslationResult, error)
}

// LanguageDetector guesses languages of a text, ranked by probability.
type LanguageDetector interface {
	Detect(text string) *types.LanguageDetection
}

// ConversionEvent records one conversion attempt for analytics.
type ConversionEvent struct {
	SourceFormat  string
	TargetFormat  string
	Success       bool
	OCRConfidence float64
	DurationMS    int64
}

// ErrorEvent records a conversion failure for analytics.
type ErrorEvent struct {
	ErrorType    string
	SourceFormat string
	TargetFormat string
	Message      string
}

// PairCount is one (source, target) pair with its occurrence count.
type PairCount struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Count  int64  `json:"count"`
}

// FailurePattern clusters errors by conversion pair and error type.
type FailurePattern struct {
	Conversion string `json:"conversion"`
	Error      string `json:"error"`
	Count      int64  `json:"count"`
}

// Insights aggregates the analytics log.
type Insights struct {
	TotalConversions   int64            `json:"total_conversions"`
	SuccessRate        float64          `json:"success_rate"`
	PopularConversions []PairCount      `json:"popular_conversions"`
	AverageConfidence  float64          `json:"average_confidence"`
	FailurePatterns    []FailurePattern `json:"failure_patterns"`
}

// AnalyticsSink is an append-only event log. Writes are best-effort
// telemetry: callers log failures and move on, they never fail a request
// over a sink error.
type AnalyticsSink interface {
	LogConversion(ctx context.Context, ev ConversionEvent) error
	LogError(ctx context.Context, ev ErrorEvent) error
	Insights(ctx context.Context) (*Insights, error)
	Close() error
}

// Synthesizer renders plain text into a target document format.
type Synthesizer interface {
	// Synthesize writes text to outputPath as the given format and returns
	// the output path.
	Synthesize(text, outputPath, format string) (string, error)
}
