package types

import "strings"

// OCREngineKind selects which OCR engine backs the extraction pipeline.
type OCREngineKind string

const (
	// OCREngineStandard runs Tesseract on the raw image; Tesseract's own
	// preprocessing handles most inputs well.
	OCREngineStandard OCREngineKind = "standard"
	// OCREngineBinarized applies grayscale + adaptive threshold before
	// recognition, which helps on low-contrast scans.
	OCREngineBinarized OCREngineKind = "binarized"
)

// AllowedExtensions is the fixed vocabulary of upload extensions the service
// accepts. Membership here does not imply a conversion exists; the conversion
// router is the source of truth for supported pairs.
var AllowedExtensions = map[string]bool{
	"pdf": true, "docx": true, "doc": true, "odt": true, "rtf": true,
	"txt": true, "md": true, "html": true,
	"xlsx": true, "xls": true, "ods": true, "csv": true,
	"pptx": true, "odp": true,
	"jpg": true, "jpeg": true, "png": true,
}

// IsAllowedExtension reports whether ext (with or without a leading dot,
// any case) is in the upload vocabulary.
func IsAllowedExtension(ext string) bool {
	return AllowedExtensions[strings.ToLower(strings.TrimPrefix(ext, "."))]
}

// ConversionRequest is the ephemeral value describing one conversion call.
// Formats are lower-cased extension tokens.
type ConversionRequest struct {
	InputPath    string
	SourceFormat string
	TargetFormat string
}

// TextBlock is a single recognized text region.
type TextBlock struct {
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	BBox       []float64 `json:"bbox,omitempty"`
}

// PageResult summarizes OCR output for one page of a multi-page input.
type PageResult struct {
	Page       int     `json:"page"`
	Confidence float64 `json:"confidence"`
	WordCount  int     `json:"words"`
}

// OcrResult is the extraction pipeline's output: normalized text plus a
// confidence averaged over detected regions, zero when nothing was found.
type OcrResult struct {
	Text       string       `json:"text"`
	Confidence float64      `json:"confidence"`
	Language   string       `json:"language,omitempty"`
	WordCount  int          `json:"word_count"`
	Blocks     []TextBlock  `json:"blocks,omitempty"`
	PerPage    []PageResult `json:"per_page,omitempty"`
	Engine     string       `json:"engine,omitempty"`
}

// DocumentCategory is the label set of the keyword classifier.
type DocumentCategory string

const (
	CategoryInvoice  DocumentCategory = "invoice"
	CategoryResume   DocumentCategory = "resume"
	CategoryResearch DocumentCategory = "research"
	CategoryLegal    DocumentCategory = "legal"
	CategoryReport   DocumentCategory = "report"
	CategoryLetter   DocumentCategory = "letter"
	CategoryGeneral  DocumentCategory = "general"
	CategoryUnknown  DocumentCategory = "unknown"
)

// ClassificationResult is the keyword-density classification of a text.
// Scores are normalized over all categories and recomputed on every call.
type ClassificationResult struct {
	Category   DocumentCategory             `json:"category"`
	Confidence float64                      `json:"confidence"`
	Scores     map[DocumentCategory]float64 `json:"scores"`
}

// TranslationResult reports a translation attempt. Success is false when the
// translator is disabled or the call failed; callers fall back to Original.
type TranslationResult struct {
	Original       string `json:"original"`
	Translated     string `json:"translated"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
}

// LanguageGuess is one entry of a ranked language-detection result.
type LanguageGuess struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// LanguageDetection is the full ranked detection result.
type LanguageDetection struct {
	PrimaryLanguage string          `json:"primary_language"`
	Confidence      float64         `json:"confidence"`
	AllLanguages    []LanguageGuess `json:"all_languages"`
}

// FormatRecommendation suggests an output format for an uploaded file.
type FormatRecommendation struct {
	Format     string  `json:"format"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// QualityReport is a heuristic conversion-quality estimate.
type QualityReport struct {
	QualityScore   float64            `json:"quality_score"`
	Confidence     float64            `json:"confidence"`
	Metrics        map[string]float64 `json:"metrics"`
	Recommendation string             `json:"recommendation"`
}
