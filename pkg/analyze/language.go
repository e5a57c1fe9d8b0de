package analyze

import (
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/swiftconvert/server/pkg/interfaces"
	"github.com/swiftconvert/server/pkg/types"
)

// minDetectableTextLength mirrors the classifier's guard; shorter texts give
// detection results not worth reporting.
const minDetectableTextLength = 10

// maxReportedLanguages bounds the ranked list in the response.
const maxReportedLanguages = 5

// Detector ranks candidate languages for a text by confidence.
type Detector struct {
	detector lingua.LanguageDetector
}

var _ interfaces.LanguageDetector = (*Detector)(nil)

// NewDetector builds the detector over the full language set. Construction
// loads language models, so build once and share.
func NewDetector() *Detector {
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build(),
	}
}

// Detect returns ranked language guesses with ISO 639-1 codes. Texts too
// short to detect come back as unknown with confidence 0.
func (d *Detector) Detect(text string) *types.LanguageDetection {
	if len(strings.TrimSpace(text)) < minDetectableTextLength {
		return &types.LanguageDetection{PrimaryLanguage: "unknown"}
	}

	values := d.detector.ComputeLanguageConfidenceValues(text)
	if len(values) == 0 {
		return &types.LanguageDetection{PrimaryLanguage: "unknown"}
	}
	if len(values) > maxReportedLanguages {
		values = values[:maxReportedLanguages]
	}

	guesses := make([]types.LanguageGuess, 0, len(values))
	for _, v := range values {
		guesses = append(guesses, types.LanguageGuess{
			Language:   strings.ToLower(v.Language().IsoCode639_1().String()),
			Confidence: v.Value(),
		})
	}

	return &types.LanguageDetection{
		PrimaryLanguage: guesses[0].Language,
		Confidence:      guesses[0].Confidence,
		AllLanguages:    guesses,
	}
}
