// Package analyze holds the content-analysis capabilities layered over
// extracted text: classification, language detection, translation, format
// recommendation, and conversion quality scoring.
package analyze

import (
	"strings"

	"github.com/swiftconvert/server/pkg/constants"
	"github.com/swiftconvert/server/pkg/types"
)

// categoryKeywords drives the keyword-density classifier. Scores are the
// per-category hit counts normalized over all categories.
var categoryKeywords = map[types.DocumentCategory][]string{
	types.CategoryInvoice:  {"invoice", "bill", "receipt", "payment", "total", "tax", "gst", "amount due"},
	types.CategoryResume:   {"experience", "education", "skills", "objective", "projects", "certification"},
	types.CategoryResearch: {"abstract", "introduction", "methodology", "results", "conclusion", "references"},
	types.CategoryLegal:    {"agreement", "contract", "whereas", "party", "terms", "conditions", "clause"},
	types.CategoryReport:   {"executive summary", "analysis", "findings", "recommendations", "appendix"},
	types.CategoryLetter:   {"dear", "sincerely", "regards", "yours truly", "subject", "date"},
}

// Classifier assigns a document category from keyword density. Stateless;
// every call recomputes from scratch.
type Classifier struct {
	threshold float64
}

// NewClassifier builds a classifier. Best-category scores below threshold
// fall back to the general category.
func NewClassifier(threshold float64) *Classifier {
	if threshold <= 0 {
		threshold = constants.DefaultClassifierThreshold
	}
	return &Classifier{threshold: threshold}
}

// Classify scores text against each category's keyword list. Texts shorter
// than the classifiable minimum come back as unknown with confidence 0.
func (c *Classifier) Classify(text string) *types.ClassificationResult {
	if len(strings.TrimSpace(text)) < constants.MinClassifiableTextLength {
		return &types.ClassificationResult{
			Category: types.CategoryUnknown,
			Scores:   map[types.DocumentCategory]float64{},
		}
	}

	lower := strings.ToLower(text)
	hits := make(map[types.DocumentCategory]int, len(categoryKeywords))
	total := 0
	for category, keywords := range categoryKeywords {
		n := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				n++
			}
		}
		hits[category] = n
		total += n
	}

	scores := make(map[types.DocumentCategory]float64, len(hits))
	best := types.CategoryGeneral
	bestScore := 0.0
	for category, n := range hits {
		score := 0.0
		if total > 0 {
			score = float64(n) / float64(total)
		}
		scores[category] = score
		if score > bestScore {
			best, bestScore = category, score
		}
	}
	if bestScore < c.threshold {
		best = types.CategoryGeneral
	}

	return &types.ClassificationResult{
		Category:   best,
		Confidence: bestScore,
		Scores:     scores,
	}
}
