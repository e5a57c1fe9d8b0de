package analyze

import (
	"os"
	"sort"

	"github.com/swiftconvert/server/pkg/types"
)

// largeImageBytes is the size above which PDF is suggested for images.
const largeImageBytes = 5 * 1024 * 1024

// ContentAnalysis carries the optional signals the recommender can use.
type ContentAnalysis struct {
	HasText   bool
	Category  types.DocumentCategory
	PageCount int
}

// RecommendFormat suggests output formats for a file, best first. There is
// always at least one suggestion; PDF is the universal fallback.
func RecommendFormat(filePath, fileType string, analysis *ContentAnalysis) []types.FormatRecommendation {
	if analysis == nil {
		analysis = &ContentAnalysis{}
	}

	var recs []types.FormatRecommendation
	switch fileType {
	case "jpg", "jpeg", "png":
		recs = recommendForImage(filePath, analysis)
	case "pdf":
		recs = recommendForPDF(analysis)
	case "csv", "xlsx":
		recs = []types.FormatRecommendation{{
			Format:     "pdf",
			Reason:     "Spreadsheet - PDF for presentation",
			Confidence: 0.8,
		}}
	}

	if len(recs) == 0 {
		recs = append(recs, types.FormatRecommendation{
			Format:     "pdf",
			Reason:     "PDF is universal and widely compatible",
			Confidence: 0.5,
		})
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Confidence > recs[j].Confidence })
	return recs
}

func recommendForImage(filePath string, analysis *ContentAnalysis) []types.FormatRecommendation {
	var recs []types.FormatRecommendation
	if info, err := os.Stat(filePath); err == nil && info.Size() > largeImageBytes {
		recs = append(recs, types.FormatRecommendation{
			Format:     "pdf",
			Reason:     "Large image - PDF provides better compression",
			Confidence: 0.9,
		})
	}
	if analysis.HasText {
		recs = append(recs, types.FormatRecommendation{
			Format:     "docx",
			Reason:     "Image contains text - DOCX preserves editability",
			Confidence: 0.7,
		})
	}
	return recs
}

func recommendForPDF(analysis *ContentAnalysis) []types.FormatRecommendation {
	if analysis.Category == types.CategoryResume {
		return []types.FormatRecommendation{{
			Format:     "docx",
			Reason:     "Resume detected - DOCX allows easy editing",
			Confidence: 0.85,
		}}
	}
	if analysis.PageCount > 50 {
		return []types.FormatRecommendation{{
			Format:     "txt",
			Reason:     "Large document - TXT for quick access",
			Confidence: 0.6,
		}}
	}
	return nil
}
