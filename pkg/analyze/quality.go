package analyze

import (
	"math"
	"os"

	"github.com/swiftconvert/server/pkg/types"
	"github.com/swiftconvert/server/pkg/utils"
)

// QualityScore estimates conversion quality on a 0-100 scale from file-size
// heuristics. It is a coarse signal for surfacing suspicious outputs, not a
// fidelity measurement.
func QualityScore(inputPath, outputPath, conversionType string) (*types.QualityReport, error) {
	inputInfo, err := os.Stat(inputPath)
	if err != nil {
		return nil, utils.NewIOError("failed to stat input file", err).WithContext("path", inputPath)
	}
	outputInfo, err := os.Stat(outputPath)
	if err != nil {
		return nil, utils.NewIOError("failed to stat output file", err).WithContext("path", outputPath)
	}

	inputSize := inputInfo.Size()
	outputSize := outputInfo.Size()
	sizeRatio := 0.0
	if inputSize > 0 {
		sizeRatio = float64(outputSize) / float64(inputSize)
	}

	score := 70.0
	switch {
	case sizeRatio > 0.8 && sizeRatio < 1.5:
		score += 15
	case sizeRatio > 3:
		score -= 20
	}
	switch conversionType {
	case "pdf_to_docx":
		score += 10
	case "image_to_pdf":
		score += 5
	}
	if outputSize < 1000 {
		// likely an empty or truncated document
		score -= 30
	}
	score = math.Max(0, math.Min(100, score))

	recommendation := "Review needed"
	switch {
	case score > 70:
		recommendation = "Good quality"
	case score > 50:
		recommendation = "Acceptable"
	}

	return &types.QualityReport{
		QualityScore: score,
		Confidence:   0.75,
		Metrics: map[string]float64{
			"size_ratio":     round2(sizeRatio),
			"input_size_mb":  round2(float64(inputSize) / (1024 * 1024)),
			"output_size_mb": round2(float64(outputSize) / (1024 * 1024)),
		},
		Recommendation: recommendation,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
