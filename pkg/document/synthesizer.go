// Package document renders plain text into output documents and reads
// paragraph structure back out of DOCX files.
package document

import (
	"fmt"
	"os"
	"strings"

	"github.com/swiftconvert/server/pkg/constants"
	"github.com/swiftconvert/server/pkg/interfaces"
	"github.com/swiftconvert/server/pkg/utils"
)

// Synthesizer implements interfaces.Synthesizer for docx, txt and pdf.
type Synthesizer struct{}

var _ interfaces.Synthesizer = (*Synthesizer)(nil)

// NewSynthesizer creates a document synthesizer.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// Synthesize writes text to outputPath in the requested format and returns
// the output path. DOCX gets one paragraph per input line with blank lines
// skipped (a deliberately lossy boundary: text->docx->text is not
// byte-identical when blank lines are present), TXT is verbatim, PDF is
// fixed-width wrapped.
func (s *Synthesizer) Synthesize(text, outputPath, format string) (string, error) {
	switch strings.ToLower(format) {
	case "docx":
		if err := WriteDocx(NonBlankLines(text), outputPath); err != nil {
			return "", err
		}
	case "txt":
		if err := os.WriteFile(outputPath, []byte(text), constants.DefaultFilePermission); err != nil {
			return "", utils.NewIOError("failed to write text file", err).
				WithContext("path", outputPath)
		}
	case "pdf":
		if err := WriteTextPDF(text, outputPath); err != nil {
			return "", err
		}
	default:
		return "", utils.NewUnsupportedError(
			fmt.Sprintf("unsupported output format: %s. Supported formats: docx, txt, pdf", format), nil)
	}
	return outputPath, nil
}

// NonBlankLines splits text into lines, dropping blank ones.
func NonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimRight(line, "\r"))
		}
	}
	return lines
}
