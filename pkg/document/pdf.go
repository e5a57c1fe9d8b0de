package document

import (
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/swiftconvert/server/pkg/constants"
	"github.com/swiftconvert/server/pkg/utils"
)

// WriteTextPDF renders plain text into a simple PDF: fixed-width wrapping,
// page break when vertical space runs out. No rich layout.
func WriteTextPDF(text, outputPath string) error {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetFont("Courier", "", 11)

	_, pageHeight := pdf.GetPageSize()
	y := constants.PDFMargin

	for _, line := range strings.Split(text, "\n") {
		for _, part := range wrapLine(line, constants.PDFWrapColumns) {
			if y > pageHeight-constants.PDFMargin {
				pdf.AddPage()
				y = constants.PDFMargin
			}
			pdf.Text(constants.PDFMargin, y, part)
			y += constants.PDFLineHeight
		}
	}

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return utils.NewConversionError("failed to write PDF", err).
			WithContext("path", outputPath)
	}
	return nil
}

// wrapLine splits a line into fixed-width chunks. An empty line still yields
// one empty chunk so vertical spacing survives.
func wrapLine(line string, width int) []string {
	runes := []rune(strings.TrimRight(line, "\r"))
	if len(runes) == 0 {
		return []string{""}
	}
	var parts []string
	for len(runes) > width {
		parts = append(parts, string(runes[:width]))
		runes = runes[width:]
	}
	return append(parts, string(runes))
}
