package convert

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/swiftconvert/server/pkg/constants"
	"github.com/swiftconvert/server/pkg/document"
	"github.com/swiftconvert/server/pkg/utils"
)

// PDFToDocx extracts the embedded text of each PDF page and rebuilds it as
// a DOCX. Layout fidelity is best-effort; scanned PDFs without a text layer
// produce an empty document and should go through OCR instead.
func (c *Converter) PDFToDocx(ctx context.Context, inputPath, outputPath string) (string, error) {
	doc, err := fitz.New(inputPath)
	if err != nil {
		return "", utils.NewConversionError("failed to open PDF", err).WithContext("input", inputPath)
	}
	defer doc.Close()

	var paragraphs []string
	for n := 0; n < doc.NumPage(); n++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		text, err := doc.Text(n)
		if err != nil {
			return "", utils.NewConversionError(
				fmt.Sprintf("failed to extract text from page %d", n+1), err)
		}
		paragraphs = append(paragraphs, document.NonBlankLines(text)...)
	}

	if err := document.WriteDocx(paragraphs, outputPath); err != nil {
		return "", err
	}
	c.log.Info().Str("output", outputPath).Msg("PDF to DOCX conversion successful")
	return outputPath, nil
}

// DocxToPDF renders the document's paragraphs as a plain-text PDF.
func (c *Converter) DocxToPDF(ctx context.Context, inputPath, outputPath string) (string, error) {
	paragraphs, err := document.ReadDocxParagraphs(inputPath)
	if err != nil {
		return "", err
	}
	if err := document.WriteTextPDF(strings.Join(paragraphs, "\n"), outputPath); err != nil {
		return "", err
	}
	c.log.Info().Str("output", outputPath).Msg("DOCX to PDF conversion successful")
	return outputPath, nil
}

// TextToDocx writes one paragraph per non-blank input line. Blank lines are
// dropped, so text -> docx -> text round-trips are not byte-identical.
func (c *Converter) TextToDocx(ctx context.Context, inputPath, outputPath string) (string, error) {
	content, err := os.ReadFile(inputPath)
	if err != nil {
		return "", utils.NewIOError("failed to read text file", err).WithContext("input", inputPath)
	}
	if err := document.WriteDocx(document.NonBlankLines(string(content)), outputPath); err != nil {
		return "", err
	}
	c.log.Info().Str("output", outputPath).Msg("Text to DOCX conversion successful")
	return outputPath, nil
}

// DocxToText extracts paragraphs and writes them separated by blank lines.
func (c *Converter) DocxToText(ctx context.Context, inputPath, outputPath string) (string, error) {
	paragraphs, err := document.ReadDocxParagraphs(inputPath)
	if err != nil {
		return "", err
	}
	text := strings.Join(paragraphs, "\n\n")
	if err := os.WriteFile(outputPath, []byte(text), constants.DefaultFilePermission); err != nil {
		return "", utils.NewIOError("failed to write text file", err).WithContext("output", outputPath)
	}
	c.log.Info().Str("output", outputPath).Msg("DOCX to Text conversion successful")
	return outputPath, nil
}

// TextToPDF renders the file as fixed-width wrapped text.
func (c *Converter) TextToPDF(ctx context.Context, inputPath, outputPath string) (string, error) {
	content, err := os.ReadFile(inputPath)
	if err != nil {
		return "", utils.NewIOError("failed to read text file", err).WithContext("input", inputPath)
	}
	if err := document.WriteTextPDF(string(content), outputPath); err != nil {
		return "", err
	}
	c.log.Info().Str("output", outputPath).Msg("Text to PDF conversion successful")
	return outputPath, nil
}
