// Package extract implements the text extraction pipeline. It routes an
// input file by extension to the matching extraction strategy: direct text
// read, document parsing, or rasterize-and-OCR for scanned inputs.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/swiftconvert/server/pkg/constants"
	"github.com/swiftconvert/server/pkg/document"
	"github.com/swiftconvert/server/pkg/interfaces"
	"github.com/swiftconvert/server/pkg/types"
	"github.com/swiftconvert/server/pkg/utils"
)

// Extractor extracts plain text from uploaded documents and images.
type Extractor struct {
	tmpDir   string
	dpi      float64
	detector interfaces.LanguageDetector
	log      zerolog.Logger
}

// NewExtractor builds an extractor. tmpDir holds intermediate page images
// during PDF OCR; dpi is the rasterization resolution.
func NewExtractor(tmpDir string, dpi float64, detector interfaces.LanguageDetector, log zerolog.Logger) *Extractor {
	return &Extractor{tmpDir: tmpDir, dpi: dpi, detector: detector, log: log}
}

// Extract pulls text from path. Formats that carry text directly (txt, md,
// html, docx) are read without OCR and reported with confidence 1.0; pdf and
// image inputs go through engine.
func (e *Extractor) Extract(ctx context.Context, path, ext string, engine interfaces.OCREngine) (*types.OcrResult, error) {
	return e.ExtractAt(ctx, path, ext, engine, 0)
}

// ExtractAt is Extract with a per-call rasterization DPI for scanned inputs.
// dpi <= 0 selects the configured default; other values are clamped to the
// supported range.
func (e *Extractor) ExtractAt(ctx context.Context, path, ext string, engine interfaces.OCREngine, dpi float64) (*types.OcrResult, error) {
	if dpi <= 0 {
		dpi = e.dpi
	}
	dpi = min(max(dpi, constants.MinOCRDPI), constants.MaxOCRDPI)

	var (
		result *types.OcrResult
		err    error
	)

	switch strings.ToLower(ext) {
	case "txt", "md":
		result, err = e.extractPlainText(path)
	case "html":
		result, err = e.extractHTML(path)
	case "docx":
		result, err = e.extractDocx(path)
	case "pdf":
		result, err = e.extractPDF(ctx, path, engine, dpi)
	case "jpg", "jpeg", "png":
		result, err = engine.Recognize(ctx, path)
	default:
		return nil, utils.NewUnsupportedError(
			fmt.Sprintf("text extraction is not supported for .%s files", ext), nil)
	}
	if err != nil {
		return nil, err
	}

	if e.detector != nil && result.Text != "" && result.Language == "" {
		if det := e.detector.Detect(result.Text); det != nil {
			result.Language = det.PrimaryLanguage
		}
	}
	return result, nil
}

func (e *Extractor) extractPlainText(path string) (*types.OcrResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.NewIOError("failed to read text file", err).WithContext("path", path)
	}
	text := strings.TrimSpace(string(data))
	return directResult(text), nil
}

func (e *Extractor) extractDocx(path string) (*types.OcrResult, error) {
	paragraphs, err := document.ReadDocxParagraphs(path)
	if err != nil {
		return nil, err
	}
	return directResult(strings.Join(paragraphs, "\n")), nil
}

// extractPDF rasterizes each page and OCRs it, deleting the page image as
// soon as recognition completes. The overall confidence is the word-count
// weighted average over pages.
func (e *Extractor) extractPDF(ctx context.Context, path string, engine interfaces.OCREngine, dpi float64) (*types.OcrResult, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, utils.NewConversionError("failed to open PDF", err).WithContext("path", path)
	}
	defer doc.Close()

	var (
		pages     []types.PageResult
		texts     []string
		weighted  float64
		wordTotal int
	)
	token := uuid.New().String()
	for n := 0; n < doc.NumPage(); n++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.ImageDPI(n, dpi)
		if err != nil {
			return nil, utils.NewConversionError(
				fmt.Sprintf("failed to render page %d", n+1), err)
		}

		pagePath := filepath.Join(e.tmpDir, fmt.Sprintf("%s-page-%d.png", token, n+1))
		if err := utils.EncodeImageFile(img, pagePath, "png"); err != nil {
			return nil, err
		}
		pageResult, err := engine.Recognize(ctx, pagePath)
		if removeErr := os.Remove(pagePath); removeErr != nil {
			e.log.Warn().Err(removeErr).Str("path", pagePath).Msg("failed to remove page image")
		}
		if err != nil {
			return nil, err
		}

		pages = append(pages, types.PageResult{
			Page:       n + 1,
			Confidence: pageResult.Confidence,
			WordCount:  pageResult.WordCount,
		})
		if pageResult.Text != "" {
			texts = append(texts, pageResult.Text)
		}
		weighted += pageResult.Confidence * float64(pageResult.WordCount)
		wordTotal += pageResult.WordCount
	}

	confidence := 0.0
	if wordTotal > 0 {
		confidence = weighted / float64(wordTotal)
	}
	text := strings.Join(texts, " ")
	return &types.OcrResult{
		Text:       text,
		Confidence: confidence,
		WordCount:  utils.CountWords(text),
		PerPage:    pages,
		Engine:     engine.Name(),
	}, nil
}

// directResult wraps text obtained without OCR. Confidence is 1.0 since the
// text came straight from the file; an empty file scores 0.
func directResult(text string) *types.OcrResult {
	confidence := 1.0
	if text == "" {
		confidence = 0
	}
	return &types.OcrResult{
		Text:       text,
		Confidence: confidence,
		WordCount:  utils.CountWords(text),
	}
}
