// Package convert implements the format conversion router and the
// per-format conversion strategies.
package convert

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/swiftconvert/server/pkg/utils"
)

// Strategy performs one conversion. It writes outputPath and returns it, or
// fails with a typed error. Strategies do not clean up the input file; the
// caller owns it.
type Strategy func(ctx context.Context, inputPath, outputPath string) (string, error)

// SupportedConversions maps a source extension to its legal targets. The two
// pdf<->docx specials are checked before this table and are intentionally
// absent from it. Absence of a target here is the sole rejection signal.
var SupportedConversions = map[string][]string{
	"pdf":  {"docx"},
	"docx": {"pdf", "txt"},
	"doc":  {"pdf", "docx"},
	"odt":  {"pdf", "docx"},
	"txt":  {"pdf", "docx"},
	"md":   {"docx", "pdf"},
	"jpg":  {"pdf", "jpeg", "png"},
	"jpeg": {"pdf", "jpg", "png"},
	"png":  {"pdf", "jpg", "jpeg"},
	"csv":  {"xlsx", "pdf"},
	"xlsx": {"csv"},
}

// Router resolves a (source, target) pair to a Strategy.
type Router struct {
	conv *Converter
}

// NewRouter builds a router over the given converter.
func NewRouter(conv *Converter) *Router {
	return &Router{conv: conv}
}

// Converter holds the shared state the strategies need.
type Converter struct {
	sofficePath string
	tmpDir      string
	log         zerolog.Logger
}

// NewConverter builds the strategy set. sofficePath is the LibreOffice
// binary used for legacy office formats; tmpDir holds strategy
// intermediates.
func NewConverter(sofficePath, tmpDir string, log zerolog.Logger) *Converter {
	return &Converter{sofficePath: sofficePath, tmpDir: tmpDir, log: log}
}

// predicate guards one dispatch entry.
type predicate func(source, target string) bool

type dispatchEntry struct {
	match    predicate
	strategy Strategy
}

// Route returns the strategy for the pair, lower-casing both tokens. The two
// pdf<->docx specials are checked before the table; dispatch then walks the
// predicate list top to bottom and the first match wins. Ordering matters:
// the image-to-image predicate excludes pdf so it cannot shadow
// image-to-pdf, and csv->pdf precedes the text strategies.
func (r *Router) Route(sourceExt, targetExt string) (Strategy, error) {
	source := strings.ToLower(sourceExt)
	target := strings.ToLower(targetExt)

	if source == "pdf" && target == "docx" {
		return r.conv.PDFToDocx, nil
	}
	if source == "docx" && target == "pdf" {
		return r.conv.DocxToPDF, nil
	}

	if !contains(SupportedConversions[source], target) {
		return nil, unsupportedPair(source, target)
	}

	dispatch := []dispatchEntry{
		{isOfficeConversion, r.conv.OfficeConvert},
		{isImageToPDF, r.conv.ImageToPDF},
		{isImageToImage, func(ctx context.Context, in, out string) (string, error) {
			return r.conv.ImageToImage(ctx, in, out, target)
		}},
		{pair("csv", "xlsx"), r.conv.CSVToXLSX},
		{pair("xlsx", "csv"), r.conv.XLSXToCSV},
		{pair("csv", "pdf"), r.conv.CSVToPDF},
		{isTextToDocx, r.conv.TextToDocx},
		{isDocxToText, r.conv.DocxToText},
		{isTextToPDF, r.conv.TextToPDF},
	}
	for _, entry := range dispatch {
		if entry.match(source, target) {
			return entry.strategy, nil
		}
	}
	return nil, unsupportedPair(source, target)
}

// unsupportedPair builds the user-facing rejection naming every legal
// target for the source, or "None" when the source has none registered.
func unsupportedPair(source, target string) error {
	allowed := append([]string(nil), SupportedConversions[source]...)
	human := "None"
	if len(allowed) > 0 {
		sort.Strings(allowed)
		human = strings.Join(allowed, ", ")
	}
	return utils.NewUnsupportedError(fmt.Sprintf(
		"Conversion from %s to %s is not supported. Supported targets for %s: %s",
		strings.ToUpper(source), strings.ToUpper(target), strings.ToUpper(source), human), nil)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func pair(source, target string) predicate {
	return func(s, t string) bool { return s == source && t == target }
}

func isImage(ext string) bool {
	return ext == "jpg" || ext == "jpeg" || ext == "png"
}

func isOfficeConversion(s, t string) bool {
	return (s == "doc" || s == "odt") && (t == "pdf" || t == "docx")
}

func isImageToPDF(s, t string) bool {
	return isImage(s) && t == "pdf"
}

func isImageToImage(s, t string) bool {
	return isImage(s) && isImage(t)
}

func isTextToDocx(s, t string) bool {
	return (s == "txt" || s == "md") && t == "docx"
}

func isDocxToText(s, t string) bool {
	return s == "docx" && (t == "txt" || t == "md")
}

func isTextToPDF(s, t string) bool {
	return (s == "txt" || s == "md") && t == "pdf"
}
