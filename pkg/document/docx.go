package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/swiftconvert/server/pkg/utils"
)

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const docxDocumentHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

const docxDocumentFooter = `</w:body></w:document>`

// WriteDocx writes paragraphs as a minimal WordprocessingML package: the
// three mandatory parts zipped together, one <w:p> per paragraph.
func WriteDocx(paragraphs []string, outputPath string) error {
	var doc bytes.Buffer
	doc.WriteString(docxDocumentHeader)
	for _, p := range paragraphs {
		doc.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		if err := xml.EscapeText(&doc, []byte(p)); err != nil {
			return utils.NewConversionError("failed to encode paragraph text", err)
		}
		doc.WriteString(`</w:t></w:r></w:p>`)
	}
	doc.WriteString(docxDocumentFooter)

	f, err := os.Create(outputPath)
	if err != nil {
		return utils.NewIOError("failed to create docx file", err).
			WithContext("path", outputPath)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(docxContentTypes)},
		{"_rels/.rels", []byte(docxRels)},
		{"word/document.xml", doc.Bytes()},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return utils.NewConversionError("failed to add docx part", err).
				WithContext("part", part.name)
		}
		if _, err := w.Write(part.data); err != nil {
			return utils.NewConversionError("failed to write docx part", err).
				WithContext("part", part.name)
		}
	}
	if err := zw.Close(); err != nil {
		return utils.NewConversionError("failed to finalize docx archive", err)
	}
	return nil
}

// ReadDocxParagraphs parses a .docx by streaming word/document.xml from the
// ZIP archive and collecting paragraph texts. Blank paragraphs are dropped.
func ReadDocxParagraphs(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, utils.NewConversionError("failed to open docx archive", err).
			WithContext("path", path)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, utils.NewConversionError("word/document.xml not found in archive", nil).
			WithContext("path", path)
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, utils.NewConversionError("failed to open document.xml", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var paragraphs []string
	var current strings.Builder
	var inParagraph bool

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, utils.NewConversionError("malformed document.xml", err).
				WithContext("path", path)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "p" {
				inParagraph = true
				current.Reset()
			}
		case xml.CharData:
			if inParagraph {
				current.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "p" && inParagraph {
				inParagraph = false
				if text := strings.TrimSpace(current.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
			}
		}
	}

	return paragraphs, nil
}
