package extract

import (
	"os"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/swiftconvert/server/pkg/types"
	"github.com/swiftconvert/server/pkg/utils"
)

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	newlineRuns = regexp.MustCompile(`\n\s*\n\s*\n+`)
	paddedLines = regexp.MustCompile(` *\n *`)
)

// extractHTML parses the file as HTML and walks the node tree, collecting
// text while skipping script and style subtrees.
func (e *Extractor) extractHTML(path string) (*types.OcrResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.NewIOError("failed to read HTML file", err).WithContext("path", path)
	}

	doc, err := html.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, utils.NewConversionError("failed to parse HTML", err).WithContext("path", path)
	}

	var b strings.Builder
	collectText(doc, &b)
	return directResult(cleanupHTMLText(b.String())), nil
}

func collectText(node *html.Node, b *strings.Builder) {
	if node.Type == html.ElementNode {
		if node.DataAtom == atom.Script || node.DataAtom == atom.Style {
			return
		}
		if isBlockElement(node.DataAtom) {
			b.WriteString("\n")
		}
	}

	if node.Type == html.TextNode {
		if text := strings.TrimSpace(node.Data); text != "" {
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(text)
		}
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, b)
	}

	if node.Type == html.ElementNode && isBlockElement(node.DataAtom) {
		b.WriteString("\n")
	}
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true,
	atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true,
	atom.Article: true, atom.Section: true,
	atom.Header: true, atom.Footer: true,
	atom.Nav: true, atom.Aside: true, atom.Main: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true,
	atom.Table: true, atom.Tr: true, atom.Td: true, atom.Th: true,
}

func isBlockElement(a atom.Atom) bool {
	return blockElements[a]
}

func cleanupHTMLText(text string) string {
	text = html.UnescapeString(text)
	text = spaceRuns.ReplaceAllString(text, " ")
	text = paddedLines.ReplaceAllString(text, "\n")
	text = newlineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
