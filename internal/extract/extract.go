// Package extract turns an EPUB archive into ordered chapter entries.
//
// Entries follow the archive's spine (container) order. Each document entry
// yields one chapter: the title comes from a <p class="chaptertitle"> element
// when present, otherwise "Chapter {n}" is synthesized from the 1-based
// traversal position. Content is the re-serialized parse tree, so malformed
// markup is normalized but whitespace is preserved.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/simp-lee/epub"
	"golang.org/x/net/html"

	domainerrors "github.com/ebookhub/ebookhub-server/internal/errors"
)

// Entry is one extracted chapter in read order.
type Entry struct {
	Title   string
	Content string
	Number  int // 1-based position in spine order
}

// Extract parses the EPUB archive and returns its chapters in spine order.
// Any archive or entry failure aborts the traversal with an extraction error;
// entries already extracted are not returned.
func Extract(data []byte) ([]Entry, error) {
	book, err := epub.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeExtraction, "failed to open EPUB archive")
	}
	defer book.Close()

	chapters := book.Chapters()
	entries := make([]Entry, 0, len(chapters))

	for i, chapter := range chapters {
		raw, err := chapter.RawContent()
		if err != nil {
			return nil, domainerrors.Wrapf(err, domainerrors.CodeExtraction, "failed to read entry %q", chapter.Href)
		}

		number := i + 1

		doc, err := html.Parse(bytes.NewReader(raw))
		if err != nil {
			return nil, domainerrors.Wrapf(err, domainerrors.CodeExtraction, "failed to parse entry %q", chapter.Href)
		}

		title := findChapterTitle(doc)
		if title == "" {
			title = fmt.Sprintf("Chapter %d", number)
		}

		content, err := renderDocument(doc)
		if err != nil {
			return nil, domainerrors.Wrapf(err, domainerrors.CodeExtraction, "failed to serialize entry %q", chapter.Href)
		}

		entries = append(entries, Entry{
			Title:   title,
			Content: content,
			Number:  number,
		})
	}

	return entries, nil
}

// findChapterTitle walks the parse tree for the first <p class="chaptertitle">
// element and returns its trimmed text, or "" if none exists.
func findChapterTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "p" && hasClass(n, "chaptertitle") {
		return strings.TrimSpace(nodeText(n))
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := findChapterTitle(c); title != "" {
			return title
		}
	}

	return ""
}

// hasClass reports whether the node's class attribute contains the given
// class name as one of its space-separated values.
func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// nodeText concatenates all text nodes under n.
func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}

	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}

// renderDocument serializes the parse tree back to HTML.
func renderDocument(doc *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
