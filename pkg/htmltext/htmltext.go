// Package htmltext derives plain text from note content stored as HTML.
// Previews and client-side filtering both work on the output of ToPlainText,
// so stripping must be entity-aware and tolerant of malformed markup.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

// ToPlainText strips all markup from an HTML fragment and returns the text
// content with whitespace runs collapsed to single spaces. Malformed or
// partial HTML never produces an error: the tokenizer consumes whatever it
// can and the text collected so far is returned.
func ToPlainText(htmlContent string) string {
	if htmlContent == "" {
		return ""
	}

	var sb strings.Builder
	skipDepth := 0

	z := html.NewTokenizer(strings.NewReader(htmlContent))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a parse failure; either way we keep what we have.
			return collapseWhitespace(sb.String())
		case html.TextToken:
			if skipDepth == 0 {
				sb.Write(z.Text())
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if isInvisible(tag) {
				skipDepth++
			}
			if isBlockBoundary(tag) {
				sb.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if isInvisible(tag) && skipDepth > 0 {
				skipDepth--
			}
			if isBlockBoundary(tag) {
				sb.WriteByte(' ')
			}
		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			if isBlockBoundary(string(name)) {
				sb.WriteByte(' ')
			}
		}
	}
}

// Truncate shortens plain text to max runes, appending an ellipsis marker.
// Used for list previews and search result snippets.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

// script/style bodies are text tokens but are never user-visible content.
func isInvisible(tag string) bool {
	return tag == "script" || tag == "style"
}

// Block-level elements separate text runs; a space keeps adjacent runs
// apart before collapseWhitespace trims the excess.
func isBlockBoundary(tag string) bool {
	switch tag {
	case "p", "br", "div", "li", "ul", "ol", "blockquote", "pre",
		"table", "tr", "td", "th",
		"h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
