package document

import (
	"strings"

	"gitlab.com/golang-commonmark/markdown"
)

var markdownParser = markdown.New(
	markdown.HTML(true),
	markdown.Linkify(false),
	markdown.Typographer(false),
)

// markdownText renders markdown source as plain text: markup is dropped and
// only headings, paragraphs, list items, table cells and code are kept.
func markdownText(src []byte) string {
	var b strings.Builder
	for _, tok := range markdownParser.Parse(src) {
		switch t := tok.(type) {
		case *markdown.Inline:
			writeInline(&b, t.Children)
		case *markdown.Fence:
			b.WriteString(t.Content)
			endBlock(&b, "\n\n")
		case *markdown.CodeBlock:
			b.WriteString(t.Content)
			endBlock(&b, "\n\n")
		case *markdown.TdClose, *markdown.ThClose:
			b.WriteString(" ")
		case *markdown.ParagraphClose:
			if t.Hidden {
				endBlock(&b, "\n")
			} else {
				endBlock(&b, "\n\n")
			}
		case *markdown.HeadingClose:
			endBlock(&b, "\n\n")
		default:
			if tok.Block() && tok.Closing() {
				endBlock(&b, "\n")
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func writeInline(b *strings.Builder, tokens []markdown.Token) {
	for _, tok := range tokens {
		switch t := tok.(type) {
		case *markdown.Text:
			b.WriteString(t.Content)
		case *markdown.CodeInline:
			b.WriteString(t.Content)
		case *markdown.Softbreak, *markdown.Hardbreak:
			b.WriteString("\n")
		case *markdown.Image:
			writeInline(b, t.Tokens)
		}
	}
}

// endBlock pads b so it ends with at least sep.
func endBlock(b *strings.Builder, sep string) {
	s := b.String()
	if s == "" {
		return
	}
	trailing := len(s) - len(strings.TrimRight(s, "\n"))
	for i := trailing; i < len(sep); i++ {
		b.WriteString("\n")
	}
}
