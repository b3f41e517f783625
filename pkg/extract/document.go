package extract

import (
	"regexp"
	"strings"
)

// BlockKind tags the semantic role of an extracted text block.
type BlockKind string

const (
	BlockTitle       BlockKind = "title"
	BlockDescription BlockKind = "description"
	BlockHeading     BlockKind = "heading"
	BlockParagraph   BlockKind = "paragraph"
	BlockList        BlockKind = "list"
)

// Block is one extracted unit of page content in document order.
type Block struct {
	Kind  BlockKind
	Level int // heading level 2-4, zero otherwise
	Text  string
	Items []string // list blocks only
}

// Document is the bounded markdown representation of a page's salient content.
// Content is at most MaxContentChars characters plus the truncation marker.
type Document struct {
	URL       string
	Blocks    []Block
	Content   string
	Truncated bool
}

const (
	// MaxContentChars bounds the rendered document to keep downstream
	// processing cost predictable.
	MaxContentChars = 50000
	// MinContentChars is the threshold below which extraction is treated
	// as a failure.
	MinContentChars = 100

	truncationMarker = "\n\n[content truncated: size limit exceeded]"
)

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// render serializes blocks to markdown, collapses runs of 3+ newlines to two,
// and enforces the size cap. Returns the content and whether it was truncated.
func render(blocks []Block, maxChars int) (string, bool) {
	if maxChars <= 0 {
		maxChars = MaxContentChars
	}
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		switch b.Kind {
		case BlockTitle:
			parts = append(parts, "# "+b.Text)
		case BlockHeading:
			parts = append(parts, strings.Repeat("#", b.Level)+" "+b.Text)
		case BlockList:
			items := make([]string, 0, len(b.Items))
			for _, item := range b.Items {
				items = append(items, "- "+item)
			}
			parts = append(parts, strings.Join(items, "\n"))
		default:
			parts = append(parts, b.Text)
		}
	}
	text := strings.TrimSpace(strings.Join(parts, "\n\n"))
	text = excessNewlines.ReplaceAllString(text, "\n\n")

	runes := []rune(text)
	if len(runes) > maxChars {
		return string(runes[:maxChars]) + truncationMarker, true
	}
	return text, false
}
