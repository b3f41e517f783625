package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	minHeadingChars   = 3
	minParagraphChars = 20
	minListItemChars  = 3
)

// Config holds tunables for the extractor. Zero values select defaults.
type Config struct {
	FetchTimeout time.Duration
	UserAgent    string
	MaxChars     int
	MinChars     int
}

// Extractor fetches web pages and derives bounded markdown documents from them.
type Extractor struct {
	httpClient *http.Client
	userAgent  string
	maxChars   int
	minChars   int
}

// New constructs an extractor.
func New(cfg Config) *Extractor {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = MaxContentChars
	}
	minChars := cfg.MinChars
	if minChars <= 0 {
		minChars = MinContentChars
	}
	return &Extractor{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		maxChars:   maxChars,
		minChars:   minChars,
	}
}

// Extract fetches the URL and returns its salient content as an ordered block
// document: title, meta description, h1-h3 headings, paragraphs over 20
// characters, and lists, in that pass order. Boilerplate subtrees (script,
// style, nav, header, footer, iframe, noscript) are removed before extraction.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Document, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}
	root, err := e.fetchAndParse(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	stripNoise(root)

	blocks := collectBlocks(root)
	content, truncated := render(blocks, e.maxChars)
	if utf8.RuneCountInString(content) < e.minChars {
		return nil, fmt.Errorf("%w: got %d characters from %s", ErrInsufficientContent, utf8.RuneCountInString(content), rawURL)
	}
	return &Document{
		URL:       rawURL,
		Blocks:    blocks,
		Content:   content,
		Truncated: truncated,
	}, nil
}

// ExtractSite extracts content starting at baseURL. Only the base page is
// fetched today: maxPages above 1 is accepted but silently ignored, so callers
// must not rely on link-following. Keeping the single-page bound also keeps
// the cost cap (one fetch, MaxContentChars output) intact.
func (e *Extractor) ExtractSite(ctx context.Context, baseURL string, maxPages int) (*Document, error) {
	doc, err := e.Extract(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	_ = maxPages // link-following unimplemented
	return doc, nil
}

func validateURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return fmt.Errorf("%w: empty url", ErrInvalidURL)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}
	return nil
}

func (e *Extractor) fetchAndParse(ctx context.Context, rawURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", e.userAgent)
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: rawURL, Status: resp.StatusCode}
	}
	root, err := html.Parse(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("parse html: %w", err)}
	}
	return root, nil
}

var noiseTags = map[string]bool{
	"script":   true,
	"style":    true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"iframe":   true,
	"noscript": true,
}

// stripNoise removes boilerplate subtrees in place, as a separate pass so the
// extraction walks never see them.
func stripNoise(n *html.Node) {
	child := n.FirstChild
	for child != nil {
		next := child.NextSibling
		if child.Type == html.ElementNode && noiseTags[child.Data] {
			n.RemoveChild(child)
		} else {
			stripNoise(child)
		}
		child = next
	}
}

// collectBlocks emits blocks in pass order: title, description, then all
// headings in document order, then all paragraphs, then all lists.
func collectBlocks(root *html.Node) []Block {
	var blocks []Block

	if title := visibleText(findElement(root, "title")); title != "" {
		blocks = append(blocks, Block{Kind: BlockTitle, Text: title})
	}
	if desc := metaDescription(root); desc != "" {
		blocks = append(blocks, Block{Kind: BlockDescription, Text: desc})
	}

	headingLevels := map[string]int{"h1": 2, "h2": 3, "h3": 4}
	walkElements(root, func(n *html.Node) {
		level, ok := headingLevels[n.Data]
		if !ok {
			return
		}
		text := visibleText(n)
		if utf8.RuneCountInString(text) > minHeadingChars {
			blocks = append(blocks, Block{Kind: BlockHeading, Level: level, Text: text})
		}
	})

	walkElements(root, func(n *html.Node) {
		if n.Data != "p" {
			return
		}
		text := visibleText(n)
		if utf8.RuneCountInString(text) > minParagraphChars {
			blocks = append(blocks, Block{Kind: BlockParagraph, Text: text})
		}
	})

	walkElements(root, func(n *html.Node) {
		if n.Data != "ul" && n.Data != "ol" {
			return
		}
		var items []string
		walkElements(n, func(li *html.Node) {
			if li.Data != "li" {
				return
			}
			text := visibleText(li)
			if utf8.RuneCountInString(text) > minListItemChars {
				items = append(items, text)
			}
		})
		if len(items) > 0 {
			blocks = append(blocks, Block{Kind: BlockList, Items: items})
		}
	})

	return blocks
}

func walkElements(n *html.Node, visit func(*html.Node)) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			visit(child)
		}
		walkElements(child, visit)
	}
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, tag); found != nil {
			return found
		}
	}
	return nil
}

func metaDescription(root *html.Node) string {
	var desc string
	walkElements(root, func(n *html.Node) {
		if desc != "" || n.Data != "meta" {
			return
		}
		var name, content string
		for _, attr := range n.Attr {
			switch attr.Key {
			case "name":
				name = attr.Val
			case "content":
				content = attr.Val
			}
		}
		if strings.EqualFold(name, "description") {
			desc = strings.TrimSpace(content)
		}
	})
	return desc
}

// visibleText returns the whitespace-normalized text content of a subtree.
func visibleText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
