package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

const samplePage = `<html><head>
<title>Acme Plumbing</title>
<meta name="description" content="Emergency plumbing services across the city, day and night.">
<style>body { color: red }</style>
<script>var tracked = true;</script>
</head>
<body>
<nav><a href="/about">Hidden nav link text</a></nav>
<header>Masthead boilerplate</header>
<h1>Reliable plumbing</h1>
<h2>Why choose us</h2>
<h3>Tip</h3>
<p>We fix burst pipes, blocked drains and leaking taps with a one-hour response window.</p>
<p>Short one.</p>
<ul><li>24/7 call-outs</li><li>Fixed pricing</li><li>ab</li></ul>
<footer>Footer junk text</footer>
</body></html>`

func servePage(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExtractSamplePage(t *testing.T) {
	srv := servePage(t, samplePage)
	extractor := New(Config{})

	doc, err := extractor.Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	want := "# Acme Plumbing\n\n" +
		"Emergency plumbing services across the city, day and night.\n\n" +
		"## Reliable plumbing\n\n" +
		"### Why choose us\n\n" +
		"We fix burst pipes, blocked drains and leaking taps with a one-hour response window.\n\n" +
		"- 24/7 call-outs\n- Fixed pricing"
	if doc.Content != want {
		t.Fatalf("content mismatch\ngot:\n%s\nwant:\n%s", doc.Content, want)
	}
	if doc.Truncated {
		t.Fatalf("document should not be truncated")
	}
	for _, excluded := range []string{"Hidden nav", "Masthead", "Footer junk", "tracked", "color: red", "Short one", "- ab"} {
		if strings.Contains(doc.Content, excluded) {
			t.Fatalf("content must not contain %q", excluded)
		}
	}
}

func TestExtractBlockKinds(t *testing.T) {
	srv := servePage(t, samplePage)
	doc, err := New(Config{}).Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	wantKinds := []BlockKind{BlockTitle, BlockDescription, BlockHeading, BlockHeading, BlockParagraph, BlockList}
	if len(doc.Blocks) != len(wantKinds) {
		t.Fatalf("got %d blocks, want %d", len(doc.Blocks), len(wantKinds))
	}
	for i, kind := range wantKinds {
		if doc.Blocks[i].Kind != kind {
			t.Fatalf("block %d kind = %s, want %s", i, doc.Blocks[i].Kind, kind)
		}
	}
}

func TestExtractInvalidURL(t *testing.T) {
	extractor := New(Config{})
	for _, raw := range []string{"", "   ", "example.com/page", "ftp://example.com"} {
		if _, err := extractor.Extract(context.Background(), raw); !errors.Is(err, ErrInvalidURL) {
			t.Fatalf("Extract(%q) error = %v, want ErrInvalidURL", raw, err)
		}
	}
}

func TestExtractFetchErrorOnStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(Config{}).Extract(context.Background(), srv.URL)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if fetchErr.Status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", fetchErr.Status)
	}
}

func TestExtractFetchErrorOnTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(Config{}).Extract(context.Background(), url)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if fetchErr.Status != 0 {
		t.Fatalf("status = %d, want 0 for transport failure", fetchErr.Status)
	}
}

func TestExtractInsufficientContent(t *testing.T) {
	srv := servePage(t, `<html><head><title>X</title></head><body><p>This paragraph is just barely long.</p></body></html>`)
	_, err := New(Config{}).Extract(context.Background(), srv.URL)
	if !errors.Is(err, ErrInsufficientContent) {
		t.Fatalf("error = %v, want ErrInsufficientContent", err)
	}
}

func TestExtractTruncatesAtCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><head><title>Big Page Of Text</title></head><body>")
	for i := 0; i < 40; i++ {
		sb.WriteString("<p>This paragraph pads the page with enough repeated text to push the render past the cap.</p>")
	}
	sb.WriteString("</body></html>")
	srv := servePage(t, sb.String())

	full, err := New(Config{MaxChars: MaxContentChars}).Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("uncapped extract: %v", err)
	}

	limit := 500
	doc, err := New(Config{MaxChars: limit}).Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("capped extract: %v", err)
	}
	if !doc.Truncated {
		t.Fatalf("document should be truncated")
	}
	if !strings.HasSuffix(doc.Content, truncationMarker) {
		t.Fatalf("truncated content must end with the marker")
	}
	body := strings.TrimSuffix(doc.Content, truncationMarker)
	if utf8.RuneCountInString(body) != limit {
		t.Fatalf("truncated body = %d chars, want %d", utf8.RuneCountInString(body), limit)
	}
	if !strings.HasPrefix(full.Content, body) {
		t.Fatalf("truncated content must be a prefix of the full render")
	}
}

func TestExtractIdempotent(t *testing.T) {
	srv := servePage(t, samplePage)
	extractor := New(Config{})

	first, err := extractor.Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("first extract: %v", err)
	}
	second, err := extractor.Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("second extract: %v", err)
	}
	if first.Content != second.Content {
		t.Fatalf("extraction is not deterministic for identical input")
	}
}

func TestExtractSiteSinglePageOnly(t *testing.T) {
	srv := servePage(t, samplePage)
	extractor := New(Config{})

	single, err := extractor.Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	multi, err := extractor.ExtractSite(context.Background(), srv.URL, 5)
	if err != nil {
		t.Fatalf("extract site: %v", err)
	}
	if multi.Content != single.Content {
		t.Fatalf("maxPages > 1 must not change single-page output")
	}
}
