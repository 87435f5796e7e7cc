package listing

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/f4ah6o/simpleserve-go/internal/pathcodec"
	"github.com/f4ah6o/simpleserve-go/internal/resolve"
)

func mustRenderer(t *testing.T, format Format, charset string) *Renderer {
	t.Helper()
	r, err := NewRenderer(format, charset)
	if err != nil {
		t.Fatalf("NewRenderer(%q, %q) error = %v", format, charset, err)
	}
	return r
}

func TestRenderLinksRoundTrip(t *testing.T) {
	entries := []resolve.Entry{
		{RawName: "a b.txt"},
		{RawName: "b.txt"},
		{RawName: `quote"s&<tags>`},
		{RawName: "100%"},
		{RawName: "sub", IsDir: true},
		{RawName: "日本語.md"},
	}
	r := mustRenderer(t, FormatHTML, "utf-8")

	body, err := r.Render("/dir/", entries)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("parse listing: %v", err)
	}

	if got := doc.Find("h2").Text(); got != "/dir/" {
		t.Errorf("h2 = %q, want %q", got, "/dir/")
	}

	links := doc.Find("ul li a")
	if links.Length() != len(entries) {
		t.Fatalf("got %d links, want %d", links.Length(), len(entries))
	}
	links.Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if got := pathcodec.Decode(href); got != entries[i].RawName {
			t.Errorf("link %d decodes to %q, want %q", i, got, entries[i].RawName)
		}
		text := strings.TrimSuffix(s.Text(), "/")
		if text != entries[i].RawName {
			t.Errorf("link %d text = %q, want %q", i, text, entries[i].RawName)
		}
	})
}

func TestRenderEscapesTitle(t *testing.T) {
	r := mustRenderer(t, FormatHTML, "")
	body, err := r.Render("/<script>/", nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if bytes.Contains(body, []byte("<script>")) {
		t.Errorf("title was not escaped: %s", body)
	}
	if !bytes.Contains(body, []byte("&lt;script&gt;")) {
		t.Errorf("escaped title missing: %s", body)
	}
}

func TestRenderCharset(t *testing.T) {
	entries := []resolve.Entry{{RawName: "café"}, {RawName: "日本"}}

	r := mustRenderer(t, FormatHTML, "windows-1252")
	if r.Charset() != "windows-1252" {
		t.Errorf("Charset() = %q", r.Charset())
	}
	if got := r.ContentType(); got != "text/html; charset=windows-1252" {
		t.Errorf("ContentType() = %q", got)
	}

	body, err := r.Render("/", entries)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.Contains(body, []byte("caf\xe9</a>")) {
		t.Errorf("é not encoded as windows-1252: %q", body)
	}
	if !bytes.Contains(body, []byte("&#26085;&#26412;")) {
		t.Errorf("unencodable runes not escaped: %q", body)
	}
	// Hyperlinks are ASCII and survive any charset.
	if !bytes.Contains(body, []byte(`href="%E6%97%A5%E6%9C%AC"`)) {
		t.Errorf("href not percent-encoded: %q", body)
	}
}

func TestRenderInvalidUTF8Name(t *testing.T) {
	r := mustRenderer(t, FormatHTML, "utf-8")
	body, err := r.Render("/", []resolve.Entry{{RawName: "bad\xffname"}})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.Contains(body, []byte(`href="bad%FFname"`)) {
		t.Errorf("href lost the raw byte: %q", body)
	}
	if !bytes.Contains(body, []byte("bad�name")) {
		t.Errorf("display name not substituted: %q", body)
	}
}

func TestRenderMarkdown(t *testing.T) {
	r := mustRenderer(t, FormatMarkdown, "utf-8")
	if got := r.ContentType(); got != "text/markdown; charset=utf-8" {
		t.Errorf("ContentType() = %q", got)
	}

	body, err := r.Render("/sub/", []resolve.Entry{{RawName: "b.txt"}})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := string(body)
	if strings.Contains(out, "<li>") {
		t.Errorf("markdown still contains HTML: %q", out)
	}
	if !strings.Contains(out, "(b.txt)") {
		t.Errorf("markdown link missing: %q", out)
	}
}

func TestNewRendererErrors(t *testing.T) {
	if _, err := NewRenderer(FormatHTML, "no-such-charset"); err == nil {
		t.Error("NewRenderer() accepted an unknown charset")
	}
	if _, err := NewRenderer("pdf", "utf-8"); err == nil {
		t.Error("NewRenderer() accepted an unknown format")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatHTML, false},
		{"HTML", FormatHTML, false},
		{"markdown", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"json", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
