// Package listing renders directory listings for the file server.
//
// A listing is built as HTML first. The Markdown format converts that HTML,
// so both formats always carry the same entries and hyperlinks. The text is
// then encoded into the configured charset; characters the charset cannot
// represent are substituted rather than failing the response.
package listing

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/f4ah6o/simpleserve-go/internal/pathcodec"
	"github.com/f4ah6o/simpleserve-go/internal/resolve"
)

// Format selects the listing markup.
type Format string

const (
	// FormatHTML renders an HTML page (the default).
	FormatHTML Format = "html"
	// FormatMarkdown renders the HTML page converted to Markdown.
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a format name. An empty name means FormatHTML.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatHTML:
		return FormatHTML, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown listing format %q", s)
}

// Renderer turns a resolved directory into a response payload.
type Renderer struct {
	format  Format
	charset string
	enc     encoding.Encoding
}

// NewRenderer returns a Renderer for format whose output is encoded in
// charset. Charset names follow the WHATWG encoding labels ("utf-8",
// "shift_jis", "windows-1252", ...).
func NewRenderer(format Format, charset string) (*Renderer, error) {
	if charset == "" {
		charset = "utf-8"
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = strings.ToLower(charset)
	}

	f, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}
	return &Renderer{format: f, charset: name, enc: enc}, nil
}

// Charset returns the canonical name of the output charset.
func (r *Renderer) Charset() string {
	return r.charset
}

// ContentType returns the Content-Type header value for rendered listings.
func (r *Renderer) ContentType() string {
	if r.format == FormatMarkdown {
		return "text/markdown; charset=" + r.charset
	}
	return "text/html; charset=" + r.charset
}

// Render builds and encodes the listing body for title and entries.
func (r *Renderer) Render(title string, entries []resolve.Entry) ([]byte, error) {
	page := r.HTML(title, entries)

	if r.format == FormatMarkdown {
		converter := md.NewConverter("", true, nil)
		text, err := converter.ConvertString(page)
		if err != nil {
			return nil, fmt.Errorf("convert listing to markdown: %w", err)
		}
		return encoding.ReplaceUnsupported(r.enc.NewEncoder()).Bytes([]byte(text))
	}

	return encoding.HTMLEscapeUnsupported(r.enc.NewEncoder()).Bytes([]byte(page))
}

// HTML returns the listing page as an unencoded string.
//
// Each entry becomes <li><a href="ENCODED">NAME</a></li>, where ENCODED is the
// percent-encoded raw name and decodes back to it exactly.
func (r *Renderer) HTML(title string, entries []resolve.Entry) string {
	escTitle := html.EscapeString(title)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	fmt.Fprintf(&b, "<meta charset=\"%s\">\n", r.charset)
	fmt.Fprintf(&b, "<title>%s</title>\n", escTitle)
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "<h2>%s</h2>\n<hr>\n<ul>\n", escTitle)
	for _, e := range entries {
		name := html.EscapeString(e.RawName)
		if e.IsDir {
			name += "/"
		}
		fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a></li>\n", pathcodec.Encode(e.RawName), name)
	}
	b.WriteString("</ul>\n<hr>\n</body>\n</html>\n")
	return b.String()
}
