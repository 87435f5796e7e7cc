// Package request extracts the request line from the first bytes of a connection.
package request

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// MaxRequestBytes is the size of the single read taken from a connection.
// Requests split across several reads, and request bodies, are not supported.
const MaxRequestBytes = 4096

// ErrMalformedRequest is returned when no request line can be found.
var ErrMalformedRequest = errors.New("malformed request")

// requestLinePattern matches `METHOD <path> HTTP/...` at the start of any line.
// The path group is greedy up to the last "HTTP/" on the line and keeps the
// surrounding whitespace.
var requestLinePattern = regexp.MustCompile(`(?m)^([A-Z]+)([ \t][^\r\n]*)HTTP/`)

// Request is the method and raw path of the first request line.
type Request struct {
	// Method is the method token, e.g. "GET".
	Method string
	// RawPath is the path exactly as matched, including leading and trailing
	// whitespace. Use Target for the trimmed form.
	RawPath string
}

// Target returns RawPath with surrounding whitespace removed.
func (r *Request) Target() string {
	return strings.TrimSpace(r.RawPath)
}

// Parse finds the first request line in b.
func Parse(b []byte) (*Request, error) {
	m := requestLinePattern.FindSubmatch(b)
	if m == nil {
		return nil, ErrMalformedRequest
	}
	return &Request{
		Method:  string(m[1]),
		RawPath: string(m[2]),
	}, nil
}

// ReadRaw takes one read of at most MaxRequestBytes from r. Whatever arrived
// is returned even when the read also reported an error.
func ReadRaw(r io.Reader) ([]byte, error) {
	buf := make([]byte, MaxRequestBytes)
	n, err := r.Read(buf)
	if n > 0 || errors.Is(err, io.EOF) {
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	return buf[:n], nil
}
