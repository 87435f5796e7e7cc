// Package response builds HTTP/1.1 responses and frames them onto a connection.
package response

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
)

// ChunkSize bounds each copy from a body source to the connection.
const ChunkSize = 32 * 1024

// ErrStreaming is wrapped by WriteTo when the body could not be copied after
// the head was sent; the peer sees a truncated response.
var ErrStreaming = errors.New("streaming failure")

// Response is a status, ordered headers and a body source. The body is read
// at most once and closed exactly once, by WriteTo or Close.
type Response struct {
	Status int
	Header Header

	body      io.ReadCloser
	closeOnce sync.Once
	closeErr  error
}

// New returns a response with the given status and an empty body.
func New(status int) *Response {
	return &Response{Status: status}
}

// Text returns a response with an in-memory body.
func Text(status int, contentType string, body []byte) *Response {
	r := New(status)
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	r.Header.Set("Content-Length", strconv.Itoa(len(body)))
	r.body = io.NopCloser(bytes.NewReader(body))
	return r
}

// File opens path and returns a 200 response streaming its contents.
// A non-negative size is sent as Content-Length and caps the body, so a file
// that grows after size was taken cannot overrun the declared length.
// A negative size omits Content-Length and streams to EOF.
func File(path, contentType string, size int64) (*Response, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	r := New(200)
	r.Header.Set("Content-Type", contentType)
	r.body = f
	if size >= 0 {
		r.Header.Set("Content-Length", strconv.FormatInt(size, 10))
		r.body = limitedFile{Reader: io.LimitReader(f, size), Closer: f}
	}
	return r, nil
}

// Redirect returns a 301 pointing at location.
func Redirect(location string) *Response {
	r := New(301)
	r.Header.Set("Location", location)
	return r
}

// Error returns a small text/html error page.
func Error(status int, message string) *Response {
	return Text(status, "text/html", []byte(message))
}

// BadRequest is the response to an unparseable request.
func BadRequest() *Response { return Error(400, "bad request") }

// NotFound is the response to a missing path.
func NotFound() *Response { return Error(404, "not found") }

// MethodNotAllowed is the response to a rejected method.
func MethodNotAllowed() *Response {
	r := Error(405, "method not allowed")
	r.Header.Set("Allow", "GET")
	return r
}

// InternalError is the response to an unexpected filesystem failure.
func InternalError() *Response { return Error(500, "internal server error") }

// Close releases the body source. It is safe to call more than once.
func (r *Response) Close() error {
	r.closeOnce.Do(func() {
		if r.body != nil {
			r.closeErr = r.body.Close()
		}
	})
	return r.closeErr
}

// WriteTo serializes the response onto w:
//
//	HTTP/1.1 <code>
//	Connection: close
//	<headers in insertion order>
//
//	<body>\n
//
// The body is copied in chunks of at most ChunkSize and closed afterwards,
// whether or not the copy succeeded.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	defer r.Close()

	cw := &countingWriter{w: w}
	bw := bufio.NewWriterSize(cw, ChunkSize)

	fmt.Fprintf(bw, "HTTP/1.1 %d\r\n", r.Status)
	bw.WriteString("Connection: close\r\n")
	for _, f := range r.Header.Fields() {
		fmt.Fprintf(bw, "%s: %s\r\n", f.Name, f.Value)
	}
	bw.WriteString("\r\n")

	if r.body != nil {
		buf := make([]byte, ChunkSize)
		if _, err := io.CopyBuffer(onlyWriter{bw}, r.body, buf); err != nil {
			bw.Flush()
			return cw.n, fmt.Errorf("%w: %w", ErrStreaming, err)
		}
	}
	bw.WriteByte('\n')

	if err := bw.Flush(); err != nil {
		return cw.n, fmt.Errorf("write response: %w", err)
	}
	return cw.n, nil
}

type limitedFile struct {
	io.Reader
	io.Closer
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// onlyWriter hides bufio.Writer's ReadFrom so CopyBuffer uses the bounded buffer.
type onlyWriter struct {
	io.Writer
}
