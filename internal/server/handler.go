// Package server runs the request/response cycle for each accepted connection.
package server

import (
	"errors"
	"io"
	"io/fs"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/f4ah6o/simpleserve-go/internal/listing"
	"github.com/f4ah6o/simpleserve-go/internal/pathcodec"
	"github.com/f4ah6o/simpleserve-go/internal/request"
	"github.com/f4ah6o/simpleserve-go/internal/resolve"
	"github.com/f4ah6o/simpleserve-go/internal/response"
)

// Handler answers exactly one request per connection and then closes it.
type Handler struct {
	// Resolver maps URL paths onto the served root.
	Resolver *resolve.Resolver
	// Renderer builds directory listing bodies.
	Renderer *listing.Renderer
	// WorkDir is where IndexFile is looked up. Empty means the process
	// working directory at the time of each request.
	WorkDir string
	// IndexFile, when present in WorkDir, is served for every request.
	IndexFile string
	// StrictMethods answers non-GET requests with 405.
	StrictMethods bool
	// Timeout bounds reading the request and each write of the response, so
	// a long download only fails when the peer stalls. Zero means no deadline.
	Timeout time.Duration
}

// cycle is the state of one connection: Accepted, Parsing, Resolving,
// Responding, Closed. States only move forward.
type cycle struct {
	h       *Handler
	conn    net.Conn
	raw     []byte
	req     *request.Request
	res     *response.Response
	written int64
	start   time.Time
}

type stateFunc func(*cycle) stateFunc

// ServeConn runs one cycle on conn. It takes ownership of conn and always
// closes it. No error escapes: every failure becomes a response or a log line.
func (h *Handler) ServeConn(conn net.Conn) {
	c := &cycle{h: h, conn: conn, start: time.Now()}
	for state := accepted; state != nil; {
		state = state(c)
	}
}

// state funcs

func accepted(c *cycle) stateFunc {
	if c.h.Timeout > 0 {
		c.conn.SetReadDeadline(c.start.Add(c.h.Timeout))
	}

	raw, err := request.ReadRaw(c.conn)
	if err != nil {
		log.Printf("read from %s: %v", remoteAddr(c.conn), err)
	}
	c.raw = raw
	return checkIndex
}

// checkIndex serves the index override, if one exists, ahead of any parsing
// or resolution. It is re-evaluated for every connection.
func checkIndex(c *cycle) stateFunc {
	dir := c.h.WorkDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return parsing
		}
		dir = wd
	}

	path, size, ok := resolve.IndexFile(dir, c.h.IndexFile)
	if !ok {
		return parsing
	}
	res, err := response.File(path, "text/html", size)
	if err != nil {
		// Removed between the stat and the open.
		log.Printf("open index %s: %v", path, err)
		return parsing
	}
	c.req, _ = request.Parse(c.raw)
	c.res = res
	return responding
}

func parsing(c *cycle) stateFunc {
	req, err := request.Parse(c.raw)
	if err != nil {
		c.res = response.BadRequest()
		return responding
	}
	c.req = req
	return resolving
}

func resolving(c *cycle) stateFunc {
	if c.h.StrictMethods && c.req.Method != "GET" {
		c.res = response.MethodNotAllowed()
		return responding
	}

	target := c.req.Target()
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}
	decoded := pathcodec.Decode(target)

	out, err := c.h.Resolver.Resolve(decoded)
	switch {
	case errors.Is(err, resolve.ErrOutsideRoot):
		log.Printf("refused %q from %s: %v", decoded, remoteAddr(c.conn), err)
		c.res = response.NotFound()
		return responding
	case errors.Is(err, resolve.ErrNotFound):
		c.res = response.NotFound()
		return responding
	case err != nil:
		log.Printf("resolve %q: %v", decoded, err)
		c.res = response.InternalError()
		return responding
	}

	switch out.Kind {
	case resolve.KindRedirect:
		c.res = response.Redirect(target + "/")
	case resolve.KindListing:
		body, err := c.h.Renderer.Render(out.Title, out.Entries)
		if err != nil {
			log.Printf("render listing %q: %v", out.Title, err)
			c.res = response.InternalError()
			break
		}
		c.res = response.Text(200, c.h.Renderer.ContentType(), body)
	case resolve.KindFile:
		res, err := response.File(out.Path, out.ContentType, out.Size)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			c.res = response.NotFound()
		case err != nil:
			log.Printf("serve %q: %v", decoded, err)
			c.res = response.InternalError()
		default:
			c.res = res
		}
	}
	return responding
}

func responding(c *cycle) stateFunc {
	var w io.Writer = c.conn
	if c.h.Timeout > 0 {
		w = &deadlineWriter{conn: c.conn, timeout: c.h.Timeout}
	}
	n, err := c.res.WriteTo(w)
	c.written = n
	if err != nil {
		log.Printf("write to %s: %v", remoteAddr(c.conn), err)
	}
	return closed
}

func closed(c *cycle) stateFunc {
	if c.res != nil {
		c.res.Close()
	}
	c.conn.Close()
	logAccess(c)
	return nil
}

// deadlineWriter pushes the write deadline forward before every write.
type deadlineWriter struct {
	conn    net.Conn
	timeout time.Duration
}

func (d *deadlineWriter) Write(p []byte) (int, error) {
	if err := d.conn.SetWriteDeadline(time.Now().Add(d.timeout)); err != nil {
		return 0, err
	}
	return d.conn.Write(p)
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "-"
}
