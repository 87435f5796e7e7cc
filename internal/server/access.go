package server

import (
	"log"
	"strconv"
	"time"

	"github.com/fatih/color"
)

var (
	status2xx = color.New(color.FgGreen).SprintFunc()
	status3xx = color.New(color.FgCyan).SprintFunc()
	status4xx = color.New(color.FgYellow).SprintFunc()
	status5xx = color.New(color.FgRed).SprintFunc()
)

func colorStatus(code int) string {
	s := strconv.Itoa(code)
	switch {
	case code >= 500:
		return status5xx(s)
	case code >= 400:
		return status4xx(s)
	case code >= 300:
		return status3xx(s)
	default:
		return status2xx(s)
	}
}

// logAccess writes one line per cycle: peer, request line, status, bytes, duration.
func logAccess(c *cycle) {
	method, target := "-", "-"
	if c.req != nil {
		method, target = c.req.Method, c.req.Target()
	}
	status := 0
	if c.res != nil {
		status = c.res.Status
	}
	log.Printf("%s %s %q %s %d %s",
		remoteAddr(c.conn), method, target, colorStatus(status), c.written,
		time.Since(c.start).Round(time.Microsecond))
}
