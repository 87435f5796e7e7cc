// Package pathcodec converts between URL path components and filesystem names.
//
// Go strings are byte sequences, so decoding never has to reject input: a
// percent escape that is well formed yields its byte, anything else is kept
// verbatim. Encode escapes every byte outside the unreserved set, which makes
// Decode(Encode(x)) == x for any name, including names that are not valid UTF-8.
package pathcodec

import "strings"

const upperhex = "0123456789ABCDEF"

// Decode percent-decodes raw into a filesystem-name string.
//
// Malformed sequences such as "%zz" or a trailing "%" are passed through
// unchanged instead of producing an error. '+' is not treated as a space.
func Decode(raw string) string {
	if strings.IndexByte(raw, '%') < 0 {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c == '%' && i+2 < len(raw) && isHex(raw[i+1]) && isHex(raw[i+2]) {
			b.WriteByte(unhex(raw[i+1])<<4 | unhex(raw[i+2]))
			i += 2
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Encode percent-encodes name so it can be embedded in an href or a Location
// header. Unreserved characters (RFC 3986) and '/' are kept; every other byte,
// including '%', quotes, angle brackets, spaces and control bytes, is escaped.
func Encode(name string) string {
	n := 0
	for i := 0; i < len(name); i++ {
		if !shouldKeep(name[i]) {
			n++
		}
	}
	if n == 0 {
		return name
	}

	buf := make([]byte, 0, len(name)+2*n)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if shouldKeep(c) {
			buf = append(buf, c)
			continue
		}
		buf = append(buf, '%', upperhex[c>>4], upperhex[c&15])
	}
	return string(buf)
}

func shouldKeep(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '.', '_', '~', '/':
		return true
	}
	return false
}

func isHex(c byte) bool {
	switch {
	case '0' <= c && c <= '9':
		return true
	case 'a' <= c && c <= 'f':
		return true
	case 'A' <= c && c <= 'F':
		return true
	}
	return false
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
