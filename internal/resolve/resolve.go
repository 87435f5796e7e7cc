// Package resolve maps decoded URL paths onto a served directory tree.
package resolve

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// DefaultContentType is used when the extension is unknown.
const DefaultContentType = "application/octet-stream"

var (
	// ErrNotFound is returned when the target does not exist under the root.
	ErrNotFound = errors.New("not found")
	// ErrOutsideRoot is returned when a confined resolver is asked for a path
	// that would leave the root, e.g. "/../etc/passwd".
	ErrOutsideRoot = errors.New("path escapes served root")
)

// Kind identifies which response an Outcome calls for.
type Kind int

const (
	// KindRedirect means a directory was requested without a trailing '/'.
	KindRedirect Kind = iota
	// KindListing means a directory was requested with a trailing '/'.
	KindListing
	// KindFile means a regular file was requested.
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindRedirect:
		return "redirect"
	case KindListing:
		return "listing"
	case KindFile:
		return "file"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Outcome is the result of resolving one URL path.
// Only the fields relevant to Kind are set.
type Outcome struct {
	Kind Kind

	// Location is the decoded path with a '/' appended (KindRedirect).
	Location string

	// Title is the decoded path shown above a listing (KindListing).
	Title string
	// Entries are the directory children in listing order (KindListing).
	Entries []Entry

	// Path is the local filesystem path of the file (KindFile).
	Path string
	// Size is the file size in bytes at resolution time (KindFile).
	Size int64
	// ContentType is guessed from the file extension (KindFile).
	ContentType string
}

// Resolver resolves URL paths against Root.
type Resolver struct {
	// Root is the served directory.
	Root string
	// Confine rejects any path that resolves outside Root. When false the URL
	// path is appended to Root as-is and ".." segments are honoured.
	Confine bool
}

// New returns a Resolver for root.
func New(root string, confine bool) *Resolver {
	return &Resolver{Root: root, Confine: confine}
}

// Resolve decides how to answer a request for the decoded URL path.
func (r *Resolver) Resolve(decoded string) (*Outcome, error) {
	target, err := r.localPath(decoded)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(target)
	if err != nil {
		// Anything that cannot be stat'ed is reported as missing.
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, decoded, err)
	}

	if info.IsDir() {
		if !strings.HasSuffix(decoded, "/") {
			return &Outcome{Kind: KindRedirect, Location: decoded + "/"}, nil
		}
		entries, err := ReadEntries(target)
		if err != nil {
			return nil, err
		}
		return &Outcome{Kind: KindListing, Title: decoded, Entries: entries}, nil
	}

	// FIFOs, sockets and devices can block on open or never end.
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s: not a regular file", ErrNotFound, decoded)
	}
	return &Outcome{
		Kind:        KindFile,
		Path:        target,
		Size:        info.Size(),
		ContentType: ContentType(target),
	}, nil
}

func (r *Resolver) localPath(decoded string) (string, error) {
	if !r.Confine {
		return r.Root + filepath.FromSlash(decoded), nil
	}

	target := filepath.Join(r.Root, filepath.FromSlash(decoded))
	rel, err := filepath.Rel(r.Root, target)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, decoded)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, decoded)
	}
	// Join drops the trailing separator; keep it so "/file.txt/" still fails
	// to stat as it would without confinement.
	if strings.HasSuffix(decoded, "/") && !strings.HasSuffix(target, string(filepath.Separator)) {
		target += string(filepath.Separator)
	}
	return target, nil
}

// ContentType guesses a MIME type from the extension of name.
func ContentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return DefaultContentType
}

// IndexFile reports whether name exists as a regular file in dir and returns
// its path and size.
func IndexFile(dir, name string) (path string, size int64, ok bool) {
	path = filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", 0, false
	}
	return path, info.Size(), true
}
