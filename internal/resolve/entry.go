package resolve

import (
	"fmt"
	"os"
	"sort"

	"golang.org/x/text/cases"
)

// Entry is one child of a listed directory.
type Entry struct {
	// RawName is the name as returned by the filesystem.
	RawName string
	// IsDir is true for subdirectories.
	IsDir bool
}

// ReadEntries lists dir and returns its children sorted by SortEntries.
func ReadEntries(dir string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		entries = append(entries, Entry{RawName: de.Name(), IsDir: de.IsDir()})
	}
	SortEntries(entries)
	return entries, nil
}

// SortEntries orders entries by the case-folded raw name. Names that fold to
// the same key keep a deterministic order by comparing the raw names.
func SortEntries(entries []Entry) {
	fold := cases.Fold()
	keys := make(map[string]string, len(entries))
	for _, e := range entries {
		keys[e.RawName] = fold.String(e.RawName)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ki, kj := keys[entries[i].RawName], keys[entries[j].RawName]
		if ki != kj {
			return ki < kj
		}
		return entries[i].RawName < entries[j].RawName
	})
}
