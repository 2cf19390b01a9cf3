package file

import (
	"path/filepath"
	"sort"
	"strings"
)

// EntryID is the path relative to the media dir with forward slashes, which
// is also the key of the metadata table.
func EntryID(mediaDir, path string) string {
	rel, err := filepath.Rel(mediaDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

// Title is the file name without its extension.
func Title(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type Entry struct {
	ID   string
	Path string
}

// CreateEntries assigns ids to paths, sorted by id so indexing the same
// directory twice gives the same library order.
func CreateEntries(mediaDir string, paths []string) []Entry {
	res := make([]Entry, 0, len(paths))
	seen := make(map[string]bool)
	for _, p := range paths {
		id := EntryID(mediaDir, p)
		if seen[id] {
			continue
		}
		seen[id] = true
		res = append(res, Entry{ID: id, Path: p})
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].ID < res[j].ID
	})
	return res
}
