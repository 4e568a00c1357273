package mirror

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MapPath translates srcPath from the srcRoot namespace into the dstRoot
// namespace by substituting the root prefix. The mapping is bijective for
// a fixed root pair: the structure below the root carries over unchanged.
//
// The result uses forward slashes; callers on the local side convert with
// filepath.FromSlash.
func MapPath(srcRoot, dstRoot, srcPath string) (string, error) {
	src := filepath.ToSlash(srcPath)
	root := strings.TrimSuffix(filepath.ToSlash(srcRoot), "/")

	if src == root {
		return filepath.ToSlash(dstRoot), nil
	}
	rel, ok := strings.CutPrefix(src, root+"/")
	if !ok {
		return "", fmt.Errorf("mirror: path %q is not under root %q", srcPath, srcRoot)
	}
	return path.Join(filepath.ToSlash(dstRoot), rel), nil
}

// extensionOf returns the substring after the last "." of a filename, or
// the whole name when it has no dot. This is a plain string match, not a
// glob: "data.csv" -> "csv", "archive.tar.gz" -> "gz", "README" -> "README".
func extensionOf(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// allowed reports whether a filename passes the filetype restriction.
// An empty restriction admits everything; otherwise the extension must be
// present in the list, case-sensitively.
func allowed(name string, filetypes []string) bool {
	if len(filetypes) == 0 {
		return true
	}
	ext := extensionOf(name)
	for _, ft := range filetypes {
		if ext == ft {
			return true
		}
	}
	return false
}

// excluded reports whether an entry name matches any exclusion pattern.
// Patterns use doublestar glob syntax and match against the bare name.
// A malformed pattern matches nothing.
func excluded(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// hidden reports whether an entry is a dotfile. Hidden entries are never
// walked or copied.
func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
