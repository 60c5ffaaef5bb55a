package storage

import (
	"path/filepath"
	"strings"
)

const schemeSep = "://"

// Scheme returns the lower-cased URI scheme, or "" for plain paths.
func Scheme(uri string) string {
	i := strings.Index(uri, schemeSep)
	if i <= 0 {
		return ""
	}
	return strings.ToLower(uri[:i])
}

// Join appends name to a base location with exactly one slash between them.
func Join(base, name string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(name, "/")
}

// Relative returns uri relative to root, or uri unchanged when it is not below root.
func Relative(root, uri string) string {
	prefix := strings.TrimRight(root, "/") + "/"
	return strings.TrimPrefix(uri, prefix)
}

// DirDepth counts the directories between a root and an object at rel.
func DirDepth(rel string) int {
	return strings.Count(strings.Trim(rel, "/"), "/")
}

// LocalPath converts a plain path or file:// URI to an absolute, slash-separated path.
func LocalPath(uri string) (string, error) {
	p := strings.TrimPrefix(uri, "file"+schemeSep)
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(abs), nil
}
