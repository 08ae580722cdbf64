// Package ignore matches relative paths against ignore patterns.
package ignore

import (
	"path"
	"strings"
)

// Patterns is a list of ignore patterns.
//
// A pattern is one or more slash-separated glob segments
// (the syntax of path.Match).
// It matches a path when the pattern's segments match
// the same number of trailing path segments, one for one:
// "*.log" matches any entry anywhere in the tree,
// "build" matches any entry named build,
// and "assets/*.tmp" matches .tmp entries directly under a dir named assets.
// Patterns are matched against paths relative to the mirrored root.
type Patterns []string

// Match tells whether relpath matches any of the patterns.
// Malformed patterns match nothing.
func (p Patterns) Match(relpath string) bool {
	for _, pattern := range p {
		if matchTail(pattern, relpath) {
			return true
		}
	}
	return false
}

func matchTail(pattern, relpath string) bool {
	pat := strings.Split(strings.Trim(pattern, "/"), "/")
	segs := strings.Split(strings.Trim(relpath, "/"), "/")
	if len(pat) > len(segs) {
		return false
	}
	segs = segs[len(segs)-len(pat):]
	for i := range pat {
		ok, err := path.Match(pat[i], segs[i])
		if err != nil || !ok {
			return false
		}
	}
	return true
}
