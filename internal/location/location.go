// Package location models the shared URL as an explicit snapshot and
// resolves micro paths against a base URL.
package location

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrNotAbsolute = errors.New("location: base url is not absolute")

// Location is the query-bearing part of a URL. Search keeps its leading '?'
// and Hash its leading '#'; both are empty when absent.
type Location struct {
	Pathname string `json:"pathname"`
	Search   string `json:"search"`
	Hash     string `json:"hash"`
}

// FullPath is pathname+search+hash.
func (l Location) FullPath() string {
	return l.Pathname + l.Search + l.Hash
}

// FromHref splits href into pathname, search and hash without unescaping
// anything. Origins are dropped; a bare '?' or '#' reads as empty.
func FromHref(href string) Location {
	rest := href
	var loc Location
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		loc.Hash = rest[i:]
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		loc.Search = rest[i:]
		rest = rest[:i]
	}
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
		if j := strings.IndexByte(rest, '/'); j >= 0 {
			rest = rest[j:]
		} else {
			rest = "/"
		}
	}
	loc.Pathname = rest
	if loc.Search == "?" {
		loc.Search = ""
	}
	if loc.Hash == "#" {
		loc.Hash = ""
	}
	return loc
}

// Resolved is the hash-free view of a resolved URL.
type Resolved struct {
	Origin   string
	Pathname string
	Search   string
}

// String is origin+pathname+search.
func (r Resolved) String() string {
	return r.Origin + r.Pathname + r.Search
}

// Resolve resolves path against base the way a browser URL constructor does
// for http(s) bases. A '%' that does not start a valid escape is kept as a
// bare '%'.
func Resolve(path, base string) (Resolved, error) {
	mark := ""
	if hasStrayPercent(path) || hasStrayPercent(base) {
		mark = percentMark(path, base)
		path = markStrayPercent(path, mark)
		base = markStrayPercent(base, mark)
	}

	b, err := url.Parse(base)
	if err != nil {
		return Resolved{}, fmt.Errorf("parse base %q: %w", base, err)
	}
	if !b.IsAbs() || b.Host == "" {
		return Resolved{}, fmt.Errorf("%w: %q", ErrNotAbsolute, base)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return Resolved{}, fmt.Errorf("parse path %q: %w", path, err)
	}
	u := b.ResolveReference(ref)

	out := Resolved{
		Origin:   u.Scheme + "://" + u.Host,
		Pathname: u.EscapedPath(),
	}
	if out.Pathname == "" {
		out.Pathname = "/"
	}
	if u.RawQuery != "" {
		out.Search = "?" + u.RawQuery
	}
	if mark != "" {
		out.Pathname = strings.ReplaceAll(out.Pathname, mark, "%")
		out.Search = strings.ReplaceAll(out.Search, mark, "%")
	}
	return out, nil
}

// percentMark picks an escape sequence absent from every part. It begins
// with %FF and continues with %FE, so it cannot match across a boundary
// with the text around it.
func percentMark(parts ...string) string {
	joined := strings.ToUpper(strings.Join(parts, " "))
	mark := "%FF%FE"
	for strings.Contains(joined, mark) {
		mark += "%FE"
	}
	return mark
}

func hasStrayPercent(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && !validEscapeAt(s, i) {
			return true
		}
	}
	return false
}

func markStrayPercent(s, mark string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && !validEscapeAt(s, i) {
			b.WriteString(mark)
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func validEscapeAt(s string, i int) bool {
	return i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2])
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
