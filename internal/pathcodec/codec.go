package pathcodec

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	// MarkerAmpersand stands in for '&' inside an encoded micro path.
	MarkerAmpersand = "%M1"
	// MarkerEquals stands in for '=' inside an encoded micro path.
	MarkerEquals = "%M2"

	DefaultMaxDecodeRounds = 32
)

var (
	encodeReplacer = strings.NewReplacer("&", MarkerAmpersand, "=", MarkerEquals)
	decodeReplacer = strings.NewReplacer(MarkerAmpersand, "&", MarkerEquals, "=")
)

// Codec encodes micro paths into query-safe values and back.
// The zero value uses DefaultMaxDecodeRounds.
type Codec struct {
	MaxRounds int
}

// New returns a codec capped at maxRounds decode rounds.
func New(maxRounds int) Codec {
	return Codec{MaxRounds: maxRounds}
}

func (c Codec) rounds() int {
	if c.MaxRounds <= 0 {
		return DefaultMaxDecodeRounds
	}
	return c.MaxRounds
}

// Normalize percent-decodes s until it stops changing, a marker shows up,
// decoding fails, or the round cap is reached.
func (c Codec) Normalize(s string) string {
	cur := s
	for i, n := 0, c.rounds(); i < n; i++ {
		next, ok := unescape(cur)
		if !ok {
			return cur
		}
		if next == cur || hasMarker(next) {
			return next
		}
		cur = next
	}
	return cur
}

// Encode returns path as a single query value that carries no '&' or '='.
func (c Codec) Encode(path string) string {
	return escapeComponent(encodeReplacer.Replace(c.Normalize(path)))
}

// Decode restores a value produced by Encode, tolerating extra
// percent-encoding layers added on the way.
func (c Codec) Decode(text string) string {
	return decodeReplacer.Replace(c.Normalize(text))
}

var defaultCodec Codec

// Normalize runs the default codec's normalization.
func Normalize(s string) string { return defaultCodec.Normalize(s) }

// Encode runs the default codec's Encode.
func Encode(path string) string { return defaultCodec.Encode(path) }

// Decode runs the default codec's Decode.
func Decode(text string) string { return defaultCodec.Decode(text) }

func hasMarker(s string) bool {
	return strings.Contains(s, MarkerAmpersand) || strings.Contains(s, MarkerEquals)
}

// unescape decodes every %XX sequence. '+' is left alone. A malformed
// escape, or one that yields invalid UTF-8 from valid input, reports false.
func unescape(s string) (string, bool) {
	if !strings.Contains(s, "%") {
		return s, true
	}
	out, err := url.PathUnescape(s)
	if err != nil {
		return s, false
	}
	if !utf8.ValidString(out) && utf8.ValidString(s) {
		return s, false
	}
	return out, true
}

const upperHex = "0123456789ABCDEF"

// escapeComponent percent-encodes every byte outside the component-safe
// set A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func escapeComponent(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !isComponentSafe(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isComponentSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&15])
	}
	return b.String()
}

func isComponentSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
