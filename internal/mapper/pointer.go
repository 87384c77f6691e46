package mapper

import (
	"strconv"
	"strings"
)

// EncodePointer renders path segments as an RFC 6901 JSON pointer; the
// empty path is the document root "/".
func EncodePointer(segments []string) string {
	if len(segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		s = strings.ReplaceAll(s, "~", "~0")
		b.WriteString(strings.ReplaceAll(s, "/", "~1"))
	}
	return b.String()
}

// index parses a segment as a sequence index.
func index(segment string) (int, bool) {
	if segment == "" || segment[0] == '-' || segment[0] == '+' {
		return 0, false
	}
	i, err := strconv.Atoi(segment)
	if err != nil {
		return 0, false
	}
	return i, true
}
