package xmlevents

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// doctypeDecl is a document type declaration split into its parts.
type doctypeDecl struct {
	Name      string
	PublicID  string
	SystemID  string
	Subset    string
	HasSubset bool
}

// HasExternalID reports whether the declaration names an external subset.
func (d doctypeDecl) HasExternalID() bool {
	return d.SystemID != "" || d.PublicID != ""
}

// parseDoctype parses the raw text of a `<!DOCTYPE ...>` directive.
func parseDoctype(raw string) (doctypeDecl, error) {
	var decl doctypeDecl

	if !strings.HasPrefix(raw, "<!DOCTYPE") || !strings.HasSuffix(raw, ">") {
		return decl, fmt.Errorf("malformed document type declaration")
	}
	s := &declScanner{src: raw[len("<!DOCTYPE") : len(raw)-1]}

	if !s.skipSpace() {
		return decl, fmt.Errorf("space required after '<!DOCTYPE'")
	}
	decl.Name = s.name()
	if decl.Name == "" {
		return decl, fmt.Errorf("document type declaration must name the root element")
	}

	spaced := s.skipSpace()
	switch {
	case s.consume("SYSTEM"):
		if !s.skipSpace() {
			return decl, fmt.Errorf("space required after 'SYSTEM'")
		}
		lit, err := s.literal()
		if err != nil {
			return decl, fmt.Errorf("system literal: %w", err)
		}
		decl.SystemID = lit
	case s.consume("PUBLIC"):
		if !s.skipSpace() {
			return decl, fmt.Errorf("space required after 'PUBLIC'")
		}
		pub, err := s.literal()
		if err != nil {
			return decl, fmt.Errorf("public identifier: %w", err)
		}
		if r, ok := invalidPubidChar(pub); ok {
			return decl, fmt.Errorf("character %q is not allowed in a public identifier", r)
		}
		if !s.skipSpace() {
			return decl, fmt.Errorf("public identifier must be followed by a system literal")
		}
		sys, err := s.literal()
		if err != nil {
			return decl, fmt.Errorf("system literal: %w", err)
		}
		decl.PublicID = pub
		decl.SystemID = sys
	default:
		if !spaced && !s.done() && s.peek() != '[' {
			return decl, fmt.Errorf("unexpected %q after document type name", s.rest())
		}
	}

	s.skipSpace()
	if !s.done() && s.peek() == '[' {
		end := strings.LastIndexByte(s.src, ']')
		if end < s.pos {
			return decl, fmt.Errorf("internal subset is not terminated by ']'")
		}
		decl.Subset = s.src[s.pos+1 : end]
		decl.HasSubset = true
		s.pos = end + 1
		s.skipSpace()
	}
	if !s.done() {
		return decl, fmt.Errorf("unexpected %q at end of document type declaration", s.rest())
	}
	return decl, nil
}

type declScanner struct {
	src string
	pos int
}

func (s *declScanner) done() bool   { return s.pos >= len(s.src) }
func (s *declScanner) peek() byte   { return s.src[s.pos] }
func (s *declScanner) rest() string { return s.src[s.pos:] }

func (s *declScanner) skipSpace() bool {
	start := s.pos
	for !s.done() && isSpace(s.peek()) {
		s.pos++
	}
	return s.pos > start
}

func (s *declScanner) consume(keyword string) bool {
	if strings.HasPrefix(s.rest(), keyword) {
		s.pos += len(keyword)
		return true
	}
	return false
}

func (s *declScanner) name() string {
	start := s.pos
	for !s.done() {
		r, size := utf8.DecodeRuneInString(s.rest())
		if s.pos == start && !isNameStart(r) {
			return ""
		}
		if !isNameChar(r) {
			break
		}
		s.pos += size
	}
	return s.src[start:s.pos]
}

func (s *declScanner) literal() (string, error) {
	if s.done() {
		return "", fmt.Errorf("quoted literal expected")
	}
	quote := s.peek()
	if quote != '"' && quote != '\'' {
		return "", fmt.Errorf("quoted literal expected, found %q", quote)
	}
	end := strings.IndexByte(s.src[s.pos+1:], quote)
	if end < 0 {
		return "", fmt.Errorf("unterminated literal")
	}
	lit := s.src[s.pos+1 : s.pos+1+end]
	s.pos += end + 2
	return lit, nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isNameStart(r rune) bool {
	return r == ':' || r == '_' || unicode.IsLetter(r) || (r >= 0xC0 && r != utf8.RuneError && !unicode.IsSpace(r) && !unicode.IsPunct(r))
}

func isNameChar(r rune) bool {
	return isNameStart(r) || r == '-' || r == '.' || unicode.IsDigit(r) || r == 0xB7
}

// invalidPubidChar returns the first character outside the PubidChar
// production, if any.
func invalidPubidChar(s string) (rune, bool) {
	for _, r := range s {
		switch {
		case r == ' ' || r == '\r' || r == '\n':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("-'()+,./:=?;!*#@$_%", r):
		default:
			return r, true
		}
	}
	return 0, false
}
