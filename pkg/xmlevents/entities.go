package xmlevents

import (
	"regexp"
	"slices"
	"strings"
)

var (
	entityDeclPattern = regexp.MustCompile(`^<!ENTITY\s+([^\s%"'>]+)\s+(?:"([^"]*)"|'([^']*)'|(SYSTEM|PUBLIC))`)
	entityRefPattern  = regexp.MustCompile(`&([^\s&;#<>"']+);`)
)

var predefinedEntities = map[string]bool{
	"lt":   true,
	"gt":   true,
	"amp":  true,
	"apos": true,
	"quot": true,
}

// attrEscaper escapes replacement text that lands inside an attribute value.
var attrEscaper = strings.NewReplacer(`"`, "&quot;", `'`, "&apos;", "<", "&lt;")

// subsetEntity is a general entity declared in an internal subset. Value is
// the literal as written and is only meaningful for internal entities.
type subsetEntity struct {
	Name     string
	Value    string
	External bool
}

// scanSubset splits an internal subset into the text of its comments and
// the general entities it declares, both in document order. Parameter
// entities are skipped.
func scanSubset(subset string) (comments []string, entities []subsetEntity) {
	for i := 0; i < len(subset); {
		j := strings.IndexByte(subset[i:], '<')
		if j < 0 {
			break
		}
		j += i

		if strings.HasPrefix(subset[j:], "<!--") {
			end := strings.Index(subset[j+4:], "-->")
			if end < 0 {
				break
			}
			comments = append(comments, subset[j+4:j+4+end])
			i = j + 4 + end + 3
			continue
		}

		end := declEnd(subset, j)
		if m := entityDeclPattern.FindStringSubmatch(subset[j:end]); m != nil {
			entities = append(entities, subsetEntity{
				Name:     m[1],
				Value:    m[2] + m[3],
				External: m[4] != "",
			})
		}
		i = end
	}
	return comments, entities
}

// declEnd returns the offset just past the markup declaration starting at
// start, skipping '>' inside quoted literals.
func declEnd(s string, start int) int {
	var quote byte
	for k := start; k < len(s); k++ {
		c := s[k]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return k + 1
		}
	}
	return len(s)
}

// entityRef is a general entity reference found in raw markup.
type entityRef struct {
	Name   string
	Offset int
}

// entityRefs lists the general entity references in raw, in order.
func entityRefs(raw []byte) []entityRef {
	var refs []entityRef
	for _, loc := range entityRefPattern.FindAllSubmatchIndex(raw, -1) {
		refs = append(refs, entityRef{
			Name:   string(raw[loc[2]:loc[3]]),
			Offset: loc[0],
		})
	}
	return refs
}

// expandEntities replaces references to the entities in values with their
// replacement text, recursively. inAttr escapes the characters that would
// end an attribute value. open holds the entities being expanded; a
// reference back into it stops expansion and is returned as loop.
func expandEntities(raw []byte, values map[string]string, inAttr bool, open []string) (out []byte, loop string) {
	out = entityRefPattern.ReplaceAllFunc(raw, func(ref []byte) []byte {
		name := string(ref[1 : len(ref)-1])
		value, ok := values[name]
		if !ok || loop != "" {
			return ref
		}
		if slices.Contains(open, name) {
			loop = name
			return ref
		}
		text, inner := expandEntities([]byte(value), values, inAttr, append(open, name))
		if inner != "" {
			loop = inner
			return ref
		}
		if inAttr {
			return []byte(attrEscaper.Replace(string(text)))
		}
		return text
	})
	return out, loop
}
