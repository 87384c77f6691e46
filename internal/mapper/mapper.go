// Package mapper locates JSON Schema validation errors in the YAML source
// they were reported against.
package mapper

import (
	"fmt"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
)

// Locate maps a schema error to a span of source. path is the instance
// location reported by the validator; for "additionalProperties" and
// "required" it is the object holding the property named in meta.
func Locate(source []byte, path []string, meta ErrorMeta) (Span, error) {
	file, err := parser.ParseBytes(source, 0)
	if err != nil {
		return Span{}, fmt.Errorf("yaml parse error: %w", err)
	}
	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return documentSpan(), nil
	}
	root := file.Docs[0].Body

	node, depth := traverse(root, path)
	if depth < len(path) {
		// the path leaves the document; point at the deepest node that exists
		return nodeSpan(node, false, fmt.Sprintf("nearest existing parent of %s", EncodePointer(path))), nil
	}

	switch meta.Kind {
	case "additionalProperties":
		if key := findKey(node, meta.Property); key != nil {
			return tokenSpan(key.GetToken(), true, fmt.Sprintf("unknown property %q", meta.Property)), nil
		}
		return nodeSpan(node, false, "object with unknown properties"), nil

	case "required":
		return nodeSpan(node, false, fmt.Sprintf("object missing property %q", meta.Property)), nil
	}

	return nodeSpan(node, true, meta.Kind+" violation"), nil
}

// traverse follows path from root and returns the deepest node reached
// together with the number of segments consumed.
func traverse(root ast.Node, path []string) (ast.Node, int) {
	current := root
	for depth, segment := range path {
		next := child(current, segment)
		if next == nil {
			return current, depth
		}
		current = next
	}
	return current, len(path)
}

func child(node ast.Node, segment string) ast.Node {
	switch n := node.(type) {
	case *ast.DocumentNode:
		return child(n.Body, segment)
	case *ast.TagNode:
		return child(n.Value, segment)
	case *ast.MappingNode:
		for _, v := range n.Values {
			if keyMatches(v.Key, segment) {
				return v.Value
			}
		}
	case *ast.MappingValueNode:
		if keyMatches(n.Key, segment) {
			return n.Value
		}
	case *ast.SequenceNode:
		if i, ok := index(segment); ok && i < len(n.Values) {
			return n.Values[i]
		}
	}
	return nil
}

func keyMatches(key ast.MapKeyNode, segment string) bool {
	switch k := key.(type) {
	case *ast.StringNode:
		return k.Value == segment
	case *ast.MappingKeyNode:
		return k.Value.GetToken().Value == segment
	}
	if tk := key.GetToken(); tk != nil {
		return tk.Value == segment
	}
	return false
}

// findKey returns the key node named property in a mapping.
func findKey(node ast.Node, property string) ast.Node {
	switch n := node.(type) {
	case *ast.MappingNode:
		for _, v := range n.Values {
			if keyMatches(v.Key, property) {
				return v.Key
			}
		}
	case *ast.MappingValueNode:
		if keyMatches(n.Key, property) {
			return n.Key
		}
	}
	return nil
}

// firstToken is the token a node visually starts at: the first key of a
// mapping rather than its ':' indicator.
func firstToken(node ast.Node) *token.Token {
	switch n := node.(type) {
	case *ast.MappingNode:
		if len(n.Values) > 0 {
			return n.Values[0].Key.GetToken()
		}
	case *ast.MappingValueNode:
		return n.Key.GetToken()
	}
	return node.GetToken()
}

func nodeSpan(node ast.Node, exact bool, reason string) Span {
	if node == nil {
		return documentSpan()
	}
	return tokenSpan(firstToken(node), exact, reason)
}

func tokenSpan(tk *token.Token, exact bool, reason string) Span {
	if tk == nil || tk.Position == nil {
		return documentSpan()
	}
	return Span{
		Line:      tk.Position.Line,
		Column:    tk.Position.Column,
		EndColumn: tk.Position.Column + len(tk.Value),
		Exact:     exact,
		Reason:    reason,
	}
}

func documentSpan() Span {
	return Span{Line: 1, Column: 1, EndColumn: 1, Reason: "document"}
}
