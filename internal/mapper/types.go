package mapper

// Span is a location in a YAML source. Lines and columns are 1-based.
type Span struct {
	Line   int
	Column int
	// EndColumn is exclusive; equal to Column for insertion points.
	EndColumn int
	Exact     bool   // false when the span is only the nearest enclosing node
	Reason    string // short reason why this span was chosen
}

// ErrorMeta describes the schema violation being located.
type ErrorMeta struct {
	Kind     string // schema keyword: "type", "enum", "additionalProperties", "required", ...
	Property string // offending or missing property for additionalProperties and required
}
