package doctype

import "io"

// Sink receives serialized markup in document order. A nil Sink discards
// everything, which is how report-only runs are configured.
type Sink = io.StringWriter

// discard is the Sink used when none is configured.
type discard struct{}

func (discard) WriteString(s string) (int, error) { return len(s), nil }
