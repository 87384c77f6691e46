package mapper

import (
	"testing"
)

const sampleConfig = `system-id: xhtml1-strict.dtd
omit-system-id: "yes"
colour: always
watch:
  debounce: 300ms
  extensions:
    - .xml
    - xhtml
`

func TestLocate(t *testing.T) {
	tests := []struct {
		name      string
		path      []string
		meta      ErrorMeta
		wantLine  int
		wantCol   int
		wantExact bool
	}{
		{
			name:      "type mismatch highlights the value",
			path:      []string{"omit-system-id"},
			meta:      ErrorMeta{Kind: "type"},
			wantLine:  2,
			wantExact: true,
		},
		{
			name:      "unknown property highlights the key",
			path:      nil,
			meta:      ErrorMeta{Kind: "additionalProperties", Property: "colour"},
			wantLine:  3,
			wantCol:   1,
			wantExact: true,
		},
		{
			name:      "sequence entry",
			path:      []string{"watch", "extensions", "1"},
			meta:      ErrorMeta{Kind: "pattern"},
			wantLine:  8,
			wantExact: true,
		},
		{
			name:     "missing property points at the object",
			path:     []string{"watch"},
			meta:     ErrorMeta{Kind: "required", Property: "interval"},
			wantLine: 5,
			wantCol:  3,
		},
		{
			name:     "index out of range falls back to the sequence",
			path:     []string{"watch", "extensions", "7"},
			meta:     ErrorMeta{Kind: "type"},
			wantLine: 7,
		},
		{
			name:     "unknown nested key not present falls back to the object",
			path:     []string{"watch"},
			meta:     ErrorMeta{Kind: "additionalProperties", Property: "missing"},
			wantLine: 5,
			wantCol:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, err := Locate([]byte(sampleConfig), tt.path, tt.meta)
			if err != nil {
				t.Fatalf("Locate failed: %v", err)
			}
			if span.Line != tt.wantLine {
				t.Errorf("line = %d, want %d (%s)", span.Line, tt.wantLine, span.Reason)
			}
			if tt.wantCol != 0 && span.Column != tt.wantCol {
				t.Errorf("column = %d, want %d (%s)", span.Column, tt.wantCol, span.Reason)
			}
			if span.Exact != tt.wantExact {
				t.Errorf("exact = %v, want %v (%s)", span.Exact, tt.wantExact, span.Reason)
			}
		})
	}
}

func TestLocateEmptyDocument(t *testing.T) {
	span, err := Locate([]byte(""), []string{"root"}, ErrorMeta{Kind: "type"})
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if span.Line != 1 || span.Column != 1 || span.Exact {
		t.Errorf("expected a document-level span, got %+v", span)
	}
}

func TestLocateInvalidYAML(t *testing.T) {
	if _, err := Locate([]byte("a: [1, 2"), nil, ErrorMeta{Kind: "type"}); err == nil {
		t.Error("expected a parse error")
	}
}

func TestEncodePointer(t *testing.T) {
	tests := []struct {
		segments []string
		want     string
	}{
		{nil, "/"},
		{[]string{"watch", "extensions", "0"}, "/watch/extensions/0"},
		{[]string{"a/b", "c~d"}, "/a~1b/c~0d"},
	}
	for _, tt := range tests {
		if got := EncodePointer(tt.segments); got != tt.want {
			t.Errorf("EncodePointer(%q) = %q, want %q", tt.segments, got, tt.want)
		}
	}
}

func TestIndex(t *testing.T) {
	tests := []struct {
		segment string
		want    int
		ok      bool
	}{
		{"0", 0, true},
		{"12", 12, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"name", 0, false},
		{"", 0, false},
		{"1.5", 0, false},
	}
	for _, tt := range tests {
		got, ok := index(tt.segment)
		if got != tt.want || ok != tt.ok {
			t.Errorf("index(%q) = %d, %v; want %d, %v", tt.segment, got, ok, tt.want, tt.ok)
		}
	}
}
