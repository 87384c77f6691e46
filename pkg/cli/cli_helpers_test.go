package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/doctypetool/doctype/pkg/config"
	"github.com/doctypetool/doctype/pkg/console"
)

const xhtmlDocument = `<?xml version="1.0"?>
<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "xhtml1-strict.dtd">
<html><!-- body --><body/></html>
`

func testSettings() *config.Settings {
	return &config.Settings{
		Format: "xml",
		Jobs:   2,
		Color:  "never",
		Watch: config.WatchSettings{
			Debounce:   20 * time.Millisecond,
			Extensions: []string{".xml"},
		},
	}
}

func writeDocument(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func noColor(t *testing.T) {
	t.Helper()
	console.SetColorMode(console.ColorNever)
	t.Cleanup(func() { console.SetColorMode(console.ColorAuto) })
}

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a polling reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
