package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/doctypetool/doctype/pkg/config"
	"github.com/doctypetool/doctype/pkg/console"
)

// WatchOptions configures RunWatch.
type WatchOptions struct {
	Settings *config.Settings
	Stdout   io.Writer
	Stderr   io.Writer
}

type watchTarget struct {
	dir        string
	file       string // empty when watching a whole directory
	extensions []string
}

func (t watchTarget) matches(name string) bool {
	name = filepath.Clean(name)
	if t.file != "" {
		return name == t.file
	}
	if filepath.Dir(name) != t.dir {
		return false
	}
	return slices.Contains(t.extensions, strings.ToLower(filepath.Ext(name)))
}

func (t watchTarget) initialFiles() ([]string, error) {
	if t.file != "" {
		return []string{t.file}, nil
	}
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", t.dir, err)
	}
	var files []string
	for _, e := range entries {
		name := filepath.Join(t.dir, e.Name())
		if !e.IsDir() && t.matches(name) {
			files = append(files, name)
		}
	}
	return files, nil
}

func newWatchTarget(path string, extensions []string) (watchTarget, error) {
	info, err := os.Stat(path)
	if err != nil {
		return watchTarget{}, fmt.Errorf("cannot watch %s: %w", path, err)
	}
	path = filepath.Clean(path)
	if info.IsDir() {
		return watchTarget{dir: path, extensions: extensions}, nil
	}
	return watchTarget{dir: filepath.Dir(path), file: path, extensions: extensions}, nil
}

// RunWatch reports the documents at path, then reports them again each time
// they are written, until ctx is cancelled or the process is interrupted.
// path is a single document or a directory of documents.
func RunWatch(ctx context.Context, path string, opts WatchOptions) error {
	s := opts.Settings
	if err := s.Validate(); err != nil {
		return usageError(err)
	}

	target, err := newWatchTarget(path, s.Watch.Extensions)
	if err != nil {
		return failure(err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return failure(fmt.Errorf("failed to create file watcher: %w", err))
	}
	defer watcher.Close()

	if err := watcher.Add(target.dir); err != nil {
		return failure(fmt.Errorf("failed to watch directory %s: %w", target.dir, err))
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(opts.Stderr, console.FormatInfoMessage(fmt.Sprintf("Watching for file changes in %s...", path)))
	if s.Verbose {
		fmt.Fprintln(opts.Stderr, console.FormatVerboseMessage("Press Ctrl+C to stop watching."))
	}

	files, err := target.initialFiles()
	if err != nil {
		return failure(err)
	}
	reportBatch(ctx, files, opts)

	// the timer only signals; batches are processed on this goroutine
	var debounceTimer *time.Timer
	fire := make(chan struct{}, 1)
	modified := make(map[string]struct{})

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return failure(fmt.Errorf("watcher channel closed"))
			}
			if !target.matches(event.Name) {
				continue
			}
			if s.Verbose {
				fmt.Fprintln(opts.Stderr, console.FormatVerboseMessage(fmt.Sprintf("Detected change: %s (%s)", event.Name, event.Op.String())))
			}

			switch {
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				delete(modified, filepath.Clean(event.Name))
				fmt.Fprintln(opts.Stderr, console.FormatWarningMessage(fmt.Sprintf("%s was removed", event.Name)))
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				modified[filepath.Clean(event.Name)] = struct{}{}
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(s.Watch.Debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			}

		case <-fire:
			batch := make([]string, 0, len(modified))
			for name := range modified {
				batch = append(batch, name)
			}
			clear(modified)
			slices.Sort(batch)
			reportBatch(ctx, batch, opts)

		case err, ok := <-watcher.Errors:
			if !ok {
				return failure(fmt.Errorf("watcher error channel closed"))
			}
			fmt.Fprintln(opts.Stderr, console.FormatWarningMessage(fmt.Sprintf("Watcher error: %v", err)))

		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			if s.Verbose {
				fmt.Fprintln(opts.Stderr, console.FormatVerboseMessage("Stopping watch mode..."))
			}
			return nil
		}
	}
}

// reportBatch renders the reports of files; failures are shown and watching continues.
func reportBatch(ctx context.Context, files []string, opts WatchOptions) {
	if len(files) == 0 {
		return
	}
	s := opts.Settings
	docs := InspectAll(ctx, files, s, s.Jobs)

	w, closeReport, err := openReportWriter(s.ReportFile, opts.Stdout)
	if err != nil {
		fmt.Fprintln(opts.Stderr, console.FormatErrorMessage(err.Error()))
		return
	}
	defer closeReport()

	if err := renderDocuments(w, s.ReportFormat(), docs...); err != nil {
		fmt.Fprintln(opts.Stderr, console.FormatErrorMessage(fmt.Sprintf("failed to write report: %v", err)))
		return
	}

	failed := 0
	for _, doc := range docs {
		if doc.Failed() {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintln(opts.Stderr, console.FormatWarningMessage(fmt.Sprintf("%d of %s could not be processed", failed, console.FormatCount(len(docs), "document"))))
	} else {
		fmt.Fprintln(opts.Stderr, console.FormatSuccessMessage(fmt.Sprintf("Reported %s", console.FormatCount(len(docs), "document"))))
	}
}
