package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"

	"github.com/at-ishikawa/qasummary/internal/transcript"
)

// WatchEvent is the result of re-parsing a changed transcript.
type WatchEvent struct {
	Path    string
	Entries int
	Err     error
}

func isTranscriptFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return true
	}
	return false
}

// Watch re-parses transcripts in dir whenever they are created or written,
// until ctx is done.
func Watch(ctx context.Context, dir string, strict bool, onChange func(WatchEvent)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher() > %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watcher.Add(%s) > %w", dir, err)
	}
	slog.Default().Debug("watching transcripts", "dir", dir)

	var opts []transcript.Option
	if strict {
		opts = append(opts, transcript.WithStrict())
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isTranscriptFile(event.Name) {
				continue
			}

			entries, err := transcript.Load(event.Name, opts...)
			onChange(WatchEvent{Path: event.Name, Entries: len(entries), Err: err})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Default().Error("watcher error", "dir", dir, "error", err)
		}
	}
}

// PrintWatchEvent writes a one-line status of the event.
func PrintWatchEvent(w io.Writer, event WatchEvent) {
	if event.Err != nil {
		_, _ = color.New(color.FgRed).Fprintf(w, "✗ %s: %v\n", event.Path, event.Err)
		return
	}
	_, _ = color.New(color.FgGreen).Fprintf(w, "✓ %s: %d entries\n", event.Path, event.Entries)
}
