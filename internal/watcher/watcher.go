// Package watcher turns filesystem activity in the notes directory into
// note events for the change feed.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mdnotes-server/internal/domain"
	"mdnotes-server/internal/repository"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Publisher receives note events. The websocket manager implements it.
type Publisher interface {
	Broadcast(event domain.NoteEvent) error
}

type Watcher struct {
	root      string
	pattern   string
	publisher Publisher
	watcher   *fsnotify.Watcher
	// known holds the notes present in root; only Run touches it.
	known  map[string]struct{}
	logger zerolog.Logger
}

// New starts watching root. Events are delivered once Run is called.
func New(root, pattern string, publisher Publisher, logger zerolog.Logger) (*Watcher, error) {
	if pattern == "" {
		pattern = repository.DefaultPattern
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := fsw.Add(root); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", root, err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to read %s: %w", root, err)
	}
	known := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if repository.MatchName(pattern, entry.Name()) {
			known[entry.Name()] = struct{}{}
		}
	}

	return &Watcher{
		root:      root,
		pattern:   pattern,
		publisher: publisher,
		watcher:   fsw,
		known:     known,
		logger:    logger.With().Str("component", "watcher").Logger(),
	}, nil
}

// Run forwards matching events until ctx is cancelled or the underlying
// watcher is closed. It always closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("fsnotify error")
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if !repository.MatchName(w.pattern, name) {
		return
	}

	op := w.track(name, mapOp(event.Op))
	if op == "" {
		return
	}

	w.logger.Debug().Str("note", name).Str("op", string(op)).Msg("note changed")

	if err := w.publisher.Broadcast(domain.NoteEvent{Name: name, Op: op, At: time.Now()}); err != nil {
		w.logger.Error().Err(err).Str("note", name).Msg("broadcast failed")
	}
}

// track updates the set of known notes. Saves replace the file by rename,
// which fsnotify reports as Create, so a Create for a known note is a write.
func (w *Watcher) track(name string, op domain.NoteEventOp) domain.NoteEventOp {
	switch op {
	case domain.NoteCreated:
		if _, ok := w.known[name]; ok {
			return domain.NoteWritten
		}
		w.known[name] = struct{}{}
	case domain.NoteRemoved, domain.NoteRenamed:
		delete(w.known, name)
	}
	return op
}

func mapOp(op fsnotify.Op) domain.NoteEventOp {
	switch {
	case op.Has(fsnotify.Create):
		return domain.NoteCreated
	case op.Has(fsnotify.Write):
		return domain.NoteWritten
	case op.Has(fsnotify.Remove):
		return domain.NoteRemoved
	case op.Has(fsnotify.Rename):
		return domain.NoteRenamed
	}
	return ""
}
