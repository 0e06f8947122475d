package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mercator-hq/rdl/pkg/config"
	"mercator-hq/rdl/pkg/telemetry/metrics"
)

// Config configures a Watcher.
type Config struct {
	// Paths are files or directories to follow.
	Paths []string

	// Extensions select the files of interest, e.g. ".rdl". Matching is
	// case-insensitive.
	Extensions []string

	// Debounce is the quiet period before a batch is delivered.
	Debounce time.Duration

	// SkipHidden ignores dot files and dot directories.
	SkipHidden bool
}

// FromConfig builds a watcher Config from the watch section.
func FromConfig(cfg config.WatchConfig) *Config {
	return &Config{
		Paths:      slices.Clone(cfg.Paths),
		Extensions: slices.Clone(cfg.Extensions),
		Debounce:   cfg.Debounce,
		SkipHidden: true,
	}
}

// Change is one file in a delivered batch.
type Change struct {
	Path    string
	Removed bool
}

// Handler receives a debounced batch of changes, sorted by path.
type Handler func(ctx context.Context, changes []Change)

// ErrAlreadyRunning is returned by Watch when called twice.
var ErrAlreadyRunning = errors.New("watcher already running")

// Watcher follows files and directories for changes.
type Watcher struct {
	config   *Config
	watcher  *fsnotify.Watcher
	debounce *Debouncer
	logger   *slog.Logger
	metrics  *metrics.Collector

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a watcher. logger and collector may be nil.
func New(cfg *Config, logger *slog.Logger, collector *metrics.Collector) (*Watcher, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("no paths to watch")
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{config.DefaultWatchExtension}
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = config.DefaultWatchDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		config:   cfg,
		watcher:  fw,
		debounce: NewDebouncer(cfg.Debounce),
		logger:   logger.With("component", "source.watch"),
		metrics:  collector,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Files lists the existing files under the configured paths that match
// the extensions, sorted.
func (w *Watcher) Files() ([]string, error) {
	var files []string
	for _, root := range w.config.Paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if w.skip(path, root) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && w.matches(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list %q: %w", root, err)
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// Watch delivers changes to handler until ctx is cancelled or Stop is
// called. It blocks.
func (w *Watcher) Watch(ctx context.Context, handler Handler) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}
	w.running = true
	w.mu.Unlock()
	defer close(w.doneCh)

	for _, p := range w.config.Paths {
		if err := w.addPath(p); err != nil {
			return fmt.Errorf("failed to watch %q: %w", p, err)
		}
	}

	w.logger.Info("watching for changes",
		"paths", w.config.Paths,
		"extensions", w.config.Extensions,
		"debounce_ms", w.config.Debounce.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stopCh:
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			w.handle(ctx, event, handler)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event, handler Handler) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.skip(event.Name, "") {
				if err := w.addDirectory(event.Name); err != nil {
					w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
				}
			}
			return
		}
	}
	if !w.relevant(event) {
		return
	}

	removed := event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
	w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
	w.metrics.RecordSourceEvent("watch")

	w.debounce.Add(Change{Path: event.Name, Removed: removed}, func(changes []Change) {
		handler(ctx, changes)
	})
}

// Stop ends Watch, drops pending batches and releases the fsnotify watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	w.debounce.Stop()
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func (w *Watcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return w.addDirectory(path)
	}
	// Editors replace files on save; watching the parent keeps the watch
	// alive across renames.
	return w.watcher.Add(filepath.Dir(path))
}

func (w *Watcher) addDirectory(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.skip(path, dir) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		w.logger.Debug("watching directory", "path", path)
		return nil
	})
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	return w.matches(event.Name) && !w.skip(event.Name, "")
}

func (w *Watcher) matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.config.Extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// skip reports whether path is hidden. root itself is never skipped.
func (w *Watcher) skip(path, root string) bool {
	if !w.config.SkipHidden || path == root {
		return false
	}
	base := filepath.Base(path)
	return len(base) > 1 && strings.HasPrefix(base, ".") && base != ".."
}
