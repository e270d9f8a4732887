// Package watch reruns a conversion when one of its input headers changes.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/mesdx/hdrenum/internal/inputs"
)

const defaultDebounce = 200 * time.Millisecond

// Config holds the parameters for a Watcher.
type Config struct {
	// Args are the command-line inputs: files and directories.
	Args []string

	// Matcher selects files under directory arguments.
	Matcher *inputs.Matcher

	// Debounce is the quiet period after the last event before OnChange
	// fires. Zero uses 200ms.
	Debounce time.Duration

	// OnChange is called from Run's goroutine, never concurrently.
	OnChange func(ctx context.Context) error

	Logger *log.Logger
}

// Watcher monitors the inputs of a conversion.
type Watcher struct {
	cfg    Config
	fsw    *fsnotify.Watcher
	logger *log.Logger

	files map[string]bool // explicit file arguments, absolute
	roots []string        // directory arguments, absolute
}

// New creates a Watcher and registers the directories to monitor.
func New(cfg Config) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:    cfg,
		fsw:    fsw,
		logger: logger,
		files:  make(map[string]bool),
	}
	if err := w.addInputs(); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addInputs() error {
	watched := make(map[string]bool)
	for _, arg := range w.cfg.Args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("watch: resolve %s: %w", arg, err)
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			w.roots = append(w.roots, abs)
			if err := addWatchRecursive(w.fsw, abs); err != nil {
				w.logger.Warn("failed to watch directory", "dir", abs, "err", err)
			}
			continue
		}

		w.files[abs] = true
		dir := filepath.Dir(abs)
		if watched[dir] {
			continue
		}
		watched[dir] = true
		if err := w.fsw.Add(dir); err != nil {
			w.logger.Warn("failed to watch directory", "dir", dir, "err", err)
		}
	}
	return nil
}

// Relevant reports whether a change to path should trigger a rerun.
func (w *Watcher) Relevant(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	if w.files[abs] {
		return true
	}
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, abs)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		if w.cfg.Matcher == nil || w.cfg.Matcher.Match(filepath.ToSlash(rel)) {
			return true
		}
	}
	return false
}

// Run processes filesystem events until ctx is cancelled. It returns nil
// on cancellation and closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	trigger := make(chan struct{}, 1)
	var mu sync.Mutex
	var timer *time.Timer
	fire := func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	w.logger.Debug("watcher started", "files", len(w.files), "dirs", len(w.roots))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 && w.underRoot(event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addWatchRecursive(w.fsw, event.Name)
					continue
				}
			}
			if !w.Relevant(event.Name) {
				continue
			}
			w.logger.Debug("input changed", "path", event.Name, "op", event.Op.String())
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.cfg.Debounce, fire)
			mu.Unlock()

		case <-trigger:
			if w.cfg.OnChange == nil {
				continue
			}
			if err := w.cfg.OnChange(ctx); err != nil {
				w.logger.Error("rerun failed", "err", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "err", err)
		}
	}
}

func (w *Watcher) underRoot(path string) bool {
	for _, root := range w.roots {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

// addWatchRecursive adds a directory and all its subdirectories to the watcher.
func addWatchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		name := info.Name()
		if path != root && (strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor" ||
			name == "target" || name == "build" || name == "dist") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
