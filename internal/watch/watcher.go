// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a build when project sources change.
//
// A Watcher monitors every non-ignored directory below the project root and
// invokes a callback once the event stream has been quiet for the debounce
// period. Events within the window are coalesced, so the callback fires once
// with the full set of changed paths.
package watch

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Config.Debounce is unset.
const DefaultDebounce = 500 * time.Millisecond

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

// defaultIgnores are always excluded. Build output and downloaded archives
// are written by the build itself and must never retrigger it.
var defaultIgnores = []string{
	"work",
	"work/**",
	"lib/**/*.jar",
	"**/.git/**",
	"**/.idea/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// BaseDir is the project root. Empty means the working directory.
		BaseDir string
		// Patterns select the root-relative, slash-separated paths that
		// trigger the callback. Empty matches every non-ignored path.
		Patterns []string
		// Ignore extends the built-in ignore patterns.
		Ignore []string
		// Debounce is the quiet period before the callback fires.
		Debounce time.Duration
		// OnChange receives the sorted changed paths relative to BaseDir.
		OnChange func(ctx context.Context, changed []string) error
		// Logger receives watcher diagnostics. Nil uses log.Default().
		Logger *log.Logger
	}

	// Watcher fires a debounced callback when matching files change. Run must
	// be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		ignores  []string
		logger   *log.Logger
		debounce time.Duration
		baseDir  string
		started  atomic.Bool
	}
)

// New registers every non-ignored directory below BaseDir.
func New(cfg Config) (*Watcher, error) {
	if err := validatePatterns(cfg.Patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}
	base, err := resolveBase(cfg.BaseDir)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		cfg:      cfg,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		logger:   cmp.Or(cfg.Logger, log.Default()),
		debounce: cmp.Or(max(cfg.Debounce, 0), DefaultDebounce),
		baseDir:  base,
	}
	if w.fsw, err = fsnotify.NewWatcher(); err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	if err := w.watchTree(base); err != nil {
		_ = w.fsw.Close()
		return nil, err
	}
	return w, nil
}

// resolveBase returns the absolute form of dir, or of the working directory
// when dir is empty.
func resolveBase(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("watch: determine working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("watch: resolve base directory: %w", err)
	}
	return abs, nil
}

// Run processes events until ctx is canceled and returns nil then. Fatal
// watcher errors end the loop with an error. A callback that is still busy
// when the window closes defers the pending set to the next window.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	b := &batch{paths: make(map[string]struct{}), quiet: w.debounce}
	flush := func() { w.rebuild(ctx, b) }
	defer func() {
		b.stop()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("watch: close fsnotify", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if rel, ok := w.relevant(evt); ok {
				b.add(rel, flush)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("watch: fsnotify error", "err", err)
		}
	}
}

// relevant returns the slash-separated path of evt relative to the base
// directory and whether it should trigger a rebuild. Created directories are
// registered before the patterns apply, so an empty new module is followed.
func (w *Watcher) relevant(evt fsnotify.Event) (string, bool) {
	rel := w.rel(evt.Name)
	if w.isIgnored(rel) {
		return "", false
	}
	if evt.Has(fsnotify.Create) {
		w.maybeAddDir(evt.Name)
	}
	return rel, w.matchesPatterns(rel)
}

func (w *Watcher) rebuild(ctx context.Context, b *batch) {
	if ctx.Err() != nil {
		return
	}
	if !b.busy.CompareAndSwap(false, true) {
		w.logger.Debug("watch: previous build still running, deferring")
		b.postpone()
		return
	}
	defer b.busy.Store(false)

	changed := b.take()
	if len(changed) == 0 {
		return
	}
	w.logger.Info("Change detected, rebuilding", "files", len(changed))
	if w.cfg.OnChange == nil {
		return
	}
	if err := w.cfg.OnChange(ctx, changed); err != nil {
		w.logger.Error("watch: rebuild failed", "err", err)
	}
}

// batch collects changed paths until the event stream has been quiet for
// one debounce period.
type batch struct {
	mu    sync.Mutex
	paths map[string]struct{}
	timer *time.Timer
	quiet time.Duration
	busy  atomic.Bool
}

// add records rel and restarts the quiet period; flush runs when it ends.
func (b *batch) add(rel string, flush func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paths[rel] = struct{}{}
	if b.timer == nil {
		b.timer = time.AfterFunc(b.quiet, flush)
		return
	}
	b.timer.Reset(b.quiet)
}

// take empties the batch and returns its sorted paths.
func (b *batch) take() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	changed := slices.Sorted(maps.Keys(b.paths))
	clear(b.paths)
	return changed
}

func (b *batch) postpone() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Reset(b.quiet)
	}
}

func (b *batch) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
}

// watchTree registers root and every directory below it that is not ignored.
func (w *Watcher) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		switch {
		case err != nil:
			w.logger.Warn("watch: skipping inaccessible path", "path", path, "err", err)
			return nil
		case !d.IsDir():
			return nil
		case path != w.baseDir && w.isIgnoredDir(w.rel(path)):
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
}

// maybeAddDir follows a created directory, including any subdirectories
// that appeared with it.
func (w *Watcher) maybeAddDir(path string) {
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return
	}
	if err := w.watchTree(path); err != nil {
		w.logger.Warn("watch: add new directory", "path", path, "err", err)
	}
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.baseDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) isIgnoredDir(rel string) bool {
	return w.isIgnored(rel) || w.isIgnored(rel+"/")
}

func (w *Watcher) isIgnored(rel string) bool {
	return matchAny(w.ignores, rel)
}

func (w *Watcher) matchesPatterns(rel string) bool {
	return len(w.cfg.Patterns) == 0 || matchAny(w.cfg.Patterns, rel)
}

func matchAny(patterns []string, rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, normalized); err == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string { return slices.Clone(defaultIgnores) }

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if pat == "" || !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q", label, pat)
		}
	}
	return nil
}
