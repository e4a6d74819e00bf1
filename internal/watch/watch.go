package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the vault must stay quiet before a change
// batch is emitted
const DefaultDebounce = 500 * time.Millisecond

// Event is a batch of changed sheets
type Event struct {
	Paths []string
	At    time.Time
}

// Options configures a Watcher
type Options struct {
	Root      string
	Extension string
	// Ignored reports whether a file or folder name is skipped
	Ignored func(name string) bool
	// Exclude lists generated files whose changes are not reported
	Exclude  []string
	Debounce time.Duration
	Logger   *zap.Logger
}

// Watcher reports sheet changes below a vault root. Batches are delivered on
// Events; the channel is closed once the watcher stops.
type Watcher struct {
	fsw      *fsnotify.Watcher
	root     string
	ext      string
	ignored  func(string) bool
	exclude  map[string]struct{}
	debounce time.Duration
	log      *zap.Logger

	events  chan Event
	stopCh  chan struct{}
	doneCh  chan struct{}
	once    sync.Once
	mu      sync.Mutex // started, stopped
	started bool
	stopped bool
}

// New creates a watcher over every non-ignored directory of root
func New(opts Options) (*Watcher, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("vault 경로가 지정되지 않았습니다")
	}
	if opts.Extension == "" {
		opts.Extension = ".md"
	}
	if opts.Ignored == nil {
		opts.Ignored = func(string) bool { return false }
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher 생성 실패: %w", err)
	}

	exclude := make(map[string]struct{}, len(opts.Exclude))
	for _, p := range opts.Exclude {
		exclude[filepath.Clean(p)] = struct{}{}
	}

	w := &Watcher{
		fsw:      fsw,
		root:     filepath.Clean(opts.Root),
		ext:      opts.Extension,
		ignored:  opts.Ignored,
		exclude:  exclude,
		debounce: opts.Debounce,
		log:      opts.Logger,
		events:   make(chan Event, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	if err := w.addTree(w.root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Events returns the change batch channel
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start runs the event loop until ctx is done or Stop is called. Start after
// Stop, or a second Start, does nothing.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return
	}
	w.started = true
	go w.run(ctx)
}

// Stop ends the event loop and releases the file system watcher. It is safe
// to call more than once.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		w.mu.Lock()
		w.stopped = true
		started := w.started
		w.mu.Unlock()

		close(w.stopCh)
		if started {
			<-w.doneCh
		} else {
			close(w.events)
		}
		if err := w.fsw.Close(); err != nil {
			w.log.Warn("watcher close failed", zap.Error(err))
		}
	})
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("디렉토리 감시 실패: %w", err)
			}
			w.log.Warn("folder not watched", zap.String("path", path), zap.Error(err))
			return filepath.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignored(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("%s 감시 실패: %w", path, err)
		}
		w.log.Debug("watching", zap.String("path", path))
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer close(w.events)

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.handle(event) {
				pending[filepath.Clean(event.Name)] = struct{}{}
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			ev := Event{At: time.Now()}
			for p := range pending {
				ev.Paths = append(ev.Paths, p)
			}
			sort.Strings(ev.Paths)
			pending = make(map[string]struct{})

			w.log.Debug("change batch", zap.Strings("paths", ev.Paths))
			select {
			case w.events <- ev:
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			}
		}
	}
}

// handle watches new directories and reports whether event concerns a sheet
func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.ignored(info.Name()) {
				if err := w.addTree(event.Name); err != nil {
					w.log.Warn("new folder not watched", zap.String("path", event.Name), zap.Error(err))
				}
			}
			return false
		}
	}
	return w.Relevant(event.Name)
}

// Relevant reports whether a change to path should trigger regeneration
func (w *Watcher) Relevant(path string) bool {
	path = filepath.Clean(path)
	if _, ok := w.exclude[path]; ok {
		return false
	}
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, w.ext) {
		return false
	}

	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if w.ignored(part) {
			return false
		}
	}
	return true
}
