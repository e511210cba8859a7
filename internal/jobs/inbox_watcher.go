package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aeworks/ops-api/internal/domain"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// InboxRunner runs inbox ingestion. service.SyncService implements it.
type InboxRunner interface {
	SyncInbox(ctx context.Context, trigger, token string) domain.InboxResult
}

// InboxWatcher runs ingestion as soon as a file lands in the inbox folder of
// a filesystem vault. Bursts of events collapse into one run after the
// debounce delay.
type InboxWatcher struct {
	baseDir  string
	inboxDir string
	runner   InboxRunner
	token    TokenFunc
	logger   *zap.Logger
	debounce time.Duration
	timeout  time.Duration

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	timer   *time.Timer
	running bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewInboxWatcher creates a watcher for baseDir/inboxName.
func NewInboxWatcher(baseDir, inboxName string, runner InboxRunner, token TokenFunc, logger *zap.Logger, debounce, timeout time.Duration) *InboxWatcher {
	return &InboxWatcher{
		baseDir:  baseDir,
		inboxDir: filepath.Join(baseDir, inboxName),
		runner:   runner,
		token:    token,
		logger:   logger,
		debounce: debounce,
		timeout:  timeout,
	}
}

// Start begins watching. The base directory is watched too, so an inbox
// folder created later is picked up.
func (w *InboxWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("inbox watcher already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(w.baseDir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch vault directory %s: %w", w.baseDir, err)
	}
	if st, err := os.Stat(w.inboxDir); err == nil && st.IsDir() {
		if err := watcher.Add(w.inboxDir); err != nil {
			watcher.Close()
			return fmt.Errorf("failed to watch inbox directory %s: %w", w.inboxDir, err)
		}
	}

	w.watcher = watcher
	w.done = make(chan struct{})
	w.running = true
	w.wg.Add(1)
	go w.processEvents()

	w.logger.Info("watching feedback inbox", zap.String("dir", w.inboxDir))
	return nil
}

// Stop stops watching and waits for the event loop to exit. A pending
// debounced run is cancelled.
func (w *InboxWatcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func (w *InboxWatcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if !errors.Is(err, fsnotify.ErrEventOverflow) {
				w.logger.Warn("inbox watcher error", zap.Error(err))
				continue
			}
			// events were dropped, rescan
			w.schedule()
		}
	}
}

func (w *InboxWatcher) handle(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	if path == w.inboxDir && event.Has(fsnotify.Create) {
		if err := w.watcher.Add(w.inboxDir); err != nil {
			w.logger.Warn("failed to watch new inbox directory", zap.Error(err))
			return
		}
		w.schedule()
		return
	}

	if filepath.Dir(path) != w.inboxDir || strings.HasPrefix(filepath.Base(path), ".") {
		return
	}
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename) {
		w.schedule()
	}
}

func (w *InboxWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.run)
}

func (w *InboxWatcher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	res := w.runner.SyncInbox(ctx, domain.TriggerInbox, w.token(ctx))
	if !res.Success {
		w.logger.Warn("inbox ingestion failed", zap.String("message", res.Message))
		return
	}
	w.logger.Info("inbox ingestion completed",
		zap.Int("count", res.Count),
		zap.Int("orphans", res.Orphans),
		zap.Int("failed", res.Failed))
}
