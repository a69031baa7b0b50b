package ml

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ModelWatcher reloads the classifier when its artifact changes on disk.
// The parent directory is watched because editors and atomic-rename
// deploys replace the file rather than writing it in place.
type ModelWatcher struct {
	classifier *Classifier
	watcher    *fsnotify.Watcher
	logger     *zap.Logger
	debounce   time.Duration
	stop       chan struct{}
}

func NewModelWatcher(classifier *Classifier, logger *zap.Logger) (*ModelWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(classifier.Path())); err != nil {
		watcher.Close()
		return nil, err
	}
	return &ModelWatcher{
		classifier: classifier,
		watcher:    watcher,
		logger:     logger,
		debounce:   500 * time.Millisecond,
		stop:       make(chan struct{}),
	}, nil
}

// Start blocks processing filesystem events until Stop is called. Run it
// in its own goroutine.
func (w *ModelWatcher) Start() {
	target := filepath.Clean(w.classifier.Path())
	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Debounce bursts of writes into one reload.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			if err := w.classifier.Reload(); err != nil {
				w.logger.Error("model reload failed, keeping previous model",
					zap.String("path", target), zap.Error(err))
				continue
			}
			w.logger.Info("model reloaded", zap.String("path", target))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("model watcher error", zap.Error(err))

		case <-w.stop:
			return
		}
	}
}

func (w *ModelWatcher) Stop() {
	close(w.stop)
	w.watcher.Close()
}
