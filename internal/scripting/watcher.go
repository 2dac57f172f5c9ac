package scripting

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reports changes to .lua files under the scripts directory.
// It never touches the Engine; the game loop reloads when it sees a signal.
type Watcher struct {
	fw      *fsnotify.Watcher
	changed chan struct{}
	log     *zap.Logger
}

// NewWatcher watches dir and its script subdirectories.
func NewWatcher(dir string, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dirs := []string{dir}
	for _, sub := range scriptDirs {
		dirs = append(dirs, filepath.Join(dir, sub))
	}
	for _, d := range dirs {
		if _, err := os.Stat(d); err != nil {
			continue
		}
		if err := fw.Add(d); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return &Watcher{fw: fw, changed: make(chan struct{}, 1), log: log}, nil
}

// Changed delivers at most one pending signal; bursts of writes coalesce.
func (w *Watcher) Changed() <-chan struct{} { return w.changed }

// Run forwards file events until ctx ends.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fw.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".lua") {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.log.Debug("腳本變更", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			select {
			case w.changed <- struct{}{}:
			default:
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("腳本監看錯誤", zap.Error(err))
		}
	}
}
