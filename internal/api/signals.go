package api

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// SignalWatcher handles out-of-band control of a running research session
// via the .kubescout/signals directory. Touching a "stop" file there asks
// the dispatcher to finish the current task and halt.
type SignalWatcher struct {
	signalsDir string

	mu         sync.RWMutex
	stopSignal bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewSignalWatcher creates a signal watcher rooted at baseDir.
func NewSignalWatcher(baseDir string) (*SignalWatcher, error) {
	signalsDir := filepath.Join(baseDir, "signals")
	if err := os.MkdirAll(signalsDir, 0755); err != nil {
		return nil, err
	}

	sw := &SignalWatcher{
		signalsDir: signalsDir,
		done:       make(chan struct{}),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// Continue without watcher; ShouldStop falls back to polling.
		return sw, nil
	}
	if err := watcher.Add(signalsDir); err != nil {
		watcher.Close()
		return sw, nil
	}
	sw.watcher = watcher

	go sw.watch()

	return sw, nil
}

func (sw *SignalWatcher) watch() {
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) == "stop" && event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				sw.mu.Lock()
				sw.stopSignal = true
				sw.mu.Unlock()
			}
		case <-sw.watcher.Errors:
		case <-sw.done:
			return
		}
	}
}

// ShouldStop reports whether a stop has been requested. When the fsnotify
// watcher is unavailable it polls the signal file directly.
func (sw *SignalWatcher) ShouldStop() bool {
	sw.mu.RLock()
	stopped := sw.stopSignal
	sw.mu.RUnlock()
	if stopped {
		return true
	}

	if sw.watcher == nil {
		if _, err := os.Stat(filepath.Join(sw.signalsDir, "stop")); err == nil {
			sw.mu.Lock()
			sw.stopSignal = true
			sw.mu.Unlock()
			return true
		}
	}
	return false
}

// RequestStop writes the stop signal file, for in-process callers.
func (sw *SignalWatcher) RequestStop() error {
	return os.WriteFile(filepath.Join(sw.signalsDir, "stop"), []byte("stop"), 0644)
}

// ClearSignals removes any pending signal files and resets state.
func (sw *SignalWatcher) ClearSignals() {
	os.Remove(filepath.Join(sw.signalsDir, "stop"))
	sw.mu.Lock()
	sw.stopSignal = false
	sw.mu.Unlock()
}

// Close stops the watcher.
func (sw *SignalWatcher) Close() error {
	close(sw.done)
	if sw.watcher != nil {
		return sw.watcher.Close()
	}
	return nil
}
