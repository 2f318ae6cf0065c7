package api

import (
	"testing"
	"time"
)

func TestSignalWatcherStop(t *testing.T) {
	dir := t.TempDir()

	sw, err := NewSignalWatcher(dir)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer sw.Close()

	if sw.ShouldStop() {
		t.Fatal("expected no stop signal initially")
	}

	if err := sw.RequestStop(); err != nil {
		t.Fatalf("request stop: %v", err)
	}

	// The fsnotify event is asynchronous; poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	for !sw.ShouldStop() {
		if time.Now().After(deadline) {
			t.Fatal("stop signal never observed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSignalWatcherClear(t *testing.T) {
	dir := t.TempDir()

	sw, err := NewSignalWatcher(dir)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer sw.Close()

	if err := sw.RequestStop(); err != nil {
		t.Fatalf("request stop: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !sw.ShouldStop() {
		if time.Now().After(deadline) {
			t.Fatal("stop signal never observed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Let any trailing write event drain before clearing.
	time.Sleep(50 * time.Millisecond)

	sw.ClearSignals()
	if sw.ShouldStop() {
		t.Error("expected stop signal cleared")
	}
}
