package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestNewWatcher_RejectsNilCallback(t *testing.T) {
	w, err := NewWatcher(100*time.Millisecond, nil, nil, nil)
	if err == nil {
		t.Fatal("expected error for nil callback")
	}
	if !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("expected os.ErrInvalid, got %v", err)
	}
	if w != nil {
		t.Fatal("expected nil watcher when callback is invalid")
	}
}

func TestNewWatcher_RejectsBadGlob(t *testing.T) {
	if _, err := NewWatcher(time.Millisecond, []string{"[unclosed"}, nil, func([]string) {}); err == nil {
		t.Fatal("expected error for invalid directory glob")
	}
}

func waitFor(t *testing.T, changed <-chan []string, want string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case paths := <-changed:
			if slices.Contains(paths, want) {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for change on %s", want)
		}
	}
}

func TestWatcher(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, "node_modules"), 0o755); err != nil {
		t.Fatal(err)
	}

	changedFiles := make(chan []string, 8)
	w, err := NewWatcher(50*time.Millisecond, []string{"node_modules"}, []string{"*.min.css"}, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	testFile := filepath.Join(tmpDir, "site.css")
	if err := os.WriteFile(testFile, []byte("a {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, testFile)

	for _, name := range []string{"notes.txt", "site.min.css", filepath.Join("node_modules", "lib.css")} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	quiet := time.After(300 * time.Millisecond)
	for waiting := true; waiting; {
		select {
		case paths := <-changedFiles:
			for _, p := range paths {
				if p != testFile {
					t.Errorf("filtered file triggered a change: %s", p)
				}
			}
		case <-quiet:
			waiting = false
		}
	}

	// New directory should be recursively watched after create.
	subdir := filepath.Join(tmpDir, "themes")
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	subFile := filepath.Join(subdir, "dark.css")
	if err := os.WriteFile(subFile, []byte("body {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, subFile)
}

func TestWatcher_RenameTriggersChange(t *testing.T) {
	tmpDir := t.TempDir()

	changedFiles := make(chan []string, 8)
	w, err := NewWatcher(50*time.Millisecond, nil, nil, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	oldPath := filepath.Join(tmpDir, "old.css")
	newPath := filepath.Join(tmpDir, "new.css")
	if err := os.WriteFile(oldPath, []byte("a {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, newPath)
}

func TestWatcher_Filters(t *testing.T) {
	w, err := NewWatcher(10*time.Millisecond, nil, []string{"*.min.css"}, func([]string) {})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if w.shouldExcludeFile("/p/site.css") {
		t.Fatal("expected .css to be included by default")
	}
	if !w.shouldExcludeFile("/p/app.js") {
		t.Fatal("expected .js to be excluded by default")
	}
	if !w.shouldExcludeFile("/p/site.min.css") {
		t.Fatal("expected file glob to exclude minified sheets")
	}

	w.SetFilters([]string{".CSS"}, []string{".csslintproject"})
	if w.shouldExcludeFile("/p/.csslintproject") {
		t.Fatal("expected description file to be included via filename filter")
	}
	if w.shouldExcludeFile("/p/LEGACY.CSS") {
		t.Fatal("extension filter must be case-insensitive")
	}
}
