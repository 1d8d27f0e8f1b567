package prefs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStore_DefaultsAndInstanceScope(t *testing.T) {
	s := NewMemory(map[string]string{"box-model": "true"})

	if v, ok := s.Get("box-model"); !ok || v != "true" {
		t.Fatalf("expected default box-model=true, got %q ok=%v", v, ok)
	}
	if _, ok := s.Get("important"); ok {
		t.Fatal("expected unset key to be absent")
	}

	if err := s.Set("box-model", "false"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Get("box-model"); v != "false" {
		t.Fatalf("expected instance value to win, got %q", v)
	}
	if s.IsDefault("box-model") {
		t.Fatal("expected box-model to be instance-scoped after Set")
	}

	if err := s.Unset("box-model"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Get("box-model"); v != "true" {
		t.Fatalf("expected default to apply after Unset, got %q", v)
	}
}

func TestStore_PublishesChanges(t *testing.T) {
	s := NewMemory(nil)
	ch, cancel := s.Subscribe(4)
	defer cancel()

	if err := s.Set("important", "true"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("important", "true"); err != nil {
		t.Fatal(err)
	}
	if err := s.Unset("important"); err != nil {
		t.Fatal(err)
	}

	first := <-ch
	if first.Key != "important" || first.Value != "true" || first.Removed {
		t.Fatalf("unexpected first change %+v", first)
	}
	second := <-ch
	if second.Key != "important" || !second.Removed {
		t.Fatalf("expected removal change, got %+v", second)
	}
	select {
	case extra := <-ch:
		t.Fatalf("expected no change for identical Set, got %+v", extra)
	default:
	}
}

func TestStore_FullSubscriberDoesNotBlock(t *testing.T) {
	s := NewMemory(nil)
	ch, cancel := s.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			_ = s.Set("ids", strings.Repeat("x", i+1))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Set blocked on a full subscriber")
	}
	if len(ch) != 1 {
		t.Fatalf("expected one coalesced change buffered, got %d", len(ch))
	}
}

func TestStore_PersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "preferences.toml")
	s, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(KeyExcludePathRegexes, "/site/vendor/.*\n.*\\.min\\.css"); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := reopened.Get(KeyExcludePathRegexes); v != "/site/vendor/.*\n.*\\.min\\.css" {
		t.Fatalf("expected exclusion list to roundtrip, got %q", v)
	}

	ch, cancel := s.Subscribe(4)
	defer cancel()
	if err := reopened.Set("ids", "true"); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(); err != nil {
		t.Fatal(err)
	}
	select {
	case change := <-ch:
		if change.Key != "ids" || change.Value != "true" {
			t.Fatalf("unexpected reload change %+v", change)
		}
	default:
		t.Fatal("expected reload to publish the external change")
	}
}

func TestStore_OpenRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.toml")
	if err := os.WriteFile(path, []byte("[preferences\nbroken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path, nil); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestStore_WatchReloadsExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.toml")
	s, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("floats", "false"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Watch(ctx) }()
	time.Sleep(100 * time.Millisecond)

	ch, unsubscribe := s.Subscribe(4)
	defer unsubscribe()

	if err := os.WriteFile(path, []byte("[preferences]\nfloats = \"true\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case change := <-ch:
		if change.Key != "floats" || change.Value != "true" {
			t.Fatalf("unexpected change %+v", change)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload after external edit")
	}
}
