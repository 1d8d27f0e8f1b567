// Package prefs is the preference source scoped to this tool: a default
// scope seeded at activation and an instance scope persisted as TOML.
package prefs

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// KeyExcludePathRegexes holds the newline-delimited exclusion patterns.
const KeyExcludePathRegexes = "exclude_path_regexes"

// Change reports that the effective value of Key changed.
type Change struct {
	Key     string
	Value   string
	Removed bool
}

// Source is the read side consumed by the engine handle and the exclusion
// matcher.
type Source interface {
	Get(key string) (string, bool)
}

type fileFormat struct {
	Preferences map[string]string `toml:"preferences"`
}

type Store struct {
	path string

	mu       sync.RWMutex
	defaults map[string]string
	values   map[string]string

	subsMu sync.Mutex
	subs   map[int]chan Change
	nextID int
}

var _ Source = (*Store)(nil)

// NewMemory returns a store that never touches disk.
func NewMemory(defaults map[string]string) *Store {
	return &Store{
		defaults: copyMap(defaults),
		values:   make(map[string]string),
		subs:     make(map[int]chan Change),
	}
}

// Open loads the instance scope from path. A missing file is an empty scope.
func Open(path string, defaults map[string]string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("preferences path must not be empty")
	}
	s := NewMemory(defaults)
	s.path = filepath.Clean(cleanPath)

	values, err := readFile(s.path)
	if err != nil {
		return nil, err
	}
	s.values = values
	return s, nil
}

// Path returns the backing file, or "" for memory stores.
func (s *Store) Path() string {
	return s.path
}

// Get resolves key against the instance scope, then the defaults.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupLocked(key)
}

func (s *Store) lookupLocked(key string) (string, bool) {
	if v, ok := s.values[key]; ok {
		return v, true
	}
	v, ok := s.defaults[key]
	return v, ok
}

// Entries returns every effective key/value pair.
func (s *Store) Entries() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := copyMap(s.defaults)
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// IsDefault reports whether key currently resolves from the default scope.
func (s *Store) IsDefault(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return !ok
}

// Set stores value in the instance scope, persists it and notifies
// subscribers when the effective value changed.
func (s *Store) Set(key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("preference key must not be empty")
	}

	s.mu.Lock()
	before, hadBefore := s.lookupLocked(key)
	prev, hadPrev := s.values[key]
	s.values[key] = value
	if err := s.persistLocked(); err != nil {
		if hadPrev {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	if !hadBefore || before != value {
		s.publish(Change{Key: key, Value: value})
	}
	return nil
}

// Unset removes key from the instance scope; the default, if any, applies
// again.
func (s *Store) Unset(key string) error {
	s.mu.Lock()
	prev, ok := s.values[key]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.values, key)
	if err := s.persistLocked(); err != nil {
		s.values[key] = prev
		s.mu.Unlock()
		return err
	}
	after, stillSet := s.lookupLocked(key)
	s.mu.Unlock()

	switch {
	case !stillSet:
		s.publish(Change{Key: key, Removed: true})
	case after != prev:
		s.publish(Change{Key: key, Value: after})
	}
	return nil
}

// Reload re-reads the backing file and publishes one change per key whose
// effective value differs.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	values, err := readFile(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	before := s.effectiveLocked()
	s.values = values
	after := s.effectiveLocked()
	s.mu.Unlock()

	for _, change := range diff(before, after) {
		s.publish(change)
	}
	return nil
}

func (s *Store) effectiveLocked() map[string]string {
	out := copyMap(s.defaults)
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Subscribe registers a change listener. The returned cancel function
// unregisters and closes the channel.
func (s *Store) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Change, buffer)

	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) publish(change Change) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- change:
		default:
			// A full buffer still holds an undelivered change, and every
			// consumer reacts to any change the same way.
			slog.Debug("preference change coalesced", "key", change.Key)
		}
	}
}

func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(fileFormat{Preferences: s.values}); err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	return writeAtomic(s.path, buf.Bytes())
}

func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("read preferences %q: %w", path, err)
	}
	var f fileFormat
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("decode preferences %q: %w", path, err)
	}
	if f.Preferences == nil {
		f.Preferences = make(map[string]string)
	}
	return f.Preferences, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create preferences directory %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".prefs-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp preferences file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp preferences file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp preferences file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace preferences file %q: %w", path, err)
	}
	return nil
}

func diff(before, after map[string]string) []Change {
	changes := make([]Change, 0)
	for k, v := range after {
		if old, ok := before[k]; !ok || old != v {
			changes = append(changes, Change{Key: k, Value: v})
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			changes = append(changes, Change{Key: k, Removed: true})
		}
	}
	return changes
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
