// Package buildstate keeps the last successful build snapshot of each
// project as a msgpack file.
package buildstate

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"csslint/internal/core/changeset"

	"github.com/spf13/afero"
	"github.com/vmihailenco/msgpack/v5"
)

// SchemaVersion tags every state file; other versions are ignored.
const SchemaVersion = 1

type envelope struct {
	Version  int                `msgpack:"v"`
	Snapshot changeset.Snapshot `msgpack:"snapshot"`
}

type Store struct {
	fs  afero.Fs
	dir string
}

func New(fsys afero.Fs, dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("build state directory must not be empty")
	}
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create build state directory %q: %w", dir, err)
	}
	return &Store{fs: fsys, dir: filepath.Clean(dir)}, nil
}

func (s *Store) file(project string) string {
	return filepath.Join(s.dir, project+".msgpack")
}

// Load returns the stored snapshot, or nil when none is usable. An
// unreadable or foreign-version file counts as absent.
func (s *Store) Load(project string) *changeset.Snapshot {
	data, err := afero.ReadFile(s.fs, s.file(project))
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read build state", "project", project, "error", err)
		}
		return nil
	}
	var env envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		slog.Warn("discarding corrupt build state", "project", project, "error", err)
		return nil
	}
	if env.Version != SchemaVersion {
		slog.Warn("discarding build state with unsupported version", "project", project, "version", env.Version)
		return nil
	}
	if env.Snapshot.Files == nil {
		env.Snapshot.Files = make(map[string]changeset.FileState)
	}
	return &env.Snapshot
}

// Save replaces the project's snapshot through a temp file and rename.
func (s *Store) Save(snap changeset.Snapshot) error {
	data, err := msgpack.Marshal(envelope{Version: SchemaVersion, Snapshot: snap})
	if err != nil {
		return fmt.Errorf("encode build state %q: %w", snap.Project, err)
	}
	target := s.file(snap.Project)
	tmp := target + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write build state %q: %w", snap.Project, err)
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace build state %q: %w", snap.Project, err)
	}
	return nil
}

// Forget drops the project's snapshot so the next build runs in full.
func (s *Store) Forget(project string) error {
	err := s.fs.Remove(s.file(project))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove build state %q: %w", project, err)
	}
	return nil
}
