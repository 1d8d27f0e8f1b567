package changeset

import (
	"log/slog"
	"sort"
	"time"

	"csslint/internal/core/workspace"
	"csslint/internal/shared/util"

	"github.com/cespare/xxhash/v2"
)

// FileState fingerprints one file.
type FileState struct {
	Size    int64  `msgpack:"size"`
	ModTime int64  `msgpack:"mtime"`
	Hash    uint64 `msgpack:"hash"`

	// Unreadable marks a file whose content could not be hashed. Diff
	// reports it as changed until a later capture reads it.
	Unreadable bool `msgpack:"unreadable,omitempty"`
}

// Snapshot is the file inventory of a project after a successful build.
type Snapshot struct {
	Project string               `msgpack:"project"`
	TakenAt time.Time            `msgpack:"taken_at"`
	Files   map[string]FileState `msgpack:"files"`

	// Preferences fingerprints the preference entries the build ran under.
	Preferences uint64 `msgpack:"preferences"`
}

// Fingerprint hashes preference entries independently of map order.
func Fingerprint(entries map[string]string) uint64 {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	d := xxhash.New()
	for _, k := range keys {
		_, _ = d.WriteString(k)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(entries[k])
		_, _ = d.WriteString("\x00")
	}
	return d.Sum64()
}

// Capture fingerprints every file of project. Content is hashed again only
// when size or modification time differ from prev. A file that cannot be read
// is logged and recorded as Unreadable; only a failure to walk the project
// root is returned.
func Capture(project *workspace.Project, prev *Snapshot) (Snapshot, error) {
	snap := Snapshot{
		Project: project.Name(),
		TakenAt: time.Now().UTC(),
		Files:   make(map[string]FileState),
	}
	err := project.Accept(func(r workspace.Resource) bool {
		if !r.IsFile() {
			return true
		}
		info, err := project.Stat(r.Path)
		if err != nil {
			slog.Debug("file vanished during snapshot", "path", r.FullPath(), "error", err)
			return true
		}
		state := FileState{Size: info.Size(), ModTime: info.ModTime().UnixNano()}
		if prev != nil {
			old, ok := prev.Files[r.Path]
			if ok && !old.Unreadable && old.Size == state.Size && old.ModTime == state.ModTime {
				state.Hash = old.Hash
				snap.Files[r.Path] = state
				return true
			}
		}
		data, err := project.ReadFile(r.Path)
		if err != nil {
			slog.Warn("failed to read file for snapshot", "path", r.FullPath(), "error", err)
			state.Unreadable = true
			snap.Files[r.Path] = state
			return true
		}
		state.Hash = xxhash.Sum64(data)
		snap.Files[r.Path] = state
		return true
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Diff reports, in path order, files added, changed (different size or
// content, or unreadable in either snapshot) and removed between prev and
// curr.
func Diff(prev, curr Snapshot) Delta {
	paths := make(map[string]struct{}, len(prev.Files)+len(curr.Files))
	for p := range prev.Files {
		paths[p] = struct{}{}
	}
	for p := range curr.Files {
		paths[p] = struct{}{}
	}
	var delta Delta
	for _, p := range util.SortedStringKeys(paths) {
		before, had := prev.Files[p]
		after, has := curr.Files[p]
		switch {
		case !had:
			delta.Entries = append(delta.Entries, Entry{Path: p, Kind: Added})
		case !has:
			delta.Entries = append(delta.Entries, Entry{Path: p, Kind: Removed})
		case before.Unreadable || after.Unreadable || before.Size != after.Size || before.Hash != after.Hash:
			delta.Entries = append(delta.Entries, Entry{Path: p, Kind: Changed})
		}
	}
	return delta
}
