package changeset

import (
	"os"
	"testing"
	"time"

	"csslint/internal/core/workspace"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProject(t *testing.T, files ...string) (*workspace.Project, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fsys, "/site/"+f, []byte("/* "+f+" */"), 0o644))
	}
	ws, err := workspace.New(fsys, []workspace.ProjectEntry{{Name: "site", Root: "/site"}}, nil)
	require.NoError(t, err)
	p, _ := ws.Project("site")
	return p, fsys
}

func collect(seq func(func(workspace.Resource) bool)) []string {
	var out []string
	for r := range seq {
		out = append(out, r.Path)
	}
	return out
}

func TestResolve_DeltaYieldsAddedAndChangedOnly(t *testing.T) {
	p, _ := newProject(t, "a.css", "b.css", "css/x.css", "untouched.css")

	plan := Resolve(p, Trigger{Kind: Incremental, Delta: &Delta{Entries: []Entry{
		{Path: "a.css", Kind: Added},
		{Path: "b.css", Kind: Changed},
		{Path: "c.css", Kind: Removed},
		{Path: "css", Kind: Changed},
		{Path: "ghost.css", Kind: Added},
	}}})

	assert.Equal(t, []string{"a.css", "b.css"}, collect(plan.Candidates))
	require.Len(t, plan.Cleared, 1)
	assert.Equal(t, "/site/c.css", plan.Cleared[0].FullPath())
	assert.True(t, plan.Cleared[0].IsFile())
}

func TestResolve_NilDeltaFallsBackToFull(t *testing.T) {
	p, _ := newProject(t, "a.css", "css/b.css", "index.html")

	full := collect(Resolve(p, Trigger{Kind: Full}).Candidates)
	incremental := Resolve(p, Trigger{Kind: Incremental})

	assert.Equal(t, []string{"a.css", "css/b.css", "index.html"}, full)
	assert.Equal(t, full, collect(incremental.Candidates))
	assert.Empty(t, incremental.Cleared)
}

func TestResolve_FullWithDeltaStillClearsRemoved(t *testing.T) {
	p, _ := newProject(t, "a.css")
	plan := Resolve(p, Trigger{Kind: Full, Delta: &Delta{Entries: []Entry{{Path: "gone.css", Kind: Removed}}}})

	assert.Equal(t, []string{"a.css"}, collect(plan.Candidates))
	require.Len(t, plan.Cleared, 1)
	assert.Equal(t, "gone.css", plan.Cleared[0].Path)
}

func TestResolve_CandidatesAreRestartable(t *testing.T) {
	p, fsys := newProject(t, "a.css", "b.css")
	plan := Resolve(p, Trigger{Kind: Full})

	first := collect(plan.Candidates)
	require.NoError(t, afero.WriteFile(fsys, "/site/c.css", []byte("c {}"), 0o644))
	second := collect(plan.Candidates)

	assert.Equal(t, []string{"a.css", "b.css"}, first)
	assert.Equal(t, []string{"a.css", "b.css", "c.css"}, second, "each range must walk the tree again")
}

func TestResolve_EarlyBreak(t *testing.T) {
	p, _ := newProject(t, "a.css", "b.css", "dir/c.css")
	var seen []string
	for r := range Resolve(p, Trigger{Kind: Full}).Candidates {
		seen = append(seen, r.Path)
		break
	}
	assert.Equal(t, []string{"a.css"}, seen)
}

func TestCaptureAndDiff(t *testing.T) {
	p, fsys := newProject(t, "a.css", "b.css", "c.css")

	before, err := Capture(p, nil)
	require.NoError(t, err)
	assert.Len(t, before.Files, 3)
	assert.Equal(t, "site", before.Project)

	require.NoError(t, afero.WriteFile(fsys, "/site/a.css", []byte("a { color: red; }"), 0o644))
	require.NoError(t, fsys.Remove("/site/c.css"))
	require.NoError(t, afero.WriteFile(fsys, "/site/d.css", []byte("d {}"), 0o644))
	later := time.Now().Add(time.Hour)
	require.NoError(t, fsys.Chtimes("/site/b.css", later, later))

	after, err := Capture(p, &before)
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Path: "a.css", Kind: Changed},
		{Path: "c.css", Kind: Removed},
		{Path: "d.css", Kind: Added},
	}, Diff(before, after).Entries, "a touched file with identical content is not a change")
}

func TestCapture_ReusesHashWhenUnchanged(t *testing.T) {
	p, _ := newProject(t, "a.css")
	snap, err := Capture(p, nil)
	require.NoError(t, err)

	// A planted hash survives because size and mtime match.
	state := snap.Files["a.css"]
	state.Hash = 42
	snap.Files["a.css"] = state

	again, err := Capture(p, &snap)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), again.Files["a.css"].Hash)
}

// deniedFs refuses to open one path, like a file without read permission.
type deniedFs struct {
	afero.Fs
	path string
}

func (d *deniedFs) Open(name string) (afero.File, error) {
	if name == d.path {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return d.Fs.Open(name)
}

func TestCapture_UnreadableFileIsRecordedNotFatal(t *testing.T) {
	fsys := &deniedFs{Fs: afero.NewMemMapFs(), path: "/site/secret.bin"}
	require.NoError(t, afero.WriteFile(fsys, "/site/a.css", []byte("a {}"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/site/secret.bin", []byte{0x1}, 0o600))
	ws, err := workspace.New(fsys, []workspace.ProjectEntry{{Name: "site", Root: "/site"}}, nil)
	require.NoError(t, err)
	p, _ := ws.Project("site")

	snap, err := Capture(p, nil)
	require.NoError(t, err)
	require.Len(t, snap.Files, 2)
	assert.True(t, snap.Files["secret.bin"].Unreadable)
	assert.False(t, snap.Files["a.css"].Unreadable)

	again, err := Capture(p, &snap)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Path: "secret.bin", Kind: Changed}}, Diff(snap, again).Entries,
		"an unreadable file stays a candidate until it can be read")

	fsys.path = ""
	readable, err := Capture(p, &again)
	require.NoError(t, err)
	assert.False(t, readable.Files["secret.bin"].Unreadable)
	assert.NotZero(t, readable.Files["secret.bin"].Hash)
	assert.Equal(t, []Entry{{Path: "secret.bin", Kind: Changed}}, Diff(again, readable).Entries)
	assert.Empty(t, Diff(readable, readable).Entries)
}

func TestFingerprint_IgnoresMapOrder(t *testing.T) {
	a := Fingerprint(map[string]string{"duplicate-properties": "true", "zero-units": "false"})
	b := Fingerprint(map[string]string{"zero-units": "false", "duplicate-properties": "true"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, Fingerprint(map[string]string{"duplicate-properties": "false", "zero-units": "false"}))
	assert.NotEqual(t,
		Fingerprint(map[string]string{"ab": "c"}),
		Fingerprint(map[string]string{"a": "bc"}))
}

func TestDiff_EmptySnapshots(t *testing.T) {
	assert.Empty(t, Diff(Snapshot{}, Snapshot{}).Entries)
}
