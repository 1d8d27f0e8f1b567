package workspace

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorkspace(t *testing.T, files map[string]string) *Workspace {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for p, content := range files {
		require.NoError(t, afero.WriteFile(fsys, p, []byte(content), 0o644))
	}
	ws, err := New(fsys, []ProjectEntry{
		{Name: "site", Root: "/work/site"},
		{Name: "theme", Root: "/work/site/themes/dark"},
	}, []string{"node_modules", ".git"})
	require.NoError(t, err)
	return ws
}

func collect(t *testing.T, p *Project, visit func(Resource) bool) []string {
	t.Helper()
	var seen []string
	require.NoError(t, p.Accept(func(r Resource) bool {
		seen = append(seen, r.Kind.String()+":"+r.FullPath())
		if visit != nil {
			return visit(r)
		}
		return true
	}))
	return seen
}

func TestProject_AcceptWalksTree(t *testing.T) {
	ws := newTestWorkspace(t, map[string]string{
		"/work/site/a.css":                  "a {}",
		"/work/site/css/b.css":              "b {}",
		"/work/site/node_modules/lib/x.css": "x {}",
		"/work/site/css/vendor/reset.css":   "",
		"/work/site/index.html":             "<html>",
	})
	p, ok := ws.Project("site")
	require.True(t, ok)

	assert.Equal(t, []string{
		"project:/site",
		"file:/site/a.css",
		"folder:/site/css",
		"file:/site/css/b.css",
		"folder:/site/css/vendor",
		"file:/site/css/vendor/reset.css",
		"file:/site/index.html",
	}, collect(t, p, nil))
}

func TestProject_AcceptSkipsRejectedFolder(t *testing.T) {
	ws := newTestWorkspace(t, map[string]string{
		"/work/site/a.css":      "a {}",
		"/work/site/skip/b.css": "b {}",
		"/work/site/keep/c.css": "c {}",
	})
	p, _ := ws.Project("site")

	seen := collect(t, p, func(r Resource) bool { return r.Path != "skip" })
	assert.Contains(t, seen, "folder:/site/skip")
	assert.NotContains(t, seen, "file:/site/skip/b.css")
	assert.Contains(t, seen, "file:/site/keep/c.css")
}

func TestProject_AcceptMissingRootFails(t *testing.T) {
	ws, err := New(afero.NewMemMapFs(), []ProjectEntry{{Name: "ghost", Root: "/nowhere"}}, nil)
	require.NoError(t, err)
	p, _ := ws.Project("ghost")
	assert.Error(t, p.Accept(func(Resource) bool { return true }))
}

func TestWorkspace_LookupAndLocate(t *testing.T) {
	ws := newTestWorkspace(t, map[string]string{
		"/work/site/css/a.css":             "a {}",
		"/work/site/themes/dark/theme.css": "t {}",
	})
	site, _ := ws.Project("site")

	res, ok := site.Lookup("css/a.css")
	require.True(t, ok)
	assert.Equal(t, Resource{Project: "site", Path: "css/a.css", Kind: File}, res)
	assert.Equal(t, "a.css", res.Name())

	res, ok = site.Lookup("css")
	require.True(t, ok)
	assert.Equal(t, Folder, res.Kind)

	_, ok = site.Lookup("missing.css")
	assert.False(t, ok)

	res, ok = ws.Locate("/work/site/themes/dark/theme.css")
	require.True(t, ok)
	assert.Equal(t, "/theme/theme.css", res.FullPath(), "deepest project root wins")

	res, ok = ws.Locate("/work/site/css/deleted.css")
	require.True(t, ok)
	assert.Equal(t, File, res.Kind)
	assert.Equal(t, "/site/css/deleted.css", res.FullPath())

	_, ok = ws.Locate("/elsewhere/x.css")
	assert.False(t, ok)
}

func TestNew_RejectsBadEntries(t *testing.T) {
	_, err := New(afero.NewMemMapFs(), []ProjectEntry{{Name: "a", Root: "/a"}, {Name: "a", Root: "/b"}}, nil)
	assert.Error(t, err)

	_, err = New(afero.NewMemMapFs(), []ProjectEntry{{Name: "a/b", Root: "/a"}}, nil)
	assert.Error(t, err)

	_, err = New(afero.NewMemMapFs(), nil, []string{"[unclosed"})
	assert.Error(t, err)
}

func TestProject_DescriptionRoundTrip(t *testing.T) {
	ws := newTestWorkspace(t, map[string]string{"/work/site/a.css": ""})
	p, _ := ws.Project("site")

	desc, err := p.Description()
	require.NoError(t, err)
	assert.Empty(t, desc.Natures)

	want := Description{
		Natures:  []string{"csslint.nature"},
		Builders: []string{"csslint.builder"},
		Charset:  "UTF-8",
		Charsets: map[string]string{"legacy/old.css": "ISO-8859-1"},
	}
	require.NoError(t, p.SetDescription(want))

	got, err := p.Description()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, got.HasNature("csslint.nature"))
	assert.True(t, got.HasBuilder("csslint.builder"))

	exists, err := afero.Exists(ws.FS(), "/work/site/"+DescriptionFile+".tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProject_MalformedDescription(t *testing.T) {
	ws := newTestWorkspace(t, map[string]string{"/work/site/" + DescriptionFile: "natures = ["})
	p, _ := ws.Project("site")
	_, err := p.Description()
	assert.Error(t, err)
}

func TestProject_ReadTextUsesDeclaredCharset(t *testing.T) {
	ws := newTestWorkspace(t, map[string]string{
		"/work/site/legacy/old.css":     "a { content: \"caf\xe9\"; }",
		"/work/site/modern/new.css":     "\ufeffa { content: \"café\"; }",
		"/work/site/" + DescriptionFile: "charset = \"UTF-8\"\n[charsets]\nlegacy = \"ISO-8859-1\"\n",
	})
	p, _ := ws.Project("site")

	cs, err := p.Charset("legacy/old.css")
	require.NoError(t, err)
	assert.Equal(t, "ISO-8859-1", cs)

	text, err := p.ReadText("legacy/old.css")
	require.NoError(t, err)
	assert.Equal(t, "a { content: \"café\"; }", text)

	text, err = p.ReadText("modern/new.css")
	require.NoError(t, err)
	assert.Equal(t, "a { content: \"café\"; }", text, "byte order mark must be stripped")
}

func TestProject_ReadTextUnknownCharset(t *testing.T) {
	ws := newTestWorkspace(t, map[string]string{
		"/work/site/a.css":              "a {}",
		"/work/site/" + DescriptionFile: "charset = \"klingon-8\"\n",
	})
	p, _ := ws.Project("site")
	_, err := p.ReadText("a.css")
	assert.Error(t, err)
}
