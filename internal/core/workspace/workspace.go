// Package workspace is the resource tree the builder walks: named projects
// rooted in an afero file system.
package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"csslint/internal/shared/util"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"
)

// ProjectEntry declares one project root.
type ProjectEntry struct {
	Name string
	Root string
}

type Workspace struct {
	fs          afero.Fs
	projects    map[string]*Project
	order       []string
	excludeDirs []glob.Glob
}

// New builds a workspace over fsys. excludeDirs are globs matched against
// directory base names; matching directories are never visited.
func New(fsys afero.Fs, entries []ProjectEntry, excludeDirs []string) (*Workspace, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	compiled := make([]glob.Glob, 0, len(excludeDirs))
	for _, pattern := range excludeDirs {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile exclude dir pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, g)
	}

	ws := &Workspace{
		fs:          fsys,
		projects:    make(map[string]*Project, len(entries)),
		excludeDirs: compiled,
	}
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" || strings.ContainsAny(name, `/\`) {
			return nil, fmt.Errorf("invalid project name %q", e.Name)
		}
		if _, dup := ws.projects[name]; dup {
			return nil, fmt.Errorf("duplicate project name %q", name)
		}
		ws.projects[name] = &Project{ws: ws, fs: fsys, name: name, root: filepath.Clean(e.Root)}
		ws.order = append(ws.order, name)
	}
	sort.Strings(ws.order)
	return ws, nil
}

func (w *Workspace) FS() afero.Fs {
	return w.fs
}

// Projects returns the projects sorted by name.
func (w *Workspace) Projects() []*Project {
	out := make([]*Project, 0, len(w.order))
	for _, name := range w.order {
		out = append(out, w.projects[name])
	}
	return out
}

func (w *Workspace) Project(name string) (*Project, bool) {
	p, ok := w.projects[name]
	return p, ok
}

// Locate maps a file system path to the resource of the project that
// contains it. Roots nested in other roots resolve to the deepest project.
func (w *Workspace) Locate(fsPath string) (Resource, bool) {
	clean := filepath.Clean(fsPath)
	var best *Project
	for _, name := range w.order {
		p := w.projects[name]
		if clean != p.root && !strings.HasPrefix(clean, p.root+string(filepath.Separator)) {
			continue
		}
		if best == nil || len(p.root) > len(best.root) {
			best = p
		}
	}
	if best == nil {
		return Resource{}, false
	}
	rel, err := filepath.Rel(best.root, clean)
	if err != nil {
		return Resource{}, false
	}
	rel = util.NormalizeRelPath(filepath.ToSlash(rel))
	if rel == "" {
		return Resource{Project: best.name, Kind: ProjectRoot}, true
	}
	if res, ok := best.Lookup(rel); ok {
		return res, true
	}
	// Gone from disk: report it as a file so callers can clear its state.
	return Resource{Project: best.name, Path: rel, Kind: File}, true
}

func (w *Workspace) excludedDir(name string) bool {
	for _, g := range w.excludeDirs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Project is one named root in the workspace.
type Project struct {
	ws   *Workspace
	fs   afero.Fs
	name string
	root string
}

func (p *Project) Name() string { return p.name }
func (p *Project) Root() string { return p.root }

func (p *Project) Resource() Resource {
	return Resource{Project: p.name, Kind: ProjectRoot}
}

func (p *Project) abs(rel string) string {
	return filepath.Join(p.root, filepath.FromSlash(util.NormalizeRelPath(rel)))
}

// Accept walks the project tree depth-first in lexical order, starting with
// the project root. Returning false for a folder skips its members.
// Directories matching the workspace exclusions are never visited.
func (p *Project) Accept(visit func(Resource) bool) error {
	return afero.Walk(p.fs, p.root, func(fsPath string, info fs.FileInfo, err error) error {
		if err != nil {
			if fsPath == p.root {
				return fmt.Errorf("walk project %q: %w", p.name, err)
			}
			return nil
		}
		rel, relErr := filepath.Rel(p.root, fsPath)
		if relErr != nil {
			return nil
		}
		rel = util.NormalizeRelPath(filepath.ToSlash(rel))

		if rel == "" {
			if !visit(p.Resource()) {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			if p.ws.excludedDir(info.Name()) {
				return filepath.SkipDir
			}
			if !visit(Resource{Project: p.name, Path: rel, Kind: Folder}) {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		visit(Resource{Project: p.name, Path: rel, Kind: File})
		return nil
	})
}

// Lookup resolves rel to an existing resource.
func (p *Project) Lookup(rel string) (Resource, bool) {
	rel = util.NormalizeRelPath(rel)
	if rel == "" {
		return p.Resource(), true
	}
	info, err := p.fs.Stat(p.abs(rel))
	if err != nil {
		return Resource{}, false
	}
	kind := File
	if info.IsDir() {
		kind = Folder
	}
	return Resource{Project: p.name, Path: rel, Kind: kind}, true
}

func (p *Project) Stat(rel string) (os.FileInfo, error) {
	return p.fs.Stat(p.abs(rel))
}

// ReadFile returns the raw bytes of a project file.
func (p *Project) ReadFile(rel string) ([]byte, error) {
	return afero.ReadFile(p.fs, p.abs(rel))
}

// ReadText reads a file and decodes it with its declared charset.
func (p *Project) ReadText(rel string) (string, error) {
	data, err := p.ReadFile(rel)
	if err != nil {
		return "", err
	}
	charset, err := p.Charset(rel)
	if err != nil {
		return "", err
	}
	return decode(data, charset)
}

// Charset resolves the declared charset of rel: the most specific
// [charsets] entry for the file or one of its folders, then the project
// charset, then UTF-8.
func (p *Project) Charset(rel string) (string, error) {
	desc, err := p.Description()
	if err != nil {
		return "", err
	}
	rel = util.NormalizeRelPath(rel)
	for dir := rel; dir != "." && dir != ""; dir = path.Dir(dir) {
		if cs, ok := desc.Charsets[dir]; ok && strings.TrimSpace(cs) != "" {
			return cs, nil
		}
	}
	if strings.TrimSpace(desc.Charset) != "" {
		return desc.Charset, nil
	}
	return DefaultCharset, nil
}
