package workspace

import (
	"path"
)

type Kind int

const (
	File Kind = iota
	Folder
	ProjectRoot
)

func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Folder:
		return "folder"
	case ProjectRoot:
		return "project"
	default:
		return "unknown"
	}
}

// Resource addresses a node of a project tree. Path is slash separated and
// relative to the project root; the root itself has an empty Path.
type Resource struct {
	Project string
	Path    string
	Kind    Kind
}

func (r Resource) IsFile() bool {
	return r.Kind == File
}

// Name is the last path element, or the project name for the root.
func (r Resource) Name() string {
	if r.Path == "" {
		return r.Project
	}
	return path.Base(r.Path)
}

// FullPath is the workspace form "/<project>/<path>".
func (r Resource) FullPath() string {
	if r.Path == "" {
		return "/" + r.Project
	}
	return "/" + r.Project + "/" + r.Path
}

func (r Resource) String() string {
	return r.FullPath()
}
