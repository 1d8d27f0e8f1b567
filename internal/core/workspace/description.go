package workspace

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
)

// DescriptionFile is the per-project metadata file at the project root.
const DescriptionFile = ".csslintproject"

// Description is the project metadata: participation natures, build
// commands and declared charsets.
type Description struct {
	Natures  []string          `toml:"natures"`
	Builders []string          `toml:"builders"`
	Charset  string            `toml:"charset,omitempty"`
	Charsets map[string]string `toml:"charsets,omitempty"`
}

func (d Description) HasNature(id string) bool {
	for _, n := range d.Natures {
		if n == id {
			return true
		}
	}
	return false
}

func (d Description) HasBuilder(id string) bool {
	for _, b := range d.Builders {
		if b == id {
			return true
		}
	}
	return false
}

// Description reads the project metadata. A missing file is an empty
// description.
func (p *Project) Description() (Description, error) {
	var desc Description
	data, err := afero.ReadFile(p.fs, filepath.Join(p.root, DescriptionFile))
	if err != nil {
		if os.IsNotExist(err) {
			return desc, nil
		}
		return desc, fmt.Errorf("read project description %q: %w", p.name, err)
	}
	if _, err := toml.Decode(string(data), &desc); err != nil {
		return desc, fmt.Errorf("decode project description %q: %w", p.name, err)
	}
	return desc, nil
}

// SetDescription replaces the project metadata through a temp file and
// rename, so readers never see a partial description.
func (p *Project) SetDescription(desc Description) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(desc); err != nil {
		return fmt.Errorf("encode project description %q: %w", p.name, err)
	}
	target := filepath.Join(p.root, DescriptionFile)
	tmp := target + ".tmp"
	if err := afero.WriteFile(p.fs, tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write project description %q: %w", p.name, err)
	}
	if err := p.fs.Rename(tmp, target); err != nil {
		_ = p.fs.Remove(tmp)
		return fmt.Errorf("replace project description %q: %w", p.name, err)
	}
	return nil
}
