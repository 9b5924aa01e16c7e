package beatgrid

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/ossrs/go-oryx-lib/errors"
	"gopkg.in/yaml.v3"
)

// ReadProject reads a project, trying to parse it both as json and yaml.
func ReadProject(r io.Reader) (Project, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Project{}, errors.Wrapf(err, "read project")
	}
	var p Project
	if errJSON := json.Unmarshal(b, &p); errJSON != nil {
		p = Project{}
		if errYaml := yaml.Unmarshal(b, &p); errYaml != nil {
			return Project{}, errors.Errorf("project could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	return p, nil
}

// ReadProjectFile reads the project stored at path.
func ReadProjectFile(path string) (Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return Project{}, errors.Wrapf(err, "open %v", path)
	}
	defer f.Close()
	p, err := ReadProject(f)
	if err != nil {
		return Project{}, errors.Wrapf(err, "parse %v", path)
	}
	return p, nil
}

// WriteProject writes the project as indented json, or as yaml if asYaml is
// set.
func WriteProject(w io.Writer, p Project, asYaml bool) error {
	var contents []byte
	var err error
	if asYaml {
		contents, err = yaml.Marshal(p)
	} else {
		contents, err = json.MarshalIndent(p, "", "  ")
	}
	if err != nil {
		return errors.Wrapf(err, "marshal project")
	}
	if _, err := w.Write(contents); err != nil {
		return errors.Wrapf(err, "write project")
	}
	return nil
}

// WriteProjectFile writes the project to path; files ending in .yml or .yaml
// are written as yaml, everything else as json.
func WriteProjectFile(path string, p Project) error {
	ext := filepath.Ext(path)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %v", path)
	}
	if err := WriteProject(f, p, ext == ".yml" || ext == ".yaml"); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %v", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %v", path)
	}
	return nil
}
