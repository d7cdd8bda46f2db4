package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// FileBackend keeps each option group in its own YAML file under dir.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

func (b *FileBackend) path(name string) string {
	return filepath.Join(b.dir, name+".yaml")
}

func (b *FileBackend) Load(_ context.Context, name string) (map[string]string, error) {
	data, err := os.ReadFile(b.path(name))
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read options file for %s", name)
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal options file for %s", name)
	}
	return values, nil
}

// Save replaces the group file through a rename so readers never observe a partial write.
func (b *FileBackend) Save(_ context.Context, name string, values map[string]string) error {
	if err := os.MkdirAll(b.dir, 0700); err != nil {
		return errors.Wrap(err, "failed to create options directory")
	}

	data, err := yaml.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "failed to marshal options")
	}

	tmp, err := os.CreateTemp(b.dir, name+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temp options file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write temp options file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close temp options file")
	}

	if err := os.Rename(tmp.Name(), b.path(name)); err != nil {
		return errors.Wrap(err, "failed to replace options file")
	}
	return nil
}
