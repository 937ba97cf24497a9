package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"wellness-quiz/internal/domain"
)

// FileLoader reads question definitions from a YAML file:
//
//	questions:
//	  - key: age
//	    kind: numeric
//	    title: How old are you?
type FileLoader struct {
	path string
}

func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

type catalogFile struct {
	Questions []domain.Question `yaml:"questions"`
}

func (l *FileLoader) LoadCatalog(_ context.Context) (*Catalog, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", l.path, err)
	}
	return New(file.Questions)
}
