// Package models loads model weights and assembles the default model set.
package models

import (
	"fmt"
	"os"
	"path/filepath"
)

// Loader returns model bytes for a logical path such as "fd/retina50.onnx"
type Loader interface {
	Load(path string) ([]byte, error)
}

// DiskLoader reads models below Root
type DiskLoader struct {
	Root string
}

// Load reads the file at Root/path
func (l DiskLoader) Load(path string) ([]byte, error) {
	full := filepath.Join(l.Root, filepath.FromSlash(path))
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", full, err)
	}
	return data, nil
}

// Paths holds the logical path of every weighted model
type Paths struct {
	Detector  string `yaml:"detector"`
	Landmarks string `yaml:"landmarks"`
	Indexer   string `yaml:"indexer"`
	GenderAge string `yaml:"gender_age"`
	Mask      string `yaml:"mask"`
}

// DefaultPaths returns the layout of the published model bundle
func DefaultPaths() Paths {
	return Paths{
		Detector:  "fd/retina50.onnx",
		Landmarks: "fl/insight_106_landmarks.onnx",
		Indexer:   "fi/arcface50.onnx",
		GenderAge: "gac/insight_gender_age.onnx",
		Mask:      "mc/mask1.onnx",
	}
}
