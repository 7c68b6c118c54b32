package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/xckit/langmeta"
)

// FileName is the project configuration file name.
const FileName = ".xckit.yaml"

// File is the .xckit.yaml structure. Every field is optional.
type File struct {
	// Languages are the target languages, in catalog tag form.
	Languages []string `yaml:"languages,omitempty"`
	// Paths are catalogs or directories to process when none are given on
	// the command line. Relative paths are resolved against the file.
	Paths []string `yaml:"paths,omitempty"`

	Provider string        `yaml:"provider,omitempty"`
	Model    string        `yaml:"model,omitempty"`
	BaseURL  string        `yaml:"base_url,omitempty"`
	Proxy    string        `yaml:"proxy,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`

	// MaxRetries and CheckpointInterval are pointers so that an explicit 0
	// can be told apart from an absent key.
	MaxRetries         *int `yaml:"max_retries,omitempty"`
	CheckpointInterval *int `yaml:"checkpoint_interval,omitempty"`

	Overwrite      bool `yaml:"overwrite,omitempty"`
	SetNeedsReview bool `yaml:"set_needs_review,omitempty"`
}

// LoadFile loads and validates .xckit.yaml from rootDir.
// Returns nil, nil if the file does not exist.
func LoadFile(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	for i, lang := range f.Languages {
		f.Languages[i] = langmeta.Canonical(lang)
	}
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}
	for i, p := range f.Paths {
		if !filepath.IsAbs(p) {
			f.Paths[i] = filepath.Join(absRoot, p)
		}
	}
	return &f, nil
}

func (f *File) validate() error {
	for _, lang := range f.Languages {
		if err := langmeta.Validate(lang); err != nil {
			return err
		}
	}
	if f.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if f.CheckpointInterval != nil && *f.CheckpointInterval < 0 {
		return fmt.Errorf("checkpoint_interval must not be negative")
	}
	return nil
}
