// Package prefs stores viewer preferences in a small YAML file.
package prefs

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"civictrack/viewer"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

type document struct {
	Theme string `yaml:"theme"`
}

// File is a viewer.ThemeStore backed by a YAML file.
type File struct {
	Path string
}

// DefaultPath is viewer.yaml under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "civictrack", "viewer.yaml"), nil
}

// LoadTheme returns the stored theme. A missing file means dark.
func (f *File) LoadTheme() (viewer.Theme, error) {
	doc, err := f.read()
	if err != nil {
		return viewer.ThemeDark, err
	}
	return viewer.ParseTheme(doc.Theme), nil
}

// SaveTheme replaces the stored theme, keeping the file intact if the
// write fails halfway.
func (f *File) SaveTheme(theme viewer.Theme) error {
	doc, err := f.read()
	if err != nil {
		doc = document{}
	}
	doc.Theme = string(viewer.ParseTheme(string(theme)))

	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}
	return atomic.WriteFile(f.Path, bytes.NewReader(data))
}

func (f *File) read() (document, error) {
	var doc document

	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, err
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("failed to parse %s: %w", f.Path, err)
	}
	return doc, nil
}
