// Package project reads and writes the project manifest,
// .pagebuilder/project.json inside a project directory.
package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/professor-lee/FalseClose/internal/model"
)

const (
	// Dir holds the builder's own files inside a project directory.
	Dir = ".pagebuilder"

	// ManifestFile is the manifest's name inside Dir.
	ManifestFile = "project.json"
)

// ErrNoProject is returned by Load when dir has no manifest.
var ErrNoProject = errors.New("no project manifest")

// ManifestPath returns the manifest location for a project directory.
func ManifestPath(dir string) string {
	return filepath.Join(dir, Dir, ManifestFile)
}

// Exists reports whether dir holds a manifest.
func Exists(dir string) bool {
	_, err := os.Stat(ManifestPath(dir))
	return err == nil
}

// Load reads and normalizes the manifest of dir. A manifest without a
// project name is named after its directory.
func Load(dir string) (*model.Manifest, error) {
	m, err := LoadRaw(dir)
	if err != nil {
		return nil, err
	}
	m.Normalize()
	return m, nil
}

// LoadRaw reads the manifest of dir without repairing its pages, so
// structural problems on disk stay visible.
func LoadRaw(dir string) (*model.Manifest, error) {
	path := ManifestPath(dir)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNoProject)
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := DecodeRaw(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.ProjectName == "" {
		m.ProjectName = NameFromDir(dir)
	}
	return m, nil
}

// Decode parses and normalizes manifest JSON.
func Decode(data []byte) (*model.Manifest, error) {
	m, err := DecodeRaw(data)
	if err != nil {
		return nil, err
	}
	m.Normalize()
	return m, nil
}

// DecodeRaw parses manifest JSON as written.
func DecodeRaw(data []byte) (*model.Manifest, error) {
	var m model.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &m, nil
}

// Encode renders a manifest as indented JSON without HTML escaping.
func Encode(m *model.Manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes m into dir, stamping metaVersion and lastSaved. The write is
// atomic: a crash leaves either the old or the new manifest.
func Save(dir string, m *model.Manifest, now time.Time) error {
	out := m.Clone()
	out.MetaVersion = model.MetaVersion
	out.LastSaved = now
	if out.ProjectName == "" {
		out.ProjectName = NameFromDir(dir)
	}

	data, err := Encode(out)
	if err != nil {
		return err
	}

	path := ManifestPath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", Dir, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ManifestFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// NameFromDir derives a project name from its directory.
func NameFromDir(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	name := filepath.Base(strings.TrimRight(abs, `/\`))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "untitled"
	}
	return name
}
