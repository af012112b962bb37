package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// ManifestFileName is read from the working directory.
const ManifestFileName = "manifest.yaml"

// Manifest identifies a connector: who wrote it, what it is called and
// which version is running.
type Manifest struct {
	Name    string
	Author  string
	Version semver.Version
}

type manifestYAML struct {
	Name    string `yaml:"name"`
	Author  string `yaml:"author"`
	Version string `yaml:"version"`
}

// LoadManifest reads manifest.yaml from the working directory.
func LoadManifest() (*Manifest, error) {
	return LoadManifestFile(ManifestFileName)
}

// LoadManifestFile reads a manifest from path.
func LoadManifestFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifestNotFound, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseManifest decodes a manifest document. Version must be a full
// MAJOR.MINOR.PATCH semantic version. Name and author end up as topic
// segments, so they may not contain dots.
func ParseManifest(data []byte) (*Manifest, error) {
	var raw manifestYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	switch {
	case raw.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidManifest)
	case raw.Author == "":
		return nil, fmt.Errorf("%w: author is required", ErrInvalidManifest)
	case raw.Version == "":
		return nil, fmt.Errorf("%w: version is required", ErrInvalidManifest)
	}
	if strings.Contains(raw.Name, ".") || strings.Contains(raw.Author, ".") {
		return nil, fmt.Errorf("%w: name and author may not contain '.'", ErrInvalidManifest)
	}

	v, err := semver.StrictNewVersion(raw.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q: %w", ErrInvalidManifest, raw.Version, err)
	}

	return &Manifest{Name: raw.Name, Author: raw.Author, Version: *v}, nil
}

// String returns "author/name@version".
func (m *Manifest) String() string {
	return fmt.Sprintf("%s/%s@%s", m.Author, m.Name, m.Version.String())
}
