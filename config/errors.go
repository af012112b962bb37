package config

import "errors"

var (
	// ErrConfigNotFound is returned when no config.yaml exists in any search path.
	ErrConfigNotFound = errors.New("config: config.yaml not found")

	// ErrInvalidConfig is returned when config.yaml cannot be parsed or lacks
	// a required key.
	ErrInvalidConfig = errors.New("config: invalid config")

	// ErrManifestNotFound is returned when manifest.yaml cannot be read.
	ErrManifestNotFound = errors.New("config: manifest.yaml not found")

	// ErrInvalidManifest is returned when manifest.yaml cannot be parsed,
	// lacks a field or carries a version that is not semantic.
	ErrInvalidManifest = errors.New("config: invalid manifest")
)
