package config

import "go.uber.org/fx"

// FXModule provides *Config from the config.yaml search paths and *Manifest
// from manifest.yaml in the working directory.
var FXModule = fx.Module("config",
	fx.Provide(
		Load,
		LoadManifest,
	),
)
