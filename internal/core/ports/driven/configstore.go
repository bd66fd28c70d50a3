package driven

import "github.com/custodia-labs/aobun/internal/core/domain"

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and defaults.
type ConfigStore interface {
	// Load reads settings from storage.
	// A missing file yields domain.DefaultSettings.
	Load() (domain.Settings, error)

	// Save validates and persists settings.
	Save(settings domain.Settings) error

	// Path returns the configuration file path.
	Path() string
}
