package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/aobun/internal/core/domain"
	"github.com/custodia-labs/aobun/internal/core/ports/driven"
)

// FileName is the configuration file name inside the config directory.
const FileName = "config.toml"

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
type ConfigStore struct {
	mu       sync.Mutex
	filePath string
}

// DefaultPath returns ~/.aobun/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".aobun", FileName), nil
}

// NewConfigStore creates a TOML config store for the given file path.
// If path is empty, defaults to ~/.aobun/config.toml.
// The file does not need to exist.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	return &ConfigStore{filePath: abs}, nil
}

// Load reads settings from the TOML file.
// Keys missing from the file keep their default values; unknown keys are rejected.
func (s *ConfigStore) Load() (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := domain.DefaultSettings()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file yet - that's fine, use defaults
			return settings, nil
		}
		return settings, err
	}

	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&settings); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return domain.DefaultSettings(), fmt.Errorf("%w: %s: %s", domain.ErrInvalidSettings, s.filePath, strict.String())
		}
		return domain.DefaultSettings(), fmt.Errorf("%w: %s: %v", domain.ErrInvalidSettings, s.filePath, err)
	}

	if err := settings.Validate(); err != nil {
		return domain.DefaultSettings(), fmt.Errorf("%s: %w", s.filePath, err)
	}
	return settings, nil
}

// Save validates settings and writes them to the TOML file,
// creating the config directory if needed.
func (s *ConfigStore) Save(settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	data, err := toml.Marshal(settings)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return err
	}

	// Write with restricted permissions
	return os.WriteFile(s.filePath, data, 0600)
}

// Exists returns true if the config file is present.
func (s *ConfigStore) Exists() bool {
	_, err := os.Stat(s.filePath)
	return err == nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
