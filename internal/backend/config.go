package backend

import (
	"fmt"

	"badyet/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:       backendType,
		APIBaseURL: appConfig.APIBaseURL,
		APITimeout: appConfig.APITimeout,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case RemoteBackend:
		if c.APIBaseURL == "" {
			return fmt.Errorf("API base URL is required for remote backend")
		}
		if c.APITimeout <= 0 {
			return fmt.Errorf("API timeout must be positive for remote backend")
		}
	case MemoryBackend:
		// No additional requirements; everything lives in-process.
	}

	return nil
}

// Types returns all valid backend types.
func Types() []BackendType {
	return []BackendType{RemoteBackend, MemoryBackend}
}
