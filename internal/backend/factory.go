package backend

import (
	"context"
	"fmt"

	"badyet/internal/api"
	"badyet/internal/log"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentBackend)
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(_ context.Context, config Config, tokens api.TokenSource) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case RemoteBackend:
		return f.createRemoteBackend(config, tokens)
	case MemoryBackend:
		return f.createMemoryBackend(tokens)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createRemoteBackend(config Config, tokens api.TokenSource) (*BackendResult, error) {
	client := api.NewClient(config.APIBaseURL, config.APITimeout, tokens, f.logger.WithComponent(log.ComponentAPI))

	f.logger.Info("Initialized remote backend",
		"base_url", config.APIBaseURL,
		"timeout", config.APITimeout.String())

	return &BackendResult{
		Backend: client,
		Cleanup: nil,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(tokens api.TokenSource) (*BackendResult, error) {
	store := NewMemory(tokens)

	f.logger.Info("Initialized memory backend",
		"seed_user", SeedEmail)

	return &BackendResult{
		Backend: store,
		Cleanup: nil,
	}, nil
}
