package ports

import "go.trai.ch/dyndll/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration for the project containing cwd.
	// Defaults are returned when no configuration file exists.
	Load(cwd string) (*domain.Config, error)

	// DiscoverRoot walks up from cwd to find the project root.
	// Returns cwd itself when no configuration file is found.
	DiscoverRoot(cwd string) (string, error)
}
