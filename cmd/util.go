package cmd

import (
	"fmt"
	"os"

	"regimealloc/api"
	"regimealloc/internal/config"
	"regimealloc/internal/logger"
	l3_service "regimealloc/internal/service/l3"
)

const defaultConfigPath = "regimealloc.yaml"

// ConfigPath resolves the configuration file location: explicit argument,
// then REGIMEALLOC_CONFIG, then the default file in the working directory.
func ConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("REGIMEALLOC_CONFIG"); env != "" {
		return env
	}
	return defaultConfigPath
}

func InitializeDependencies(configPath string) (*api.ApiHandler, error) {
	cfg, err := config.Load(ConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New()

	return &api.ApiHandler{
		Cfg:    cfg,
		Logger: log,
		OptimizeService: l3_service.OptimizeService{
			Cfg:    cfg,
			Logger: log,
		},
	}, nil
}
