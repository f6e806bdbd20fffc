package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/patient-registry/internal/config"
	"github.com/jwalitptl/patient-registry/pkg/logger"
	"github.com/jwalitptl/patient-registry/pkg/validator"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "api",
		Short:         "Patient registry HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file (default: ./config.yaml or ./config/config.yaml)")

	root.AddCommand(newServeCommand(), newMigrateCommand(), newCreateAdminCommand())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// loadConfig reads and validates the configuration and installs the global
// logger and the request validators.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger.Setup(logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validator.Setup(); err != nil {
		return nil, err
	}
	return cfg, nil
}
