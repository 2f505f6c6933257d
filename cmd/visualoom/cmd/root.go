// Package cmd provides the CLI commands for VisuaLoom.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/visualoom/visualoom/internal/config"
	"github.com/visualoom/visualoom/internal/logging"
	"github.com/visualoom/visualoom/internal/service"
	"github.com/visualoom/visualoom/pkg/version"
)

var (
	configPath     string
	debugMode      bool
	noColor        bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the visualoom CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visualoom",
		Short: "Local image catalog with hybrid tag and semantic search",
		Long: `VisuaLoom indexes folders of photos into a local catalog and
searches them by tag (@person) and by meaning (free text).

All data lives in a flat-file catalog under ~/.visualoom;
no database server and no cloud account required.

Examples:
  visualoom index ~/Pictures --tag vacation
  visualoom search "@alice beach sunset"
  visualoom watch ~/Pictures`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("visualoom version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default ~/.visualoom/config.yaml)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.visualoom/logs/")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		if loggingCleanup != nil {
			loggingCleanup()
		}
	}

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newTagCmd())
	cmd.AddCommand(newImagesCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func setupLogging(_ *cobra.Command, _ []string) error {
	logCfg := logging.DefaultConfig()
	if debugMode {
		logCfg = logging.DebugConfig()
	} else if cfg, err := config.Load(activeConfigPath()); err == nil {
		// Honor the configured level; a broken config surfaces later in loadService.
		logCfg.Level = cfg.LogLevel
	}

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func activeConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

// loadService builds the application core from the active config.
func loadService() (*service.Service, error) {
	cfg, err := config.Load(activeConfigPath())
	if err != nil {
		return nil, err
	}
	return service.New(cfg, slog.Default())
}

// Execute runs the root command.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err.Error())
		return err
	}
	return nil
}
