// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"
	"sync"

	"inmova/bank-import/internal/config"
	"inmova/bank-import/internal/container"
	"inmova/bank-import/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input      string
	Output     string
	Company    string
	ConfigFile string
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// AppConfig is loaded before any subcommand runs.
	AppConfig *config.Config

	// AppContainer is built lazily by GetContainer.
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "bank-import",
		Short: "Import Spanish bank statements (Norma 43 and CAMT.053).",
		Long: `bank-import detects, parses and classifies bank statements in AEB
Norma 43 (Cuaderno 43) or ISO 20022 CAMT.053 format, and resolves the
company owning each account.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(SharedFlags.ConfigFile)
			if err != nil {
				return err
			}
			AppConfig = cfg
			Log = cfg.NewLogger()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer != nil {
				if err := AppContainer.Close(); err != nil {
					Log.WithError(err).Warn("Failed to close container")
				}
				AppContainer = nil
			}
		},
	}

	// SharedFlags holds the values of the persistent flags.
	SharedFlags = CommonFlags{}

	initOnce sync.Once
)

// Init registers the persistent flags. It is safe to call more than once.
func Init() {
	initOnce.Do(func() {
		Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input statement file")
		Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file (.csv or .xlsx)")
		Cmd.PersistentFlags().StringVar(&SharedFlags.Company, "company", "", "Company the statement is expected to belong to")
		Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default: config.yaml in $HOME/.bank-import, .bank-import or .)")
	})
}

// GetConfig returns the loaded configuration, loading defaults if no
// command has run yet.
func GetConfig() (*config.Config, error) {
	if AppConfig == nil {
		cfg, err := config.Load(SharedFlags.ConfigFile)
		if err != nil {
			return nil, err
		}
		AppConfig = cfg
	}
	return AppConfig, nil
}

// GetContainer builds the application container on first use.
func GetContainer(cmd *cobra.Command) (*container.Container, error) {
	if AppContainer != nil {
		return AppContainer, nil
	}
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := container.NewContainer(ctx, cfg, container.WithLogger(Log))
	if err != nil {
		return nil, fmt.Errorf("error initializing application: %w", err)
	}
	AppContainer = c
	return c, nil
}
