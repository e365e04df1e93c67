package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"custombudget/internal/backend"
	"custombudget/internal/cli"
	"custombudget/internal/config"
	"custombudget/internal/log"
)

// app holds what every subcommand needs after bootstrap.
type app struct {
	cfg    *config.Config
	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "budgetsim",
		Short: "Simulate custom budget departments driven by building properties",
		Long: `budgetsim plays city scenarios against the custom budget department
manager, persists the department state in a city save and exports the
resulting ledger.

Example Usage:
  budgetsim run scenarios/utilities.yaml --xlsx report.xlsx
  budgetsim inspect --city-id 6f1c...
  budgetsim monitor`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cli.LoadEnvFile()
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cli.SetupLogger(cfg.LogLevel)
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	root.AddCommand(newRunCmd(a), newInspectCmd(a), newMonitorCmd(a))
	return root
}

// openBackend creates the save store selected by SAVE_BACKEND.
func (a *app) openBackend(ctx context.Context) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(a.cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(a.logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}
	return res, nil
}

func closeBackend(logger *log.Logger, res *backend.BackendResult) {
	if res.Cleanup == nil {
		return
	}
	if err := res.Cleanup(); err != nil {
		logger.Warn("Backend cleanup failed", log.FieldError, err)
	}
}
