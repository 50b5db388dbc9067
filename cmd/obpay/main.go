/*
main.go - Application entry point

PURPOSE:
  The obpay command: a local pay server with a live work session, plus
  one-shot commands for pricing a shift, listing red days and exporting.

COMMANDS:
  serve      Run the HTTP API and the live-session refresher
  calc       Price one shift and print the breakdown
  holidays   List the red days of a year
  export     Write all entries as a JSON document or CSV

CONFIGURATION:
  ~/.obpay.yaml (or --config), then .env, then OBPAY_* variables.
  See config/config.go.

EXAMPLES:
  obpay serve --addr :3000
  obpay calc --date 2025-01-14 --start 22:00 --end 07:00 --next-day --workplace warehouse
  obpay holidays 2026
  obpay export --format csv > entries.csv

SEE ALSO:
  - serve.go: Server startup and graceful shutdown
  - commands.go: calc, holidays, export
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/logging"
	"github.com/warp/payroll-engine/store/sqlite"
)

var (
	configPath string
	cfg        *config.Config
	logger     *logging.Logger
	store      *sqlite.Store
)

var rootCmd = &cobra.Command{
	Use:           "obpay",
	Short:         "Hourly pay with Swedish OB premiums",
	Long:          `obpay prices shifts under Swedish retail and warehouse agreements, tracks a live work session and keeps a local record of worked shifts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logCfg := logging.DefaultConfig("obpay")
		logCfg.Level = logging.ParseLevel(cfg.LogLevel)
		logCfg.Output = os.Stderr
		logger = logging.New(logCfg)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store != nil {
			return store.Close()
		}
		return nil
	},
}

// openStore opens the configured database for commands that need it.
func openStore() (*sqlite.Store, error) {
	if store != nil {
		return store, nil
	}
	if err := ensureDir(cfg.DatabasePath); err != nil {
		return nil, err
	}
	s, err := sqlite.New(cfg.DatabasePath, sqlite.WithLogger(logger.Component("store")))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	store = s
	return store, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.obpay.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(holidaysCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
