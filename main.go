package main

import (
	"fmt"
	"log/slog"
	"os"

	"Gin_postgres_redis_lab_inventory/app"
	"Gin_postgres_redis_lab_inventory/config"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const programName = "lab-inventory"

var (
	globalFlags = struct {
		envFile string
		debug   bool
	}{}
	cfg *config.Config
)

// commonRun 构造 logger 并按容器配额设置 GOMAXPROCS
func commonRun() *slog.Logger {
	if globalFlags.debug {
		cfg.LogLevel = "debug"
	}
	logger := app.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, v ...any) {
		logger.Info(fmt.Sprintf(format, v...))
	})); err != nil {
		logger.Warn("set GOMAXPROCS failed", "error", err)
	}
	return logger
}

func main() {
	rootCmd := &cobra.Command{
		Use:          programName,
		Short:        "Lab component request / issue / return service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if globalFlags.envFile != "" {
				config.LoadEnv(globalFlags.envFile)
			} else {
				config.LoadEnv()
			}
			c, err := config.Load()
			if err != nil {
				return err
			}
			cfg = c
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd.Context())
		},
	}
	rootCmd.PersistentFlags().
		StringVar(&globalFlags.envFile, "env-file", "", "path to a .env file (default .env)")
	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(migrateCommand())
	rootCmd.AddCommand(seedCommand())
	rootCmd.AddCommand(sessionCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
