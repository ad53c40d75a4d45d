// Command pensumctl runs operator tasks against the El Pensum database:
// schema migration, seeding, admin accounts and command line comparisons.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/EnmanuelReynoso23/el-pensum/app"
	"github.com/EnmanuelReynoso23/el-pensum/config"
	"github.com/EnmanuelReynoso23/el-pensum/database"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	timeout time.Duration

	// replaced in tests
	bootstrap = app.Bootstrap
	openStore = app.OpenDatabase
)

var rootCmd = &cobra.Command{
	Use:           "pensumctl",
	Short:         "Operator tool for the El Pensum API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(jobsCmd)
}

// env is what every subcommand needs: settings, a logger and a migrated database
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *database.GORMStore
}

func (e *env) Close() {
	e.store.Close()
	_ = e.logger.Sync()
}

func openEnv() (*env, error) {
	cfg, logger, err := bootstrap()
	if err != nil {
		return nil, err
	}
	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, store: store}, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
