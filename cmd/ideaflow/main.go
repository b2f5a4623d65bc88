package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/ideaflow/internal/engine/bootstrap"
	"github.com/go-arcade/ideaflow/internal/engine/repo"
	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/go-arcade/ideaflow/pkg/version"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "ideaflow",
	Short:         "ideaflow manages the idea lifecycle, votes and notifications",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the http api, recount worker, notification consumer and reconcile job",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Bootstrap 初始化应用
		app, cleanup, err := bootstrap.Bootstrap(configFile, initApp)
		if err != nil {
			return err
		}
		log.Infow("ideaflow starting", "version", version.GetVersion().String())
		// 启动应用并等待退出信号
		return bootstrap.Run(app, cleanup)
	},
}

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Only consume notifications and process deferred recounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := bootstrap.Bootstrap(configFile, initApp)
		if err != nil {
			return err
		}
		return bootstrap.RunConsumer(app, cleanup)
	},
}

var (
	dryRun           bool
	reconcileTimeout time.Duration
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare cached vote counts with the vote ledger and repair drift once",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := bootstrap.Bootstrap(configFile, initApp)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(cmd.Context(), reconcileTimeout)
		defer cancel()

		var out any
		if dryRun {
			out, err = app.Services.Reconcile.Inspect(ctx)
		} else {
			out, err = app.Services.Reconcile.Reconcile(ctx)
		}
		if err != nil {
			return err
		}
		data, err := sonic.ConfigStd.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, cleanup, err := initDB(configFile)
		if err != nil {
			return err
		}
		defer cleanup()
		if err := repo.AutoMigrate(db); err != nil {
			return err
		}
		log.Info("database migrated")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "conf", "c", "conf.d/config.toml", "conf file path, e.g. -c ./conf.d/config.toml")
	reconcileCmd.Flags().BoolVar(&dryRun, "dry-run", false, "only report drifting ideas")
	reconcileCmd.Flags().DurationVar(&reconcileTimeout, "timeout", 5*time.Minute, "abort the run after this long")

	rootCmd.AddCommand(serveCmd, consumeCmd, reconcileCmd, migrateCmd, version.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
