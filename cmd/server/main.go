package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/config"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/database"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/logs"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logs.LogJSON("FATAL", "Command failed", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "onlyfeed-posts",
		Short:         "Service de publication des posts OnlyFeed",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Démarre le serveur HTTP",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Applique les migrations Postgres",
			RunE:  runMigrate,
		},
	)
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)

	ctx := cmd.Context()
	app, err := server.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(context.WithoutCancel(ctx)); err != nil {
			logs.LogJSON("ERROR", "Shutdown error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	return app.Serve(ctx, cfg.Addr)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadMigrateConfig()
	if err != nil {
		return err
	}

	db, err := database.ConnectPostgres(cfg.DBUrl, false)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := database.Migrate(cmd.Context(), sqlDB); err != nil {
		return err
	}
	logs.LogJSON("INFO", "Migrations applied", nil)
	return nil
}
