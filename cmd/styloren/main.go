package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/stylorenlabs/styloren/internal/auth"
	"github.com/stylorenlabs/styloren/internal/clock"
	"github.com/stylorenlabs/styloren/internal/config"
	"github.com/stylorenlabs/styloren/internal/credit"
	"github.com/stylorenlabs/styloren/internal/migration"
	"github.com/stylorenlabs/styloren/internal/observability"
	"github.com/stylorenlabs/styloren/internal/profile"
	"github.com/stylorenlabs/styloren/internal/ratelimit"
	"github.com/stylorenlabs/styloren/internal/redis"
	"github.com/stylorenlabs/styloren/internal/scanhistory"
	"github.com/stylorenlabs/styloren/internal/scheduler"
	"github.com/stylorenlabs/styloren/internal/server"
	"github.com/stylorenlabs/styloren/internal/storage"
	"github.com/stylorenlabs/styloren/internal/stylist"
	"github.com/stylorenlabs/styloren/pkg/db"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "styloren",
		Short:   "Styloren API server",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newSchedulerCmd(), newAllCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newSchedulerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scheduler",
		Short: "Run background retention jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runScheduler()
			return nil
		},
	}
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run migrations, then start the API server and scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runMigrate(); err != nil {
				return err
			}
			runMonolith()
			return nil
		},
	}
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func runServe() {
	app := fx.New(
		append(domainModules(), server.Module)...,
	)
	app.Run()
}

func runScheduler() {
	app := fx.New(
		append(domainModules(), scheduler.Module, fx.Invoke(startScheduler))...,
	)
	app.Run()
}

func runMonolith() {
	app := fx.New(
		append(domainModules(),
			server.Module,
			scheduler.Module,
			fx.Invoke(startScheduler),
		)...,
	)
	app.Run()
}

func domainModules() []fx.Option {
	return []fx.Option{
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		redis.Module,
		ratelimit.Module,
		auth.Module,
		profile.Module,
		credit.Module,
		stylist.Module,
		storage.Module,
		scanhistory.Module,
	}
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}

func startScheduler(lc fx.Lifecycle, s *scheduler.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go s.RunForever(context.Background())
			return nil
		},
	})
}
