package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/medops-hub/workorder-service/internal/config"
	"github.com/medops-hub/workorder-service/internal/events"
	"github.com/medops-hub/workorder-service/internal/observability"
	"github.com/medops-hub/workorder-service/internal/persistence"
	"github.com/medops-hub/workorder-service/internal/repository"
	"github.com/medops-hub/workorder-service/internal/service"
	"github.com/medops-hub/workorder-service/internal/workflow"
)

func withPostgres(ctx context.Context, fn func(context.Context, *config.Config, *persistence.Postgres, *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := observability.NewServiceLogger(cfg.Logger, cfg.App)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()
	return fn(ctx, cfg, pg, logger)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPostgres(cmd.Context(), func(ctx context.Context, _ *config.Config, pg *persistence.Postgres, logger *zap.Logger) error {
				return persistence.RunMigrations(ctx, pg.PoolHandle(), logger)
			})
		},
	}
}

func sweepCmd() *cobra.Command {
	var batch int
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one auto-close pass over work orders awaiting reporter closure",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPostgres(cmd.Context(), func(ctx context.Context, cfg *config.Config, pg *persistence.Postgres, logger *zap.Logger) error {
				if !cmd.Flags().Changed("batch") {
					batch = cfg.Workflow.SweepBatchSize
				}
				pool := pg.PoolHandle()
				svc := service.NewAutoCloseService(service.AutoCloseDependencies{
					WorkOrderRepo: repository.NewWorkOrderRepository(pool),
					UpdateLogRepo: repository.NewUpdateLogRepository(pool),
					Engine: workflow.New(workflow.Policy{
						AutoCloseWindow:     cfg.Workflow.AutoCloseWindow(),
						AllowAdminFastTrack: cfg.Workflow.AllowAdminFastTrack,
					}),
					Dispatcher: events.NewInMemoryDispatcher(logger),
					Logger:     logger,
					BatchSize:  batch,
				})
				result, err := svc.Sweep(ctx)
				if err != nil {
					return err
				}
				return render(result, []string{"Scanned", "Closed", "Conflicts", "Skipped", "Failed"},
					[][]any{{result.Scanned, result.Closed, result.Conflicts, result.Skipped, result.Failed}})
			})
		},
	}
	cmd.Flags().IntVar(&batch, "batch", 100, "maximum work orders to close in this pass")
	return cmd
}
