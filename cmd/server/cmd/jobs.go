package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/easypark/server/internal/config"
	"github.com/easypark/server/internal/domain/jobs"
	"github.com/easypark/server/internal/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// jobsCmd runs the reservation expiry procedures from the command line,
// for cron or operator use; the same procedures back the /api/jobs
// endpoints.
var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Run reservation maintenance jobs",
}

var jobsReservationTimeoutsCmd = &cobra.Command{
	Use:   "reservas-timeouts",
	Short: "Cancel reservations past their end time",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJob(cmd, func(ctx context.Context, service *jobs.Service) (int, error) {
			return service.CancelExpiredReservations(ctx)
		})
	},
}

var jobsPreReservationTimeoutsCmd = &cobra.Command{
	Use:   "prereservas-timeouts",
	Short: "Cancel pre-reservations past their ETA",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJob(cmd, func(ctx context.Context, service *jobs.Service) (int, error) {
			return service.CancelExpiredPreReservations(ctx)
		})
	},
}

func runJob(cmd *cobra.Command, fn func(context.Context, *jobs.Service) (int, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	logger := config.NewLogger(cfg.Logging)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return fmt.Errorf("repository init failed: %w", err)
	}

	count, err := fn(ctx, jobs.NewService(repo.Jobs(), logger))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "canceladas: %d\n", count)
	return nil
}

func init() {
	jobsCmd.AddCommand(jobsReservationTimeoutsCmd)
	jobsCmd.AddCommand(jobsPreReservationTimeoutsCmd)
}
