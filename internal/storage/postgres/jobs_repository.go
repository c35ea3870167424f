package postgres

import (
	"context"
	"fmt"

	"github.com/easypark/server/internal/domain/jobs"
)

var _ jobs.Repository = (*JobRepository)(nil)

func (r *JobRepository) CancelExpiredReservations(ctx context.Context) (int, error) {
	var count int
	err := r.queryer().QueryRow(ctx, `SELECT reserva_timeouts()`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("run reservation timeouts: %w", err)
	}
	return count, nil
}

func (r *JobRepository) CancelExpiredPreReservations(ctx context.Context) (int, error) {
	var count int
	err := r.queryer().QueryRow(ctx, `SELECT reserva_prereserva_timeouts()`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("run pre-reservation timeouts: %w", err)
	}
	return count, nil
}

func (r *JobRepository) UpdateReservationETA(ctx context.Context, reservationID int64, minutes int) (jobs.ETAResult, error) {
	var result jobs.ETAResult
	err := r.queryer().QueryRow(ctx, `
SELECT status, mensagem FROM user_eta_update_process($1, $2)
`, reservationID, minutes).Scan(&result.Status, &result.Message)
	if err != nil {
		return jobs.ETAResult{}, fmt.Errorf("run eta update: %w", err)
	}
	return result, nil
}

func (r *JobRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
