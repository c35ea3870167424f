// Package jobs surfaces the database procedures that cancel expired
// reservations and pre-reservations and recalculate a reservation's ETA.
// Their logic lives in the store; this package only runs them and reports
// their outputs.
package jobs

import (
	"context"

	"github.com/rs/zerolog"
)

// ETAResult is the status/message pair returned by the ETA procedure.
type ETAResult struct {
	Status  string
	Message string
}

type Repository interface {
	CancelExpiredReservations(ctx context.Context) (int, error)
	CancelExpiredPreReservations(ctx context.Context) (int, error)
	UpdateReservationETA(ctx context.Context, reservationID int64, minutes int) (ETAResult, error)
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "jobs").Logger()}
}

func (s *Service) CancelExpiredReservations(ctx context.Context) (int, error) {
	count, err := s.repo.CancelExpiredReservations(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int("canceladas", count).Msg("expired reservations cancelled")
	return count, nil
}

func (s *Service) CancelExpiredPreReservations(ctx context.Context) (int, error) {
	count, err := s.repo.CancelExpiredPreReservations(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int("canceladas", count).Msg("expired pre-reservations cancelled")
	return count, nil
}

func (s *Service) UpdateReservationETA(ctx context.Context, reservationID int64, minutes int) (ETAResult, error) {
	result, err := s.repo.UpdateReservationETA(ctx, reservationID, minutes)
	if err != nil {
		return ETAResult{}, err
	}
	s.logger.Info().
		Int64("reserva_id", reservationID).
		Int("minutos", minutes).
		Str("status", result.Status).
		Msg("reservation eta updated")
	return result, nil
}
