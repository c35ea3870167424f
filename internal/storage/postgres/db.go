// Package postgres implements the storage contracts on top of pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/easypark/server/internal/domain/facilities"
	"github.com/easypark/server/internal/domain/geo"
	"github.com/easypark/server/internal/domain/jobs"
	"github.com/easypark/server/internal/domain/payments"
	"github.com/easypark/server/internal/domain/reservations"
	"github.com/easypark/server/internal/domain/spaces"
	"github.com/easypark/server/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Geo() geo.Repository {
	return &GeoRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Facilities() facilities.Repository {
	return &FacilityRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Spaces() spaces.Repository {
	return &SpaceRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Reservations() reservations.Repository {
	return &ReservationRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Payments() payments.Repository {
	return &PaymentRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Jobs() jobs.Repository {
	return &JobRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, storage.Repository) error) error {
	return r.withTx(ctx, func(ctx context.Context, tx *Repository) error {
		return fn(ctx, tx)
	})
}

func (r *Repository) withTx(ctx context.Context, fn func(context.Context, *Repository) error) error {
	if r.tx != nil {
		return fn(ctx, r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	wrapped := &Repository{pool: r.pool, tx: tx}
	if err := fn(ctx, wrapped); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// FacilityStore narrows the aggregate to what the facilities service
// needs in one transaction.
type FacilityStore struct {
	repo *Repository
}

func NewFacilityStore(repo *Repository) FacilityStore {
	return FacilityStore{repo: repo}
}

func (s FacilityStore) Facilities() facilities.Repository { return s.repo.Facilities() }

func (s FacilityStore) Geo() geo.Repository { return s.repo.Geo() }

func (s FacilityStore) WithTx(ctx context.Context, fn func(context.Context, facilities.Store) error) error {
	return s.repo.withTx(ctx, func(ctx context.Context, tx *Repository) error {
		return fn(ctx, FacilityStore{repo: tx})
	})
}

// PaymentStore narrows the aggregate to what the payments service needs
// in one transaction.
type PaymentStore struct {
	repo *Repository
}

func NewPaymentStore(repo *Repository) PaymentStore {
	return PaymentStore{repo: repo}
}

func (s PaymentStore) Payments() payments.Repository { return s.repo.Payments() }

func (s PaymentStore) Geo() geo.Repository { return s.repo.Geo() }

func (s PaymentStore) WithTx(ctx context.Context, fn func(context.Context, payments.Store) error) error {
	return s.repo.withTx(ctx, func(ctx context.Context, tx *Repository) error {
		return fn(ctx, PaymentStore{repo: tx})
	})
}

type GeoRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

type FacilityRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

type SpaceRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

type ReservationRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

type PaymentRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

type JobRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}
