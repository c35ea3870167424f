// Package storage declares the aggregate data-access contract implemented
// by the postgres package, plus the error type for constraint violations
// that slipped past the services' pre-checks.
package storage

import (
	"context"
	"fmt"

	"github.com/easypark/server/internal/domain/facilities"
	"github.com/easypark/server/internal/domain/geo"
	"github.com/easypark/server/internal/domain/jobs"
	"github.com/easypark/server/internal/domain/payments"
	"github.com/easypark/server/internal/domain/reservations"
	"github.com/easypark/server/internal/domain/spaces"
)

// Repository groups data access by domain.
type Repository interface {
	Geo() geo.Repository
	Facilities() facilities.Repository
	Spaces() spaces.Repository
	Reservations() reservations.Repository
	Payments() payments.Repository
	Jobs() jobs.Repository

	// WithTx runs fn inside a transaction; the Repository passed to fn
	// routes every call through that transaction.
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
}

// IntegrityError is a uniqueness or foreign-key violation raised by the
// store. It signals a concurrent write or a dangling reference, not a bug
// in the caller, and is surfaced as a client error.
type IntegrityError struct {
	Constraint string
	Detail     string
}

func (e *IntegrityError) Error() string {
	if e.Constraint == "" {
		return fmt.Sprintf("violação de integridade de dados: %s", e.Detail)
	}
	return fmt.Sprintf("violação de integridade de dados (%s): %s", e.Constraint, e.Detail)
}
