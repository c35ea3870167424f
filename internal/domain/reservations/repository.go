// Package reservations manages parking reservations. Timeout expiry and
// ETA recalculation live in database procedures (see the jobs package);
// this package covers the request-facing lifecycle and search.
package reservations

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/easypark/server/internal/domain/paging"
)

// DefaultStatus is assigned when a reservation is created without one.
const DefaultStatus = "PRE_RESERVA"

var (
	ErrNotFound      = errors.New("reserva não encontrada")
	ErrUserNotFound  = errors.New("usuário não encontrado")
	ErrSpaceNotFound = errors.New("vaga não encontrada")
)

type Reservation struct {
	ID              int64
	UserID          int64
	SpaceID         int64
	Status          string
	StartsAt        *time.Time
	EndsAt          *time.Time
	ETA             *time.Time
	SpaceBlocked    bool
	EstimatedAmount *float64
	FinalAmount     *float64
}

type CreateParams struct {
	UserID          int64 `validate:"required"`
	SpaceID         int64 `validate:"required"`
	Status          string
	StartsAt        *time.Time
	EndsAt          *time.Time
	ETA             *time.Time
	SpaceBlocked    bool
	EstimatedAmount *float64
	FinalAmount     *float64
}

type Filters struct {
	UserID     *int64
	SpaceID    *int64
	Status     string
	StartsFrom *time.Time
	StartsTo   *time.Time
}

var SortColumns = paging.SortKeys{
	Default: "data",
	Columns: map[string]string{
		"data":    "r.data_inicio",
		"usuario": "r.usuario_id",
		"vaga":    "r.vaga_id",
		"status":  "r.status",
	},
}

// ParseFilters reads the reservation search predicates. Date bounds are
// RFC 3339; anything unparseable is ignored.
func ParseFilters(values url.Values) Filters {
	filters := Filters{
		Status: strings.ToUpper(strings.TrimSpace(values.Get("status"))),
	}
	filters.UserID = parseID(values.Get("usuarioId"))
	filters.SpaceID = parseID(values.Get("vagaId"))
	filters.StartsFrom = parseTime(values.Get("dataInicioDe"))
	filters.StartsTo = parseTime(values.Get("dataInicioAte"))
	return filters
}

func parseID(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

func parseTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &parsed
}

type Repository interface {
	Insert(ctx context.Context, params CreateParams) (int64, error)
	Update(ctx context.Context, id int64, params CreateParams) error
	GetByID(ctx context.Context, id int64) (*Reservation, error)
	Search(ctx context.Context, filters Filters, params paging.Params) (paging.Page[Reservation], error)
	Delete(ctx context.Context, id int64) error

	UserExists(ctx context.Context, id int64) (bool, error)
	SpaceExists(ctx context.Context, id int64) (bool, error)
}
