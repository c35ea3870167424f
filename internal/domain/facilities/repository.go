// Package facilities manages parking sites and their owned addresses.
package facilities

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/easypark/server/internal/domain/geo"
	"github.com/easypark/server/internal/domain/paging"
)

var ErrNotFound = errors.New("estacionamento não encontrado")

// Facility is a parking site. It owns exactly one Address, created or
// updated atomically with the facility itself.
type Facility struct {
	ID         int64
	OperatorID int64
	Name       string
	Address    geo.Address
	CreatedAt  time.Time
}

// CreateParams is the input for both create and update. The address is
// required; the geo resolver validates its fields.
type CreateParams struct {
	OperatorID int64           `validate:"required"`
	Name       string          `validate:"required"`
	Address    *geo.Submission `validate:"required"`
}

// Filters are the optional search predicates. Blank or nil values are
// no-ops; string filters match case-insensitive substrings.
type Filters struct {
	Name       string
	OperatorID *int64
	StateCode  string
	City       string
}

// SortColumns maps recognized sortBy tokens to columns of the facility
// search join. Unknown tokens fall back to the default.
var SortColumns = paging.SortKeys{
	Default: "nome",
	Columns: map[string]string{
		"nome":   "e.nome",
		"data":   "e.criado_em",
		"cidade": "c.nome",
	},
}

// ParseFilters reads the facility search predicates from query values.
// Invalid values are ignored rather than rejected.
func ParseFilters(values url.Values) Filters {
	filters := Filters{
		Name:      strings.TrimSpace(values.Get("nome")),
		StateCode: strings.ToUpper(strings.TrimSpace(values.Get("ufSigla"))),
		City:      strings.TrimSpace(values.Get("cidade")),
	}
	if raw := strings.TrimSpace(values.Get("operadoraId")); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.OperatorID = &id
		}
	}
	return filters
}

// Repository is the facility storage contract.
type Repository interface {
	Insert(ctx context.Context, operatorID int64, name string, addressID int64) (int64, error)
	Update(ctx context.Context, id, operatorID int64, name string) error
	GetByID(ctx context.Context, id int64) (*Facility, error)
	List(ctx context.Context) ([]Facility, error)
	Search(ctx context.Context, filters Filters, params paging.Params) (paging.Page[Facility], error)
	Delete(ctx context.Context, id int64) error
}

// Store groups the repositories a facility write touches inside one
// transaction: the facility row and its address chain.
type Store interface {
	Facilities() Repository
	Geo() geo.Repository
	WithTx(ctx context.Context, fn func(context.Context, Store) error) error
}
