// Package spaces manages individual parking slots, their level/type
// references, and their sensor-derived occupancy status. The status row is
// written by the external sensor pipeline and only read here.
package spaces

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/easypark/server/internal/domain/paging"
)

// StatusUnknown is reported when the sensor pipeline has not yet written
// an occupancy row for a space.
const StatusUnknown = "DESCONHECIDO"

var (
	ErrNotFound          = errors.New("vaga não encontrada")
	ErrLevelNotFound     = errors.New("nível não encontrado")
	ErrSpaceTypeNotFound = errors.New("tipo de vaga não encontrado")

	// ErrDuplicateCode fires when a level already holds a space with the
	// same code, compared case-insensitively.
	ErrDuplicateCode = errors.New("já existe uma vaga com este código neste nível")
)

// Space is one parking slot, uniquely coded within its level.
type Space struct {
	ID          int64
	LevelID     int64
	SpaceTypeID int64
	Code        string
	Active      bool
	CreatedAt   time.Time
}

// Status is the derived occupancy state of one space.
type Status struct {
	Status     string
	LastSeenAt *time.Time
	SensorID   *int64
}

type CreateParams struct {
	LevelID     int64  `validate:"required"`
	SpaceTypeID int64  `validate:"required"`
	Code        string `validate:"required"`
	Active      bool
}

// Filters are the optional space search predicates.
type Filters struct {
	FacilityID  *int64
	LevelID     *int64
	SpaceTypeID *int64
	Status      string
	Code        string
}

var SortColumns = paging.SortKeys{
	Default: "codigo",
	Columns: map[string]string{
		"codigo": "v.codigo",
		"nivel":  "v.nivel_id",
		"tipo":   "v.tipo_vaga_id",
		"data":   "v.criado_em",
	},
}

func ParseFilters(values url.Values) Filters {
	filters := Filters{
		Status: strings.ToUpper(strings.TrimSpace(values.Get("status"))),
		Code:   strings.TrimSpace(values.Get("codigo")),
	}
	filters.FacilityID = parseID(values.Get("estacionamentoId"))
	filters.LevelID = parseID(values.Get("nivelId"))
	filters.SpaceTypeID = parseID(values.Get("tipoVagaId"))
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

// Repository is the space storage contract. LevelExists and
// SpaceTypeExists are existence probes against the externally managed
// reference tables.
type Repository interface {
	Insert(ctx context.Context, params CreateParams) (int64, error)
	Update(ctx context.Context, id int64, params CreateParams) error
	GetByID(ctx context.Context, id int64) (*Space, error)
	List(ctx context.Context, status string) ([]Space, error)
	ListByFacility(ctx context.Context, facilityID int64) ([]Space, error)
	Search(ctx context.Context, filters Filters, params paging.Params) (paging.Page[Space], error)
	Delete(ctx context.Context, id int64) error

	GetStatus(ctx context.Context, id int64) (*Status, error)
	LevelExists(ctx context.Context, id int64) (bool, error)
	SpaceTypeExists(ctx context.Context, id int64) (bool, error)
	CodeExistsInLevel(ctx context.Context, levelID int64, code string, excludeID int64) (bool, error)
}
