// Package payments manages payment records with their optional payer and
// card details. Charging itself happens elsewhere; this package persists
// and searches the outcome.
package payments

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

// DefaultStatus is assigned when a payment is created without one.
const DefaultStatus = "PENDENTE"

var (
	ErrNotFound            = errors.New("pagamento não encontrado")
	ErrReservationNotFound = errors.New("reserva não encontrada")
	ErrUserNotFound        = errors.New("usuário não encontrado")
)

type Payment struct {
	ID             int64
	ReservationID  *int64
	UserID         *int64
	Status         string
	Amount         float64
	IdempotencyKey string
	CreatedAt      time.Time
	Payer          *Payer
	Card           *Card
}

// Payer is the optional 1:1 payer record; it may carry its own address.
type Payer struct {
	Document string
	Name     string
	Address  *geo.Address
}

// Card is the optional 1:1 card-transaction record. A payment with a card
// row has method "cartao"; without one, "manual".
type Card struct {
	Holder        string
	Brand         string
	LastDigits    string
	TransactionID string
}

type CreateParams struct {
	ReservationID  *int64
	UserID         *int64
	Amount         float64 `validate:"required"`
	Status         string
	IdempotencyKey string
	Payer          *PayerParams
	Card           *CardParams
}

type PayerParams struct {
	Document string `validate:"required"`
	Name     string
	Address  *geo.Submission
}

type CardParams struct {
	Holder        string `validate:"required"`
	Brand         string `validate:"required"`
	LastDigits    string `validate:"required"`
	TransactionID string `validate:"required"`
}

type Filters struct {
	ReservationID *int64
	UserID        *int64
	Status        string
	Method        string
}

var SortColumns = paging.SortKeys{
	Default: "data",
	Columns: map[string]string{
		"data":    "p.criado_em",
		"valor":   "p.valor",
		"status":  "p.status",
		"reserva": "p.reserva_id",
		"usuario": "p.usuario_id",
	},
}

// ParseFilters reads the payment search predicates. The method token
// recognizes "cartao" (a card row exists) and "manual"/"offline" (no card
// row); any other token leaves the search unfiltered.
func ParseFilters(values url.Values) Filters {
	filters := Filters{
		Status: strings.ToUpper(strings.TrimSpace(values.Get("status"))),
		Method: normalizeMethod(values.Get("metodo")),
	}
	filters.ReservationID = parseID(values.Get("reservaId"))
	filters.UserID = parseID(values.Get("usuarioId"))
	return filters
}

func normalizeMethod(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "cartao":
		return "cartao"
	case "manual", "offline":
		return "manual"
	default:
		return ""
	}
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

// InsertRow is the payment row proper, without its 1:1 satellites.
type InsertRow struct {
	ReservationID  *int64
	UserID         *int64
	Status         string
	Amount         float64
	IdempotencyKey string
}

// PayerRow is the payer record with an already-resolved address.
type PayerRow struct {
	Document  string
	Name      string
	AddressID *int64
}

type Repository interface {
	Insert(ctx context.Context, row InsertRow) (int64, error)
	InsertPayer(ctx context.Context, paymentID int64, payer PayerRow) error
	InsertCard(ctx context.Context, paymentID int64, card Card) error
	GetByID(ctx context.Context, id int64) (*Payment, error)
	Search(ctx context.Context, filters Filters, params paging.Params) (paging.Page[Payment], error)

	ReservationExists(ctx context.Context, id int64) (bool, error)
	UserExists(ctx context.Context, id int64) (bool, error)
}

// Store groups the repositories a payment write touches inside one
// transaction: the payment rows and, when the payer carries an address,
// the reference hierarchy.
type Store interface {
	Payments() Repository
	Geo() geo.Repository
	WithTx(ctx context.Context, fn func(context.Context, Store) error) error
}
