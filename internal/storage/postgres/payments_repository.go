package postgres

import (
	"context"
	"fmt"

	"github.com/easypark/server/internal/domain/geo"
	"github.com/easypark/server/internal/domain/paging"
	"github.com/easypark/server/internal/domain/payments"
	"github.com/jackc/pgx/v5"
)

var _ payments.Repository = (*PaymentRepository)(nil)

const paymentSelect = `
SELECT p.id, p.reserva_id, p.usuario_id, p.status, p.valor, p.chave_idempotencia, p.criado_em
  FROM pagamento p
`

func (r *PaymentRepository) Insert(ctx context.Context, row payments.InsertRow) (int64, error) {
	var id int64
	err := r.queryer().QueryRow(ctx, `
INSERT INTO pagamento (reserva_id, usuario_id, status, valor, chave_idempotencia)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`, row.ReservationID, row.UserID, row.Status, row.Amount, row.IdempotencyKey).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert payment: %w", mapIntegrityError(err))
	}
	return id, nil
}

func (r *PaymentRepository) InsertPayer(ctx context.Context, paymentID int64, payer payments.PayerRow) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO pagamento_pagador (pagamento_id, documento, nome, endereco_id)
VALUES ($1, $2, $3, $4)
`, paymentID, payer.Document, payer.Name, payer.AddressID)
	if err != nil {
		return fmt.Errorf("insert payer: %w", mapIntegrityError(err))
	}
	return nil
}

func (r *PaymentRepository) InsertCard(ctx context.Context, paymentID int64, card payments.Card) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO pagamento_cartao (pagamento_id, titular, bandeira, ultimos_digitos, transacao_id)
VALUES ($1, $2, $3, $4, $5)
`, paymentID, card.Holder, card.Brand, card.LastDigits, card.TransactionID)
	if err != nil {
		return fmt.Errorf("insert card: %w", mapIntegrityError(err))
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*payments.Payment, error) {
	q := r.queryer()

	row := q.QueryRow(ctx, paymentSelect+` WHERE p.id = $1`, id)
	payment, err := scanPayment(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, payments.ErrNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}

	payment.Payer, err = r.getPayer(ctx, id)
	if err != nil {
		return nil, err
	}
	payment.Card, err = r.getCard(ctx, id)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *PaymentRepository) Search(ctx context.Context, filters payments.Filters, params paging.Params) (paging.Page[payments.Payment], error) {
	q := r.queryer()

	var reservationID, userID int64
	if filters.ReservationID != nil {
		reservationID = *filters.ReservationID
	}
	if filters.UserID != nil {
		userID = *filters.UserID
	}

	// "cartao" means a card row exists for the payment; "manual" the
	// opposite. ParseFilters blanks every other token ("offline" folds
	// into "manual"), so an unrecognized method leaves the search
	// unfiltered.
	where := `
 WHERE ($1 = 0 OR p.reserva_id = $1)
   AND ($2 = 0 OR p.usuario_id = $2)
   AND ($3 = '' OR upper(p.status) = $3)
   AND ($4 = '' OR
        ($4 = 'cartao' AND EXISTS (SELECT 1 FROM pagamento_cartao pc WHERE pc.pagamento_id = p.id)) OR
        ($4 = 'manual' AND NOT EXISTS (SELECT 1 FROM pagamento_cartao pc WHERE pc.pagamento_id = p.id)))
`
	args := []any{reservationID, userID, filters.Status, filters.Method}

	var total int64
	if err := q.QueryRow(ctx, `SELECT count(*) FROM pagamento p`+where, args...).Scan(&total); err != nil {
		return paging.Page[payments.Payment]{}, fmt.Errorf("count payments: %w", err)
	}

	order := fmt.Sprintf(" ORDER BY %s %s, p.id ASC", payments.SortColumns.Resolve(params.SortBy), sortDirection(params))
	rows, err := q.Query(ctx, paymentSelect+where+order+` OFFSET $5 LIMIT $6`,
		append(args, params.Offset(), params.PageSize)...)
	if err != nil {
		return paging.Page[payments.Payment]{}, fmt.Errorf("search payments: %w", err)
	}
	defer rows.Close()

	items := make([]payments.Payment, 0)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return paging.Page[payments.Payment]{}, fmt.Errorf("scan payment: %w", err)
		}
		items = append(items, *payment)
	}
	if err := rows.Err(); err != nil {
		return paging.Page[payments.Payment]{}, fmt.Errorf("iterate payments: %w", err)
	}
	return paging.NewPage(items, params, total), nil
}

func (r *PaymentRepository) ReservationExists(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reserva WHERE id = $1)`, id).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("check reservation: %w", err)
	}
	return found, nil
}

func (r *PaymentRepository) UserExists(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM usuario WHERE id = $1)`, id).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return found, nil
}

func (r *PaymentRepository) getPayer(ctx context.Context, paymentID int64) (*payments.Payer, error) {
	var (
		payer     payments.Payer
		addressID *int64
	)
	err := r.queryer().QueryRow(ctx, `
SELECT documento, nome, endereco_id FROM pagamento_pagador WHERE pagamento_id = $1
`, paymentID).Scan(&payer.Document, &payer.Name, &addressID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get payer: %w", err)
	}
	if addressID != nil {
		address, err := r.getAddress(ctx, *addressID)
		if err != nil {
			return nil, err
		}
		payer.Address = address
	}
	return &payer, nil
}

func (r *PaymentRepository) getAddress(ctx context.Context, id int64) (*geo.Address, error) {
	var (
		address      geo.Address
		complement   *string
		neighborhood *string
		city         *string
		stateCode    *string
		stateName    *string
	)
	err := r.queryer().QueryRow(ctx, `
SELECT en.id, en.cep, en.logradouro, en.numero, en.complemento,
       en.bairro_id, en.latitude, en.longitude,
       b.nome, c.nome, u.sigla, u.nome
  FROM endereco en
  LEFT JOIN bairro b ON b.id = en.bairro_id
  LEFT JOIN cidade c ON c.id = b.cidade_id
  LEFT JOIN uf u ON u.sigla = c.uf_sigla
 WHERE en.id = $1
`, id).Scan(
		&address.ID,
		&address.PostalCode,
		&address.Street,
		&address.Number,
		&complement,
		&address.NeighborhoodID,
		&address.Latitude,
		&address.Longitude,
		&neighborhood,
		&city,
		&stateCode,
		&stateName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get payer address: %w", err)
	}
	address.Complement = derefString(complement)
	address.Neighborhood = derefString(neighborhood)
	address.City = derefString(city)
	address.StateCode = derefString(stateCode)
	address.StateName = derefString(stateName)
	return &address, nil
}

func (r *PaymentRepository) getCard(ctx context.Context, paymentID int64) (*payments.Card, error) {
	var card payments.Card
	err := r.queryer().QueryRow(ctx, `
SELECT titular, bandeira, ultimos_digitos, transacao_id
  FROM pagamento_cartao WHERE pagamento_id = $1
`, paymentID).Scan(&card.Holder, &card.Brand, &card.LastDigits, &card.TransactionID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get card: %w", err)
	}
	return &card, nil
}

func scanPayment(row pgx.Row) (*payments.Payment, error) {
	var payment payments.Payment
	err := row.Scan(
		&payment.ID,
		&payment.ReservationID,
		&payment.UserID,
		&payment.Status,
		&payment.Amount,
		&payment.IdempotencyKey,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
