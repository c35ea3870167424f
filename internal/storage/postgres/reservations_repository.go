package postgres

import (
	"context"
	"fmt"

	"github.com/easypark/server/internal/domain/paging"
	"github.com/easypark/server/internal/domain/reservations"
	"github.com/jackc/pgx/v5"
)

var _ reservations.Repository = (*ReservationRepository)(nil)

const reservationSelect = `
SELECT r.id, r.usuario_id, r.vaga_id, r.status, r.data_inicio, r.data_fim,
       r.eta, r.vaga_bloqueada, r.valor_estimado, r.valor_final
  FROM reserva r
`

func (r *ReservationRepository) Insert(ctx context.Context, params reservations.CreateParams) (int64, error) {
	var id int64
	err := r.queryer().QueryRow(ctx, `
INSERT INTO reserva (usuario_id, vaga_id, status, data_inicio, data_fim, eta, vaga_bloqueada, valor_estimado, valor_final)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id
`,
		params.UserID,
		params.SpaceID,
		params.Status,
		params.StartsAt,
		params.EndsAt,
		params.ETA,
		params.SpaceBlocked,
		params.EstimatedAmount,
		params.FinalAmount,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert reservation: %w", mapIntegrityError(err))
	}
	return id, nil
}

func (r *ReservationRepository) Update(ctx context.Context, id int64, params reservations.CreateParams) error {
	tag, err := r.queryer().Exec(ctx, `
UPDATE reserva
   SET usuario_id = $2, vaga_id = $3, status = $4, data_inicio = $5, data_fim = $6,
       eta = $7, vaga_bloqueada = $8, valor_estimado = $9, valor_final = $10
 WHERE id = $1
`,
		id,
		params.UserID,
		params.SpaceID,
		params.Status,
		params.StartsAt,
		params.EndsAt,
		params.ETA,
		params.SpaceBlocked,
		params.EstimatedAmount,
		params.FinalAmount,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", mapIntegrityError(err))
	}
	if tag.RowsAffected() == 0 {
		return reservations.ErrNotFound
	}
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*reservations.Reservation, error) {
	row := r.queryer().QueryRow(ctx, reservationSelect+` WHERE r.id = $1`, id)
	reservation, err := scanReservation(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, reservations.ErrNotFound
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return reservation, nil
}

func (r *ReservationRepository) Search(ctx context.Context, filters reservations.Filters, params paging.Params) (paging.Page[reservations.Reservation], error) {
	q := r.queryer()

	var userID, spaceID int64
	if filters.UserID != nil {
		userID = *filters.UserID
	}
	if filters.SpaceID != nil {
		spaceID = *filters.SpaceID
	}

	where := `
 WHERE ($1 = 0 OR r.usuario_id = $1)
   AND ($2 = 0 OR r.vaga_id = $2)
   AND ($3 = '' OR upper(r.status) = $3)
   AND ($4::timestamptz IS NULL OR r.data_inicio >= $4::timestamptz)
   AND ($5::timestamptz IS NULL OR r.data_inicio <= $5::timestamptz)
`
	args := []any{userID, spaceID, filters.Status, filters.StartsFrom, filters.StartsTo}

	var total int64
	if err := q.QueryRow(ctx, `SELECT count(*) FROM reserva r`+where, args...).Scan(&total); err != nil {
		return paging.Page[reservations.Reservation]{}, fmt.Errorf("count reservations: %w", err)
	}

	order := fmt.Sprintf(" ORDER BY %s %s, r.id ASC", reservations.SortColumns.Resolve(params.SortBy), sortDirection(params))
	rows, err := q.Query(ctx, reservationSelect+where+order+` OFFSET $6 LIMIT $7`,
		append(args, params.Offset(), params.PageSize)...)
	if err != nil {
		return paging.Page[reservations.Reservation]{}, fmt.Errorf("search reservations: %w", err)
	}
	defer rows.Close()

	items := make([]reservations.Reservation, 0)
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return paging.Page[reservations.Reservation]{}, fmt.Errorf("scan reservation: %w", err)
		}
		items = append(items, *reservation)
	}
	if err := rows.Err(); err != nil {
		return paging.Page[reservations.Reservation]{}, fmt.Errorf("iterate reservations: %w", err)
	}
	return paging.NewPage(items, params, total), nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM reserva WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", mapIntegrityError(err))
	}
	if tag.RowsAffected() == 0 {
		return reservations.ErrNotFound
	}
	return nil
}

func (r *ReservationRepository) UserExists(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM usuario WHERE id = $1)`, id).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return found, nil
}

func (r *ReservationRepository) SpaceExists(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM vaga WHERE id = $1)`, id).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("check space: %w", err)
	}
	return found, nil
}

func scanReservation(row pgx.Row) (*reservations.Reservation, error) {
	var reservation reservations.Reservation
	err := row.Scan(
		&reservation.ID,
		&reservation.UserID,
		&reservation.SpaceID,
		&reservation.Status,
		&reservation.StartsAt,
		&reservation.EndsAt,
		&reservation.ETA,
		&reservation.SpaceBlocked,
		&reservation.EstimatedAmount,
		&reservation.FinalAmount,
	)
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *ReservationRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
