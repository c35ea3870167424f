package postgres

import (
	"context"
	"fmt"

	"github.com/easypark/server/internal/domain/facilities"
	"github.com/easypark/server/internal/domain/geo"
	"github.com/easypark/server/internal/domain/paging"
	"github.com/jackc/pgx/v5"
)

var _ facilities.Repository = (*FacilityRepository)(nil)

// facilitySelect joins the facility to its full address chain. Left joins
// keep facilities whose address has no neighborhood yet.
const facilitySelect = `
SELECT e.id, e.operadora_id, e.nome, e.criado_em,
       en.id, en.cep, en.logradouro, en.numero, en.complemento,
       en.bairro_id, en.latitude, en.longitude,
       b.nome, c.nome, u.sigla, u.nome
  FROM estacionamento e
  JOIN endereco en ON en.id = e.endereco_id
  LEFT JOIN bairro b ON b.id = en.bairro_id
  LEFT JOIN cidade c ON c.id = b.cidade_id
  LEFT JOIN uf u ON u.sigla = c.uf_sigla
`

func (r *FacilityRepository) Insert(ctx context.Context, operatorID int64, name string, addressID int64) (int64, error) {
	var id int64
	err := r.queryer().QueryRow(ctx, `
INSERT INTO estacionamento (operadora_id, nome, endereco_id)
VALUES ($1, $2, $3)
RETURNING id
`, operatorID, name, addressID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert facility: %w", mapIntegrityError(err))
	}
	return id, nil
}

func (r *FacilityRepository) Update(ctx context.Context, id, operatorID int64, name string) error {
	tag, err := r.queryer().Exec(ctx, `
UPDATE estacionamento SET operadora_id = $2, nome = $3 WHERE id = $1
`, id, operatorID, name)
	if err != nil {
		return fmt.Errorf("update facility: %w", mapIntegrityError(err))
	}
	if tag.RowsAffected() == 0 {
		return facilities.ErrNotFound
	}
	return nil
}

func (r *FacilityRepository) GetByID(ctx context.Context, id int64) (*facilities.Facility, error) {
	row := r.queryer().QueryRow(ctx, facilitySelect+` WHERE e.id = $1`, id)
	facility, err := scanFacility(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, facilities.ErrNotFound
		}
		return nil, fmt.Errorf("get facility: %w", err)
	}
	return facility, nil
}

func (r *FacilityRepository) List(ctx context.Context) ([]facilities.Facility, error) {
	rows, err := r.queryer().Query(ctx, facilitySelect+` ORDER BY e.nome ASC, e.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	defer rows.Close()

	return collectFacilities(rows)
}

func (r *FacilityRepository) Search(ctx context.Context, filters facilities.Filters, params paging.Params) (paging.Page[facilities.Facility], error) {
	q := r.queryer()

	var operatorID int64
	if filters.OperatorID != nil {
		operatorID = *filters.OperatorID
	}

	where := `
 WHERE ($1 = '' OR e.nome ILIKE '%' || $1 || '%')
   AND ($2 = 0 OR e.operadora_id = $2)
   AND ($3 = '' OR u.sigla = $3)
   AND ($4 = '' OR c.nome ILIKE '%' || $4 || '%')
`
	args := []any{filters.Name, operatorID, filters.StateCode, filters.City}

	var total int64
	err := q.QueryRow(ctx, `
SELECT count(*)
  FROM estacionamento e
  JOIN endereco en ON en.id = e.endereco_id
  LEFT JOIN bairro b ON b.id = en.bairro_id
  LEFT JOIN cidade c ON c.id = b.cidade_id
  LEFT JOIN uf u ON u.sigla = c.uf_sigla
`+where, args...).Scan(&total)
	if err != nil {
		return paging.Page[facilities.Facility]{}, fmt.Errorf("count facilities: %w", err)
	}

	order := fmt.Sprintf(" ORDER BY %s %s, e.id ASC", facilities.SortColumns.Resolve(params.SortBy), sortDirection(params))
	rows, err := q.Query(ctx, facilitySelect+where+order+` OFFSET $5 LIMIT $6`,
		append(args, params.Offset(), params.PageSize)...)
	if err != nil {
		return paging.Page[facilities.Facility]{}, fmt.Errorf("search facilities: %w", err)
	}
	defer rows.Close()

	items, err := collectFacilities(rows)
	if err != nil {
		return paging.Page[facilities.Facility]{}, err
	}
	return paging.NewPage(items, params, total), nil
}

func (r *FacilityRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM estacionamento WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete facility: %w", mapIntegrityError(err))
	}
	if tag.RowsAffected() == 0 {
		return facilities.ErrNotFound
	}
	return nil
}

func scanFacility(row pgx.Row) (*facilities.Facility, error) {
	var (
		facility     facilities.Facility
		address      geo.Address
		complement   *string
		neighborhood *string
		city         *string
		stateCode    *string
		stateName    *string
	)
	err := row.Scan(
		&facility.ID,
		&facility.OperatorID,
		&facility.Name,
		&facility.CreatedAt,
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
		return nil, err
	}
	address.Complement = derefString(complement)
	address.Neighborhood = derefString(neighborhood)
	address.City = derefString(city)
	address.StateCode = derefString(stateCode)
	address.StateName = derefString(stateName)
	facility.Address = address
	return &facility, nil
}

func collectFacilities(rows pgx.Rows) ([]facilities.Facility, error) {
	items := make([]facilities.Facility, 0)
	for rows.Next() {
		facility, err := scanFacility(rows)
		if err != nil {
			return nil, fmt.Errorf("scan facility: %w", err)
		}
		items = append(items, *facility)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate facilities: %w", err)
	}
	return items, nil
}

func (r *FacilityRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
