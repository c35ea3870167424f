package postgres

import (
	"context"
	"fmt"

	"github.com/easypark/server/internal/domain/paging"
	"github.com/easypark/server/internal/domain/spaces"
	"github.com/jackc/pgx/v5"
)

var _ spaces.Repository = (*SpaceRepository)(nil)

const spaceSelect = `
SELECT v.id, v.nivel_id, v.tipo_vaga_id, v.codigo, v.ativa, v.criado_em
  FROM vaga v
`

// spaceStatusPredicate matches a space by its latest occupancy row; the
// token DESCONHECIDO selects spaces without one.
const spaceStatusPredicate = `
   AND ($4 = '' OR
        ($4 = 'DESCONHECIDO' AND NOT EXISTS (SELECT 1 FROM vaga_status vs WHERE vs.vaga_id = v.id)) OR
        EXISTS (SELECT 1 FROM vaga_status vs WHERE vs.vaga_id = v.id AND upper(vs.status) = $4))
`

func (r *SpaceRepository) Insert(ctx context.Context, params spaces.CreateParams) (int64, error) {
	var id int64
	err := r.queryer().QueryRow(ctx, `
INSERT INTO vaga (nivel_id, tipo_vaga_id, codigo, ativa)
VALUES ($1, $2, $3, $4)
RETURNING id
`, params.LevelID, params.SpaceTypeID, params.Code, params.Active).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert space: %w", mapIntegrityError(err))
	}
	return id, nil
}

func (r *SpaceRepository) Update(ctx context.Context, id int64, params spaces.CreateParams) error {
	tag, err := r.queryer().Exec(ctx, `
UPDATE vaga SET nivel_id = $2, tipo_vaga_id = $3, codigo = $4, ativa = $5 WHERE id = $1
`, id, params.LevelID, params.SpaceTypeID, params.Code, params.Active)
	if err != nil {
		return fmt.Errorf("update space: %w", mapIntegrityError(err))
	}
	if tag.RowsAffected() == 0 {
		return spaces.ErrNotFound
	}
	return nil
}

func (r *SpaceRepository) GetByID(ctx context.Context, id int64) (*spaces.Space, error) {
	var space spaces.Space
	err := r.queryer().QueryRow(ctx, spaceSelect+` WHERE v.id = $1`, id).Scan(
		&space.ID, &space.LevelID, &space.SpaceTypeID, &space.Code, &space.Active, &space.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, spaces.ErrNotFound
		}
		return nil, fmt.Errorf("get space: %w", err)
	}
	return &space, nil
}

func (r *SpaceRepository) List(ctx context.Context, status string) ([]spaces.Space, error) {
	rows, err := r.queryer().Query(ctx, spaceSelect+`
 WHERE ($1 = '' OR
        ($1 = 'DESCONHECIDO' AND NOT EXISTS (SELECT 1 FROM vaga_status vs WHERE vs.vaga_id = v.id)) OR
        EXISTS (SELECT 1 FROM vaga_status vs WHERE vs.vaga_id = v.id AND upper(vs.status) = $1))
 ORDER BY v.codigo ASC, v.id ASC
`, status)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	defer rows.Close()

	return collectSpaces(rows)
}

func (r *SpaceRepository) ListByFacility(ctx context.Context, facilityID int64) ([]spaces.Space, error) {
	rows, err := r.queryer().Query(ctx, spaceSelect+`
  JOIN nivel n ON n.id = v.nivel_id
 WHERE n.estacionamento_id = $1
 ORDER BY v.codigo ASC, v.id ASC
`, facilityID)
	if err != nil {
		return nil, fmt.Errorf("list facility spaces: %w", err)
	}
	defer rows.Close()

	return collectSpaces(rows)
}

func (r *SpaceRepository) Search(ctx context.Context, filters spaces.Filters, params paging.Params) (paging.Page[spaces.Space], error) {
	q := r.queryer()

	var facilityID, levelID, typeID int64
	if filters.FacilityID != nil {
		facilityID = *filters.FacilityID
	}
	if filters.LevelID != nil {
		levelID = *filters.LevelID
	}
	if filters.SpaceTypeID != nil {
		typeID = *filters.SpaceTypeID
	}

	where := `
 WHERE ($1 = 0 OR v.nivel_id IN (SELECT id FROM nivel WHERE estacionamento_id = $1))
   AND ($2 = 0 OR v.nivel_id = $2)
   AND ($3 = 0 OR v.tipo_vaga_id = $3)
` + spaceStatusPredicate + `
   AND ($5 = '' OR v.codigo ILIKE '%' || $5 || '%')
`
	args := []any{facilityID, levelID, typeID, filters.Status, filters.Code}

	var total int64
	if err := q.QueryRow(ctx, `SELECT count(*) FROM vaga v`+where, args...).Scan(&total); err != nil {
		return paging.Page[spaces.Space]{}, fmt.Errorf("count spaces: %w", err)
	}

	order := fmt.Sprintf(" ORDER BY %s %s, v.id ASC", spaces.SortColumns.Resolve(params.SortBy), sortDirection(params))
	rows, err := q.Query(ctx, spaceSelect+where+order+` OFFSET $6 LIMIT $7`,
		append(args, params.Offset(), params.PageSize)...)
	if err != nil {
		return paging.Page[spaces.Space]{}, fmt.Errorf("search spaces: %w", err)
	}
	defer rows.Close()

	items, err := collectSpaces(rows)
	if err != nil {
		return paging.Page[spaces.Space]{}, err
	}
	return paging.NewPage(items, params, total), nil
}

func (r *SpaceRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM vaga WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete space: %w", mapIntegrityError(err))
	}
	if tag.RowsAffected() == 0 {
		return spaces.ErrNotFound
	}
	return nil
}

// GetStatus returns the latest occupancy row for the space, or
// spaces.ErrNotFound when the sensor pipeline has not written one yet.
func (r *SpaceRepository) GetStatus(ctx context.Context, id int64) (*spaces.Status, error) {
	var status spaces.Status
	err := r.queryer().QueryRow(ctx, `
SELECT vs.status, vs.atualizado_em, vs.sensor_id
  FROM vaga_status vs
 WHERE vs.vaga_id = $1
 ORDER BY vs.atualizado_em DESC
 LIMIT 1
`, id).Scan(&status.Status, &status.LastSeenAt, &status.SensorID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, spaces.ErrNotFound
		}
		return nil, fmt.Errorf("get space status: %w", err)
	}
	return &status, nil
}

func (r *SpaceRepository) LevelExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM nivel WHERE id = $1)`, id)
}

func (r *SpaceRepository) SpaceTypeExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM tipo_vaga WHERE id = $1)`, id)
}

func (r *SpaceRepository) CodeExistsInLevel(ctx context.Context, levelID int64, code string, excludeID int64) (bool, error) {
	var found bool
	err := r.queryer().QueryRow(ctx, `
SELECT EXISTS (
  SELECT 1 FROM vaga
   WHERE nivel_id = $1 AND lower(codigo) = lower($2) AND id <> $3
)
`, levelID, code, excludeID).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("check space code: %w", err)
	}
	return found, nil
}

func (r *SpaceRepository) exists(ctx context.Context, sql string, id int64) (bool, error) {
	var found bool
	if err := r.queryer().QueryRow(ctx, sql, id).Scan(&found); err != nil {
		return false, fmt.Errorf("existence probe: %w", err)
	}
	return found, nil
}

func collectSpaces(rows pgx.Rows) ([]spaces.Space, error) {
	items := make([]spaces.Space, 0)
	for rows.Next() {
		var space spaces.Space
		if err := rows.Scan(&space.ID, &space.LevelID, &space.SpaceTypeID, &space.Code, &space.Active, &space.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan space: %w", err)
		}
		items = append(items, space)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spaces: %w", err)
	}
	return items, nil
}

func (r *SpaceRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
