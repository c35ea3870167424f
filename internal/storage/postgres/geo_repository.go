package postgres

import (
	"context"
	"fmt"

	"github.com/easypark/server/internal/domain/geo"
	"github.com/jackc/pgx/v5"
)

var _ geo.Repository = (*GeoRepository)(nil)

func (r *GeoRepository) GetStateByCode(ctx context.Context, code string) (*geo.State, error) {
	var state geo.State
	err := r.queryer().QueryRow(ctx, `
SELECT sigla, nome FROM uf WHERE sigla = $1
`, code).Scan(&state.Code, &state.Name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, geo.ErrNotFound
		}
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &state, nil
}

// CreateState inserts via ON CONFLICT DO NOTHING so a lost race surfaces
// as geo.ErrConflict instead of aborting the surrounding transaction.
func (r *GeoRepository) CreateState(ctx context.Context, state geo.State) error {
	tag, err := r.queryer().Exec(ctx, `
INSERT INTO uf (sigla, nome) VALUES ($1, $2)
ON CONFLICT (sigla) DO NOTHING
`, state.Code, state.Name)
	if err != nil {
		return fmt.Errorf("create state: %w", mapIntegrityError(err))
	}
	if tag.RowsAffected() == 0 {
		return geo.ErrConflict
	}
	return nil
}

func (r *GeoRepository) UpdateStateName(ctx context.Context, code, name string) error {
	_, err := r.queryer().Exec(ctx, `
UPDATE uf SET nome = $2 WHERE sigla = $1
`, code, name)
	if err != nil {
		return fmt.Errorf("update state name: %w", err)
	}
	return nil
}

// GetCityByNameAndState matches the name exactly as stored; a
// differently-cased submission creates its own row, mirroring the unique
// constraint on (nome, uf_sigla).
func (r *GeoRepository) GetCityByNameAndState(ctx context.Context, name, stateCode string) (*geo.City, error) {
	var city geo.City
	err := r.queryer().QueryRow(ctx, `
SELECT id, nome, uf_sigla FROM cidade WHERE nome = $1 AND uf_sigla = $2
`, name, stateCode).Scan(&city.ID, &city.Name, &city.StateCode)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, geo.ErrNotFound
		}
		return nil, fmt.Errorf("get city: %w", err)
	}
	return &city, nil
}

func (r *GeoRepository) CreateCity(ctx context.Context, city *geo.City) error {
	err := r.queryer().QueryRow(ctx, `
INSERT INTO cidade (nome, uf_sigla) VALUES ($1, $2)
ON CONFLICT (nome, uf_sigla) DO NOTHING
RETURNING id
`, city.Name, city.StateCode).Scan(&city.ID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return geo.ErrConflict
		}
		return fmt.Errorf("create city: %w", mapIntegrityError(err))
	}
	return nil
}

func (r *GeoRepository) GetNeighborhood(ctx context.Context, name string, cityID int64) (*geo.Neighborhood, error) {
	var hood geo.Neighborhood
	err := r.queryer().QueryRow(ctx, `
SELECT id, nome, cidade_id FROM bairro WHERE nome = $1 AND cidade_id = $2
`, name, cityID).Scan(&hood.ID, &hood.Name, &hood.CityID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, geo.ErrNotFound
		}
		return nil, fmt.Errorf("get neighborhood: %w", err)
	}
	return &hood, nil
}

func (r *GeoRepository) CreateNeighborhood(ctx context.Context, hood *geo.Neighborhood) error {
	err := r.queryer().QueryRow(ctx, `
INSERT INTO bairro (nome, cidade_id) VALUES ($1, $2)
ON CONFLICT (nome, cidade_id) DO NOTHING
RETURNING id
`, hood.Name, hood.CityID).Scan(&hood.ID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return geo.ErrConflict
		}
		return fmt.Errorf("create neighborhood: %w", mapIntegrityError(err))
	}
	return nil
}

func (r *GeoRepository) CreateAddress(ctx context.Context, address *geo.Address) error {
	err := r.queryer().QueryRow(ctx, `
INSERT INTO endereco (cep, logradouro, numero, complemento, bairro_id, latitude, longitude)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`,
		address.PostalCode,
		address.Street,
		address.Number,
		address.Complement,
		address.NeighborhoodID,
		address.Latitude,
		address.Longitude,
	).Scan(&address.ID)
	if err != nil {
		return fmt.Errorf("create address: %w", mapIntegrityError(err))
	}
	return nil
}

func (r *GeoRepository) UpdateAddress(ctx context.Context, address *geo.Address) error {
	tag, err := r.queryer().Exec(ctx, `
UPDATE endereco
   SET cep = $2, logradouro = $3, numero = $4, complemento = $5,
       bairro_id = $6, latitude = $7, longitude = $8
 WHERE id = $1
`,
		address.ID,
		address.PostalCode,
		address.Street,
		address.Number,
		address.Complement,
		address.NeighborhoodID,
		address.Latitude,
		address.Longitude,
	)
	if err != nil {
		return fmt.Errorf("update address: %w", mapIntegrityError(err))
	}
	if tag.RowsAffected() == 0 {
		return geo.ErrNotFound
	}
	return nil
}

func (r *GeoRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
