// Package geo resolves free-form address submissions against the shared
// State → City → Neighborhood reference hierarchy, reusing existing rows
// instead of duplicating them.
package geo

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by lookups that match no row.
	ErrNotFound = errors.New("geo: not found")

	// ErrConflict is returned by creates that lost a race against a
	// concurrent insert of an equivalent row. The resolver re-fetches and
	// retries once before giving up.
	ErrConflict = errors.New("geo: already exists")
)

// State is a federation unit identified by its 2-letter code.
type State struct {
	Code string
	Name string
}

// City belongs to exactly one State; (Name, StateCode) is unique.
type City struct {
	ID        int64
	Name      string
	StateCode string
}

// Neighborhood belongs to exactly one City; (Name, CityID) is unique.
type Neighborhood struct {
	ID     int64
	Name   string
	CityID int64
}

// Address is owned by a business entity (facility or payer) and points
// into the reference hierarchy. NeighborhoodID is nullable: an address may
// exist before its neighborhood is resolved.
type Address struct {
	ID             int64
	PostalCode     string
	Street         string
	Number         string
	Complement     string
	NeighborhoodID *int64
	Latitude       *float64
	Longitude      *float64

	// Denormalized names filled by joined reads, not by Resolve.
	Neighborhood string
	City         string
	StateCode    string
	StateName    string
}

// Submission is one free-form address as sent by a client.
type Submission struct {
	PostalCode   string
	Street       string `validate:"required"`
	Number       string
	Complement   string
	Neighborhood string `validate:"required"`
	City         string `validate:"required"`
	StateCode    string `validate:"required,len=2"`
	StateName    string
	Latitude     *float64
	Longitude    *float64
}

// Repository is the storage contract the resolver runs against. Creates
// must report ErrConflict when a uniqueness constraint rejects the row.
type Repository interface {
	GetStateByCode(ctx context.Context, code string) (*State, error)
	CreateState(ctx context.Context, state State) error
	UpdateStateName(ctx context.Context, code, name string) error

	GetCityByNameAndState(ctx context.Context, name, stateCode string) (*City, error)
	CreateCity(ctx context.Context, city *City) error

	GetNeighborhood(ctx context.Context, name string, cityID int64) (*Neighborhood, error)
	CreateNeighborhood(ctx context.Context, neighborhood *Neighborhood) error

	CreateAddress(ctx context.Context, address *Address) error
	UpdateAddress(ctx context.Context, address *Address) error
}
