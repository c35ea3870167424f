package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports a missing or malformed required address field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid address %s: %s", e.Field, e.Message)
}

var validate = validator.New()

// Resolve finds or creates the State → City → Neighborhood chain for one
// submission and attaches an Address to it. When existing is non-nil its
// row is updated in place; otherwise a new Address is created. Resolve is
// expected to run inside the owning entity's transaction so the chain and
// the entity commit together.
//
// Concurrent resolutions of the same brand-new city or neighborhood race
// on insert; the unique constraints arbitrate and the loser re-fetches the
// winner's row, retrying once before surfacing the conflict.
func Resolve(ctx context.Context, repo Repository, sub Submission, existing *Address) (*Address, error) {
	sub.StateCode = strings.ToUpper(strings.TrimSpace(sub.StateCode))
	sub.Street = strings.TrimSpace(sub.Street)
	sub.City = strings.TrimSpace(sub.City)
	sub.Neighborhood = strings.TrimSpace(sub.Neighborhood)
	sub.StateName = strings.TrimSpace(sub.StateName)

	if err := validateSubmission(sub); err != nil {
		return nil, err
	}

	state, err := resolveState(ctx, repo, sub)
	if err != nil {
		return nil, err
	}

	city, cityExisted, err := resolveCity(ctx, repo, sub, state.Code)
	if err != nil {
		return nil, err
	}

	neighborhood, err := resolveNeighborhood(ctx, repo, sub, city, cityExisted)
	if err != nil {
		return nil, err
	}

	address := existing
	if address == nil {
		address = &Address{}
	}
	address.PostalCode = sub.PostalCode
	address.Street = sub.Street
	address.Number = sub.Number
	address.Complement = sub.Complement
	address.Latitude = sub.Latitude
	address.Longitude = sub.Longitude
	address.NeighborhoodID = &neighborhood.ID
	address.Neighborhood = neighborhood.Name
	address.City = city.Name
	address.StateCode = state.Code
	address.StateName = state.Name

	if existing != nil {
		if err := repo.UpdateAddress(ctx, address); err != nil {
			return nil, fmt.Errorf("update address: %w", err)
		}
		return address, nil
	}
	if err := repo.CreateAddress(ctx, address); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	return address, nil
}

func resolveState(ctx context.Context, repo Repository, sub Submission) (*State, error) {
	name := sub.StateName
	if name == "" {
		name = sub.StateCode
	}

	state, err := repo.GetStateByCode(ctx, sub.StateCode)
	switch {
	case err == nil:
		// Refresh the display name in place when the submission carries a
		// different non-blank one. No new row.
		if sub.StateName != "" && !strings.EqualFold(state.Name, name) {
			if err := repo.UpdateStateName(ctx, state.Code, name); err != nil {
				return nil, fmt.Errorf("update state name: %w", err)
			}
			state.Name = name
		}
		return state, nil
	case errors.Is(err, ErrNotFound):
		created := State{Code: sub.StateCode, Name: name}
		if err := repo.CreateState(ctx, created); err != nil {
			if errors.Is(err, ErrConflict) {
				return repo.GetStateByCode(ctx, sub.StateCode)
			}
			return nil, fmt.Errorf("create state: %w", err)
		}
		return &created, nil
	default:
		return nil, fmt.Errorf("get state: %w", err)
	}
}

func resolveCity(ctx context.Context, repo Repository, sub Submission, stateCode string) (*City, bool, error) {
	city, err := repo.GetCityByNameAndState(ctx, sub.City, stateCode)
	switch {
	case err == nil:
		return city, true, nil
	case errors.Is(err, ErrNotFound):
		created := &City{Name: sub.City, StateCode: stateCode}
		if err := repo.CreateCity(ctx, created); err != nil {
			if errors.Is(err, ErrConflict) {
				winner, err := repo.GetCityByNameAndState(ctx, sub.City, stateCode)
				return winner, true, err
			}
			return nil, false, fmt.Errorf("create city: %w", err)
		}
		return created, false, nil
	default:
		return nil, false, fmt.Errorf("get city: %w", err)
	}
}

func resolveNeighborhood(ctx context.Context, repo Repository, sub Submission, city *City, cityExisted bool) (*Neighborhood, error) {
	// A city created in this call cannot have neighborhoods yet; skip the
	// lookup and go straight to insert.
	if cityExisted {
		neighborhood, err := repo.GetNeighborhood(ctx, sub.Neighborhood, city.ID)
		if err == nil {
			return neighborhood, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("get neighborhood: %w", err)
		}
	}

	created := &Neighborhood{Name: sub.Neighborhood, CityID: city.ID}
	if err := repo.CreateNeighborhood(ctx, created); err != nil {
		if errors.Is(err, ErrConflict) {
			winner, err := repo.GetNeighborhood(ctx, sub.Neighborhood, city.ID)
			if err != nil {
				return nil, fmt.Errorf("refetch neighborhood after conflict: %w", err)
			}
			return winner, nil
		}
		return nil, fmt.Errorf("create neighborhood: %w", err)
	}
	return created, nil
}

func validateSubmission(sub Submission) error {
	if err := validate.Struct(sub); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			message := "is required"
			if first.Tag() == "len" {
				message = "must be exactly 2 characters"
			}
			return ValidationError{Field: strings.ToLower(first.Field()), Message: message}
		}
		return ValidationError{Field: "address", Message: err.Error()}
	}
	return nil
}
