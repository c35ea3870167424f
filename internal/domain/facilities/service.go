package facilities

import (
	"context"
	"fmt"

	"github.com/easypark/server/internal/domain/geo"
	"github.com/easypark/server/internal/domain/paging"
	"github.com/go-playground/validator/v10"
)

// Service runs facility operations. Creates and updates resolve the
// address chain and persist the facility in one transaction.
type Service struct {
	store    Store
	validate *validator.Validate
}

func NewService(store Store) *Service {
	return &Service{store: store, validate: validator.New()}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Facility, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, err
	}

	var created *Facility
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		address, err := geo.Resolve(ctx, tx.Geo(), *params.Address, nil)
		if err != nil {
			return err
		}
		id, err := tx.Facilities().Insert(ctx, params.OperatorID, params.Name, address.ID)
		if err != nil {
			return fmt.Errorf("insert facility: %w", err)
		}
		created, err = tx.Facilities().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Facility, error) {
	return s.store.Facilities().GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Facility, error) {
	return s.store.Facilities().List(ctx)
}

func (s *Service) Search(ctx context.Context, filters Filters, params paging.Params) (paging.Page[Facility], error) {
	params.Normalize()
	return s.store.Facilities().Search(ctx, filters, params)
}

func (s *Service) Update(ctx context.Context, id int64, params CreateParams) (*Facility, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, err
	}

	var updated *Facility
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		existing, err := tx.Facilities().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := geo.Resolve(ctx, tx.Geo(), *params.Address, &existing.Address); err != nil {
			return err
		}
		if err := tx.Facilities().Update(ctx, id, params.OperatorID, params.Name); err != nil {
			return fmt.Errorf("update facility: %w", err)
		}
		updated, err = tx.Facilities().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Facilities().Delete(ctx, id)
}
