package reservations

import (
	"context"
	"fmt"
	"strings"

	"github.com/easypark/server/internal/domain/paging"
	"github.com/go-playground/validator/v10"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Reservation, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, params); err != nil {
		return nil, err
	}

	params.Status = strings.ToUpper(strings.TrimSpace(params.Status))
	if params.Status == "" {
		params.Status = DefaultStatus
	}

	id, err := s.repo.Insert(ctx, params)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Reservation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, filters Filters, params paging.Params) (paging.Page[Reservation], error) {
	params.Normalize()
	return s.repo.Search(ctx, filters, params)
}

func (s *Service) Update(ctx context.Context, id int64, params CreateParams) (*Reservation, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, params); err != nil {
		return nil, err
	}

	// A blank status keeps the stored one.
	params.Status = strings.ToUpper(strings.TrimSpace(params.Status))
	if params.Status == "" {
		params.Status = existing.Status
	}

	if err := s.repo.Update(ctx, id, params); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) checkReferences(ctx context.Context, params CreateParams) error {
	ok, err := s.repo.UserExists(ctx, params.UserID)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	ok, err = s.repo.SpaceExists(ctx, params.SpaceID)
	if err != nil {
		return fmt.Errorf("check space: %w", err)
	}
	if !ok {
		return ErrSpaceNotFound
	}
	return nil
}
