package spaces

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/easypark/server/internal/domain/paging"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// StatusCache is an optional read-through cache for occupancy status.
// Implementations must tolerate being nil-safe bypassed: cache misses and
// cache errors both fall back to the repository.
type StatusCache interface {
	GetStatus(ctx context.Context, spaceID int64) (*Status, bool)
	SetStatus(ctx context.Context, spaceID int64, status *Status)
}

type Service struct {
	repo     Repository
	cache    StatusCache
	logger   zerolog.Logger
	validate *validator.Validate
}

// NewService creates the space service. cache may be nil.
func NewService(repo Repository, cache StatusCache, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		logger:   logger.With().Str("component", "spaces").Logger(),
		validate: validator.New(),
	}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Space, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, params); err != nil {
		return nil, err
	}

	duplicate, err := s.repo.CodeExistsInLevel(ctx, params.LevelID, params.Code, 0)
	if err != nil {
		return nil, fmt.Errorf("check space code: %w", err)
	}
	if duplicate {
		return nil, ErrDuplicateCode
	}

	id, err := s.repo.Insert(ctx, params)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Space, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, status string) ([]Space, error) {
	return s.repo.List(ctx, strings.ToUpper(strings.TrimSpace(status)))
}

func (s *Service) ListByFacility(ctx context.Context, facilityID int64) ([]Space, error) {
	return s.repo.ListByFacility(ctx, facilityID)
}

func (s *Service) Search(ctx context.Context, filters Filters, params paging.Params) (paging.Page[Space], error) {
	params.Normalize()
	return s.repo.Search(ctx, filters, params)
}

func (s *Service) Update(ctx context.Context, id int64, params CreateParams) (*Space, error) {
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

	// The duplicate check only fires when code or level changed, so an
	// update that keeps both never conflicts with the row itself.
	changedCode := !strings.EqualFold(existing.Code, params.Code)
	changedLevel := existing.LevelID != params.LevelID
	if changedCode || changedLevel {
		duplicate, err := s.repo.CodeExistsInLevel(ctx, params.LevelID, params.Code, id)
		if err != nil {
			return nil, fmt.Errorf("check space code: %w", err)
		}
		if duplicate {
			return nil, ErrDuplicateCode
		}
	}

	if err := s.repo.Update(ctx, id, params); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// GetStatus reads the occupancy state of a space, consulting the cache
// first when one is configured. A space without a status row reports
// DESCONHECIDO rather than an error.
func (s *Service) GetStatus(ctx context.Context, id int64) (*Status, error) {
	if s.cache != nil {
		if status, ok := s.cache.GetStatus(ctx, id); ok {
			return status, nil
		}
	}

	status, err := s.repo.GetStatus(ctx, id)
	if errors.Is(err, ErrNotFound) {
		status = &Status{Status: StatusUnknown}
	} else if err != nil {
		return nil, err
	}
	if status.Status == "" {
		status.Status = StatusUnknown
	}

	if s.cache != nil {
		s.cache.SetStatus(ctx, id, status)
	}
	return status, nil
}

func (s *Service) checkReferences(ctx context.Context, params CreateParams) error {
	ok, err := s.repo.LevelExists(ctx, params.LevelID)
	if err != nil {
		return fmt.Errorf("check level: %w", err)
	}
	if !ok {
		return ErrLevelNotFound
	}
	ok, err = s.repo.SpaceTypeExists(ctx, params.SpaceTypeID)
	if err != nil {
		return fmt.Errorf("check space type: %w", err)
	}
	if !ok {
		return ErrSpaceTypeNotFound
	}
	return nil
}
