package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/easypark/server/internal/domain/geo"
	"github.com/easypark/server/internal/domain/paging"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Service struct {
	store    Store
	validate *validator.Validate
}

func NewService(store Store) *Service {
	return &Service{store: store, validate: validator.New()}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Payment, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, params); err != nil {
		return nil, err
	}

	status := strings.ToUpper(strings.TrimSpace(params.Status))
	if status == "" {
		status = DefaultStatus
	}
	key := strings.TrimSpace(params.IdempotencyKey)
	if key == "" {
		key = uuid.NewString()
	}

	var created *Payment
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		id, err := tx.Payments().Insert(ctx, InsertRow{
			ReservationID:  params.ReservationID,
			UserID:         params.UserID,
			Status:         status,
			Amount:         params.Amount,
			IdempotencyKey: key,
		})
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		if params.Payer != nil {
			payer := PayerRow{Document: params.Payer.Document, Name: params.Payer.Name}
			if params.Payer.Address != nil {
				address, err := geo.Resolve(ctx, tx.Geo(), *params.Payer.Address, nil)
				if err != nil {
					return err
				}
				payer.AddressID = &address.ID
			}
			if err := tx.Payments().InsertPayer(ctx, id, payer); err != nil {
				return fmt.Errorf("insert payer: %w", err)
			}
		}

		if params.Card != nil {
			card := Card{
				Holder:        params.Card.Holder,
				Brand:         params.Card.Brand,
				LastDigits:    params.Card.LastDigits,
				TransactionID: params.Card.TransactionID,
			}
			if err := tx.Payments().InsertCard(ctx, id, card); err != nil {
				return fmt.Errorf("insert card: %w", err)
			}
		}

		created, err = tx.Payments().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Payment, error) {
	return s.store.Payments().GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, filters Filters, params paging.Params) (paging.Page[Payment], error) {
	params.Normalize()
	return s.store.Payments().Search(ctx, filters, params)
}

func (s *Service) checkReferences(ctx context.Context, params CreateParams) error {
	if params.ReservationID != nil {
		ok, err := s.store.Payments().ReservationExists(ctx, *params.ReservationID)
		if err != nil {
			return fmt.Errorf("check reservation: %w", err)
		}
		if !ok {
			return ErrReservationNotFound
		}
	}
	if params.UserID != nil {
		ok, err := s.store.Payments().UserExists(ctx, *params.UserID)
		if err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if !ok {
			return ErrUserNotFound
		}
	}
	return nil
}
