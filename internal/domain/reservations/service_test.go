package reservations

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/easypark/server/internal/domain/paging"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	reservations map[int64]*Reservation
	users        map[int64]bool
	spaces       map[int64]bool
	nextID       int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		reservations: make(map[int64]*Reservation),
		users:        map[int64]bool{1: true},
		spaces:       map[int64]bool{1: true},
		nextID:       1,
	}
}

func (r *fakeRepo) Insert(ctx context.Context, params CreateParams) (int64, error) {
	id := r.nextID
	r.nextID++
	r.reservations[id] = &Reservation{
		ID:       id,
		UserID:   params.UserID,
		SpaceID:  params.SpaceID,
		Status:   params.Status,
		StartsAt: params.StartsAt,
		EndsAt:   params.EndsAt,
		ETA:      params.ETA,
	}
	return id, nil
}

func (r *fakeRepo) Update(ctx context.Context, id int64, params CreateParams) error {
	existing, ok := r.reservations[id]
	if !ok {
		return ErrNotFound
	}
	existing.UserID = params.UserID
	existing.SpaceID = params.SpaceID
	existing.Status = params.Status
	existing.StartsAt = params.StartsAt
	existing.EndsAt = params.EndsAt
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id int64) (*Reservation, error) {
	existing, ok := r.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *existing
	return &copied, nil
}

func (r *fakeRepo) Search(ctx context.Context, filters Filters, params paging.Params) (paging.Page[Reservation], error) {
	items := make([]Reservation, 0, len(r.reservations))
	for _, reservation := range r.reservations {
		items = append(items, *reservation)
	}
	return paging.NewPage(items, params, int64(len(items))), nil
}

func (r *fakeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.reservations[id]; !ok {
		return ErrNotFound
	}
	delete(r.reservations, id)
	return nil
}

func (r *fakeRepo) UserExists(ctx context.Context, id int64) (bool, error) {
	return r.users[id], nil
}

func (r *fakeRepo) SpaceExists(ctx context.Context, id int64) (bool, error) {
	return r.spaces[id], nil
}

func TestCreateDefaultsToPreReservation(t *testing.T) {
	service := NewService(newFakeRepo())

	created, err := service.Create(context.Background(), CreateParams{UserID: 1, SpaceID: 1})
	require.NoError(t, err)
	require.Equal(t, DefaultStatus, created.Status)
}

func TestCreateNormalizesStatus(t *testing.T) {
	service := NewService(newFakeRepo())

	created, err := service.Create(context.Background(), CreateParams{UserID: 1, SpaceID: 1, Status: " reservada "})
	require.NoError(t, err)
	require.Equal(t, "RESERVADA", created.Status)
}

func TestCreateChecksReferences(t *testing.T) {
	service := NewService(newFakeRepo())
	ctx := context.Background()

	_, err := service.Create(ctx, CreateParams{UserID: 99, SpaceID: 1})
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = service.Create(ctx, CreateParams{UserID: 1, SpaceID: 99})
	require.ErrorIs(t, err, ErrSpaceNotFound)
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	service := NewService(newFakeRepo())

	_, err := service.Create(context.Background(), CreateParams{UserID: 1})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestUpdateBlankStatusKeepsStored(t *testing.T) {
	service := NewService(newFakeRepo())
	ctx := context.Background()

	created, err := service.Create(ctx, CreateParams{UserID: 1, SpaceID: 1, Status: "RESERVADA"})
	require.NoError(t, err)

	updated, err := service.Update(ctx, created.ID, CreateParams{UserID: 1, SpaceID: 1})
	require.NoError(t, err)
	require.Equal(t, "RESERVADA", updated.Status)

	updated, err = service.Update(ctx, created.ID, CreateParams{UserID: 1, SpaceID: 1, Status: "cancelada"})
	require.NoError(t, err)
	require.Equal(t, "CANCELADA", updated.Status)
}

func TestUpdateMissingReservation(t *testing.T) {
	service := NewService(newFakeRepo())

	_, err := service.Update(context.Background(), 42, CreateParams{UserID: 1, SpaceID: 1})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestParseFiltersReadsDateBounds(t *testing.T) {
	values := url.Values{}
	values.Set("usuarioId", "7")
	values.Set("status", "pre_reserva")
	values.Set("dataInicioDe", "2026-08-01T00:00:00Z")
	values.Set("dataInicioAte", "not-a-date")

	filters := ParseFilters(values)
	require.NotNil(t, filters.UserID)
	require.EqualValues(t, 7, *filters.UserID)
	require.Nil(t, filters.SpaceID)
	require.Equal(t, "PRE_RESERVA", filters.Status)
	require.NotNil(t, filters.StartsFrom)
	require.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), filters.StartsFrom.UTC())
	require.Nil(t, filters.StartsTo)
}
