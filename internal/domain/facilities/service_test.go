package facilities

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/easypark/server/internal/domain/geo"
	"github.com/easypark/server/internal/domain/paging"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type fakeGeoRepo struct {
	states        map[string]*geo.State
	cities        map[string]*geo.City
	neighborhoods map[string]*geo.Neighborhood
	addresses     map[int64]*geo.Address
	nextID        int64
	updates       int
}

func newFakeGeoRepo() *fakeGeoRepo {
	return &fakeGeoRepo{
		states:        make(map[string]*geo.State),
		cities:        make(map[string]*geo.City),
		neighborhoods: make(map[string]*geo.Neighborhood),
		addresses:     make(map[int64]*geo.Address),
		nextID:        1,
	}
}

func (r *fakeGeoRepo) GetStateByCode(ctx context.Context, code string) (*geo.State, error) {
	state, ok := r.states[code]
	if !ok {
		return nil, geo.ErrNotFound
	}
	copied := *state
	return &copied, nil
}

func (r *fakeGeoRepo) CreateState(ctx context.Context, state geo.State) error {
	r.states[state.Code] = &state
	return nil
}

func (r *fakeGeoRepo) UpdateStateName(ctx context.Context, code, name string) error {
	state, ok := r.states[code]
	if !ok {
		return geo.ErrNotFound
	}
	state.Name = name
	return nil
}

func (r *fakeGeoRepo) GetCityByNameAndState(ctx context.Context, name, stateCode string) (*geo.City, error) {
	city, ok := r.cities[name+"|"+stateCode]
	if !ok {
		return nil, geo.ErrNotFound
	}
	copied := *city
	return &copied, nil
}

func (r *fakeGeoRepo) CreateCity(ctx context.Context, city *geo.City) error {
	city.ID = r.nextID
	r.nextID++
	copied := *city
	r.cities[city.Name+"|"+city.StateCode] = &copied
	return nil
}

func (r *fakeGeoRepo) GetNeighborhood(ctx context.Context, name string, cityID int64) (*geo.Neighborhood, error) {
	hood, ok := r.neighborhoods[name]
	if !ok || hood.CityID != cityID {
		return nil, geo.ErrNotFound
	}
	copied := *hood
	return &copied, nil
}

func (r *fakeGeoRepo) CreateNeighborhood(ctx context.Context, neighborhood *geo.Neighborhood) error {
	neighborhood.ID = r.nextID
	r.nextID++
	copied := *neighborhood
	r.neighborhoods[neighborhood.Name] = &copied
	return nil
}

func (r *fakeGeoRepo) CreateAddress(ctx context.Context, address *geo.Address) error {
	address.ID = r.nextID
	r.nextID++
	copied := *address
	r.addresses[address.ID] = &copied
	return nil
}

func (r *fakeGeoRepo) UpdateAddress(ctx context.Context, address *geo.Address) error {
	if _, ok := r.addresses[address.ID]; !ok {
		return geo.ErrNotFound
	}
	r.updates++
	copied := *address
	r.addresses[address.ID] = &copied
	return nil
}

type fakeFacilitiesRepo struct {
	geo        *fakeGeoRepo
	facilities map[int64]*Facility
	nextID     int64
}

func (r *fakeFacilitiesRepo) Insert(ctx context.Context, operatorID int64, name string, addressID int64) (int64, error) {
	id := r.nextID
	r.nextID++
	address := r.geo.addresses[addressID]
	r.facilities[id] = &Facility{
		ID:         id,
		OperatorID: operatorID,
		Name:       name,
		Address:    *address,
		CreatedAt:  time.Now().UTC(),
	}
	return id, nil
}

func (r *fakeFacilitiesRepo) Update(ctx context.Context, id, operatorID int64, name string) error {
	facility, ok := r.facilities[id]
	if !ok {
		return ErrNotFound
	}
	facility.OperatorID = operatorID
	facility.Name = name
	return nil
}

func (r *fakeFacilitiesRepo) GetByID(ctx context.Context, id int64) (*Facility, error) {
	facility, ok := r.facilities[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *facility
	if address, ok := r.geo.addresses[facility.Address.ID]; ok {
		copied.Address = *address
	}
	return &copied, nil
}

func (r *fakeFacilitiesRepo) List(ctx context.Context) ([]Facility, error) {
	out := make([]Facility, 0, len(r.facilities))
	for _, facility := range r.facilities {
		out = append(out, *facility)
	}
	return out, nil
}

func (r *fakeFacilitiesRepo) Search(ctx context.Context, filters Filters, params paging.Params) (paging.Page[Facility], error) {
	items, _ := r.List(ctx)
	return paging.NewPage(items, params, int64(len(items))), nil
}

func (r *fakeFacilitiesRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.facilities[id]; !ok {
		return ErrNotFound
	}
	delete(r.facilities, id)
	return nil
}

type fakeStore struct {
	facilities *fakeFacilitiesRepo
	geo        *fakeGeoRepo
	txCalls    int
}

func newFakeStore() *fakeStore {
	geoRepo := newFakeGeoRepo()
	return &fakeStore{
		facilities: &fakeFacilitiesRepo{geo: geoRepo, facilities: make(map[int64]*Facility), nextID: 1},
		geo:        geoRepo,
	}
}

func (s *fakeStore) Facilities() Repository { return s.facilities }
func (s *fakeStore) Geo() geo.Repository    { return s.geo }

func (s *fakeStore) WithTx(ctx context.Context, fn func(context.Context, Store) error) error {
	s.txCalls++
	return fn(ctx, s)
}

func submission() *geo.Submission {
	return &geo.Submission{
		PostalCode:   "80000-000",
		Street:       "Rua XV de Novembro",
		Number:       "1500",
		Neighborhood: "Centro",
		City:         "Curitiba",
		StateCode:    "PR",
		StateName:    "Paraná",
	}
}

func TestCreateResolvesAddressInTransaction(t *testing.T) {
	store := newFakeStore()
	service := NewService(store)

	created, err := service.Create(context.Background(), CreateParams{
		OperatorID: 1,
		Name:       "Estacionamento Central",
		Address:    submission(),
	})
	require.NoError(t, err)
	require.Equal(t, 1, store.txCalls)
	require.Equal(t, "Estacionamento Central", created.Name)
	require.Equal(t, "Curitiba", created.Address.City)
	require.Equal(t, "PR", created.Address.StateCode)
	require.NotNil(t, created.Address.NeighborhoodID)
}

func TestCreateRequiresAddress(t *testing.T) {
	service := NewService(newFakeStore())

	_, err := service.Create(context.Background(), CreateParams{OperatorID: 1, Name: "Sem endereço"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestCreateRejectsInvalidStateCode(t *testing.T) {
	store := newFakeStore()
	service := NewService(store)

	sub := submission()
	sub.StateCode = "PRX"
	_, err := service.Create(context.Background(), CreateParams{OperatorID: 1, Name: "X", Address: sub})

	var verr geo.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "statecode", verr.Field)
}

func TestUpdateReusesExistingAddressRow(t *testing.T) {
	store := newFakeStore()
	service := NewService(store)
	ctx := context.Background()

	created, err := service.Create(ctx, CreateParams{OperatorID: 1, Name: "Antes", Address: submission()})
	require.NoError(t, err)

	sub := submission()
	sub.Number = "1600"
	updated, err := service.Update(ctx, created.ID, CreateParams{OperatorID: 2, Name: "Depois", Address: sub})
	require.NoError(t, err)

	require.Equal(t, "Depois", updated.Name)
	require.EqualValues(t, 2, updated.OperatorID)
	require.Equal(t, created.Address.ID, updated.Address.ID)
	require.Equal(t, "1600", updated.Address.Number)
	require.Equal(t, 1, store.geo.updates)
}

func TestUpdateMissingFacility(t *testing.T) {
	service := NewService(newFakeStore())

	_, err := service.Update(context.Background(), 42, CreateParams{OperatorID: 1, Name: "X", Address: submission()})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSharedAddressChainIsReused(t *testing.T) {
	store := newFakeStore()
	service := NewService(store)
	ctx := context.Background()

	first, err := service.Create(ctx, CreateParams{OperatorID: 1, Name: "Unidade 1", Address: submission()})
	require.NoError(t, err)
	second, err := service.Create(ctx, CreateParams{OperatorID: 1, Name: "Unidade 2", Address: submission()})
	require.NoError(t, err)

	require.NotEqual(t, first.Address.ID, second.Address.ID)
	require.Equal(t, *first.Address.NeighborhoodID, *second.Address.NeighborhoodID)
	require.Len(t, store.geo.cities, 1)
	require.Len(t, store.geo.neighborhoods, 1)
}

func TestParseFilters(t *testing.T) {
	values := url.Values{}
	values.Set("nome", " Central ")
	values.Set("operadoraId", "9")
	values.Set("ufSigla", "pr")

	filters := ParseFilters(values)
	require.Equal(t, "Central", filters.Name)
	require.NotNil(t, filters.OperatorID)
	require.EqualValues(t, 9, *filters.OperatorID)
	require.Equal(t, "PR", filters.StateCode)
	require.Empty(t, filters.City)
}
