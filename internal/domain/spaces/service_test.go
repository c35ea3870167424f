package spaces

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/easypark/server/internal/domain/paging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	spaces     map[int64]*Space
	statuses   map[int64]*Status
	levels     map[int64]bool
	spaceTypes map[int64]bool
	nextID     int64

	statusReads int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		spaces:     make(map[int64]*Space),
		statuses:   make(map[int64]*Status),
		levels:     map[int64]bool{1: true, 2: true},
		spaceTypes: map[int64]bool{1: true},
		nextID:     1,
	}
}

// storedAt stands in for the column default so tests can tell a re-read
// row from one assembled in memory.
var storedAt = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func (r *fakeRepo) Insert(ctx context.Context, params CreateParams) (int64, error) {
	id := r.nextID
	r.nextID++
	r.spaces[id] = &Space{
		ID:          id,
		LevelID:     params.LevelID,
		SpaceTypeID: params.SpaceTypeID,
		Code:        params.Code,
		Active:      params.Active,
		CreatedAt:   storedAt,
	}
	return id, nil
}

func (r *fakeRepo) Update(ctx context.Context, id int64, params CreateParams) error {
	space, ok := r.spaces[id]
	if !ok {
		return ErrNotFound
	}
	space.LevelID = params.LevelID
	space.SpaceTypeID = params.SpaceTypeID
	space.Code = params.Code
	space.Active = params.Active
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id int64) (*Space, error) {
	space, ok := r.spaces[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *space
	return &copied, nil
}

func (r *fakeRepo) List(ctx context.Context, status string) ([]Space, error) {
	out := make([]Space, 0, len(r.spaces))
	for _, space := range r.spaces {
		out = append(out, *space)
	}
	return out, nil
}

func (r *fakeRepo) ListByFacility(ctx context.Context, facilityID int64) ([]Space, error) {
	return r.List(ctx, "")
}

func (r *fakeRepo) Search(ctx context.Context, filters Filters, params paging.Params) (paging.Page[Space], error) {
	items, _ := r.List(ctx, filters.Status)
	return paging.NewPage(items, params, int64(len(items))), nil
}

func (r *fakeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.spaces[id]; !ok {
		return ErrNotFound
	}
	delete(r.spaces, id)
	return nil
}

func (r *fakeRepo) GetStatus(ctx context.Context, id int64) (*Status, error) {
	r.statusReads++
	status, ok := r.statuses[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *status
	return &copied, nil
}

func (r *fakeRepo) LevelExists(ctx context.Context, id int64) (bool, error) {
	return r.levels[id], nil
}

func (r *fakeRepo) SpaceTypeExists(ctx context.Context, id int64) (bool, error) {
	return r.spaceTypes[id], nil
}

func (r *fakeRepo) CodeExistsInLevel(ctx context.Context, levelID int64, code string, excludeID int64) (bool, error) {
	for id, space := range r.spaces {
		if id == excludeID {
			continue
		}
		if space.LevelID == levelID && strings.EqualFold(space.Code, code) {
			return true, nil
		}
	}
	return false, nil
}

type memoryCache struct {
	entries map[int64]*Status
	hits    int
}

func (c *memoryCache) GetStatus(ctx context.Context, spaceID int64) (*Status, bool) {
	status, ok := c.entries[spaceID]
	if ok {
		c.hits++
	}
	return status, ok
}

func (c *memoryCache) SetStatus(ctx context.Context, spaceID int64, status *Status) {
	c.entries[spaceID] = status
}

func newService(repo Repository, cache StatusCache) *Service {
	return NewService(repo, cache, zerolog.Nop())
}

func TestCreateRejectsDuplicateCodeInLevel(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo, nil)
	ctx := context.Background()

	_, err := service.Create(ctx, CreateParams{LevelID: 1, SpaceTypeID: 1, Code: "A-01", Active: true})
	require.NoError(t, err)

	_, err = service.Create(ctx, CreateParams{LevelID: 1, SpaceTypeID: 1, Code: "a-01", Active: true})
	require.ErrorIs(t, err, ErrDuplicateCode)
}

func TestCreateAllowsSameCodeOnOtherLevel(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo, nil)
	ctx := context.Background()

	_, err := service.Create(ctx, CreateParams{LevelID: 1, SpaceTypeID: 1, Code: "A-01"})
	require.NoError(t, err)

	_, err = service.Create(ctx, CreateParams{LevelID: 2, SpaceTypeID: 1, Code: "A-01"})
	require.NoError(t, err)
}

func TestCreateAndUpdateReturnStoredRow(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo, nil)
	ctx := context.Background()

	created, err := service.Create(ctx, CreateParams{LevelID: 1, SpaceTypeID: 1, Code: "A-01", Active: true})
	require.NoError(t, err)
	require.True(t, created.CreatedAt.Equal(storedAt))

	updated, err := service.Update(ctx, created.ID, CreateParams{LevelID: 2, SpaceTypeID: 1, Code: "B-01"})
	require.NoError(t, err)
	require.True(t, updated.CreatedAt.Equal(storedAt))
	require.Equal(t, "B-01", updated.Code)
}

func TestCreateChecksReferences(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo, nil)
	ctx := context.Background()

	_, err := service.Create(ctx, CreateParams{LevelID: 99, SpaceTypeID: 1, Code: "A-01"})
	require.ErrorIs(t, err, ErrLevelNotFound)

	_, err = service.Create(ctx, CreateParams{LevelID: 1, SpaceTypeID: 99, Code: "A-01"})
	require.ErrorIs(t, err, ErrSpaceTypeNotFound)
}

func TestUpdateSkipsDuplicateCheckWhenCodeAndLevelUnchanged(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo, nil)
	ctx := context.Background()

	created, err := service.Create(ctx, CreateParams{LevelID: 1, SpaceTypeID: 1, Code: "A-01", Active: true})
	require.NoError(t, err)

	// Same code, different case: still "unchanged" and must not conflict
	// with the row itself.
	updated, err := service.Update(ctx, created.ID, CreateParams{LevelID: 1, SpaceTypeID: 1, Code: "a-01", Active: false})
	require.NoError(t, err)
	require.False(t, updated.Active)
}

func TestUpdateRejectsMoveOntoTakenCode(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo, nil)
	ctx := context.Background()

	_, err := service.Create(ctx, CreateParams{LevelID: 1, SpaceTypeID: 1, Code: "A-01"})
	require.NoError(t, err)
	second, err := service.Create(ctx, CreateParams{LevelID: 2, SpaceTypeID: 1, Code: "A-01"})
	require.NoError(t, err)

	_, err = service.Update(ctx, second.ID, CreateParams{LevelID: 1, SpaceTypeID: 1, Code: "A-01"})
	require.ErrorIs(t, err, ErrDuplicateCode)
}

func TestGetStatusReportsUnknownWithoutRow(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo, nil)

	status, err := service.GetStatus(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, StatusUnknown, status.Status)
}

func TestGetStatusReadsThroughCache(t *testing.T) {
	repo := newFakeRepo()
	repo.statuses[7] = &Status{Status: "OCUPADA"}
	cache := &memoryCache{entries: make(map[int64]*Status)}
	service := newService(repo, cache)
	ctx := context.Background()

	first, err := service.GetStatus(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "OCUPADA", first.Status)
	require.Equal(t, 1, repo.statusReads)

	second, err := service.GetStatus(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "OCUPADA", second.Status)
	require.Equal(t, 1, repo.statusReads)
	require.Equal(t, 1, cache.hits)
}

func TestParseFilters(t *testing.T) {
	values := url.Values{}
	values.Set("estacionamentoId", "3")
	values.Set("nivelId", "5")
	values.Set("status", "ocupada")
	values.Set("codigo", " A-0 ")

	filters := ParseFilters(values)
	require.NotNil(t, filters.FacilityID)
	require.EqualValues(t, 3, *filters.FacilityID)
	require.NotNil(t, filters.LevelID)
	require.EqualValues(t, 5, *filters.LevelID)
	require.Nil(t, filters.SpaceTypeID)
	require.Equal(t, "OCUPADA", filters.Status)
	require.Equal(t, "A-0", filters.Code)
}

func TestSortColumnsFallBackToDefault(t *testing.T) {
	require.Equal(t, "v.codigo", SortColumns.Resolve("codigo"))
	require.Equal(t, "v.criado_em", SortColumns.Resolve("data"))
	require.Equal(t, "v.codigo", SortColumns.Resolve("nope"))
	require.Equal(t, "v.codigo", SortColumns.Resolve(""))
}
