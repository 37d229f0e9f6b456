package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fleet/backend/internal/domain/ledger"
	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMovementRepository is a mock implementation of ledger.MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Append(ctx context.Context, movement *ledger.Movement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) AppendAll(ctx context.Context, movements ...*ledger.Movement) error {
	args := m.Called(ctx, movements)
	return args.Error(0)
}

func (m *MockMovementRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Movement, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Movement), args.Error(1)
}

func (m *MockMovementRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, refType ledger.ReferenceType, refID uuid.UUID) ([]ledger.Movement, error) {
	args := m.Called(ctx, tenantID, refType, refID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Movement), args.Error(1)
}

func (m *MockMovementRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ledger.Movement, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Movement), args.Error(1)
}

func (m *MockMovementRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMovementRepository) BalanceOf(ctx context.Context, tenantID uuid.UUID, location ledger.LocationRef) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, location)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockMovementRepository) BalanceOfForUpdate(ctx context.Context, tenantID uuid.UUID, location ledger.LocationRef) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, location)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockMovementRepository) TotalInPlants(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockMovementRepository) TotalInVehicles(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockMovementRepository) SumDeliveredSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, since)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// fakeSummaryCache is an in-memory SummaryCache for tests
type fakeSummaryCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*InventorySummaryResponse
}

func newFakeSummaryCache() *fakeSummaryCache {
	return &fakeSummaryCache{entries: make(map[uuid.UUID]*InventorySummaryResponse)}
}

func (c *fakeSummaryCache) Get(_ context.Context, tenantID uuid.UUID) (*InventorySummaryResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	summary, ok := c.entries[tenantID]
	return summary, ok
}

func (c *fakeSummaryCache) Set(_ context.Context, tenantID uuid.UUID, summary *InventorySummaryResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[tenantID] = summary
}

func (c *fakeSummaryCache) Invalidate(_ context.Context, tenantID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, tenantID)
}

func newTestService(repo *MockMovementRepository) *Service {
	return NewService(NewNoOpTransactionScope(repo), repo)
}

func TestService_PostAdjustment_PlantCredit(t *testing.T) {
	repo := new(MockMovementRepository)
	service := newTestService(repo)
	ctx := context.Background()
	tenantID := uuid.New()
	userID := uuid.New()
	plantID := uuid.New()

	var posted *ledger.Movement
	repo.On("Append", ctx, mock.AnythingOfType("*ledger.Movement")).
		Run(func(args mock.Arguments) { posted = args.Get(1).(*ledger.Movement) }).
		Return(nil)

	resp, err := service.PostAdjustment(ctx, tenantID, userID, PostAdjustmentRequest{
		PlantID:  &plantID,
		Quantity: decimal.NewFromInt(5),
		Notes:    "cycle count correction",
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.MovementTypeAdjustment.String(), resp.MovementType)

	require.NotNil(t, posted)
	assert.True(t, posted.Quantity.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "cycle count correction", posted.Notes)
	require.NotNil(t, posted.CreatedBy)
	assert.Equal(t, userID, *posted.CreatedBy)

	// positive adjustments skip the balance guard
	repo.AssertNotCalled(t, "BalanceOfForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_PostAdjustment_VehicleDebitGuard(t *testing.T) {
	repo := new(MockMovementRepository)
	service := newTestService(repo)
	ctx := context.Background()
	tenantID := uuid.New()
	vehicleID := uuid.New()

	repo.On("BalanceOfForUpdate", ctx, tenantID, ledger.VehicleLocation(vehicleID)).
		Return(decimal.NewFromInt(3), nil)

	_, err := service.PostAdjustment(ctx, tenantID, uuid.New(), PostAdjustmentRequest{
		VehicleID: &vehicleID,
		Quantity:  decimal.NewFromInt(-5),
		Notes:     "damaged stock write-off",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientBalance))
	repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestService_PostAdjustment_RequiresOneLocation(t *testing.T) {
	repo := new(MockMovementRepository)
	service := newTestService(repo)
	plantID := uuid.New()
	vehicleID := uuid.New()

	_, err := service.PostAdjustment(context.Background(), uuid.New(), uuid.New(), PostAdjustmentRequest{
		Quantity: decimal.NewFromInt(1),
		Notes:    "x",
	})
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = service.PostAdjustment(context.Background(), uuid.New(), uuid.New(), PostAdjustmentRequest{
		PlantID:   &plantID,
		VehicleID: &vehicleID,
		Quantity:  decimal.NewFromInt(1),
		Notes:     "x",
	})
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestService_Summary_CachesResult(t *testing.T) {
	repo := new(MockMovementRepository)
	service := newTestService(repo)
	cache := newFakeSummaryCache()
	service.SetSummaryCache(cache)
	ctx := context.Background()
	tenantID := uuid.New()

	repo.On("TotalInPlants", ctx, tenantID).Return(decimal.NewFromInt(400), nil).Once()
	repo.On("TotalInVehicles", ctx, tenantID).Return(decimal.NewFromInt(100), nil).Once()
	repo.On("SumDeliveredSince", ctx, tenantID, mock.AnythingOfType("time.Time")).
		Return(decimal.NewFromInt(85), nil).Once()

	first, err := service.Summary(ctx, tenantID)
	require.NoError(t, err)
	assert.True(t, first.InPlants.Equal(decimal.NewFromInt(400)))
	assert.True(t, first.InVehicles.Equal(decimal.NewFromInt(100)))
	assert.True(t, first.DeliveredToday.Equal(decimal.NewFromInt(85)))

	// second read is served from the cache; the mocks only allow one call
	second, err := service.Summary(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	repo.AssertExpectations(t)
}

func TestService_Summary_RecomputesAfterInvalidation(t *testing.T) {
	repo := new(MockMovementRepository)
	service := newTestService(repo)
	cache := newFakeSummaryCache()
	service.SetSummaryCache(cache)
	ctx := context.Background()
	tenantID := uuid.New()

	repo.On("TotalInPlants", ctx, tenantID).Return(decimal.NewFromInt(400), nil).Twice()
	repo.On("TotalInVehicles", ctx, tenantID).Return(decimal.NewFromInt(100), nil).Twice()
	repo.On("SumDeliveredSince", ctx, tenantID, mock.Anything).Return(decimal.NewFromInt(85), nil).Twice()

	_, err := service.Summary(ctx, tenantID)
	require.NoError(t, err)

	handler := NewSummaryInvalidationHandler(cache)
	event := shared.NewBaseDomainEvent("route.closed", "Route", uuid.New(), tenantID)
	require.NoError(t, handler.Handle(ctx, &event))

	_, err = service.Summary(ctx, tenantID)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_Balance(t *testing.T) {
	repo := new(MockMovementRepository)
	service := newTestService(repo)
	ctx := context.Background()
	tenantID := uuid.New()
	vehicleID := uuid.New()

	repo.On("BalanceOf", ctx, tenantID, ledger.VehicleLocation(vehicleID)).
		Return(decimal.NewFromInt(42), nil)

	resp, err := service.Balance(ctx, tenantID, nil, &vehicleID)
	require.NoError(t, err)
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(42)))
	require.NotNil(t, resp.VehicleID)
	assert.Equal(t, vehicleID, *resp.VehicleID)
}
