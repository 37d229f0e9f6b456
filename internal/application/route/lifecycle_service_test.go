package route

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fleet/backend/internal/domain/ledger"
	"github.com/fleet/backend/internal/domain/registry"
	"github.com/fleet/backend/internal/domain/route"
	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	testTenantID  = uuid.New()
	testPlantID   = uuid.New()
	testVehicleID = uuid.New()
	testClientID  = uuid.New()
)

type lifecycleFixture struct {
	routeRepo    *MockRouteRepository
	movementRepo *MockMovementRepository
	anomalyRepo  *MockAnomalyRepository
	paymentRepo  *MockPaymentEventRepository
	plantRepo    *MockPlantRepository
	vehicleRepo  *MockVehicleRepository
	clientRepo   *MockClientRepository
	service      *LifecycleService
}

func newLifecycleFixture() *lifecycleFixture {
	f := &lifecycleFixture{
		routeRepo:    new(MockRouteRepository),
		movementRepo: new(MockMovementRepository),
		anomalyRepo:  new(MockAnomalyRepository),
		paymentRepo:  new(MockPaymentEventRepository),
		plantRepo:    new(MockPlantRepository),
		vehicleRepo:  new(MockVehicleRepository),
		clientRepo:   new(MockClientRepository),
	}
	scope := NewNoOpTransactionScope(f.routeRepo, f.movementRepo, f.anomalyRepo, f.paymentRepo)
	f.service = NewLifecycleService(scope, f.routeRepo, f.movementRepo, f.plantRepo, f.vehicleRepo, f.clientRepo)
	return f
}

func testPlant() *registry.Plant {
	p, _ := registry.NewPlant(testTenantID, "Planta Norte", "Av. Industrial 100", decimal.NewFromInt(5000))
	p.ID = testPlantID
	return p
}

func testVehicle(capacity int64) *registry.Vehicle {
	v, _ := registry.NewVehicle(testTenantID, "ABC-1234", decimal.NewFromInt(capacity))
	v.ID = testVehicleID
	return v
}

func testClient() *registry.Client {
	c, _ := registry.NewClient(testTenantID, "Distribuidora Sol", "Calle 5 #23", "555-0100", registry.ClientTypeContract)
	c.ID = testClientID
	return c
}

func createRequest(assigned int64) CreateRouteRequest {
	return CreateRouteRequest{
		PlantID:     testPlantID,
		VehicleID:   testVehicleID,
		PlannedDate: time.Now().Add(24 * time.Hour),
		AssignedQty: decimal.NewFromInt(assigned),
		Deliveries: []CreateRouteDeliveryInput{
			{ClientID: testClientID, PlannedQty: decimal.NewFromInt(assigned), UnitPrice: decimal.NewFromInt(25)},
		},
	}
}

func TestLifecycleService_Create(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	f.plantRepo.On("FindByIDForTenant", ctx, testTenantID, testPlantID).Return(testPlant(), nil)
	f.vehicleRepo.On("FindByIDForTenant", ctx, testTenantID, testVehicleID).Return(testVehicle(200), nil)
	f.clientRepo.On("FindByIDsForTenant", ctx, testTenantID, []uuid.UUID{testClientID}).
		Return([]registry.Client{*testClient()}, nil)
	f.routeRepo.On("GenerateRouteNumber", ctx, testTenantID).Return("RT-2026-00001", nil)
	f.routeRepo.On("Save", ctx, mock.AnythingOfType("*route.Route")).Return(nil)

	var posted []*ledger.Movement
	f.movementRepo.On("AppendAll", ctx, mock.Anything).
		Run(func(args mock.Arguments) { posted = args.Get(1).([]*ledger.Movement) }).
		Return(nil)

	resp, err := f.service.Create(ctx, testTenantID, createRequest(100))
	require.NoError(t, err)
	assert.Equal(t, "RT-2026-00001", resp.RouteNumber)
	assert.Equal(t, route.RouteStatusPlanned.String(), resp.Status)
	assert.Len(t, resp.Deliveries, 1)

	// the paired load movements: plant debited, vehicle credited
	require.Len(t, posted, 2)
	assert.Equal(t, ledger.MovementTypeTransferOut, posted[0].MovementType)
	assert.True(t, posted[0].Quantity.Equal(decimal.NewFromInt(-100)))
	require.NotNil(t, posted[0].PlantID)
	assert.Equal(t, ledger.MovementTypeTransferIn, posted[1].MovementType)
	assert.True(t, posted[1].Quantity.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, posted[1].VehicleID)

	f.routeRepo.AssertExpectations(t)
	f.movementRepo.AssertExpectations(t)
}

func TestLifecycleService_Create_EmptyPlantLedger(t *testing.T) {
	// Plants are unconstrained sources: a fresh tenant with no prior
	// movements can still plan its first route.
	f := newLifecycleFixture()
	ctx := context.Background()

	f.plantRepo.On("FindByIDForTenant", ctx, testTenantID, testPlantID).Return(testPlant(), nil)
	f.vehicleRepo.On("FindByIDForTenant", ctx, testTenantID, testVehicleID).Return(testVehicle(200), nil)
	f.clientRepo.On("FindByIDsForTenant", ctx, testTenantID, mock.Anything).
		Return([]registry.Client{*testClient()}, nil)
	f.routeRepo.On("GenerateRouteNumber", ctx, testTenantID).Return("RT-2026-00002", nil)
	f.routeRepo.On("Save", ctx, mock.AnythingOfType("*route.Route")).Return(nil)

	var posted []*ledger.Movement
	f.movementRepo.On("AppendAll", ctx, mock.Anything).
		Run(func(args mock.Arguments) { posted = args.Get(1).([]*ledger.Movement) }).
		Return(nil)

	resp, err := f.service.Create(ctx, testTenantID, createRequest(100))
	require.NoError(t, err)
	assert.Equal(t, route.RouteStatusPlanned.String(), resp.Status)

	// the plant is simply driven negative; no balance precondition applies
	require.Len(t, posted, 2)
	assert.True(t, posted[0].Quantity.Equal(decimal.NewFromInt(-100)))
	f.movementRepo.AssertNotCalled(t, "BalanceOfForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func TestLifecycleService_Create_BlockedClient(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	blocked := testClient()
	require.NoError(t, blocked.Block())

	f.plantRepo.On("FindByIDForTenant", ctx, testTenantID, testPlantID).Return(testPlant(), nil)
	f.vehicleRepo.On("FindByIDForTenant", ctx, testTenantID, testVehicleID).Return(testVehicle(200), nil)
	f.clientRepo.On("FindByIDsForTenant", ctx, testTenantID, mock.Anything).
		Return([]registry.Client{*blocked}, nil)

	_, err := f.service.Create(ctx, testTenantID, createRequest(100))
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrBlockedClient))
}

func TestLifecycleService_Create_DeactivatedPlant(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	inactive := testPlant()
	require.NoError(t, inactive.Deactivate())
	f.plantRepo.On("FindByIDForTenant", ctx, testTenantID, testPlantID).Return(inactive, nil)

	_, err := f.service.Create(ctx, testTenantID, createRequest(100))
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestLifecycleService_Create_ExceedsVehicleCapacity(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	f.plantRepo.On("FindByIDForTenant", ctx, testTenantID, testPlantID).Return(testPlant(), nil)
	f.vehicleRepo.On("FindByIDForTenant", ctx, testTenantID, testVehicleID).Return(testVehicle(80), nil)

	_, err := f.service.Create(ctx, testTenantID, createRequest(100))
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestLifecycleService_Start(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	r := newPlannedRoute(t, 100)
	f.routeRepo.On("FindByIDForUpdate", ctx, testTenantID, r.ID).Return(r, nil)
	f.routeRepo.On("SaveTransition", ctx, r, route.RouteStatusPlanned).Return(nil)

	resp, err := f.service.Start(ctx, testTenantID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, route.RouteStatusInProgress.String(), resp.Status)
	f.routeRepo.AssertExpectations(t)
}

func TestLifecycleService_Start_ConcurrencyConflict(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	r := newPlannedRoute(t, 100)
	f.routeRepo.On("FindByIDForUpdate", ctx, testTenantID, r.ID).Return(r, nil)
	f.routeRepo.On("SaveTransition", ctx, r, route.RouteStatusPlanned).
		Return(shared.NewConflictError("route status changed concurrently"))

	_, err := f.service.Start(ctx, testTenantID, r.ID)
	assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
}

func TestLifecycleService_Cancel_ReturnsRemainingToPlant(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	r := newPlannedRoute(t, 100)
	d, err := r.AddDelivery(testClientID, "Distribuidora Sol", decimal.NewFromInt(50), decimal.NewFromInt(25))
	require.NoError(t, err)
	require.NoError(t, r.Start())
	_, err = r.CompleteDelivery(d.ID, decimal.NewFromInt(40), "J. Perez", decimal.Zero)
	require.NoError(t, err)

	f.routeRepo.On("FindByIDForUpdate", ctx, testTenantID, r.ID).Return(r, nil)
	f.routeRepo.On("SaveTransition", ctx, r, route.RouteStatusInProgress).Return(nil)

	var posted []*ledger.Movement
	f.movementRepo.On("AppendAll", ctx, mock.Anything).
		Run(func(args mock.Arguments) { posted = args.Get(1).([]*ledger.Movement) }).
		Return(nil)

	resp, err := f.service.Cancel(ctx, testTenantID, r.ID, CancelRouteRequest{Reason: "road closed"})
	require.NoError(t, err)
	assert.Equal(t, route.RouteStatusCancelled.String(), resp.Status)

	// 60 still on the vehicle goes back to the plant
	require.Len(t, posted, 2)
	assert.Equal(t, ledger.MovementTypeReturn, posted[0].MovementType)
	assert.True(t, posted[0].Quantity.Equal(decimal.NewFromInt(-60)))
	assert.True(t, posted[1].Quantity.Equal(decimal.NewFromInt(60)))
}

func TestLifecycleService_Flag_FilesAnomaly(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	r := newPlannedRoute(t, 100)
	require.NoError(t, r.Start())

	f.routeRepo.On("FindByIDForUpdate", ctx, testTenantID, r.ID).Return(r, nil)
	f.routeRepo.On("SaveTransition", ctx, r, route.RouteStatusInProgress).Return(nil)
	f.anomalyRepo.On("Save", ctx, mock.AnythingOfType("*anomaly.Anomaly")).Return(nil)

	resp, err := f.service.Flag(ctx, testTenantID, r.ID, FlagRouteRequest{Reason: "overdue"})
	require.NoError(t, err)
	assert.Equal(t, route.RouteStatusAlert.String(), resp.Status)
	f.anomalyRepo.AssertExpectations(t)
}

func TestLifecycleService_GetByID_IncludesVehicleBalance(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	r := newPlannedRoute(t, 100)
	f.routeRepo.On("FindByIDForTenant", ctx, testTenantID, r.ID).Return(r, nil)
	f.movementRepo.On("BalanceOf", ctx, testTenantID, ledger.VehicleLocation(testVehicleID)).
		Return(decimal.NewFromInt(100), nil)

	resp, err := f.service.GetByID(ctx, testTenantID, r.ID)
	require.NoError(t, err)
	require.NotNil(t, resp.VehicleBalance)
	assert.True(t, resp.VehicleBalance.Equal(decimal.NewFromInt(100)))
}

func TestLifecycleService_List_FilterKeys(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	from := time.Now().Add(-48 * time.Hour)
	to := time.Now()

	var captured shared.Filter
	f.routeRepo.On("FindAllForTenant", ctx, testTenantID, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(2).(shared.Filter) }).
		Return([]route.Route{}, nil)
	f.routeRepo.On("CountForTenant", ctx, testTenantID, mock.Anything).Return(int64(0), nil)

	_, _, err := f.service.List(ctx, testTenantID, RouteListFilter{
		Statuses:  []string{"PLANNED", "IN_PROGRESS"},
		StartDate: &from,
		EndDate:   &to,
	})
	require.NoError(t, err)

	// the keys the repository's filter switch dispatches on
	assert.Equal(t, []string{"PLANNED", "IN_PROGRESS"}, captured.Filters["statuses"])
	assert.Equal(t, from, captured.Filters["planned_date_from"])
	assert.Equal(t, to, captured.Filters["planned_date_to"])
}

func newPlannedRoute(t *testing.T, assigned int64) *route.Route {
	t.Helper()
	r, err := route.NewRoute(testTenantID, "RT-2026-00007", testPlantID, testVehicleID,
		time.Now(), decimal.NewFromInt(assigned))
	require.NoError(t, err)
	r.ClearDomainEvents()
	return r
}
