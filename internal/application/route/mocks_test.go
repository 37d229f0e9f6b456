package route

import (
	"context"
	"time"

	"github.com/fleet/backend/internal/domain/anomaly"
	"github.com/fleet/backend/internal/domain/ledger"
	"github.com/fleet/backend/internal/domain/registry"
	"github.com/fleet/backend/internal/domain/route"
	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockRouteRepository is a mock implementation of route.RouteRepository
type MockRouteRepository struct {
	mock.Mock
}

func (m *MockRouteRepository) FindByID(ctx context.Context, id uuid.UUID) (*route.Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*route.Route), args.Error(1)
}

func (m *MockRouteRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*route.Route, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*route.Route), args.Error(1)
}

func (m *MockRouteRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*route.Route, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*route.Route), args.Error(1)
}

func (m *MockRouteRepository) FindByRouteNumber(ctx context.Context, tenantID uuid.UUID, routeNumber string) (*route.Route, error) {
	args := m.Called(ctx, tenantID, routeNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*route.Route), args.Error(1)
}

func (m *MockRouteRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]route.Route, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]route.Route), args.Error(1)
}

func (m *MockRouteRepository) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]route.Route, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]route.Route), args.Error(1)
}

func (m *MockRouteRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRouteRepository) CountOpenByPlant(ctx context.Context, tenantID, plantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, plantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRouteRepository) CountOpenByVehicle(ctx context.Context, tenantID, vehicleID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, vehicleID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRouteRepository) Save(ctx context.Context, r *route.Route) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRouteRepository) SaveTransition(ctx context.Context, r *route.Route, fromStatus route.RouteStatus) error {
	args := m.Called(ctx, r, fromStatus)
	return args.Error(0)
}

func (m *MockRouteRepository) SaveDelivery(ctx context.Context, delivery *route.Delivery) error {
	args := m.Called(ctx, delivery)
	return args.Error(0)
}

func (m *MockRouteRepository) GenerateRouteNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

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

// MockAnomalyRepository is a mock implementation of anomaly.Repository
type MockAnomalyRepository struct {
	mock.Mock
}

func (m *MockAnomalyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*anomaly.Anomaly, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anomaly.Anomaly), args.Error(1)
}

func (m *MockAnomalyRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]anomaly.Anomaly, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]anomaly.Anomaly), args.Error(1)
}

func (m *MockAnomalyRepository) FindOpenForTenant(ctx context.Context, tenantID uuid.UUID) ([]anomaly.Anomaly, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]anomaly.Anomaly), args.Error(1)
}

func (m *MockAnomalyRepository) FindByRoute(ctx context.Context, tenantID, routeID uuid.UUID) ([]anomaly.Anomaly, error) {
	args := m.Called(ctx, tenantID, routeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]anomaly.Anomaly), args.Error(1)
}

func (m *MockAnomalyRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAnomalyRepository) CountOpenForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAnomalyRepository) Save(ctx context.Context, a *anomaly.Anomaly) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAnomalyRepository) SaveWithLock(ctx context.Context, a *anomaly.Anomaly) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

// MockPaymentEventRepository is a mock implementation of route.PaymentEventRepository
type MockPaymentEventRepository struct {
	mock.Mock
}

func (m *MockPaymentEventRepository) Append(ctx context.Context, event *route.PaymentEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPaymentEventRepository) FindByDelivery(ctx context.Context, tenantID, deliveryID uuid.UUID) (*route.PaymentEvent, error) {
	args := m.Called(ctx, tenantID, deliveryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*route.PaymentEvent), args.Error(1)
}

func (m *MockPaymentEventRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]route.PaymentEvent, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]route.PaymentEvent), args.Error(1)
}

// MockPlantRepository is a mock implementation of registry.PlantRepository
type MockPlantRepository struct {
	mock.Mock
}

func (m *MockPlantRepository) FindByID(ctx context.Context, id uuid.UUID) (*registry.Plant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Plant), args.Error(1)
}

func (m *MockPlantRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*registry.Plant, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Plant), args.Error(1)
}

func (m *MockPlantRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]registry.Plant, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]registry.Plant), args.Error(1)
}

func (m *MockPlantRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlantRepository) Save(ctx context.Context, plant *registry.Plant) error {
	args := m.Called(ctx, plant)
	return args.Error(0)
}

// MockVehicleRepository is a mock implementation of registry.VehicleRepository
type MockVehicleRepository struct {
	mock.Mock
}

func (m *MockVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*registry.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*registry.Vehicle, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) FindByPlate(ctx context.Context, tenantID uuid.UUID, plate string) (*registry.Vehicle, error) {
	args := m.Called(ctx, tenantID, plate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]registry.Vehicle, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]registry.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVehicleRepository) Save(ctx context.Context, vehicle *registry.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

// MockClientRepository is a mock implementation of registry.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*registry.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Client), args.Error(1)
}

func (m *MockClientRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*registry.Client, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Client), args.Error(1)
}

func (m *MockClientRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]registry.Client, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]registry.Client), args.Error(1)
}

func (m *MockClientRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]registry.Client, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]registry.Client), args.Error(1)
}

func (m *MockClientRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClientRepository) Save(ctx context.Context, client *registry.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}
