package route

import (
	"context"
	"errors"
	"testing"

	"github.com/fleet/backend/internal/domain/ledger"
	"github.com/fleet/backend/internal/domain/route"
	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type deliveryFixture struct {
	routeRepo    *MockRouteRepository
	movementRepo *MockMovementRepository
	paymentRepo  *MockPaymentEventRepository
	service      *DeliveryService
}

func newDeliveryFixture() *deliveryFixture {
	f := &deliveryFixture{
		routeRepo:    new(MockRouteRepository),
		movementRepo: new(MockMovementRepository),
		paymentRepo:  new(MockPaymentEventRepository),
	}
	scope := NewNoOpTransactionScope(f.routeRepo, f.movementRepo, new(MockAnomalyRepository), f.paymentRepo)
	f.service = NewDeliveryService(scope, f.routeRepo)
	return f
}

func newInProgressRoute(t *testing.T, assigned, planned int64) (*route.Route, *route.Delivery) {
	t.Helper()
	r := newPlannedRoute(t, assigned)
	d, err := r.AddDelivery(testClientID, "Distribuidora Sol", decimal.NewFromInt(planned), decimal.NewFromInt(25))
	require.NoError(t, err)
	require.NoError(t, r.Start())
	r.ClearDomainEvents()
	return r, d
}

func TestDeliveryService_Complete(t *testing.T) {
	f := newDeliveryFixture()
	ctx := context.Background()
	r, d := newInProgressRoute(t, 100, 10)

	f.routeRepo.On("FindByIDForUpdate", ctx, testTenantID, r.ID).Return(r, nil)
	f.routeRepo.On("SaveDelivery", ctx, mock.AnythingOfType("*route.Delivery")).Return(nil)

	var posted *ledger.Movement
	f.movementRepo.On("Append", ctx, mock.AnythingOfType("*ledger.Movement")).
		Run(func(args mock.Arguments) { posted = args.Get(1).(*ledger.Movement) }).
		Return(nil)

	resp, err := f.service.Complete(ctx, testTenantID, r.ID, d.ID, CompleteDeliveryRequest{
		DeliveredQty: decimal.NewFromInt(10),
		ReceiverName: "J. Perez",
	})
	require.NoError(t, err)
	assert.Equal(t, route.DeliveryStatusDelivered.String(), resp.Status)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(250)))

	// the vehicle is debited by the delivered quantity, referencing the stop
	require.NotNil(t, posted)
	assert.Equal(t, ledger.MovementTypeTransferOut, posted.MovementType)
	assert.True(t, posted.Quantity.Equal(decimal.NewFromInt(-10)))
	require.NotNil(t, posted.VehicleID)
	assert.Equal(t, testVehicleID, *posted.VehicleID)
	assert.Equal(t, ledger.ReferenceTypeDelivery, posted.ReferenceType)
	assert.Equal(t, d.ID, posted.ReferenceID)

	f.paymentRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestDeliveryService_Complete_WithPayment(t *testing.T) {
	f := newDeliveryFixture()
	ctx := context.Background()
	r, d := newInProgressRoute(t, 100, 10)

	f.routeRepo.On("FindByIDForUpdate", ctx, testTenantID, r.ID).Return(r, nil)
	f.routeRepo.On("SaveDelivery", ctx, mock.Anything).Return(nil)
	f.movementRepo.On("Append", ctx, mock.Anything).Return(nil)

	var payment *route.PaymentEvent
	f.paymentRepo.On("Append", ctx, mock.AnythingOfType("*route.PaymentEvent")).
		Run(func(args mock.Arguments) { payment = args.Get(1).(*route.PaymentEvent) }).
		Return(nil)

	_, err := f.service.Complete(ctx, testTenantID, r.ID, d.ID, CompleteDeliveryRequest{
		DeliveredQty: decimal.NewFromInt(10),
		ReceiverName: "J. Perez",
		Payment:      &PaymentInput{Method: "CASH", CollectedByDriver: true},
	})
	require.NoError(t, err)

	// amount defaults to the settled total when none is given
	require.NotNil(t, payment)
	assert.Equal(t, route.PaymentMethodCash, payment.Method)
	assert.True(t, payment.Amount.Equal(decimal.NewFromInt(250)))
	assert.True(t, payment.CollectedByDriver)
	assert.Equal(t, d.ID, payment.DeliveryID)
}

func TestDeliveryService_Complete_ExceedsAssigned(t *testing.T) {
	f := newDeliveryFixture()
	ctx := context.Background()
	r, d := newInProgressRoute(t, 8, 8)

	f.routeRepo.On("FindByIDForUpdate", ctx, testTenantID, r.ID).Return(r, nil)
	f.service.SetOverageTolerance(decimal.NewFromFloat(0.5))

	_, err := f.service.Complete(ctx, testTenantID, r.ID, d.ID, CompleteDeliveryRequest{
		DeliveredQty: decimal.NewFromInt(9),
		ReceiverName: "J. Perez",
	})
	assert.True(t, errors.Is(err, shared.ErrValidation))
	f.movementRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestDeliveryService_Complete_UnknownDelivery(t *testing.T) {
	f := newDeliveryFixture()
	ctx := context.Background()
	r, _ := newInProgressRoute(t, 100, 10)

	f.routeRepo.On("FindByIDForUpdate", ctx, testTenantID, r.ID).Return(r, nil)

	_, err := f.service.Complete(ctx, testTenantID, r.ID, uuid.New(), CompleteDeliveryRequest{
		DeliveredQty: decimal.NewFromInt(1),
		ReceiverName: "J. Perez",
	})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestDeliveryService_MarkIncident(t *testing.T) {
	f := newDeliveryFixture()
	ctx := context.Background()
	r, d := newInProgressRoute(t, 100, 10)

	f.routeRepo.On("FindByIDForUpdate", ctx, testTenantID, r.ID).Return(r, nil)
	f.routeRepo.On("SaveDelivery", ctx, mock.Anything).Return(nil)

	resp, err := f.service.MarkIncident(ctx, testTenantID, r.ID, d.ID, DeliveryIncidentRequest{Reason: "client absent"})
	require.NoError(t, err)
	assert.Equal(t, route.DeliveryStatusIncident.String(), resp.Status)
	assert.True(t, resp.DeliveredQty.IsZero())

	// the commodity stays on the vehicle: no ledger movement
	f.movementRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestDeliveryService_MarkNotDelivered(t *testing.T) {
	f := newDeliveryFixture()
	ctx := context.Background()
	r, d := newInProgressRoute(t, 100, 10)

	f.routeRepo.On("FindByIDForUpdate", ctx, testTenantID, r.ID).Return(r, nil)
	f.routeRepo.On("SaveDelivery", ctx, mock.Anything).Return(nil)

	resp, err := f.service.MarkNotDelivered(ctx, testTenantID, r.ID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, route.DeliveryStatusNotDelivered.String(), resp.Status)
}
