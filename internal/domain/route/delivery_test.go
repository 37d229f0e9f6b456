package route

import (
	"errors"
	"testing"

	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDelivery(t *testing.T) {
	tenantID := uuid.New()
	routeID := uuid.New()
	clientID := uuid.New()

	tests := []struct {
		name       string
		clientID   uuid.UUID
		clientName string
		order      int
		plannedQty decimal.Decimal
		unitPrice  decimal.Decimal
		wantErr    bool
	}{
		{"valid delivery", clientID, "Cliente Uno", 1, decimal.NewFromInt(10), decimal.NewFromInt(25), false},
		{"free delivery", clientID, "Cliente Uno", 1, decimal.NewFromInt(10), decimal.Zero, false},
		{"empty client", uuid.Nil, "Cliente Uno", 1, decimal.NewFromInt(10), decimal.NewFromInt(25), true},
		{"empty client name", clientID, "", 1, decimal.NewFromInt(10), decimal.NewFromInt(25), true},
		{"zero order", clientID, "Cliente Uno", 0, decimal.NewFromInt(10), decimal.NewFromInt(25), true},
		{"zero planned qty", clientID, "Cliente Uno", 1, decimal.Zero, decimal.NewFromInt(25), true},
		{"negative price", clientID, "Cliente Uno", 1, decimal.NewFromInt(10), decimal.NewFromInt(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDelivery(tenantID, routeID, tt.clientID, tt.clientName, tt.order, tt.plannedQty, tt.unitPrice)
			if tt.wantErr {
				assert.True(t, errors.Is(err, shared.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DeliveryStatusPending, d.Status)
			assert.True(t, d.DeliveredQty.IsZero())
		})
	}
}

func TestDelivery_Complete(t *testing.T) {
	tests := []struct {
		name         string
		deliveredQty decimal.Decimal
		receiver     string
		tolerance    decimal.Decimal
		wantStatus   DeliveryStatus
		wantErr      bool
	}{
		{"exact quantity", decimal.NewFromInt(10), "J. Perez", decimal.Zero, DeliveryStatusDelivered, false},
		{"partial quantity", decimal.NewFromInt(7), "J. Perez", decimal.Zero, DeliveryStatusPartial, false},
		{"overage rejected at zero tolerance", decimal.NewFromFloat(10.1), "J. Perez", decimal.Zero, "", true},
		{"overage within tolerance", decimal.NewFromInt(11), "J. Perez", decimal.NewFromFloat(0.1), DeliveryStatusPartial, false},
		{"overage beyond tolerance", decimal.NewFromInt(12), "J. Perez", decimal.NewFromFloat(0.1), "", true},
		{"zero quantity", decimal.Zero, "J. Perez", decimal.Zero, "", true},
		{"negative quantity", decimal.NewFromInt(-3), "J. Perez", decimal.Zero, "", true},
		{"missing receiver", decimal.NewFromInt(10), "", decimal.Zero, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDelivery(t)
			err := d.Complete(tt.deliveredQty, tt.receiver, tt.tolerance)
			if tt.wantErr {
				assert.True(t, errors.Is(err, shared.ErrValidation))
				assert.Equal(t, DeliveryStatusPending, d.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, d.Status)
			assert.True(t, d.DeliveredQty.Equal(tt.deliveredQty))
			assert.True(t, d.TotalAmount.Equal(tt.deliveredQty.Mul(d.UnitPrice)))
			assert.Equal(t, tt.receiver, d.ReceiverName)
			require.NotNil(t, d.DeliveredAt)
		})
	}
}

func TestDelivery_SettledGuards(t *testing.T) {
	d := newTestDelivery(t)
	require.NoError(t, d.Complete(decimal.NewFromInt(10), "J. Perez", decimal.Zero))

	err := d.Complete(decimal.NewFromInt(5), "M. Lopez", decimal.Zero)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	err = d.MarkIncident("too late")
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	err = d.MarkNotDelivered()
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestDelivery_MarkIncident(t *testing.T) {
	d := newTestDelivery(t)

	err := d.MarkIncident("")
	assert.True(t, errors.Is(err, shared.ErrValidation))

	require.NoError(t, d.MarkIncident("client absent"))
	assert.Equal(t, DeliveryStatusIncident, d.Status)
	assert.True(t, d.DeliveredQty.IsZero())
	assert.True(t, d.TotalAmount.IsZero())
	assert.Equal(t, "client absent", d.IncidentReason)
}

func newTestDelivery(t *testing.T) *Delivery {
	t.Helper()
	d, err := NewDelivery(uuid.New(), uuid.New(), uuid.New(), "Cliente Uno", 1, decimal.NewFromInt(10), decimal.NewFromInt(25))
	require.NoError(t, err)
	return d
}
