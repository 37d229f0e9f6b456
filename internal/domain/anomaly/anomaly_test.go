package anomaly

import (
	"errors"
	"testing"

	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnomaly(t *testing.T) {
	tenantID := uuid.New()

	tests := []struct {
		name        string
		anomalyType AnomalyType
		severity    Severity
		title       string
		description string
		quantity    decimal.Decimal
		wantErr     bool
	}{
		{"valid shrinkage", AnomalyTypeReturnShrinkage, SeverityMedium, "Return shrinkage", "return short by 3", decimal.NewFromInt(3), false},
		{"valid manual", AnomalyTypeManual, SeverityLow, "Count mismatch", "operator flagged count", decimal.Zero, false},
		{"invalid type", AnomalyType("WEATHER"), SeverityLow, "t", "x", decimal.Zero, true},
		{"invalid severity", AnomalyTypeManual, Severity("EXTREME"), "t", "x", decimal.Zero, true},
		{"empty title", AnomalyTypeManual, SeverityLow, "", "x", decimal.Zero, true},
		{"empty description", AnomalyTypeManual, SeverityLow, "t", "", decimal.Zero, true},
		{"negative quantity", AnomalyTypeManual, SeverityLow, "t", "x", decimal.NewFromInt(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAnomaly(tenantID, tt.anomalyType, tt.severity, tt.title, tt.description, tt.quantity)
			if tt.wantErr {
				assert.True(t, errors.Is(err, shared.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusNew, a.Status)
			assert.Equal(t, tt.title, a.Title)
			assert.True(t, a.Status.IsOpen())
		})
	}
}

func TestAnomaly_ReviewLifecycle(t *testing.T) {
	reviewer := uuid.New()

	a := newTestAnomaly(t)
	require.NoError(t, a.StartReview(reviewer))
	assert.Equal(t, StatusInReview, a.Status)
	require.NotNil(t, a.ReviewedBy)
	assert.Equal(t, reviewer, *a.ReviewedBy)

	// review can only start from NEW
	err := a.StartReview(reviewer)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	require.NoError(t, a.Resolve(reviewer, "driver confirmed two damaged cylinders"))
	assert.Equal(t, StatusResolved, a.Status)
	assert.False(t, a.Status.IsOpen())

	err = a.Resolve(reviewer, "again")
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestAnomaly_ResolveRequiresResolution(t *testing.T) {
	a := newTestAnomaly(t)
	err := a.Resolve(uuid.New(), "")
	assert.True(t, errors.Is(err, shared.ErrValidation))
	assert.Equal(t, StatusNew, a.Status)
}

func TestAnomaly_Dismiss(t *testing.T) {
	a := newTestAnomaly(t)
	require.NoError(t, a.Dismiss(uuid.New(), "duplicate of earlier report"))
	assert.Equal(t, StatusDismissed, a.Status)

	err := a.Dismiss(uuid.New(), "again")
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestAnomaly_WithRoute(t *testing.T) {
	routeID := uuid.New()
	a := newTestAnomaly(t)
	a.WithRoute(routeID)
	require.NotNil(t, a.RouteID)
	assert.Equal(t, routeID, *a.RouteID)
}

func newTestAnomaly(t *testing.T) *Anomaly {
	t.Helper()
	a, err := NewAnomaly(uuid.New(), AnomalyTypeReturnShrinkage, SeverityHigh, "Return shrinkage", "return short by 3", decimal.NewFromInt(3))
	require.NoError(t, err)
	return a
}
