package telemetry_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fleet/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runLabeled invokes WithProfilingLabels and reports whether the wrapped
// function ran, plus the context it received.
func runLabeled(ctx context.Context, labels map[string]string) (bool, context.Context) {
	called := false
	var got context.Context
	telemetry.WithProfilingLabels(ctx, labels, func(c context.Context) {
		called = true
		got = c
	})
	return called, got
}

func TestWithProfilingLabels_AlwaysInvokes(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		labels map[string]string
	}{
		{"nil_labels", nil},
		{"empty_map", map[string]string{}},
		{"dispatch_labels", map[string]string{
			"controller": "RouteHandler",
			"method":     "GET",
			"route":      "/api/v1/routes",
		}},
		{"high_cardinality_filtered", map[string]string{
			"controller": "RouteHandler",
			"user_id":    "driver-lopez",
			"request_id": "dispatch-req-7",
			"trace_id":   "abc123",
		}},
		{"long_value_truncated", map[string]string{
			"controller": strings.Repeat("x", 200),
		}},
		{"empty_key_and_value_skipped", map[string]string{
			"controller": "RouteHandler",
			"method":     "",
			"":           "value",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called, got := runLabeled(ctx, tt.labels)
			assert.True(t, called)
			assert.NotNil(t, got)
		})
	}
}

func TestWithProfilingLabels_SanitizesKeys(t *testing.T) {
	ctx := context.Background()

	for _, key := range []string{"my key", "my-key", "MyKey", "My Custom Key"} {
		t.Run(key, func(t *testing.T) {
			called, _ := runLabeled(ctx, map[string]string{
				key:          "value",
				"controller": "RouteHandler",
			})
			assert.True(t, called)
		})
	}
}

func TestWithProfilingLabels_PreservesContextValues(t *testing.T) {
	type contextKey string
	key := contextKey("plant")
	ctx := context.WithValue(context.Background(), key, "plant-north")

	telemetry.WithProfilingLabels(ctx, map[string]string{"controller": "LedgerHandler"}, func(c context.Context) {
		value := c.Value(key)
		require.NotNil(t, value)
		assert.Equal(t, "plant-north", value)
	})
}

func TestWithProfilingLabels_Nested(t *testing.T) {
	ctx := context.Background()
	outerCalled := false
	innerCalled := false

	telemetry.WithProfilingLabels(ctx, map[string]string{"controller": "RouteHandler"}, func(outerCtx context.Context) {
		outerCalled = true
		telemetry.WithProfilingLabels(outerCtx, map[string]string{
			"operation": "QueryDB",
			"region":    "db_query",
		}, func(context.Context) {
			innerCalled = true
		})
	})

	assert.True(t, outerCalled)
	assert.True(t, innerCalled)
}

func TestWithProfilingLabels_Concurrent(t *testing.T) {
	ctx := context.Background()
	const goroutines = 10
	done := make(chan bool, goroutines)

	for range goroutines {
		go func() {
			telemetry.WithProfilingLabels(ctx, map[string]string{
				"controller": "RouteHandler",
				"operation":  "CloseRoute",
			}, func(context.Context) {})
			done <- true
		}()
	}

	for range goroutines {
		<-done
	}
}

func TestWithPprofLabels(t *testing.T) {
	ctx := context.Background()

	for _, labels := range []map[string]string{
		nil,
		{},
		{"controller": "RouteHandler", "method": "POST"},
	} {
		called := false
		telemetry.WithPprofLabels(ctx, labels, func(context.Context) {
			called = true
		})
		assert.True(t, called)
	}
}

func TestProfilingScope_Builder(t *testing.T) {
	scope := telemetry.NewProfilingScope(nil)

	scope.WithController("RouteHandler").
		WithRoute("/api/v1/routes").
		WithMethod("GET").
		WithTenantID("tenant-123").
		WithOperation("ListRoutes").
		WithRegion("db_query")

	labels := scope.Labels()

	assert.Equal(t, "RouteHandler", labels[telemetry.ProfilingLabelController])
	assert.Equal(t, "/api/v1/routes", labels[telemetry.ProfilingLabelRoute])
	assert.Equal(t, "GET", labels[telemetry.ProfilingLabelMethod])
	assert.Equal(t, "tenant-123", labels[telemetry.ProfilingLabelTenantID])
	assert.Equal(t, "ListRoutes", labels[telemetry.ProfilingLabelOperation])
	assert.Equal(t, "db_query", labels[telemetry.ProfilingLabelRegion])
}

func TestProfilingScope_InitialLabels(t *testing.T) {
	initial := map[string]string{
		"controller": "AnomalyHandler",
		"method":     "GET",
	}

	scope := telemetry.NewProfilingScope(initial)
	scope.WithRoute("/api/v1/anomalies")

	// the scope copies initial labels, mutating the source map has no effect
	initial["controller"] = "Modified"

	labels := scope.Labels()
	assert.Equal(t, "AnomalyHandler", labels["controller"])
	assert.Equal(t, "GET", labels["method"])
	assert.Equal(t, "/api/v1/anomalies", labels["route"])
}

func TestProfilingScope_OverwriteLabel(t *testing.T) {
	scope := telemetry.NewProfilingScope(map[string]string{"controller": "LedgerHandler"})
	scope.WithController("RegistryHandler")

	assert.Equal(t, "RegistryHandler", scope.Labels()["controller"])
}

func TestProfilingScope_LabelsReturnsACopy(t *testing.T) {
	scope := telemetry.NewProfilingScope(nil)
	scope.WithController("RouteHandler")

	leaked := scope.Labels()
	leaked["controller"] = "Modified"

	assert.Equal(t, "RouteHandler", scope.Labels()["controller"])
}

func TestProfilingScope_Run(t *testing.T) {
	called := false

	scope := telemetry.NewProfilingScope(nil)
	scope.WithController("LedgerHandler").WithMethod("POST")
	scope.Run(context.Background(), func(context.Context) {
		called = true
	})

	assert.True(t, called)
}

func TestProfilingScope_WithCustomLabel(t *testing.T) {
	scope := telemetry.NewProfilingScope(nil)
	scope.WithLabel("depot", "plant-north")

	assert.Equal(t, "plant-north", scope.Labels()["depot"])
}

func TestHTTPRequestLabels(t *testing.T) {
	tests := []struct {
		name       string
		controller string
		route      string
		method     string
		tenantID   string
		wantLen    int
	}{
		{"all_fields", "RouteHandler", "/api/v1/routes", "GET", "tenant-123", 4},
		{"empty_tenant", "RouteHandler", "/api/v1/routes", "GET", "", 3},
		{"only_controller", "RouteHandler", "", "", "", 1},
		{"all_empty", "", "", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels := telemetry.HTTPRequestLabels(tt.controller, tt.route, tt.method, tt.tenantID)
			assert.Len(t, labels, tt.wantLen)

			if tt.controller != "" {
				assert.Equal(t, tt.controller, labels[telemetry.ProfilingLabelController])
			}
			if tt.route != "" {
				assert.Equal(t, tt.route, labels[telemetry.ProfilingLabelRoute])
			}
			if tt.method != "" {
				assert.Equal(t, tt.method, labels[telemetry.ProfilingLabelMethod])
			}
			if tt.tenantID != "" {
				assert.Equal(t, tt.tenantID, labels[telemetry.ProfilingLabelTenantID])
			}
		})
	}
}

func TestOperationLabels(t *testing.T) {
	t.Run("operation_only", func(t *testing.T) {
		labels := telemetry.OperationLabels("CreateRoute", nil)

		assert.Equal(t, "CreateRoute", labels[telemetry.ProfilingLabelOperation])
		assert.Len(t, labels, 1)
	})

	t.Run("with_extra_labels", func(t *testing.T) {
		labels := telemetry.OperationLabels("CreateRoute", map[string]string{
			"controller": "RouteHandler",
			"method":     "POST",
		})

		assert.Equal(t, "CreateRoute", labels[telemetry.ProfilingLabelOperation])
		assert.Equal(t, "RouteHandler", labels["controller"])
		assert.Equal(t, "POST", labels["method"])
		assert.Len(t, labels, 3)
	})
}

func TestRegionLabels(t *testing.T) {
	t.Run("region_only", func(t *testing.T) {
		labels := telemetry.RegionLabels("db_query", nil)

		assert.Equal(t, "db_query", labels[telemetry.ProfilingLabelRegion])
		assert.Len(t, labels, 1)
	})

	t.Run("with_extra_labels", func(t *testing.T) {
		labels := telemetry.RegionLabels("db_query", map[string]string{
			"operation": "GetMovements",
			"table":     "ledger_movements",
		})

		assert.Equal(t, "db_query", labels[telemetry.ProfilingLabelRegion])
		assert.Equal(t, "GetMovements", labels["operation"])
		assert.Equal(t, "ledger_movements", labels["table"])
		assert.Len(t, labels, 3)
	})
}

func TestLabelConstants(t *testing.T) {
	assert.Equal(t, "controller", telemetry.ProfilingLabelController)
	assert.Equal(t, "route", telemetry.ProfilingLabelRoute)
	assert.Equal(t, "method", telemetry.ProfilingLabelMethod)
	assert.Equal(t, "tenant_id", telemetry.ProfilingLabelTenantID)
	assert.Equal(t, "operation", telemetry.ProfilingLabelOperation)
	assert.Equal(t, "region", telemetry.ProfilingLabelRegion)
	assert.Equal(t, 128, telemetry.MaxLabelValueLength)
}

func TestHighCardinalityLabels(t *testing.T) {
	for _, label := range []string{"user_id", "request_id", "delivery_id", "trace_id", "span_id", "session_id"} {
		assert.True(t, telemetry.HighCardinalityLabels[label],
			"label %s should be marked as high cardinality", label)
	}
}
