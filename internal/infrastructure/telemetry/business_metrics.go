// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the fleet system.
// It tracks ledger movements, route lifecycle activity, and anomaly health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	movementPostedTotal  *Counter
	deliveredQtyTotal    *Counter
	routeTransitionTotal *Counter
	anomalyRaisedTotal   *Counter

	// Gauge metrics (point-in-time values)
	openRouteCount   *Gauge
	openAnomalyCount *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	fleetProvider FleetMetricsProvider
}

// FleetMetricsProvider provides route and anomaly data for periodic metrics
// collection. This interface lets the telemetry layer query operational state
// without depending on the route or anomaly domain directly.
type FleetMetricsProvider interface {
	// GetOpenRouteCountByPlant returns the number of non-terminal routes per plant for a tenant
	GetOpenRouteCountByPlant(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]int64, error)

	// GetOpenAnomalyCount returns the number of unresolved anomalies for a tenant
	GetOpenAnomalyCount(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	FleetProvider   FleetMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		fleetProvider: cfg.FleetProvider,
	}

	var err error

	// Ledger metrics
	bm.movementPostedTotal, err = NewCounter(
		cfg.Meter,
		"fleet_movement_posted_total",
		"Total number of ledger movements appended",
		"{movements}",
	)
	if err != nil {
		return nil, err
	}

	bm.deliveredQtyTotal, err = NewCounter(
		cfg.Meter,
		"fleet_delivered_quantity_total",
		"Total quantity delivered to clients",
		"{units}",
	)
	if err != nil {
		return nil, err
	}

	// Route metrics
	bm.routeTransitionTotal, err = NewCounter(
		cfg.Meter,
		"fleet_route_transition_total",
		"Total number of route lifecycle transitions",
		"{transitions}",
	)
	if err != nil {
		return nil, err
	}

	// Anomaly metrics
	bm.anomalyRaisedTotal, err = NewCounter(
		cfg.Meter,
		"fleet_anomaly_raised_total",
		"Total number of anomalies raised",
		"{anomalies}",
	)
	if err != nil {
		return nil, err
	}

	// Operational gauge metrics
	bm.openRouteCount, err = NewGauge(
		cfg.Meter,
		"fleet_open_route_count",
		"Current number of non-terminal routes",
		"{routes}",
	)
	if err != nil {
		return nil, err
	}

	bm.openAnomalyCount, err = NewGauge(
		cfg.Meter,
		"fleet_open_anomaly_count",
		"Number of anomalies awaiting review",
		"{anomalies}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Ledger Metrics
// =============================================================================

// RecordMovementPosted records an appended ledger movement.
// This should be called from the application layer after the append commits.
func (bm *BusinessMetrics) RecordMovementPosted(ctx context.Context, tenantID uuid.UUID, movementType string) {
	bm.movementPostedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrMovementType.String(movementType),
	)
}

// RecordDeliveredQuantity records quantity handed over at a completed stop.
// Quantities are whole cylinders, so the decimal is truncated to its integer part.
func (bm *BusinessMetrics) RecordDeliveredQuantity(ctx context.Context, tenantID uuid.UUID, qty decimal.Decimal) {
	bm.deliveredQtyTotal.Add(ctx, qty.IntPart(),
		AttrTenantID.String(tenantID.String()),
	)
}

// =============================================================================
// Route Metrics
// =============================================================================

// RecordRouteTransition records a route lifecycle transition, labeled by the
// status the route entered.
func (bm *BusinessMetrics) RecordRouteTransition(ctx context.Context, tenantID uuid.UUID, toStatus string) {
	bm.routeTransitionTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrRouteStatus.String(toStatus),
	)
}

// =============================================================================
// Anomaly Metrics
// =============================================================================

// RecordAnomalyRaised records a newly raised anomaly, labeled by severity.
func (bm *BusinessMetrics) RecordAnomalyRaised(ctx context.Context, tenantID uuid.UUID, severity string) {
	bm.anomalyRaisedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrSeverity.String(severity),
	)
}

// =============================================================================
// Operational Gauges
// =============================================================================

// RecordOpenRouteCount records the current number of open routes for a plant.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOpenRouteCount(ctx context.Context, tenantID, plantID uuid.UUID, count int64) {
	bm.openRouteCount.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
		AttrPlantID.String(plantID.String()),
	)
}

// RecordOpenAnomalyCount records the number of unresolved anomalies.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOpenAnomalyCount(ctx context.Context, tenantID uuid.UUID, count int64) {
	bm.openAnomalyCount.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// TenantProvider provides tenant IDs for periodic metrics collection.
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects route and anomaly gauges every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, tenantProvider, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectFleetMetrics(ctx, tenantProvider)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectFleetMetrics(ctx, tenantProvider)
		}
	}
}

// collectFleetMetrics collects operational gauge metrics for all tenants.
func (bm *BusinessMetrics) collectFleetMetrics(ctx context.Context, tenantProvider TenantProvider) {
	if bm.fleetProvider == nil {
		bm.logger.Debug("No fleet provider configured, skipping operational metrics collection")
		return
	}

	tenantIDs, err := tenantProvider.GetActiveTenantIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		bm.collectTenantFleetMetrics(ctx, tenantID)
	}
}

// collectTenantFleetMetrics collects operational metrics for a single tenant.
func (bm *BusinessMetrics) collectTenantFleetMetrics(ctx context.Context, tenantID uuid.UUID) {
	// Collect open route counts by plant
	openByPlant, err := bm.fleetProvider.GetOpenRouteCountByPlant(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get open route counts for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		for plantID, count := range openByPlant {
			bm.RecordOpenRouteCount(ctx, tenantID, plantID, count)
		}
	}

	// Collect open anomaly count
	openAnomalies, err := bm.fleetProvider.GetOpenAnomalyCount(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get open anomaly count for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordOpenAnomalyCount(ctx, tenantID, openAnomalies)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
