package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fleet/backend/internal/domain/route"
	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRouteRepository implements RouteRepository using GORM
type GormRouteRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormRouteRepository creates a new GormRouteRepository
func NewGormRouteRepository(db *gorm.DB) *GormRouteRepository {
	return &GormRouteRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormRouteRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// saveOutboxEvents writes the route's pending domain events to the outbox
// using the same connection the aggregate was saved on. Events stay on the
// aggregate so the service can still publish them on the bus after commit;
// the idempotent handler deduplicates the two delivery paths by event ID.
func (r *GormRouteRepository) saveOutboxEvents(ctx context.Context, rt *route.Route) error {
	if r.outboxSaver == nil {
		return nil
	}
	events := rt.GetDomainEvents()
	if len(events) == 0 {
		return nil
	}
	return r.outboxSaver.SaveEvents(ctx, r.db, events...)
}

// FindByID finds a route by its ID
func (r *GormRouteRepository) FindByID(ctx context.Context, id uuid.UUID) (*route.Route, error) {
	var rt route.Route
	if err := r.db.WithContext(ctx).
		Preload("Deliveries", deliveriesInStopOrder).
		First(&rt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rt, nil
}

// FindByIDForTenant finds a route by ID scoped to a tenant
func (r *GormRouteRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*route.Route, error) {
	var rt route.Route
	if err := r.db.WithContext(ctx).
		Preload("Deliveries", deliveriesInStopOrder).
		First(&rt, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rt, nil
}

// FindByIDForUpdate finds a route with its row locked for the remainder of
// the enclosing transaction. The deliveries are loaded without a lock; all
// delivery mutations are serialized through the route row itself.
func (r *GormRouteRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*route.Route, error) {
	var rt route.Route
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&rt, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("route_id = ?", rt.ID).
		Order("delivery_order ASC").
		Find(&rt.Deliveries).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// FindByRouteNumber finds a route by its route number
func (r *GormRouteRepository) FindByRouteNumber(ctx context.Context, tenantID uuid.UUID, routeNumber string) (*route.Route, error) {
	var rt route.Route
	if err := r.db.WithContext(ctx).
		Preload("Deliveries", deliveriesInStopOrder).
		First(&rt, "tenant_id = ? AND route_number = ?", tenantID, routeNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rt, nil
}

// FindAllForTenant finds all routes for a tenant
func (r *GormRouteRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]route.Route, error) {
	var routes []route.Route
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&route.Route{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Preload("Deliveries", deliveriesInStopOrder).Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

// FindActiveForTenant finds routes in PLANNED or IN_PROGRESS status
func (r *GormRouteRepository) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]route.Route, error) {
	var routes []route.Route
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status IN ?", tenantID,
			[]route.RouteStatus{route.RouteStatusPlanned, route.RouteStatusInProgress}).
		Order("planned_date ASC").
		Preload("Deliveries", deliveriesInStopOrder).
		Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

// CountForTenant counts routes for a tenant
func (r *GormRouteRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&route.Route{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountOpenByPlant counts non-terminal routes loading from a plant
func (r *GormRouteRepository) CountOpenByPlant(ctx context.Context, tenantID, plantID uuid.UUID) (int64, error) {
	return r.countOpen(ctx, "tenant_id = ? AND plant_id = ?", tenantID, plantID)
}

// CountOpenByVehicle counts non-terminal routes assigned to a vehicle
func (r *GormRouteRepository) CountOpenByVehicle(ctx context.Context, tenantID, vehicleID uuid.UUID) (int64, error) {
	return r.countOpen(ctx, "tenant_id = ? AND vehicle_id = ?", tenantID, vehicleID)
}

func (r *GormRouteRepository) countOpen(ctx context.Context, cond string, args ...interface{}) (int64, error) {
	var count int64
	openStatuses := []route.RouteStatus{
		route.RouteStatusPlanned,
		route.RouteStatusInProgress,
		route.RouteStatusPendingReturnReview,
	}
	if err := r.db.WithContext(ctx).
		Model(&route.Route{}).
		Where(cond, args...).
		Where("status IN ?", openStatuses).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists a new route together with its deliveries
func (r *GormRouteRepository) Save(ctx context.Context, rt *route.Route) error {
	if err := r.db.WithContext(ctx).Create(rt).Error; err != nil {
		return err
	}
	return r.saveOutboxEvents(ctx, rt)
}

// SaveTransition persists a lifecycle transition guarded by the status the
// route held before the transition. The guard makes concurrent transitions
// on the same route first-writer-wins: the second writer sees zero affected
// rows and gets a concurrency conflict.
func (r *GormRouteRepository) SaveTransition(ctx context.Context, rt *route.Route, fromStatus route.RouteStatus) error {
	result := r.db.WithContext(ctx).
		Model(&route.Route{}).
		Where("id = ? AND status = ?", rt.ID, fromStatus).
		Updates(map[string]interface{}{
			"status":              rt.Status,
			"driver_id":           rt.DriverID,
			"started_at":          rt.StartedAt,
			"finished_at":         rt.FinishedAt,
			"closed_at":           rt.ClosedAt,
			"cancelled_at":        rt.CancelledAt,
			"cancel_reason":       rt.CancelReason,
			"expected_return_qty": rt.ExpectedReturnQty,
			"actual_return_qty":   rt.ActualReturnQty,
			"return_reviewed_by":  rt.ReturnReviewedBy,
			"return_reviewed_at":  rt.ReturnReviewedAt,
			"updated_at":          rt.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewConflictError("Route status changed concurrently")
	}
	return r.saveOutboxEvents(ctx, rt)
}

// SaveDelivery persists a mutated delivery row
func (r *GormRouteRepository) SaveDelivery(ctx context.Context, delivery *route.Delivery) error {
	return r.db.WithContext(ctx).Save(delivery).Error
}

// GenerateRouteNumber generates a unique route number for a tenant.
// Format: RT-YYYY-NNNNN (e.g., RT-2026-00001)
func (r *GormRouteRepository) GenerateRouteNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("RT-%d-", year)

	// Get the highest route number for this year
	var lastRoute route.Route
	err := r.db.WithContext(ctx).
		Model(&route.Route{}).
		Where("tenant_id = ? AND route_number LIKE ?", tenantID, prefix+"%").
		Order("route_number DESC").
		First(&lastRoute).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastRoute.RouteNumber != "" {
		parts := strings.Split(lastRoute.RouteNumber, "-")
		if len(parts) == 3 {
			var num int64
			_, parseErr := fmt.Sscanf(parts[2], "%d", &num)
			if parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	routeNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	// Verify uniqueness; advance past any gap left by concurrent creation
	for i := 0; i < 100; i++ {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&route.Route{}).
			Where("tenant_id = ? AND route_number = ?", tenantID, routeNumber).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return routeNumber, nil
		}
		nextNum++
		routeNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
	}
	return "", fmt.Errorf("could not generate a unique route number for prefix %s", prefix)
}

// deliveriesInStopOrder orders preloaded deliveries by their stop order
func deliveriesInStopOrder(db *gorm.DB) *gorm.DB {
	return db.Order("delivery_order ASC")
}

// applyFilter applies filter options to the query
func (r *GormRouteRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	orderBy := ValidateSortField(filter.OrderBy, RouteSortFields, "created_at")
	orderDir := "ASC"
	if strings.ToLower(filter.OrderDir) != "asc" {
		orderDir = "DESC"
	}
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormRouteRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("route_number ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			query = query.Where("status IN ?", value)
		case "plant_id":
			query = query.Where("plant_id = ?", value)
		case "vehicle_id":
			query = query.Where("vehicle_id = ?", value)
		case "driver_id":
			query = query.Where("driver_id = ?", value)
		case "planned_date_from":
			query = query.Where("planned_date >= ?", value)
		case "planned_date_to":
			query = query.Where("planned_date <= ?", value)
		}
	}

	return query
}

// Ensure GormRouteRepository implements RouteRepository
var _ route.RouteRepository = (*GormRouteRepository)(nil)
