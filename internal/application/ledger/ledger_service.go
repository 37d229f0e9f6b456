package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/fleet/backend/internal/domain/ledger"
	"github.com/fleet/backend/internal/domain/shared"
	"github.com/fleet/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// SummaryCache caches the tenant-wide inventory summary read model.
// Entries are invalidated explicitly when a ledger-affecting event is
// published, never by guessing at staleness.
type SummaryCache interface {
	// Get returns the cached summary for a tenant, or false when absent
	Get(ctx context.Context, tenantID uuid.UUID) (*InventorySummaryResponse, bool)
	// Set stores the summary for a tenant
	Set(ctx context.Context, tenantID uuid.UUID, summary *InventorySummaryResponse)
	// Invalidate drops the cached summary for a tenant
	Invalidate(ctx context.Context, tenantID uuid.UUID)
}

// Service exposes the quantity ledger: balances, movement history, the
// cached inventory summary and manual adjustments. All writes go through
// the append-only movement repository; nothing here ever updates or
// deletes a movement.
type Service struct {
	scope           TransactionScope
	movementRepo    ledger.MovementRepository
	cache           SummaryCache
	businessMetrics *telemetry.BusinessMetrics
	unit            string
}

// NewService creates a new ledger Service
func NewService(scope TransactionScope, movementRepo ledger.MovementRepository) *Service {
	return &Service{
		scope:        scope,
		movementRepo: movementRepo,
		unit:         "cylinder",
	}
}

// SetSummaryCache sets the read-model cache (optional)
func (s *Service) SetSummaryCache(cache SummaryCache) {
	s.cache = cache
}

// SetBusinessMetrics sets the business metrics collector
func (s *Service) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetQuantityUnit overrides the unit recorded on ledger movements
func (s *Service) SetQuantityUnit(unit string) {
	if unit != "" {
		s.unit = unit
	}
}

// PostAdjustment appends a manual ADJUSTMENT movement. A negative
// adjustment against a vehicle is checked under a row lock so the vehicle
// balance cannot be driven below zero.
func (s *Service) PostAdjustment(ctx context.Context, tenantID, userID uuid.UUID, req PostAdjustmentRequest) (*MovementResponse, error) {
	location, err := locationFromIDs(req.PlantID, req.VehicleID)
	if err != nil {
		return nil, err
	}

	movement, err := ledger.NewMovement(tenantID, location, ledger.MovementTypeAdjustment,
		req.Quantity, s.unit, ledger.ReferenceTypeManual, userID)
	if err != nil {
		return nil, err
	}
	movement.WithNotes(req.Notes).WithCreatedBy(userID)

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if movement.IsDebit() && location.IsVehicle() {
			balance, err := repos.MovementRepo().BalanceOfForUpdate(ctx, tenantID, location)
			if err != nil {
				return err
			}
			if balance.Add(req.Quantity).IsNegative() {
				return shared.NewDomainError("INSUFFICIENT_BALANCE",
					fmt.Sprintf("Vehicle holds %s; adjustment of %s would go negative", balance.String(), req.Quantity.String()))
			}
		}
		return repos.MovementRepo().Append(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, tenantID)
	}

	// Record business metrics
	if s.businessMetrics != nil {
		s.businessMetrics.RecordMovementPosted(ctx, tenantID, string(ledger.MovementTypeAdjustment))
	}

	response := ToMovementResponse(movement)
	return &response, nil
}

// Balance returns the current signed balance at a plant or vehicle
func (s *Service) Balance(ctx context.Context, tenantID uuid.UUID, plantID, vehicleID *uuid.UUID) (*BalanceResponse, error) {
	location, err := locationFromIDs(plantID, vehicleID)
	if err != nil {
		return nil, err
	}

	balance, err := s.movementRepo.BalanceOf(ctx, tenantID, location)
	if err != nil {
		return nil, err
	}

	return &BalanceResponse{
		PlantID:   location.PlantID,
		VehicleID: location.VehicleID,
		Balance:   balance,
		Unit:      s.unit,
		AsOf:      time.Now(),
	}, nil
}

// Summary returns the tenant-wide inventory summary, served from cache
// when a fresh entry exists
func (s *Service) Summary(ctx context.Context, tenantID uuid.UUID) (*InventorySummaryResponse, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, tenantID); ok {
			return cached, nil
		}
	}

	inPlants, err := s.movementRepo.TotalInPlants(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	inVehicles, err := s.movementRepo.TotalInVehicles(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	deliveredToday, err := s.movementRepo.SumDeliveredSince(ctx, tenantID, startOfDay)
	if err != nil {
		return nil, err
	}

	summary := &InventorySummaryResponse{
		InPlants:       inPlants,
		InVehicles:     inVehicles,
		DeliveredToday: deliveredToday,
		Unit:           s.unit,
		ComputedAt:     now,
	}

	if s.cache != nil {
		s.cache.Set(ctx, tenantID, summary)
	}
	return summary, nil
}

// GetMovement retrieves a single movement
func (s *Service) GetMovement(ctx context.Context, tenantID, movementID uuid.UUID) (*MovementResponse, error) {
	movement, err := s.movementRepo.FindByID(ctx, tenantID, movementID)
	if err != nil {
		return nil, err
	}
	response := ToMovementResponse(movement)
	return &response, nil
}

// ListByReference retrieves the movements caused by a given document
func (s *Service) ListByReference(ctx context.Context, tenantID uuid.UUID, refType string, refID uuid.UUID) ([]MovementResponse, error) {
	referenceType := ledger.ReferenceType(refType)
	if !referenceType.IsValid() {
		return nil, shared.NewValidationError("Invalid reference type")
	}
	movements, err := s.movementRepo.FindByReference(ctx, tenantID, referenceType, refID)
	if err != nil {
		return nil, err
	}
	return ToMovementResponses(movements), nil
}

// List retrieves movements with filtering and pagination
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter MovementListFilter) ([]MovementResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "occurred_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}

	if filter.PlantID != nil {
		domainFilter.Filters["plant_id"] = *filter.PlantID
	}
	if filter.VehicleID != nil {
		domainFilter.Filters["vehicle_id"] = *filter.VehicleID
	}
	if filter.MovementType != nil {
		domainFilter.Filters["movement_type"] = *filter.MovementType
	}
	if filter.ReferenceType != nil {
		domainFilter.Filters["reference_type"] = *filter.ReferenceType
	}
	if filter.ReferenceID != nil {
		domainFilter.Filters["reference_id"] = *filter.ReferenceID
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	movements, err := s.movementRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.movementRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToMovementResponses(movements), total, nil
}

// locationFromIDs builds a LocationRef from the optional plant/vehicle
// pair, rejecting anything but exactly one of the two
func locationFromIDs(plantID, vehicleID *uuid.UUID) (ledger.LocationRef, error) {
	location := ledger.LocationRef{PlantID: plantID, VehicleID: vehicleID}
	if !location.IsValid() {
		return ledger.LocationRef{}, shared.NewValidationError("Exactly one of plant_id or vehicle_id must be given")
	}
	return location, nil
}
