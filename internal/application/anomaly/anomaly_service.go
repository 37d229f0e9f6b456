package anomaly

import (
	"context"

	"github.com/fleet/backend/internal/domain/anomaly"
	"github.com/fleet/backend/internal/domain/shared"
	"github.com/fleet/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// Service manages the anomaly review queue
type Service struct {
	anomalyRepo     anomaly.Repository
	businessMetrics *telemetry.BusinessMetrics
}

// NewService creates a new anomaly Service
func NewService(anomalyRepo anomaly.Repository) *Service {
	return &Service{anomalyRepo: anomalyRepo}
}

// SetBusinessMetrics sets the business metrics collector
func (s *Service) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create files a manual anomaly
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req CreateAnomalyRequest) (*AnomalyResponse, error) {
	a, err := anomaly.NewAnomaly(tenantID, anomaly.AnomalyTypeManual, anomaly.Severity(req.Severity), req.Title, req.Description, req.Quantity)
	if err != nil {
		return nil, err
	}
	if req.RouteID != nil {
		a.WithRoute(*req.RouteID)
	}

	if err := s.anomalyRepo.Save(ctx, a); err != nil {
		return nil, err
	}

	// Record business metrics
	if s.businessMetrics != nil {
		s.businessMetrics.RecordAnomalyRaised(ctx, tenantID, string(a.Severity))
	}

	response := ToAnomalyResponse(a)
	return &response, nil
}

// GetByID retrieves an anomaly by ID
func (s *Service) GetByID(ctx context.Context, tenantID, anomalyID uuid.UUID) (*AnomalyResponse, error) {
	a, err := s.anomalyRepo.FindByIDForTenant(ctx, tenantID, anomalyID)
	if err != nil {
		return nil, err
	}
	response := ToAnomalyResponse(a)
	return &response, nil
}

// List retrieves anomalies with filtering and pagination
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter AnomalyListFilter) ([]AnomalyResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
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
	if filter.Type != nil {
		domainFilter.Filters["anomaly_type"] = *filter.Type
	}
	if filter.Severity != nil {
		domainFilter.Filters["severity"] = *filter.Severity
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.RouteID != nil {
		domainFilter.Filters["route_id"] = *filter.RouteID
	}

	anomalies, err := s.anomalyRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.anomalyRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToAnomalyResponses(anomalies), total, nil
}

// ListOpen retrieves all anomalies still awaiting attention
func (s *Service) ListOpen(ctx context.Context, tenantID uuid.UUID) ([]AnomalyResponse, error) {
	anomalies, err := s.anomalyRepo.FindOpenForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ToAnomalyResponses(anomalies), nil
}

// ListByRoute retrieves the anomalies linked to a route
func (s *Service) ListByRoute(ctx context.Context, tenantID, routeID uuid.UUID) ([]AnomalyResponse, error) {
	anomalies, err := s.anomalyRepo.FindByRoute(ctx, tenantID, routeID)
	if err != nil {
		return nil, err
	}
	return ToAnomalyResponses(anomalies), nil
}

// StartReview moves an anomaly from NEW to IN_REVIEW
func (s *Service) StartReview(ctx context.Context, tenantID, anomalyID, reviewerID uuid.UUID) (*AnomalyResponse, error) {
	a, err := s.anomalyRepo.FindByIDForTenant(ctx, tenantID, anomalyID)
	if err != nil {
		return nil, err
	}

	if err := a.StartReview(reviewerID); err != nil {
		return nil, err
	}
	if err := s.anomalyRepo.SaveWithLock(ctx, a); err != nil {
		return nil, err
	}

	response := ToAnomalyResponse(a)
	return &response, nil
}

// Resolve closes an anomaly with an explanation
func (s *Service) Resolve(ctx context.Context, tenantID, anomalyID, reviewerID uuid.UUID, req ResolveAnomalyRequest) (*AnomalyResponse, error) {
	a, err := s.anomalyRepo.FindByIDForTenant(ctx, tenantID, anomalyID)
	if err != nil {
		return nil, err
	}

	if err := a.Resolve(reviewerID, req.Resolution); err != nil {
		return nil, err
	}
	if err := s.anomalyRepo.SaveWithLock(ctx, a); err != nil {
		return nil, err
	}

	response := ToAnomalyResponse(a)
	return &response, nil
}

// Dismiss closes an anomaly without action
func (s *Service) Dismiss(ctx context.Context, tenantID, anomalyID, reviewerID uuid.UUID, req DismissAnomalyRequest) (*AnomalyResponse, error) {
	a, err := s.anomalyRepo.FindByIDForTenant(ctx, tenantID, anomalyID)
	if err != nil {
		return nil, err
	}

	if err := a.Dismiss(reviewerID, req.Reason); err != nil {
		return nil, err
	}
	if err := s.anomalyRepo.SaveWithLock(ctx, a); err != nil {
		return nil, err
	}

	response := ToAnomalyResponse(a)
	return &response, nil
}
