package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/fleet/backend/internal/domain/anomaly"
	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAnomalyRepository implements anomaly.Repository using GORM
type GormAnomalyRepository struct {
	db *gorm.DB
}

// NewGormAnomalyRepository creates a new GormAnomalyRepository
func NewGormAnomalyRepository(db *gorm.DB) *GormAnomalyRepository {
	return &GormAnomalyRepository{db: db}
}

// FindByIDForTenant finds an anomaly by ID scoped to a tenant
func (r *GormAnomalyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*anomaly.Anomaly, error) {
	var a anomaly.Anomaly
	if err := r.db.WithContext(ctx).
		First(&a, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindAllForTenant finds all anomalies for a tenant
func (r *GormAnomalyRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]anomaly.Anomaly, error) {
	var anomalies []anomaly.Anomaly
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&anomaly.Anomaly{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&anomalies).Error; err != nil {
		return nil, err
	}
	return anomalies, nil
}

// FindOpenForTenant finds anomalies in NEW or IN_REVIEW status
func (r *GormAnomalyRepository) FindOpenForTenant(ctx context.Context, tenantID uuid.UUID) ([]anomaly.Anomaly, error) {
	var anomalies []anomaly.Anomaly
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status IN ?", tenantID, openAnomalyStatuses()).
		Order("created_at DESC").
		Find(&anomalies).Error; err != nil {
		return nil, err
	}
	return anomalies, nil
}

// FindByRoute finds anomalies attributed to a route
func (r *GormAnomalyRepository) FindByRoute(ctx context.Context, tenantID, routeID uuid.UUID) ([]anomaly.Anomaly, error) {
	var anomalies []anomaly.Anomaly
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND route_id = ?", tenantID, routeID).
		Order("created_at DESC").
		Find(&anomalies).Error; err != nil {
		return nil, err
	}
	return anomalies, nil
}

// CountForTenant counts anomalies for a tenant
func (r *GormAnomalyRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&anomaly.Anomaly{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountOpenForTenant counts anomalies in NEW or IN_REVIEW status
func (r *GormAnomalyRepository) CountOpenForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&anomaly.Anomaly{}).
		Where("tenant_id = ? AND status IN ?", tenantID, openAnomalyStatuses()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists an anomaly without a version guard
func (r *GormAnomalyRepository) Save(ctx context.Context, a *anomaly.Anomaly) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// SaveWithLock persists an anomaly guarded by the version it was loaded at.
// Review transitions go through here so two reviewers cannot both resolve
// the same anomaly.
func (r *GormAnomalyRepository) SaveWithLock(ctx context.Context, a *anomaly.Anomaly) error {
	result := r.db.WithContext(ctx).
		Model(&anomaly.Anomaly{}).
		Where("id = ? AND version = ?", a.ID, a.Version-1).
		Updates(map[string]interface{}{
			"status":      a.Status,
			"severity":    a.Severity,
			"reviewed_by": a.ReviewedBy,
			"reviewed_at": a.ReviewedAt,
			"resolution":  a.Resolution,
			"version":     a.Version,
			"updated_at":  a.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewConflictError("Anomaly was modified by another reviewer")
	}
	return nil
}

func openAnomalyStatuses() []anomaly.Status {
	return []anomaly.Status{anomaly.StatusNew, anomaly.StatusInReview}
}

// applyFilter applies filter options to the query
func (r *GormAnomalyRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, AnomalySortFields, "created_at")
	orderDir := "ASC"
	if strings.ToLower(filter.OrderDir) != "asc" {
		orderDir = "DESC"
	}
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormAnomalyRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "anomaly_type":
			query = query.Where("anomaly_type = ?", value)
		case "severity":
			query = query.Where("severity = ?", value)
		case "route_id":
			query = query.Where("route_id = ?", value)
		}
	}

	return query
}

// Ensure GormAnomalyRepository implements anomaly.Repository
var _ anomaly.Repository = (*GormAnomalyRepository)(nil)
