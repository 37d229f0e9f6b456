package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/fleet/backend/internal/domain/route"
	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentEventRepository implements PaymentEventRepository using GORM.
// Payment events are append-only; the unique index on delivery_id enforces
// the 1:1 coupling with the delivery.
type GormPaymentEventRepository struct {
	db *gorm.DB
}

// NewGormPaymentEventRepository creates a new GormPaymentEventRepository
func NewGormPaymentEventRepository(db *gorm.DB) *GormPaymentEventRepository {
	return &GormPaymentEventRepository{db: db}
}

// Append writes a payment event
func (r *GormPaymentEventRepository) Append(ctx context.Context, event *route.PaymentEvent) error {
	err := r.db.WithContext(ctx).Create(event).Error
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return shared.NewDomainError("ALREADY_EXISTS", "A payment is already recorded for this delivery")
	}
	return err
}

// FindByDelivery finds the payment event for a delivery
func (r *GormPaymentEventRepository) FindByDelivery(ctx context.Context, tenantID, deliveryID uuid.UUID) (*route.PaymentEvent, error) {
	var event route.PaymentEvent
	if err := r.db.WithContext(ctx).
		First(&event, "tenant_id = ? AND delivery_id = ?", tenantID, deliveryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// FindAllForTenant finds all payment events for a tenant
func (r *GormPaymentEventRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]route.PaymentEvent, error) {
	var events []route.PaymentEvent
	query := r.db.WithContext(ctx).Model(&route.PaymentEvent{}).Where("tenant_id = ?", tenantID)

	for key, value := range filter.Filters {
		switch key {
		case "method":
			query = query.Where("method = ?", value)
		case "collected_by_driver":
			query = query.Where("collected_by_driver = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Ensure GormPaymentEventRepository implements PaymentEventRepository
var _ route.PaymentEventRepository = (*GormPaymentEventRepository)(nil)
