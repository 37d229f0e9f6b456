package anomaly

import (
	"context"

	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the persistence interface for anomalies
type Repository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Anomaly, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Anomaly, error)
	FindOpenForTenant(ctx context.Context, tenantID uuid.UUID) ([]Anomaly, error)
	FindByRoute(ctx context.Context, tenantID, routeID uuid.UUID) ([]Anomaly, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	CountOpenForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
	Save(ctx context.Context, a *Anomaly) error
	SaveWithLock(ctx context.Context, a *Anomaly) error
}
