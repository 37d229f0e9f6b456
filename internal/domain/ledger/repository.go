package ledger

import (
	"context"
	"time"

	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementRepository is the append-only persistence interface for ledger
// movements. There are deliberately no update or delete methods: once a
// movement is written it is immutable, and corrections are new movements.
type MovementRepository interface {
	// Append durably writes a movement. The write must be committed before
	// the caller is told the operation succeeded.
	Append(ctx context.Context, movement *Movement) error
	// AppendAll durably writes several movements as one unit
	AppendAll(ctx context.Context, movements ...*Movement) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Movement, error)
	FindByReference(ctx context.Context, tenantID uuid.UUID, refType ReferenceType, refID uuid.UUID) ([]Movement, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Movement, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// BalanceOf folds the signed quantities of every movement at a location
	BalanceOf(ctx context.Context, tenantID uuid.UUID, location LocationRef) (decimal.Decimal, error)
	// BalanceOfForUpdate is BalanceOf with the location's movement rows
	// locked for the remainder of the enclosing transaction, so that a
	// concurrent append cannot slip between the balance check and the write.
	BalanceOfForUpdate(ctx context.Context, tenantID uuid.UUID, location LocationRef) (decimal.Decimal, error)
	// TotalInPlants sums balances across all plant locations of a tenant
	TotalInPlants(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error)
	// TotalInVehicles sums balances across all vehicle locations of a tenant
	TotalInVehicles(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error)
	// SumDeliveredSince sums the magnitude of delivery-referenced outflows
	// recorded at or after the given time (the delivered-today projection)
	SumDeliveredSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (decimal.Decimal, error)
}
