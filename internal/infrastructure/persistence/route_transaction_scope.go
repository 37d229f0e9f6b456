package persistence

import (
	"context"

	approute "github.com/fleet/backend/internal/application/route"
	"github.com/fleet/backend/internal/domain/anomaly"
	"github.com/fleet/backend/internal/domain/ledger"
	"github.com/fleet/backend/internal/domain/route"
	"github.com/fleet/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormRouteTransactionScope implements the route lifecycle TransactionScope
// using GORM transactions. It provides atomic execution of a lifecycle
// transition and its ledger movements.
type GormRouteTransactionScope struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, propagated to tx-scoped route repos
}

// NewGormRouteTransactionScope creates a new GormRouteTransactionScope.
func NewGormRouteTransactionScope(db *gorm.DB) *GormRouteTransactionScope {
	return &GormRouteTransactionScope{db: db}
}

// SetOutboxEventSaver sets the outbox event saver handed to route repositories
// created inside transactions, so lifecycle events land in the outbox
// atomically with the transition they describe.
func (s *GormRouteTransactionScope) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	s.outboxSaver = saver
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormRouteTransactionScope) Execute(ctx context.Context, fn func(repos approute.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormRouteTransactionalRepositories{tx: tx, outboxSaver: s.outboxSaver}
		return fn(repos)
	})
}

// gormRouteTransactionalRepositories provides access to all repositories
// within a transaction.
type gormRouteTransactionalRepositories struct {
	tx          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// RouteRepo returns the route repository scoped to the current transaction.
func (r *gormRouteTransactionalRepositories) RouteRepo() route.RouteRepository {
	repo := NewGormRouteRepository(r.tx)
	if r.outboxSaver != nil {
		repo.SetOutboxEventSaver(r.outboxSaver)
	}
	return repo
}

// MovementRepo returns the ledger movement repository scoped to the current transaction.
func (r *gormRouteTransactionalRepositories) MovementRepo() ledger.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

// AnomalyRepo returns the anomaly repository scoped to the current transaction.
func (r *gormRouteTransactionalRepositories) AnomalyRepo() anomaly.Repository {
	return NewGormAnomalyRepository(r.tx)
}

// PaymentRepo returns the payment event repository scoped to the current transaction.
func (r *gormRouteTransactionalRepositories) PaymentRepo() route.PaymentEventRepository {
	return NewGormPaymentEventRepository(r.tx)
}

// Ensure GormRouteTransactionScope implements TransactionScope
var _ approute.TransactionScope = (*GormRouteTransactionScope)(nil)

// Ensure gormRouteTransactionalRepositories implements TransactionalRepositories
var _ approute.TransactionalRepositories = (*gormRouteTransactionalRepositories)(nil)
