package route

import (
	"context"

	"github.com/fleet/backend/internal/domain/anomaly"
	"github.com/fleet/backend/internal/domain/ledger"
	"github.com/fleet/backend/internal/domain/route"
)

// TransactionScope provides transactional access to the repositories the
// route lifecycle touches. Every lifecycle transition that posts ledger
// movements runs inside a single scope so the status change and its
// movements commit or roll back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories scoped to
// the current transaction. All repositories share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// RouteRepo returns the route repository scoped to the current transaction
	RouteRepo() route.RouteRepository
	// MovementRepo returns the ledger movement repository scoped to the current transaction
	MovementRepo() ledger.MovementRepository
	// AnomalyRepo returns the anomaly repository scoped to the current transaction
	AnomalyRepo() anomaly.Repository
	// PaymentRepo returns the payment event repository scoped to the current transaction
	PaymentRepo() route.PaymentEventRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing.
type NoOpTransactionScope struct {
	routeRepo    route.RouteRepository
	movementRepo ledger.MovementRepository
	anomalyRepo  anomaly.Repository
	paymentRepo  route.PaymentEventRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	routeRepo route.RouteRepository,
	movementRepo ledger.MovementRepository,
	anomalyRepo anomaly.Repository,
	paymentRepo route.PaymentEventRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		routeRepo:    routeRepo,
		movementRepo: movementRepo,
		anomalyRepo:  anomalyRepo,
		paymentRepo:  paymentRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// RouteRepo returns the route repository.
func (s *NoOpTransactionScope) RouteRepo() route.RouteRepository {
	return s.routeRepo
}

// MovementRepo returns the ledger movement repository.
func (s *NoOpTransactionScope) MovementRepo() ledger.MovementRepository {
	return s.movementRepo
}

// AnomalyRepo returns the anomaly repository.
func (s *NoOpTransactionScope) AnomalyRepo() anomaly.Repository {
	return s.anomalyRepo
}

// PaymentRepo returns the payment event repository.
func (s *NoOpTransactionScope) PaymentRepo() route.PaymentEventRepository {
	return s.paymentRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
