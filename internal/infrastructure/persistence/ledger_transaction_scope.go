package persistence

import (
	"context"

	appledger "github.com/fleet/backend/internal/application/ledger"
	"github.com/fleet/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormLedgerTransactionScope implements the ledger TransactionScope using
// GORM transactions. Manual adjustments check the target balance under a
// row lock and append within the same transaction.
type GormLedgerTransactionScope struct {
	db *gorm.DB
}

// NewGormLedgerTransactionScope creates a new GormLedgerTransactionScope.
func NewGormLedgerTransactionScope(db *gorm.DB) *GormLedgerTransactionScope {
	return &GormLedgerTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormLedgerTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormLedgerTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormLedgerTransactionalRepositories provides access to the movement
// repository within a transaction.
type gormLedgerTransactionalRepositories struct {
	tx *gorm.DB
}

// MovementRepo returns the movement repository scoped to the current transaction.
func (r *gormLedgerTransactionalRepositories) MovementRepo() ledger.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

// Ensure GormLedgerTransactionScope implements TransactionScope
var _ appledger.TransactionScope = (*GormLedgerTransactionScope)(nil)

// Ensure gormLedgerTransactionalRepositories implements TransactionalRepositories
var _ appledger.TransactionalRepositories = (*gormLedgerTransactionalRepositories)(nil)
