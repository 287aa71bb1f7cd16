/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for
 * all data access operations required by the bnpl-service. By defining an
 * interface, we decouple the application's business logic from the specific
 * database implementation (e.g., PostgreSQL), making the code more modular and
 * easier to test.
 *
 * @dependencies
 * - context: Standard Go library.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"

	"github.com/hanapay/bnpl-service/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Account methods
	CreateBnplAccount(ctx context.Context, account *domain.BnplAccount) error
	FindBnplAccountByUserID(ctx context.Context, userID string) (*domain.BnplAccount, error)
	BnplAccountExists(ctx context.Context, userID string) (bool, error)

	// Usage methods
	// RecordUsage appends a usage row and increments the account's usage
	// amount in one transaction. It fails with ErrUsageExceedsLimit when the
	// purchase would push usage past the credit limit, and with
	// ErrInvalidUsageAmount for non-positive amounts.
	RecordUsage(ctx context.Context, record *domain.UsageRecord) error
	// ListUsageHistory returns up to limit records for the user, most recent
	// first. A non-positive limit applies the repository default.
	ListUsageHistory(ctx context.Context, userID string, limit int) ([]domain.UsageRecord, error)
}
