/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. It contains all the necessary SQL queries to interact with the
 * database tables backing BNPL enrollments and usage history.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hanapay/bnpl-service/internal/domain"
)

var (
	ErrBnplAccountNotFound      = errors.New("bnpl account not found")
	ErrBnplAccountAlreadyExists = errors.New("bnpl account already exists")
	ErrUsageExceedsLimit        = errors.New("usage would exceed credit limit")
	ErrInvalidUsageAmount       = errors.New("usage amount must be positive")
)

// DefaultUsageHistoryLimit bounds the "recent N" usage listing. The full
// history is a separate view and not served by this repository.
const DefaultUsageHistoryLimit = 50

// PostgresRepository is a concrete implementation of the Repository interface
// for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateBnplAccount inserts the enrollment record produced by an approved
// application. The unique index on user_id enforces one enrollment per user.
func (r *PostgresRepository) CreateBnplAccount(ctx context.Context, account *domain.BnplAccount) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	query := `
		INSERT INTO bnpl_accounts (id, user_id, payment_day, payment_account, usage_amount, credit_limit, application_date, approval_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		account.ID, account.UserID, account.PaymentDay, account.PaymentAccount,
		account.UsageAmount, account.CreditLimit, account.ApplicationDate, account.ApprovalStatus,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrBnplAccountAlreadyExists
		}
		return err
	}
	return nil
}

// FindBnplAccountByUserID retrieves a user's enrollment record.
func (r *PostgresRepository) FindBnplAccountByUserID(ctx context.Context, userID string) (*domain.BnplAccount, error) {
	var account domain.BnplAccount
	query := `
		SELECT id, user_id, payment_day, payment_account, usage_amount, credit_limit, application_date, approval_status, created_at, updated_at
		FROM bnpl_accounts
		WHERE user_id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&account.ID, &account.UserID, &account.PaymentDay, &account.PaymentAccount,
		&account.UsageAmount, &account.CreditLimit, &account.ApplicationDate,
		&account.ApprovalStatus, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBnplAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// BnplAccountExists reports whether the user already has an enrollment.
func (r *PostgresRepository) BnplAccountExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM bnpl_accounts WHERE user_id = $1)", userID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// RecordUsage appends a usage row and bumps the account's usage amount in a
// single transaction. The conditional UPDATE keeps 0 <= usage_amount <=
// credit_limit regardless of concurrent settlements.
func (r *PostgresRepository) RecordUsage(ctx context.Context, record *domain.UsageRecord) error {
	if record.Amount <= 0 {
		return ErrInvalidUsageAmount
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	updateQuery := `
		UPDATE bnpl_accounts
		SET usage_amount = usage_amount + $1, updated_at = NOW()
		WHERE user_id = $2 AND usage_amount + $1 <= credit_limit`
	tag, err := tx.Exec(ctx, updateQuery, record.Amount, record.UserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either no enrollment or the purchase would breach the limit.
		exists, existsErr := r.accountExistsTx(ctx, tx, record.UserID)
		if existsErr != nil {
			return existsErr
		}
		if !exists {
			return ErrBnplAccountNotFound
		}
		return ErrUsageExceedsLimit
	}

	insertQuery := `
		INSERT INTO bnpl_usage_history (id, user_id, usage_date, merchant_name, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	if err := tx.QueryRow(ctx, insertQuery,
		record.ID, record.UserID, record.UsageDate, record.MerchantName, record.Amount,
	).Scan(&record.CreatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListUsageHistory returns up to limit usage records for the user, newest first.
func (r *PostgresRepository) ListUsageHistory(ctx context.Context, userID string, limit int) ([]domain.UsageRecord, error) {
	if limit <= 0 {
		limit = DefaultUsageHistoryLimit
	}
	query := `
		SELECT id, user_id, usage_date, merchant_name, amount, created_at
		FROM bnpl_usage_history
		WHERE user_id = $1
		ORDER BY usage_date DESC, created_at DESC
		LIMIT $2`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.UsageRecord
	for rows.Next() {
		var rec domain.UsageRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.UsageDate, &rec.MerchantName, &rec.Amount, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *PostgresRepository) accountExistsTx(ctx context.Context, tx pgx.Tx, userID string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM bnpl_accounts WHERE user_id = $1)", userID).Scan(&exists)
	return exists, err
}
