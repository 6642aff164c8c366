package repository

import (
	"context"
	"fmt"

	"github.com/alchrem-sys/botbotbbot/database"
	"github.com/alchrem-sys/botbotbbot/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryable abstracts pgxpool.Pool and pgx.Tx
type queryable interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LedgerRepository implements the service.LedgerRepository interface on PostgreSQL
type LedgerRepository struct {
	q queryable
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

// GetByUserID retrieves a ledger record by Telegram user ID
func (r *LedgerRepository) GetByUserID(ctx context.Context, userID int64) (*models.LedgerRecord, error) {
	query := `
		SELECT user_id, plus, minus, balance, last_ack, created_at, updated_at
		FROM ledgers
		WHERE user_id = $1
	`

	var record models.LedgerRecord
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&record.UserID,
		&record.Plus,
		&record.Minus,
		&record.Balance,
		&record.LastAck,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger for user %d: %w", userID, err)
	}

	return &record, nil
}

// Create creates a new ledger record with zero totals
func (r *LedgerRepository) Create(ctx context.Context, userID int64) (*models.LedgerRecord, error) {
	query := `
		INSERT INTO ledgers (user_id, plus, minus, balance)
		VALUES ($1, 0, 0, 0)
		RETURNING user_id, plus, minus, balance, last_ack, created_at, updated_at
	`

	var record models.LedgerRecord
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&record.UserID,
		&record.Plus,
		&record.Minus,
		&record.Balance,
		&record.LastAck,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create ledger for user %d: %w", userID, err)
	}

	return &record, nil
}

// Update persists the record's totals and acknowledgment state
func (r *LedgerRepository) Update(ctx context.Context, record *models.LedgerRecord) error {
	query := `
		UPDATE ledgers
		SET plus = $1, minus = $2, balance = $3, last_ack = $4, updated_at = NOW()
		WHERE user_id = $5
	`

	result, err := r.q.Exec(ctx, query, record.Plus, record.Minus, record.Balance, record.LastAck, record.UserID)
	if err != nil {
		return fmt.Errorf("failed to update ledger for user %d: %w", record.UserID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("ledger for user %d not found", record.UserID)
	}

	return nil
}

// Reset returns an existing record to creation defaults
func (r *LedgerRepository) Reset(ctx context.Context, userID int64) error {
	query := `
		UPDATE ledgers
		SET plus = 0, minus = 0, balance = 0, last_ack = NULL, updated_at = NOW()
		WHERE user_id = $1
	`

	result, err := r.q.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to reset ledger for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("ledger for user %d not found", userID)
	}

	return nil
}

// ClearAllAcks clears the acknowledgment timestamp for every known user
func (r *LedgerRepository) ClearAllAcks(ctx context.Context) error {
	query := `
		UPDATE ledgers
		SET last_ack = NULL, updated_at = NOW()
		WHERE last_ack IS NOT NULL
	`

	if _, err := r.q.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to clear acknowledgments: %w", err)
	}

	return nil
}

// ListUserIDs returns every user ID known to the store
func (r *LedgerRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	query := `
		SELECT user_id
		FROM ledgers
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", err)
		}
		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return userIDs, nil
}
