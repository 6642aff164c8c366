package service

import (
	"context"
	"time"

	"github.com/alchrem-sys/botbotbbot/models"
)

// LedgerRepository defines the interface for ledger data access
type LedgerRepository interface {
	// GetByUserID retrieves a ledger record by Telegram user ID, nil if absent
	GetByUserID(ctx context.Context, userID int64) (*models.LedgerRecord, error)

	// Create creates a new ledger record with zero totals and no acknowledgment
	Create(ctx context.Context, userID int64) (*models.LedgerRecord, error)

	// Update persists the record's totals and acknowledgment state
	Update(ctx context.Context, record *models.LedgerRecord) error

	// Reset returns an existing record to creation defaults, keeping the user known
	Reset(ctx context.Context, userID int64) error

	// ClearAllAcks clears the acknowledgment timestamp for every known user
	ClearAllAcks(ctx context.Context) error

	// ListUserIDs returns every user ID known to the store
	ListUserIDs(ctx context.Context) ([]int64, error)
}

// MessageSender defines the outbound boundary to the chat platform
type MessageSender interface {
	// Send delivers a text message to a user, returning a delivery error
	// when the recipient is unreachable or has blocked the bot
	Send(ctx context.Context, userID int64, text string) error
}

// LedgerService defines the interface for ledger operations
type LedgerService interface {
	// RecordEntry applies a signed numeric entry to the user's ledger.
	// The returned record reflects the persisted state; a reply must only
	// be produced after this succeeds.
	RecordEntry(ctx context.Context, userID int64, text string) (*models.LedgerRecord, error)

	// StartUser ensures a ledger record exists for the user; idempotent
	StartUser(ctx context.Context, userID int64) (*models.LedgerRecord, error)

	// ResetUser unconditionally returns the user's ledger to creation defaults
	ResetUser(ctx context.Context, userID int64) error
}

// AckService defines the interface for daily ritual acknowledgment tracking
type AckService interface {
	// Acknowledge records the acknowledgment instant for the user,
	// creating the ledger record if this is their first contact
	Acknowledge(ctx context.Context, userID int64, at time.Time) error

	// IsAcknowledged reports whether the user acknowledged at or after
	// the given cycle boundary
	IsAcknowledged(ctx context.Context, userID int64, since time.Time) (bool, error)

	// ResetAll clears every user's acknowledgment at the start of a cycle
	ResetAll(ctx context.Context) error
}

// BroadcastService defines the interface for roster-wide fan-out
type BroadcastService interface {
	// BroadcastAll sends text to every known user, counting outcomes.
	// Individual delivery failures are logged and never abort the batch.
	BroadcastAll(ctx context.Context, text string) (sent int, failed int)
}
