package testutil

import (
	"time"

	"github.com/alchrem-sys/botbotbbot/models"
)

// CreateTestRecord creates a ledger record with default totals
func CreateTestRecord(userID int64) *models.LedgerRecord {
	now := time.Now().UTC()
	return &models.LedgerRecord{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestRecordWithTotals creates a ledger record with specific totals
func CreateTestRecordWithTotals(userID int64, plus, minus float64) *models.LedgerRecord {
	record := CreateTestRecord(userID)
	record.Plus = plus
	record.Minus = minus
	record.Balance = plus - minus
	return record
}

// CreateAckedTestRecord creates a ledger record acknowledged at the given instant
func CreateAckedTestRecord(userID int64, ackedAt time.Time) *models.LedgerRecord {
	record := CreateTestRecord(userID)
	ackedAt = ackedAt.UTC()
	record.LastAck = &ackedAt
	return record
}
