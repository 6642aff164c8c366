package models

import (
	"math"
	"time"
)

// LedgerRecord represents a Telegram user's running totals
type LedgerRecord struct {
	UserID    int64      `db:"user_id"`
	Plus      float64    `db:"plus"`
	Minus     float64    `db:"minus"`
	Balance   float64    `db:"balance"`
	LastAck   *time.Time `db:"last_ack"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// Apply accumulates a signed entry into the record and recomputes the
// balance. Totals keep full precision; rounding happens at presentation
// time only.
func (r *LedgerRecord) Apply(value float64) {
	if value > 0 {
		r.Plus += value
	} else {
		r.Minus += math.Abs(value)
	}
	r.Balance = r.Plus - r.Minus
}

// Round2 rounds a total to two decimal places for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
