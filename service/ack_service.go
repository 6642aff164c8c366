package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// AckKeyword is the ritual acknowledgment trigger. Any message containing it
// (case-insensitive, anywhere in the text) counts as an acknowledgment.
const AckKeyword = "прокрутив"

// ContainsAck reports whether the message text acknowledges the daily ritual.
func ContainsAck(text string) bool {
	return strings.Contains(strings.ToLower(text), AckKeyword)
}

// ackService implements the AckService interface
type ackService struct {
	repo LedgerRepository
	mu   *sync.Mutex
}

// NewAckService creates a new acknowledgment service. The mutex is the same
// store guard the ledger service uses, so the scheduler's ResetAll never
// races an in-flight Acknowledge.
func NewAckService(repo LedgerRepository, storeMu *sync.Mutex) AckService {
	return &ackService{
		repo: repo,
		mu:   storeMu,
	}
}

// Acknowledge records the acknowledgment instant for the user
func (s *ackService) Acknowledge(ctx context.Context, userID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get ledger for user %d: %w", userID, err)
	}
	if record == nil {
		record, err = s.repo.Create(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to create ledger for user %d: %w", userID, err)
		}
	}

	// Repeated acknowledgments within a cycle just move the timestamp
	at = at.UTC()
	record.LastAck = &at

	if err := s.repo.Update(ctx, record); err != nil {
		return fmt.Errorf("failed to persist acknowledgment for user %d: %w", userID, err)
	}

	return nil
}

// IsAcknowledged reports whether the user acknowledged at or after the boundary
func (s *ackService) IsAcknowledged(ctx context.Context, userID int64, since time.Time) (bool, error) {
	record, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get ledger for user %d: %w", userID, err)
	}
	if record == nil || record.LastAck == nil {
		return false, nil
	}
	return !record.LastAck.Before(since), nil
}

// ResetAll clears every user's acknowledgment at the start of a cycle
func (s *ackService) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.ClearAllAcks(ctx); err != nil {
		return fmt.Errorf("failed to clear acknowledgments: %w", err)
	}

	return nil
}
