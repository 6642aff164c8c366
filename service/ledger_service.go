package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/alchrem-sys/botbotbbot/models"
)

// ledgerService implements the LedgerService interface
type ledgerService struct {
	repo LedgerRepository
	mu   *sync.Mutex
}

// NewLedgerService creates a new ledger service. The mutex serializes
// read-modify-write cycles against the store and is shared with the
// acknowledgment service so entry accumulation, resets and the scheduler's
// cycle reset never interleave.
func NewLedgerService(repo LedgerRepository, storeMu *sync.Mutex) LedgerService {
	return &ledgerService{
		repo: repo,
		mu:   storeMu,
	}
}

// ParseEntry parses a signed numeric entry. The text must begin with an
// explicit '+' or '-' followed by a decimal numeral; zero is rejected, so
// "+0" and "-0" are parse errors.
func ParseEntry(text string) (float64, error) {
	s := strings.TrimSpace(text)
	if len(s) < 2 || (s[0] != '+' && s[0] != '-') {
		return 0, &ParseError{Input: text}
	}

	// ParseFloat also accepts Go hexadecimal float literals ("0x1p2");
	// entries are decimal numerals only
	if strings.ContainsAny(s, "xX") {
		return 0, &ParseError{Input: text}
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ParseError{Input: text}
	}

	// ParseFloat also accepts "+inf" and "+nan"; neither is a ledger entry
	if value == 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, &ParseError{Input: text}
	}

	return value, nil
}

// RecordEntry applies a signed numeric entry to the user's ledger
func (s *ledgerService) RecordEntry(ctx context.Context, userID int64, text string) (*models.LedgerRecord, error) {
	value, err := ParseEntry(text)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	record.Apply(value)

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist entry for user %d: %w", userID, err)
	}

	return record, nil
}

// StartUser ensures a ledger record exists for the user
func (s *ledgerService) StartUser(ctx context.Context, userID int64) (*models.LedgerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getOrCreate(ctx, userID)
}

// ResetUser unconditionally returns the user's ledger to creation defaults
func (s *ledgerService) ResetUser(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getOrCreate(ctx, userID); err != nil {
		return err
	}

	if err := s.repo.Reset(ctx, userID); err != nil {
		return fmt.Errorf("failed to reset ledger for user %d: %w", userID, err)
	}

	return nil
}

// getOrCreate fetches the user's record, creating it with zero defaults on
// first contact. Callers must hold the store mutex.
func (s *ledgerService) getOrCreate(ctx context.Context, userID int64) (*models.LedgerRecord, error) {
	record, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing ledger for user %d: %w", userID, err)
	}

	if record != nil {
		return record, nil
	}

	record, err = s.repo.Create(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger for user %d: %w", userID, err)
	}

	return record, nil
}
