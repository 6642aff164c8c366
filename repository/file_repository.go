package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/alchrem-sys/botbotbbot/models"
)

// fileRecord is the on-disk shape of one ledger entry. The file is a JSON
// object keyed by stringified Telegram user IDs, compatible with the bot's
// historical data.json layout.
type fileRecord struct {
	Plus    float64    `json:"plus"`
	Minus   float64    `json:"minus"`
	Balance float64    `json:"balance"`
	LastAck *time.Time `json:"last_ack"`
}

// FileRepository implements the service.LedgerRepository interface on a flat
// JSON file: an in-memory map flushed to disk on every mutation.
type FileRepository struct {
	mu      sync.RWMutex
	path    string
	records map[int64]*models.LedgerRecord
}

// NewFileRepository opens (or initializes) the ledger file at path.
// A missing file is an empty store.
func NewFileRepository(path string) (*FileRepository, error) {
	repo := &FileRepository{
		path:    path,
		records: make(map[int64]*models.LedgerRecord),
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return repo, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger file %s: %w", path, err)
	}

	var stored map[string]fileRecord
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse ledger file %s: %w", path, err)
	}

	now := time.Now().UTC()
	for key, fr := range stored {
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user key %q in ledger file %s: %w", key, path, err)
		}
		repo.records[userID] = &models.LedgerRecord{
			UserID:    userID,
			Plus:      fr.Plus,
			Minus:     fr.Minus,
			Balance:   fr.Balance,
			LastAck:   fr.LastAck,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	return repo, nil
}

// GetByUserID retrieves a ledger record, nil if absent
func (r *FileRepository) GetByUserID(ctx context.Context, userID int64) (*models.LedgerRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[userID]
	if !ok {
		return nil, nil
	}

	copied := *record
	return &copied, nil
}

// Create creates a new ledger record with zero totals
func (r *FileRepository) Create(ctx context.Context, userID int64) (*models.LedgerRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[userID]; ok {
		return nil, fmt.Errorf("ledger for user %d already exists", userID)
	}

	now := time.Now().UTC()
	record := &models.LedgerRecord{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.records[userID] = record

	if err := r.flush(); err != nil {
		delete(r.records, userID)
		return nil, err
	}

	copied := *record
	return &copied, nil
}

// Update persists the record's totals and acknowledgment state
func (r *FileRepository) Update(ctx context.Context, record *models.LedgerRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.records[record.UserID]
	if !ok {
		return fmt.Errorf("ledger for user %d not found", record.UserID)
	}

	previous := *existing
	existing.Plus = record.Plus
	existing.Minus = record.Minus
	existing.Balance = record.Balance
	existing.LastAck = record.LastAck
	existing.UpdatedAt = time.Now().UTC()

	if err := r.flush(); err != nil {
		*existing = previous
		return err
	}

	return nil
}

// Reset returns an existing record to creation defaults
func (r *FileRepository) Reset(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.records[userID]
	if !ok {
		return fmt.Errorf("ledger for user %d not found", userID)
	}

	previous := *existing
	existing.Plus = 0
	existing.Minus = 0
	existing.Balance = 0
	existing.LastAck = nil
	existing.UpdatedAt = time.Now().UTC()

	if err := r.flush(); err != nil {
		*existing = previous
		return err
	}

	return nil
}

// ClearAllAcks clears the acknowledgment timestamp for every known user
func (r *FileRepository) ClearAllAcks(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cleared := false
	for _, record := range r.records {
		if record.LastAck != nil {
			record.LastAck = nil
			record.UpdatedAt = time.Now().UTC()
			cleared = true
		}
	}

	if !cleared {
		return nil
	}

	return r.flush()
}

// ListUserIDs returns every user ID known to the store
func (r *FileRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userIDs := make([]int64, 0, len(r.records))
	for userID := range r.records {
		userIDs = append(userIDs, userID)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	return userIDs, nil
}

// flush writes the whole map to disk. Callers must hold the write lock.
func (r *FileRepository) flush() error {
	stored := make(map[string]fileRecord, len(r.records))
	for userID, record := range r.records {
		stored[strconv.FormatInt(userID, 10)] = fileRecord{
			Plus:    record.Plus,
			Minus:   record.Minus,
			Balance: record.Balance,
			LastAck: record.LastAck,
		}
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode ledger file: %w", err)
	}

	// Write-then-rename so a crash mid-write never truncates the ledger
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write ledger file: %w", err)
	}
	if err := os.Rename(tmp, filepath.Clean(r.path)); err != nil {
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}

	return nil
}
