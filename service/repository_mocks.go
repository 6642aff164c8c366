package service

import (
	"context"
	"time"

	"github.com/alchrem-sys/botbotbbot/models"

	"github.com/stretchr/testify/mock"
)

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) GetByUserID(ctx context.Context, userID int64) (*models.LedgerRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerRecord), args.Error(1)
}

func (m *MockLedgerRepository) Create(ctx context.Context, userID int64) (*models.LedgerRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerRecord), args.Error(1)
}

func (m *MockLedgerRepository) Update(ctx context.Context, record *models.LedgerRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockLedgerRepository) Reset(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockLedgerRepository) ClearAllAcks(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockMessageSender is a mock implementation of MessageSender
type MockMessageSender struct {
	mock.Mock
}

func (m *MockMessageSender) Send(ctx context.Context, userID int64, text string) error {
	args := m.Called(ctx, userID, text)
	return args.Error(0)
}

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) RecordEntry(ctx context.Context, userID int64, text string) (*models.LedgerRecord, error) {
	args := m.Called(ctx, userID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerRecord), args.Error(1)
}

func (m *MockLedgerService) StartUser(ctx context.Context, userID int64) (*models.LedgerRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerRecord), args.Error(1)
}

func (m *MockLedgerService) ResetUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockAckService is a mock implementation of AckService
type MockAckService struct {
	mock.Mock
}

func (m *MockAckService) Acknowledge(ctx context.Context, userID int64, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

func (m *MockAckService) IsAcknowledged(ctx context.Context, userID int64, since time.Time) (bool, error) {
	args := m.Called(ctx, userID, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockAckService) ResetAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockBroadcastService is a mock implementation of BroadcastService
type MockBroadcastService struct {
	mock.Mock
}

func (m *MockBroadcastService) BroadcastAll(ctx context.Context, text string) (int, int) {
	args := m.Called(ctx, text)
	return args.Int(0), args.Int(1)
}
