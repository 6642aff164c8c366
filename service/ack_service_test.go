package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alchrem-sys/botbotbbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsAck(t *testing.T) {
	assert.True(t, ContainsAck("прокрутив"))
	assert.True(t, ContainsAck("Прокрутив!"))
	assert.True(t, ContainsAck("я вже ПРОКРУТИВ альфу"))
	assert.False(t, ContainsAck("прокручу завтра"))
	assert.False(t, ContainsAck("hello"))
	assert.False(t, ContainsAck(""))
}

func TestAckService_Acknowledge(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 20, 15, 0, 0, time.UTC)

	t.Run("sets timestamp on existing record", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		svc := NewAckService(mockRepo, &sync.Mutex{})

		record := &models.LedgerRecord{UserID: 1, Plus: 5, Minus: 3, Balance: 2}
		mockRepo.On("GetByUserID", ctx, int64(1)).Return(record, nil)
		mockRepo.On("Update", ctx, record).Return(nil)

		err := svc.Acknowledge(ctx, 1, at)
		require.NoError(t, err)
		require.NotNil(t, record.LastAck)
		assert.Equal(t, at, *record.LastAck)
		// Totals are untouched
		assert.Equal(t, 5.0, record.Plus)
		assert.Equal(t, 3.0, record.Minus)
	})

	t.Run("creates record on first contact", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		svc := NewAckService(mockRepo, &sync.Mutex{})

		fresh := &models.LedgerRecord{UserID: 2}
		mockRepo.On("GetByUserID", ctx, int64(2)).Return(nil, nil)
		mockRepo.On("Create", ctx, int64(2)).Return(fresh, nil)
		mockRepo.On("Update", ctx, fresh).Return(nil)

		err := svc.Acknowledge(ctx, 2, at)
		require.NoError(t, err)
		require.NotNil(t, fresh.LastAck)
		assert.Equal(t, at, *fresh.LastAck)
	})

	t.Run("repeated acknowledgment only moves the timestamp", func(t *testing.T) {
		mockRepo := new(MockLedgerRepository)
		svc := NewAckService(mockRepo, &sync.Mutex{})

		record := &models.LedgerRecord{UserID: 3}
		mockRepo.On("GetByUserID", ctx, int64(3)).Return(record, nil)
		mockRepo.On("Update", ctx, record).Return(nil)

		require.NoError(t, svc.Acknowledge(ctx, 3, at))
		later := at.Add(30 * time.Minute)
		require.NoError(t, svc.Acknowledge(ctx, 3, later))

		require.NotNil(t, record.LastAck)
		assert.Equal(t, later, *record.LastAck)
		mockRepo.AssertNotCalled(t, "Create")
	})
}

func TestAckService_IsAcknowledged(t *testing.T) {
	ctx := context.Background()
	boundary := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		lastAck *time.Time
		want    bool
	}{
		{"unknown user", nil, false},
		{"never acknowledged", nil, false},
		{"acknowledged before boundary", timePtr(boundary.Add(-time.Hour)), false},
		{"acknowledged at boundary", timePtr(boundary), true},
		{"acknowledged after boundary", timePtr(boundary.Add(10 * time.Minute)), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := new(MockLedgerRepository)
			svc := NewAckService(mockRepo, &sync.Mutex{})

			if tc.name == "unknown user" {
				mockRepo.On("GetByUserID", ctx, int64(1)).Return(nil, nil)
			} else {
				record := &models.LedgerRecord{UserID: 1, LastAck: tc.lastAck}
				mockRepo.On("GetByUserID", ctx, int64(1)).Return(record, nil)
			}

			acked, err := svc.IsAcknowledged(ctx, 1, boundary)
			require.NoError(t, err)
			assert.Equal(t, tc.want, acked)
		})
	}
}

func TestAckService_ResetAll(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockLedgerRepository)
	svc := NewAckService(mockRepo, &sync.Mutex{})

	mockRepo.On("ClearAllAcks", ctx).Return(nil)

	err := svc.ResetAll(ctx)
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
