package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testReminderConfig() ReminderConfig {
	return ReminderConfig{
		Hour:            20,
		Minute:          0,
		EscalationDelay: time.Hour,
	}
}

func TestReminderScheduler_PrimaryResetsBeforeSending(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockLedgerRepository)
	mockAcks := new(MockAckService)
	mockSender := new(MockMessageSender)
	s := NewReminderScheduler(testReminderConfig(), mockRepo, mockAcks, mockSender)

	resetDone := false
	mockAcks.On("ResetAll", ctx).Run(func(mock.Arguments) {
		resetDone = true
	}).Return(nil)
	mockRepo.On("ListUserIDs", ctx).Return([]int64{1, 2}, nil)
	mockSender.On("Send", ctx, mock.AnythingOfType("int64"), PrimaryReminderText).Run(func(mock.Arguments) {
		assert.True(t, resetDone, "acknowledgments must be cleared before any reminder goes out")
	}).Return(nil)

	s.firePrimary(ctx, time.Now().UTC())

	mockAcks.AssertExpectations(t)
	mockSender.AssertNumberOfCalls(t, "Send", 2)
}

func TestReminderScheduler_PrimaryResetFailureSkipsSending(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockLedgerRepository)
	mockAcks := new(MockAckService)
	mockSender := new(MockMessageSender)
	s := NewReminderScheduler(testReminderConfig(), mockRepo, mockAcks, mockSender)

	mockAcks.On("ResetAll", ctx).Return(errors.New("store unavailable"))

	s.firePrimary(ctx, time.Now().UTC())

	mockRepo.AssertNotCalled(t, "ListUserIDs")
	mockSender.AssertNotCalled(t, "Send")
}

func TestReminderScheduler_PrimarySendFailureIsolation(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockLedgerRepository)
	mockAcks := new(MockAckService)
	mockSender := new(MockMessageSender)
	s := NewReminderScheduler(testReminderConfig(), mockRepo, mockAcks, mockSender)

	mockAcks.On("ResetAll", ctx).Return(nil)
	mockRepo.On("ListUserIDs", ctx).Return([]int64{1, 2, 3}, nil)
	mockSender.On("Send", ctx, int64(1), PrimaryReminderText).Return(errors.New("blocked by user"))
	mockSender.On("Send", ctx, int64(2), PrimaryReminderText).Return(nil)
	mockSender.On("Send", ctx, int64(3), PrimaryReminderText).Return(nil)

	s.firePrimary(ctx, time.Now().UTC())

	// One unreachable recipient never aborts the rest of the batch
	mockSender.AssertNumberOfCalls(t, "Send", 3)
}

func TestReminderScheduler_EscalationRereadsRoster(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockLedgerRepository)
	mockAcks := new(MockAckService)
	mockSender := new(MockMessageSender)
	s := NewReminderScheduler(testReminderConfig(), mockRepo, mockAcks, mockSender)

	// User 3 joined after the primary reminder; the fresh snapshot includes them
	mockRepo.On("ListUserIDs", ctx).Return([]int64{1, 2, 3}, nil)
	mockSender.On("Send", ctx, mock.AnythingOfType("int64"), EscalationReminderText).Return(nil)

	s.fireEscalation(ctx, time.Now().UTC())

	mockSender.AssertNumberOfCalls(t, "Send", 3)
	mockAcks.AssertNotCalled(t, "IsAcknowledged")
}

func TestReminderScheduler_EscalationUnackedOnly(t *testing.T) {
	ctx := context.Background()
	cfg := testReminderConfig()
	cfg.EscalateUnackedOnly = true

	mockRepo := new(MockLedgerRepository)
	mockAcks := new(MockAckService)
	mockSender := new(MockMessageSender)
	s := NewReminderScheduler(cfg, mockRepo, mockAcks, mockSender)

	cycleStart := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
	mockRepo.On("ListUserIDs", ctx).Return([]int64{1, 2, 3}, nil)
	mockAcks.On("IsAcknowledged", ctx, int64(1), cycleStart).Return(true, nil)
	mockAcks.On("IsAcknowledged", ctx, int64(2), cycleStart).Return(false, nil)
	// An unreadable record counts as un-acknowledged
	mockAcks.On("IsAcknowledged", ctx, int64(3), cycleStart).Return(false, errors.New("store unavailable"))
	mockSender.On("Send", ctx, int64(2), EscalationReminderText).Return(nil)
	mockSender.On("Send", ctx, int64(3), EscalationReminderText).Return(nil)

	s.fireEscalation(ctx, cycleStart)

	mockSender.AssertNumberOfCalls(t, "Send", 2)
	mockSender.AssertNotCalled(t, "Send", ctx, int64(1), EscalationReminderText)
}

func TestReminderScheduler_StartStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mockRepo := new(MockLedgerRepository)
	mockAcks := new(MockAckService)
	mockSender := new(MockMessageSender)
	s := NewReminderScheduler(testReminderConfig(), mockRepo, mockAcks, mockSender)

	stop := s.Start(ctx)
	cancel()
	// Stopping after cancellation must not panic or send anything
	stop()

	time.Sleep(10 * time.Millisecond)
	mockSender.AssertNotCalled(t, "Send")
}

func TestNextTriggerTime(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			"before today's trigger",
			time.Date(2024, 6, 1, 19, 0, 0, 0, time.UTC),
			time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC),
		},
		{
			"after today's trigger",
			time.Date(2024, 6, 1, 21, 0, 0, 0, time.UTC),
			time.Date(2024, 6, 2, 20, 0, 0, 0, time.UTC),
		},
		{
			"exactly at the trigger",
			time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC),
			time.Date(2024, 6, 2, 20, 0, 0, 0, time.UTC),
		},
		{
			"month boundary",
			time.Date(2024, 6, 30, 23, 30, 0, 0, time.UTC),
			time.Date(2024, 7, 1, 20, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextTriggerTime(tc.now, 20, 0)
			require.Equal(t, tc.want, got)
			assert.True(t, got.After(tc.now))
		})
	}
}

func TestCurrentCycleStart(t *testing.T) {
	t.Run("after today's trigger", func(t *testing.T) {
		now := time.Date(2024, 6, 1, 21, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC), CurrentCycleStart(now, 20, 0))
	})

	t.Run("before today's trigger", func(t *testing.T) {
		now := time.Date(2024, 6, 1, 19, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2024, 5, 31, 20, 0, 0, 0, time.UTC), CurrentCycleStart(now, 20, 0))
	})

	// The scheduler wakes at or just past the trigger; the cycle it anchors
	// must be today's, not yesterday's
	t.Run("exactly at the trigger", func(t *testing.T) {
		now := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
		assert.Equal(t, now, CurrentCycleStart(now, 20, 0))
	})

	t.Run("seconds after the trigger", func(t *testing.T) {
		now := time.Date(2024, 6, 1, 20, 0, 2, 0, time.UTC)
		assert.Equal(t, time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC), CurrentCycleStart(now, 20, 0))
	})
}
