package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Reminder texts pushed to the roster each cycle
const (
	PrimaryReminderText    = "🔔 Прокрути альфу!"
	EscalationReminderText = "🔔 Нагадую ще раз: прокрути альфу! 😉"
)

// ReminderConfig holds the scheduler's temporal settings
type ReminderConfig struct {
	Hour                int           // trigger hour, UTC
	Minute              int           // trigger minute
	EscalationDelay     time.Duration // delay between primary and escalation
	EscalateUnackedOnly bool          // escalate only to users who have not acknowledged
}

// ReminderScheduler runs the daily reminder loop: at the configured UTC time
// it clears every user's acknowledgment, pushes the primary reminder to the
// whole roster, and after the escalation delay pushes a second reminder.
// The loop runs for the process lifetime.
type ReminderScheduler struct {
	cfg    ReminderConfig
	repo   LedgerRepository
	acks   AckService
	sender MessageSender
}

// NewReminderScheduler creates a new reminder scheduler
func NewReminderScheduler(cfg ReminderConfig, repo LedgerRepository, acks AckService, sender MessageSender) *ReminderScheduler {
	return &ReminderScheduler{
		cfg:    cfg,
		repo:   repo,
		acks:   acks,
		sender: sender,
	}
}

// Start launches the scheduler loop in a background goroutine.
// Returns a cleanup function to stop the loop gracefully.
func (s *ReminderScheduler) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.Infof("Reminder scheduler started, daily trigger at %02d:%02d UTC", s.cfg.Hour, s.cfg.Minute)

		for {
			target := NextTriggerTime(time.Now(), s.cfg.Hour, s.cfg.Minute)
			timer := time.NewTimer(time.Until(target))

			select {
			case <-ctx.Done():
				timer.Stop()
				log.Info("Reminder scheduler shutting down (context cancelled)")
				return
			case <-stopChan:
				timer.Stop()
				log.Info("Reminder scheduler shutting down (stop requested)")
				return
			case <-timer.C:
			}

			// Anchor the cycle at the scheduled trigger, not the wakeup
			// instant, so the escalation boundary is stable under timer drift
			cycleStart := CurrentCycleStart(time.Now(), s.cfg.Hour, s.cfg.Minute)
			s.firePrimary(ctx, cycleStart)

			escalation := time.NewTimer(s.cfg.EscalationDelay)
			select {
			case <-ctx.Done():
				escalation.Stop()
				log.Info("Reminder scheduler shutting down (context cancelled)")
				return
			case <-stopChan:
				escalation.Stop()
				log.Info("Reminder scheduler shutting down (stop requested)")
				return
			case <-escalation.C:
			}

			s.fireEscalation(ctx, cycleStart)
		}
	}()

	return func() {
		close(stopChan)
	}
}

// firePrimary starts a new reminder cycle: acknowledgments are cleared before
// any message goes out, then the primary reminder is pushed to the roster.
func (s *ReminderScheduler) firePrimary(ctx context.Context, cycleStart time.Time) {
	if err := s.acks.ResetAll(ctx); err != nil {
		log.Errorf("Error clearing acknowledgments for new cycle: %v", err)
		return
	}

	userIDs, err := s.repo.ListUserIDs(ctx)
	if err != nil {
		log.Errorf("Error listing users for primary reminder: %v", err)
		return
	}

	sent, failed := s.sendToAll(ctx, userIDs, PrimaryReminderText)
	log.WithFields(log.Fields{
		"cycleStart": cycleStart,
		"sent":       sent,
		"failed":     failed,
	}).Info("Primary reminder cycle fired")
}

// fireEscalation re-reads the roster so users who joined mid-cycle are
// included, optionally filters out users who already acknowledged, and pushes
// the escalation reminder.
func (s *ReminderScheduler) fireEscalation(ctx context.Context, cycleStart time.Time) {
	userIDs, err := s.repo.ListUserIDs(ctx)
	if err != nil {
		log.Errorf("Error listing users for escalation reminder: %v", err)
		return
	}

	if s.cfg.EscalateUnackedOnly {
		pending := make([]int64, 0, len(userIDs))
		for _, userID := range userIDs {
			acked, err := s.acks.IsAcknowledged(ctx, userID, cycleStart)
			if err != nil {
				// treat an unreadable record as un-acknowledged
				log.Errorf("Error checking acknowledgment for user %d: %v", userID, err)
				pending = append(pending, userID)
				continue
			}
			if !acked {
				pending = append(pending, userID)
			}
		}
		userIDs = pending
	}

	sent, failed := s.sendToAll(ctx, userIDs, EscalationReminderText)
	log.WithFields(log.Fields{
		"cycleStart": cycleStart,
		"sent":       sent,
		"failed":     failed,
	}).Info("Escalation reminder fired")
}

// sendToAll attempts delivery to each user; individual failures are logged
// and never abort the batch.
func (s *ReminderScheduler) sendToAll(ctx context.Context, userIDs []int64, text string) (sent, failed int) {
	for _, userID := range userIDs {
		if err := s.sender.Send(ctx, userID, text); err != nil {
			log.Errorf("Error sending reminder to user %d: %v", userID, err)
			failed++
			continue
		}
		sent++
	}
	return sent, failed
}
