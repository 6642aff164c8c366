package service

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// broadcastService implements the BroadcastService interface
type broadcastService struct {
	repo   LedgerRepository
	sender MessageSender
}

// NewBroadcastService creates a new broadcast service
func NewBroadcastService(repo LedgerRepository, sender MessageSender) BroadcastService {
	return &broadcastService{
		repo:   repo,
		sender: sender,
	}
}

// BroadcastAll sends text to every known user and counts outcomes
func (s *broadcastService) BroadcastAll(ctx context.Context, text string) (sent int, failed int) {
	userIDs, err := s.repo.ListUserIDs(ctx)
	if err != nil {
		log.Errorf("Error listing users for broadcast: %v", err)
		return 0, 0
	}

	for _, userID := range userIDs {
		if err := s.sender.Send(ctx, userID, text); err != nil {
			log.Errorf("Error broadcasting to user %d: %v", userID, err)
			failed++
			continue
		}
		sent++
	}

	log.WithFields(log.Fields{
		"sent":   sent,
		"failed": failed,
	}).Info("Broadcast completed")

	return sent, failed
}
