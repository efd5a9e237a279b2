// Package cron runs the periodic maintenance jobs.
package cron

import (
	"context"
	"log"
	"time"

	"github.com/leva-app/leva-backend/internal/repository"
	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron           *cron.Cron
	invitationRepo repository.InvitationRepository
}

func NewScheduler(invitationRepo repository.InvitationRepository) *Scheduler {
	return &Scheduler{
		cron:           cron.New(),
		invitationRepo: invitationRepo,
	}
}

func (s *Scheduler) Start() {
	// Purge expired invitations once a day
	s.cron.AddFunc("@daily", s.purgeExpiredInvitations)
	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[Cron] Scheduler stopped")
}

func (s *Scheduler) purgeExpiredInvitations() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.invitationRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("[Cron] Failed to purge expired invitations: %v", err)
		return
	}
	if count > 0 {
		log.Printf("[Cron] Purged %d expired invitations", count)
	}
}
