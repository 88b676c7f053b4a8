package services

import (
	"context"
	"log"
	"time"

	"booknet/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// MaintenanceService runs scheduled housekeeping jobs. Activation expiry
// is always checked wall-clock at use time; the sweep here only clears
// consumed and long-expired codes from storage.
type MaintenanceService struct {
	tokenRepo repositories.ActivationTokenRepository
	cron      *cron.Cron
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(tokenRepo repositories.ActivationTokenRepository) *MaintenanceService {
	return &MaintenanceService{
		tokenRepo: tokenRepo,
		cron:      cron.New(),
	}
}

// Start schedules the daily sweep
func (s *MaintenanceService) Start() {
	s.cron.AddFunc("@daily", s.purgeStaleTokens)
	s.cron.Start()
	log.Println("MaintenanceService started")
}

// Stop stops the scheduler
func (s *MaintenanceService) Stop() {
	s.cron.Stop()
	log.Println("MaintenanceService stopped")
}

// purgeStaleTokens deletes validated codes and codes expired for over 24h
func (s *MaintenanceService) purgeStaleTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-24 * time.Hour)
	deleted, err := s.tokenRepo.DeleteStale(ctx, cutoff)
	if err != nil {
		log.Printf("Token sweep error: %v", err)
		return
	}

	if deleted > 0 {
		log.Printf("Token sweep removed %d stale activation codes", deleted)
	}
}
