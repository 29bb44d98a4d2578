package service

import (
	"fmt"
	"log"
	"time"

	"urbpark/internal/db"
	"urbpark/internal/repository"
)

// JobService runs the periodic ledger sweeps. They are a cleanup convenience;
// the read paths expire stale holds lazily regardless.
type JobService struct {
	Repo *repository.JobRepository
}

func NewJobService(repo *repository.JobRepository) *JobService {
	return &JobService{Repo: repo}
}

// ExpireStalePendingBookings moves PENDING bookings past their hold deadline
// to EXPIRED.
func (s *JobService) ExpireStalePendingBookings() error {
	now := time.Now().UTC()

	ids, err := s.Repo.GetPendingIDsPastExpiry(now)
	if err != nil {
		return fmt.Errorf("sweep: failed to get stale pending bookings: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	log.Printf("Sweep: expiring %d stale pending bookings. IDs: %v", len(ids), ids)
	if err := s.Repo.UpdateBookingStatuses(ids, db.BookingPending, db.BookingExpired, now); err != nil {
		return fmt.Errorf("sweep: failed to expire pending bookings: %w", err)
	}
	return nil
}

// CompleteFinishedBookings moves CONFIRMED bookings whose window has ended to
// COMPLETED.
func (s *JobService) CompleteFinishedBookings() error {
	now := time.Now().UTC()

	ids, err := s.Repo.GetConfirmedIDsPastEndTime(now)
	if err != nil {
		return fmt.Errorf("sweep: failed to get finished bookings: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	log.Printf("Sweep: completing %d finished bookings. IDs: %v", len(ids), ids)
	if err := s.Repo.UpdateBookingStatuses(ids, db.BookingConfirmed, db.BookingCompleted, now); err != nil {
		return fmt.Errorf("sweep: failed to complete bookings: %w", err)
	}
	return nil
}
