package repository

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"urbpark/internal/db"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(database *sql.DB) *JobRepository {
	return &JobRepository{DB: database}
}

// GetPendingIDsPastExpiry finds PENDING bookings whose hold deadline passed.
func (r *JobRepository) GetPendingIDsPastExpiry(now time.Time) ([]int, error) {
	return r.queryIDs(
		`SELECT id FROM bookings WHERE booking_status = $1 AND expires_at < $2`,
		db.BookingPending, now,
	)
}

// GetConfirmedIDsPastEndTime finds CONFIRMED bookings whose window ended.
func (r *JobRepository) GetConfirmedIDsPastEndTime(now time.Time) ([]int, error) {
	return r.queryIDs(
		`SELECT id FROM bookings WHERE booking_status = $1 AND end_time < $2`,
		db.BookingConfirmed, now,
	)
}

func (r *JobRepository) queryIDs(query string, args ...interface{}) ([]int, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying booking ids: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning booking id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

// UpdateBookingStatuses moves a batch of bookings to newStatus. The fromStatus
// guard keeps the sweep from clobbering a transition that raced it.
func (r *JobRepository) UpdateBookingStatuses(ids []int, fromStatus, newStatus string, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	result, err := r.DB.Exec(`
		UPDATE bookings SET booking_status = $1, updated_at = $2
		WHERE id = ANY($3) AND booking_status = $4`,
		newStatus, now, pq.Array(ids), fromStatus,
	)
	if err != nil {
		return fmt.Errorf("error updating booking statuses: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Could not get rows affected: %v", err)
	} else {
		log.Printf("Updated status for %d bookings to '%s'", rowsAffected, newStatus)
	}
	return nil
}
