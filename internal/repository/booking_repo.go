package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"

	"urbpark/internal/db"
	apperrors "urbpark/internal/errors"
)

// ActiveStatuses are the booking states that occupy a slot's time window.
var ActiveStatuses = []string{db.BookingPending, db.BookingConfirmed}

const bookingColumns = `id, token, slot_id, user_id, phone, vehicle_number,
	start_time, end_time, amount, booking_status, payment_status,
	payment_id, payment_method, refund_id, refund_amount, refunded_at,
	entry_scanned, entry_time, exit_scanned, exit_time,
	expires_at, created_at, updated_at`

type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(database *sql.DB) *BookingRepository {
	return &BookingRepository{DB: database}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*db.Booking, error) {
	var b db.Booking
	err := row.Scan(
		&b.ID, &b.Token, &b.SlotID, &b.UserID, &b.Phone, &b.VehicleNumber,
		&b.StartTime, &b.EndTime, &b.Amount, &b.BookingStatus, &b.PaymentStatus,
		&b.PaymentID, &b.PaymentMethod, &b.RefundID, &b.RefundAmount, &b.RefundedAt,
		&b.EntryScanned, &b.EntryTime, &b.ExitScanned, &b.ExitTime,
		&b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBooking inserts a PENDING booking, holding the slot row lock for the
// duration of the conflict check so two overlapping requests for the same slot
// serialize and one of them observes the other's record.
func (r *BookingRepository) CreateBooking(b *db.Booking) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("error starting booking transaction: %w", err)
	}
	defer tx.Rollback()

	var slotID int
	err = tx.QueryRow(`SELECT id FROM parking_slots WHERE id = $1 FOR UPDATE`, b.SlotID).Scan(&slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("slot")
		}
		return fmt.Errorf("error locking slot %d: %w", b.SlotID, err)
	}

	var conflictID int
	err = tx.QueryRow(`
		SELECT id FROM bookings
		WHERE slot_id = $1
		  AND booking_status = ANY($2)
		  AND start_time < $3
		  AND end_time > $4
		LIMIT 1`,
		b.SlotID, pq.Array(ActiveStatuses), b.EndTime, b.StartTime,
	).Scan(&conflictID)
	if err == nil {
		return apperrors.Conflict("slot not available for selected time")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("error checking booking conflicts: %w", err)
	}

	err = tx.QueryRow(`
		INSERT INTO bookings
		(token, slot_id, user_id, phone, vehicle_number, start_time, end_time,
		 amount, booking_status, payment_status, entry_scanned, exit_scanned,
		 expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, false, false, $11, $12, $12)
		RETURNING id, created_at, updated_at`,
		b.Token, b.SlotID, b.UserID, b.Phone, b.VehicleNumber, b.StartTime, b.EndTime,
		b.Amount, b.BookingStatus, b.PaymentStatus, b.ExpiresAt, b.CreatedAt,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetBookingByID(id int) (*db.Booking, error) {
	row := r.DB.QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("booking")
		}
		return nil, fmt.Errorf("error querying booking %d: %w", id, err)
	}
	return b, nil
}

func (r *BookingRepository) GetBookingByToken(token string) (*db.Booking, error) {
	row := r.DB.QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE token = $1`, token)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("booking")
		}
		return nil, fmt.Errorf("error querying booking by token: %w", err)
	}
	return b, nil
}

func (r *BookingRepository) ListBookingsByUser(userID int) ([]*db.Booking, error) {
	rows, err := r.DB.Query(
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying bookings for user %d: %w", userID, err)
	}
	defer rows.Close()

	var bookings []*db.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking row: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// ListBookings is the ops listing with optional date (YYYY-MM-DD, matched on
// start_time) and status filters.
func (r *BookingRepository) ListBookings(date, status string) ([]*db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if date != "" {
		query += " AND DATE(start_time) = $" + strconv.Itoa(idx)
		args = append(args, date)
		idx++
	}
	if status != "" {
		query += " AND booking_status = $" + strconv.Itoa(idx)
		args = append(args, status)
		idx++
	}
	query += " ORDER BY start_time DESC"

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*db.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking row: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// ConflictingSlotIDs returns the distinct slots in an area holding a booking in
// one of the given statuses that overlaps [start, end).
func (r *BookingRepository) ConflictingSlotIDs(areaID int, start, end time.Time, statuses []string) ([]int, error) {
	rows, err := r.DB.Query(`
		SELECT DISTINCT b.slot_id
		FROM bookings b
		JOIN parking_slots s ON s.id = b.slot_id
		WHERE s.area_id = $1
		  AND b.booking_status = ANY($2)
		  AND b.start_time < $3
		  AND b.end_time > $4`,
		areaID, pq.Array(statuses), end, start,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying conflicting slots: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning slot id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SlotHasConflict reports whether another active booking on the slot overlaps
// [start, end). excludeBookingID skips the booking being extended.
func (r *BookingRepository) SlotHasConflict(slotID int, start, end time.Time, excludeBookingID int) (bool, error) {
	var id int
	err := r.DB.QueryRow(`
		SELECT id FROM bookings
		WHERE slot_id = $1
		  AND id <> $2
		  AND booking_status = ANY($3)
		  AND start_time < $4
		  AND end_time > $5
		LIMIT 1`,
		slotID, excludeBookingID, pq.Array(ActiveStatuses), end, start,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error checking slot conflict: %w", err)
	}
	return true, nil
}

// ExpireIfDue transitions a PENDING booking past its deadline to EXPIRED.
// Returns true when the transition applied.
func (r *BookingRepository) ExpireIfDue(id int, now time.Time) (bool, error) {
	result, err := r.DB.Exec(`
		UPDATE bookings
		SET booking_status = $1, updated_at = $2
		WHERE id = $3 AND booking_status = $4 AND expires_at < $2`,
		db.BookingExpired, now, id, db.BookingPending,
	)
	if err != nil {
		return false, fmt.Errorf("error expiring booking %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ConfirmBooking applies PENDING -> CONFIRMED with payment details. The WHERE
// clause is the optimistic guard: zero rows means the booking was no longer
// PENDING and the caller must reject the confirm.
func (r *BookingRepository) ConfirmBooking(id int, paymentID, paymentMethod string, now time.Time) (bool, error) {
	result, err := r.DB.Exec(`
		UPDATE bookings
		SET booking_status = $1, payment_status = $2,
		    payment_id = $3, payment_method = $4, updated_at = $5
		WHERE id = $6 AND booking_status = $7`,
		db.BookingConfirmed, db.PaymentPaid, paymentID, paymentMethod, now,
		id, db.BookingPending,
	)
	if err != nil {
		return false, fmt.Errorf("error confirming booking %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CancelBooking applies the transition to CANCELLED together with the refund
// outcome, guarded on the booking still being in an active state.
func (r *BookingRepository) CancelBooking(id int, paymentStatus string, refundID sql.NullString, refundAmount sql.NullFloat64, refundedAt sql.NullTime, now time.Time) (bool, error) {
	result, err := r.DB.Exec(`
		UPDATE bookings
		SET booking_status = $1, payment_status = $2,
		    refund_id = $3, refund_amount = $4, refunded_at = $5, updated_at = $6
		WHERE id = $7 AND booking_status = ANY($8)`,
		db.BookingCancelled, paymentStatus, refundID, refundAmount, refundedAt, now,
		id, pq.Array(ActiveStatuses),
	)
	if err != nil {
		return false, fmt.Errorf("error cancelling booking %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ExtendBooking moves end_time forward and records the extension payment.
func (r *BookingRepository) ExtendBooking(id int, newEnd time.Time, newAmount float64, paymentID string, now time.Time) (bool, error) {
	result, err := r.DB.Exec(`
		UPDATE bookings
		SET end_time = $1, amount = $2, payment_status = $3,
		    payment_id = $4, updated_at = $5
		WHERE id = $6 AND booking_status = ANY($7)`,
		newEnd, newAmount, db.PaymentPaid, paymentID, now,
		id, pq.Array(ActiveStatuses),
	)
	if err != nil {
		return false, fmt.Errorf("error extending booking %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkEntry records the entry scan on a CONFIRMED booking.
func (r *BookingRepository) MarkEntry(id int, now time.Time) (bool, error) {
	result, err := r.DB.Exec(`
		UPDATE bookings
		SET entry_scanned = true, entry_time = $1, updated_at = $1
		WHERE id = $2 AND booking_status = $3 AND entry_scanned = false`,
		now, id, db.BookingConfirmed,
	)
	if err != nil {
		return false, fmt.Errorf("error recording entry scan for booking %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkExit records the exit scan and completes the session.
func (r *BookingRepository) MarkExit(id int, now time.Time) (bool, error) {
	result, err := r.DB.Exec(`
		UPDATE bookings
		SET exit_scanned = true, exit_time = $1, booking_status = $2, updated_at = $1
		WHERE id = $3 AND booking_status = $4 AND entry_scanned = true AND exit_scanned = false`,
		now, db.BookingCompleted, id, db.BookingConfirmed,
	)
	if err != nil {
		return false, fmt.Errorf("error recording exit scan for booking %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
