package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"urbpark/internal/db"
	apperrors "urbpark/internal/errors"
)

type SlotRepository struct {
	DB *sql.DB
}

func NewSlotRepository(database *sql.DB) *SlotRepository {
	return &SlotRepository{DB: database}
}

func (r *SlotRepository) GetAreaByID(id int) (*db.ParkingArea, error) {
	var a db.ParkingArea
	err := r.DB.QueryRow(`
		SELECT id, city, name, address, total_slots, price_per_hour, lat, long
		FROM parking_areas WHERE id = $1`, id,
	).Scan(&a.ID, &a.City, &a.Name, &a.Address, &a.TotalSlots, &a.PricePerHour, &a.Lat, &a.Long)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("parking area")
		}
		return nil, fmt.Errorf("error querying parking area %d: %w", id, err)
	}
	return &a, nil
}

func (r *SlotRepository) ListSlotsByArea(areaID int) ([]db.Slot, error) {
	rows, err := r.DB.Query(`
		SELECT id, area_id, number, category
		FROM parking_slots WHERE area_id = $1 ORDER BY number`, areaID,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying slots for area %d: %w", areaID, err)
	}
	defer rows.Close()

	var slots []db.Slot
	for rows.Next() {
		var s db.Slot
		if err := rows.Scan(&s.ID, &s.AreaID, &s.Number, &s.Category); err != nil {
			return nil, fmt.Errorf("error scanning slot row: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// GetSlotWithRate returns the slot and the hourly rate of its parking area.
func (r *SlotRepository) GetSlotWithRate(slotID int) (*db.Slot, float64, error) {
	var s db.Slot
	var rate float64
	err := r.DB.QueryRow(`
		SELECT s.id, s.area_id, s.number, s.category, a.price_per_hour
		FROM parking_slots s
		JOIN parking_areas a ON a.id = s.area_id
		WHERE s.id = $1`, slotID,
	).Scan(&s.ID, &s.AreaID, &s.Number, &s.Category, &rate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, apperrors.NotFound("slot")
		}
		return nil, 0, fmt.Errorf("error querying slot %d: %w", slotID, err)
	}
	return &s, rate, nil
}
