package entities

// Per-slot availability for a requested window.
const (
	SlotAvailable = "AVAILABLE"
	SlotOccupied  = "OCCUPIED"
)

type SlotStatus struct {
	SlotID   int    `json:"slot_id"`
	Number   string `json:"number"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

type SlotStatusResponse struct {
	AreaID int          `json:"area_id"`
	Slots  []SlotStatus `json:"slots"`
}
