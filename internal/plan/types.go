package plan

import "time"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
)

func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusDraft, StatusConfirmed, StatusCompleted:
		return Status(raw), true
	default:
		return "", false
	}
}

// Entry is one itinerary stop. Order within the Entries slice is the
// itinerary order and is significant.
type Entry struct {
	PlaceID int64  `json:"placeId"`
	Note    string `json:"note,omitempty"`
}

// WeekendPlan references places by id only; a referenced place may have been
// deleted since, and consumers must tolerate the dangling id.
type WeekendPlan struct {
	ID        int64     `json:"id"`
	Entries   []Entry   `json:"places"`
	PlanDate  string    `json:"date,omitempty"` // YYYY-MM-DD
	Notes     string    `json:"notes,omitempty"`
	Status    Status    `json:"status"`
	ShareCode string    `json:"shareCode,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
