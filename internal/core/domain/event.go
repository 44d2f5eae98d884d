package domain

import "time"

type EventKind string

const (
	EventKindCreated EventKind = "created"
	EventKindUpdated EventKind = "updated"
	EventKindDeleted EventKind = "deleted"
)

type ItemEvent struct {
	ID         string    `json:"id"`
	Kind       EventKind `json:"kind"`
	ItemID     int       `json:"item_id"`
	Item       Item      `json:"item"` // state after the change, or the removed state for deletes
	OccurredAt time.Time `json:"occurred_at"`
}
