package event

import "time"

// Type is the closed set of event kinds tracked by the dashboard.
type Type string

const (
	TypeUpload   Type = "UPLOAD"
	TypeBuy      Type = "BUY"
	TypeTransfer Type = "TRANSFER"
)

// Event is a single persisted business event. Rows are append-only: once
// written they are never updated or deleted.
type Event struct {
	ID        int64     `json:"id"`
	Actor     string    `json:"actor"`
	EventDate time.Time `json:"event_date"`
	EventType Type      `json:"event_type"`
	Image     *string   `json:"image,omitempty"`
	Amount    *int64    `json:"amount,omitempty"`
	Target    *string   `json:"target,omitempty"`
}

// ActorCount is one row of a grouped leaderboard query.
type ActorCount struct {
	Actor string `json:"actor"`
	Count int64  `json:"count"`
}
