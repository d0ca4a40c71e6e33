package models

import (
	"time"

	"github.com/google/uuid"
)

// Bid is a single accepted bid. Bids are append-only: once recorded they
// are never mutated or deleted.
type Bid struct {
	ID        uuid.UUID `json:"id"`
	RoomID    uuid.UUID `json:"room_id"`
	PlayerID  uuid.UUID `json:"player_id"`
	BidderID  uuid.UUID `json:"bidder_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
