package models

import (
	"time"

	"github.com/google/uuid"
)

// RoomStatus defines the lifecycle status of an auction room.
type RoomStatus string

const (
	RoomStatusWaiting   RoomStatus = "waiting"
	RoomStatusActive    RoomStatus = "active"
	RoomStatusCompleted RoomStatus = "completed"
)

// Room represents one auction instance: an ordered sequence of players
// auctioned one at a time to the room's buyers.
//
// Invariants maintained by the auction core:
//   - CurrentHighestBid == 0 exactly when CurrentHighestBidder is nil
//   - 0 <= CurrentPlayerIndex <= len(Players); index == len(Players)
//     implies Status == completed
type Room struct {
	ID                   uuid.UUID   `json:"id"`
	RoomCode             string      `json:"room_code"`
	HostID               uuid.UUID   `json:"host_id"`
	RoomName             string      `json:"room_name"`
	Players              []uuid.UUID `json:"players"`
	Buyers               []uuid.UUID `json:"buyers"`
	CurrentPlayerIndex   int         `json:"current_player_index"`
	CurrentHighestBid    float64     `json:"current_highest_bid"`
	CurrentHighestBidder *uuid.UUID  `json:"current_highest_bidder,omitempty"`
	Status               RoomStatus  `json:"status"`
	BidTimerSec          int         `json:"bid_timer_sec"`
	NextDeadline         *time.Time  `json:"next_deadline,omitempty"`
	StartedAt            *time.Time  `json:"started_at,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
}

// CurrentPlayer returns the player currently up for auction, or uuid.Nil
// and false when the room has run out of players.
func (r *Room) CurrentPlayer() (uuid.UUID, bool) {
	if r.CurrentPlayerIndex < 0 || r.CurrentPlayerIndex >= len(r.Players) {
		return uuid.Nil, false
	}
	return r.Players[r.CurrentPlayerIndex], true
}
