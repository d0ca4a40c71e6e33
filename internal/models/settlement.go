package models

import "github.com/google/uuid"

// Settlement records the award of one auctioned item to its winning
// buyer. The (RoomID, PlayerIndex) pair is the idempotency key: an item
// settles at most once no matter how many advance signals fire for it.
type Settlement struct {
	RoomID      uuid.UUID `json:"room_id"`
	PlayerIndex int       `json:"player_index"`
	PlayerID    uuid.UUID `json:"player_id"`
	BuyerID     uuid.UUID `json:"buyer_id"`
	Amount      float64   `json:"amount"`
}
