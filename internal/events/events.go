// Package events defines the room event wire format and the publisher that
// moves events from the auction core to the notification fan-out.
package events

import (
	"github.com/google/uuid"
)

// Type is the discriminator carried in every outbound room event.
type Type string

const (
	TypeAuctionStarted   Type = "auction_started"
	TypeNewBid           Type = "new_bid"
	TypeNextPlayer       Type = "next_player"
	TypeAuctionCompleted Type = "auction_completed"
)

// AuctionStartedPayload is broadcast when the host starts the auction.
type AuctionStartedPayload struct {
	Type     Type   `json:"type"`
	RoomCode string `json:"room_code"`
}

// NewBidPayload is broadcast when a bid becomes the new highest bid.
type NewBidPayload struct {
	Type     Type      `json:"type"`
	PlayerID uuid.UUID `json:"player_id"`
	Amount   float64   `json:"amount"`
	BidderID uuid.UUID `json:"bidder_id"`
}

// NextPlayerPayload is broadcast when the room advances to a new player.
type NextPlayerPayload struct {
	Type        Type      `json:"type"`
	PlayerIndex int       `json:"player_index"`
	PlayerID    uuid.UUID `json:"player_id"`
}

// AuctionCompletedPayload is broadcast when the last player settles.
type AuctionCompletedPayload struct {
	Type Type `json:"type"`
}

// AuctionStarted builds an auction_started event.
func AuctionStarted(roomCode string) AuctionStartedPayload {
	return AuctionStartedPayload{Type: TypeAuctionStarted, RoomCode: roomCode}
}

// NewBid builds a new_bid event.
func NewBid(playerID uuid.UUID, amount float64, bidderID uuid.UUID) NewBidPayload {
	return NewBidPayload{Type: TypeNewBid, PlayerID: playerID, Amount: amount, BidderID: bidderID}
}

// NextPlayer builds a next_player event.
func NextPlayer(index int, playerID uuid.UUID) NextPlayerPayload {
	return NextPlayerPayload{Type: TypeNextPlayer, PlayerIndex: index, PlayerID: playerID}
}

// AuctionCompleted builds an auction_completed event.
func AuctionCompleted() AuctionCompletedPayload {
	return AuctionCompletedPayload{Type: TypeAuctionCompleted}
}
