package auction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/auctionpro/internal/models"
)

// RoomStore is the slice of room persistence the auction core needs.
// Every mutation is single-document atomic; the compare-and-set methods
// return false (without error) when the precondition filter did not
// match, i.e. the caller lost a race.
type RoomStore interface {
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	StartRoom(ctx context.Context, roomID uuid.UUID, startedAt, deadline time.Time) (bool, error)
	CompareAndSetHighestBid(ctx context.Context, roomID uuid.UUID, playerIndex int, expectedBid, newBid float64, bidderID uuid.UUID) (bool, error)
	AdvanceToNext(ctx context.Context, roomID uuid.UUID, fromIndex int, deadline time.Time) (bool, error)
	CompleteRoom(ctx context.Context, roomID uuid.UUID, fromIndex int) (bool, error)
}

// DeadlineStore is what the scheduler needs to find rooms whose per-item
// countdown has elapsed.
type DeadlineStore interface {
	NextDeadline(ctx context.Context) (uuid.UUID, time.Time, error)
	RoomsDue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}

// BidLog is the append-only record of accepted bids.
type BidLog interface {
	AppendBid(ctx context.Context, bid models.Bid) error
}

// BudgetStore is what the auction core needs from buyer budget records.
// Settle must be idempotent on the settlement's (RoomID, PlayerIndex)
// key, re-validate the debit, and serialize per buyer. A repeated
// settlement for an already-settled item returns nil without debiting.
type BudgetStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.BuyerProfile, error)
	Settle(ctx context.Context, s models.Settlement) error
}
