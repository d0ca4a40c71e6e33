package auction

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auctionpro/internal/events"
	"github.com/mcdev12/auctionpro/internal/models"
	"github.com/rs/zerolog/log"
)

// Arbiter validates and applies a single bid against current room state.
// Races between concurrent submissions resolve through a compare-and-set
// on the room's highest-bid fields: the arbiter re-reads fresh state and
// retries once before giving up with ErrConcurrentBidConflict.
type Arbiter struct {
	rooms     RoomStore
	bids      BidLog
	budgets   BudgetStore
	publisher events.Publisher
	clock     clockwork.Clock
}

func NewArbiter(rooms RoomStore, bids BidLog, budgets BudgetStore, publisher events.Publisher, clock clockwork.Clock) *Arbiter {
	return &Arbiter{
		rooms:     rooms,
		bids:      bids,
		budgets:   budgets,
		publisher: publisher,
		clock:     clock,
	}
}

// SubmitBid applies one bid. Validation order: room active, bid targets
// the current player, amount strictly above the highest bid (ties lose),
// bidder budget covers the amount. The bid record is appended only when
// the bid actually became the new highest bid.
func (a *Arbiter) SubmitBid(ctx context.Context, roomID, playerID, bidderID uuid.UUID, amount float64) error {
	room, err := a.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}

	const casAttempts = 2
	for attempt := 0; attempt < casAttempts; attempt++ {
		if err := validateBid(room, playerID, amount); err != nil {
			return err
		}

		profile, err := a.budgets.GetProfile(ctx, bidderID)
		if err != nil {
			return err
		}
		if profile.RemainingBudget < amount {
			return ErrInsufficientBudget
		}

		ok, err := a.rooms.CompareAndSetHighestBid(ctx, roomID, room.CurrentPlayerIndex, room.CurrentHighestBid, amount, bidderID)
		if err != nil {
			return err
		}
		if ok {
			a.recordAcceptedBid(ctx, roomID, playerID, bidderID, amount)
			return nil
		}

		// Lost the race: another bid or an advance moved the room under
		// us. Re-validate against fresh state before the single retry.
		room, err = a.rooms.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
	}

	return ErrConcurrentBidConflict
}

func (a *Arbiter) recordAcceptedBid(ctx context.Context, roomID, playerID, bidderID uuid.UUID, amount float64) {
	bid := models.Bid{
		ID:        uuid.New(),
		RoomID:    roomID,
		PlayerID:  playerID,
		BidderID:  bidderID,
		Amount:    amount,
		CreatedAt: a.clock.Now(),
	}
	// The room already holds the new highest bid; the log is an audit
	// trail, not the source of truth. A lost entry must not turn an
	// accepted bid into a reported failure.
	if err := a.bids.AppendBid(ctx, bid); err != nil {
		log.Error().
			Err(err).
			Str("room_id", roomID.String()).
			Str("bid_id", bid.ID.String()).
			Msg("failed to append accepted bid to log")
	}

	if err := a.publisher.Publish(ctx, roomID, events.NewBid(playerID, amount, bidderID)); err != nil {
		log.Error().Err(err).Str("room_id", roomID.String()).Msg("failed to publish new_bid event")
	}

	log.Info().
		Str("room_id", roomID.String()).
		Str("player_id", playerID.String()).
		Str("bidder_id", bidderID.String()).
		Float64("amount", amount).
		Msg("bid accepted")
}

// validateBid checks a bid against a snapshot of room state.
func validateBid(room *models.Room, playerID uuid.UUID, amount float64) error {
	if room.Status != models.RoomStatusActive {
		return ErrAuctionNotActive
	}

	current, ok := room.CurrentPlayer()
	if !ok || current != playerID {
		return ErrStalePlayer
	}

	if amount <= room.CurrentHighestBid {
		return ErrBidTooLow
	}
	return nil
}
