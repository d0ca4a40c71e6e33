package auction

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auctionpro/internal/events"
	"github.com/mcdev12/auctionpro/internal/models"
	"github.com/rs/zerolog/log"
)

// Trigger identifies what fired an advance.
type Trigger string

const (
	// TriggerTimer is the server-side countdown, the authoritative
	// trigger.
	TriggerTimer Trigger = "timer"
	// TriggerClient is a client-reported bid_timer_end message.
	TriggerClient Trigger = "client"
)

// clientTriggerGrace is how far ahead of the armed deadline a client
// countdown signal is still honored, absorbing clock skew between the
// client's timer and the server's.
const clientTriggerGrace = time.Second

// Machine owns one room's auction lifecycle: waiting -> active ->
// completed, item sequencing, and payout settlement.
//
// All state-mutating operations for the room (bid application and
// advance) serialize on the machine's mutex. Unrelated rooms have
// unrelated machines and proceed independently. The mutex plus the
// store-level index precondition give exactly-once settlement per item:
// duplicate or concurrent advance signals for the same index settle it
// at most once.
type Machine struct {
	roomID    uuid.UUID
	mu        sync.Mutex
	rooms     RoomStore
	budgets   BudgetStore
	arbiter   *Arbiter
	publisher events.Publisher
	clock     clockwork.Clock
	wake      func()
}

// Start transitions the room from waiting to active. Host-only. Resets
// the item index and highest bid, arms the first countdown, and emits
// auction_started.
func (m *Machine) Start(ctx context.Context, hostID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, err := m.rooms.GetRoom(ctx, m.roomID)
	if err != nil {
		return err
	}
	if room.HostID != hostID {
		return ErrUnauthorized
	}
	if room.Status != models.RoomStatusWaiting {
		return ErrAlreadyStarted
	}
	if len(room.Players) == 0 {
		return ErrNoPlayers
	}

	now := m.clock.Now()
	deadline := now.Add(m.countdown(room))
	ok, err := m.rooms.StartRoom(ctx, m.roomID, now, deadline)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAlreadyStarted
	}

	m.publish(ctx, events.AuctionStarted(room.RoomCode))
	m.wakeScheduler()

	log.Info().
		Str("room_id", m.roomID.String()).
		Str("room_code", room.RoomCode).
		Int("players", len(room.Players)).
		Msg("auction started")
	return nil
}

// SubmitBid routes a bid through the arbiter under the room's write lock.
func (m *Machine) SubmitBid(ctx context.Context, playerID, bidderID uuid.UUID, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.arbiter.SubmitBid(ctx, m.roomID, playerID, bidderID, amount)
}

// Advance settles the current item and moves to the next one, or
// completes the room after the last item.
//
// Settlement re-validates the debit: a payout that would drive the
// buyer's remaining budget negative is a fatal invariant breach — the
// advance aborts with ErrInvariantViolation and the room is left for
// operator attention rather than silently clamped or skipped.
//
// Settlement is keyed by (room, item index), so a re-fire after a
// transient failure between the debit and the index move never settles
// the same item twice.
func (m *Machine) Advance(ctx context.Context, trigger Trigger) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, err := m.rooms.GetRoom(ctx, m.roomID)
	if err != nil {
		return err
	}
	if room.Status != models.RoomStatusActive {
		return ErrAuctionNotActive
	}

	// A client countdown signal is only honored near the armed deadline.
	// A stale bid_timer_end landing right after a timer-driven advance
	// would otherwise truncate the next item's bidding window.
	if trigger == TriggerClient && room.NextDeadline != nil {
		if room.NextDeadline.Sub(m.clock.Now()) > clientTriggerGrace {
			log.Debug().
				Str("room_id", m.roomID.String()).
				Time("next_deadline", *room.NextDeadline).
				Msg("early client countdown signal ignored")
			return nil
		}
	}

	idx := room.CurrentPlayerIndex
	playerID, ok := room.CurrentPlayer()
	if !ok {
		return fmt.Errorf("active room %s has index %d past its %d players", m.roomID, idx, len(room.Players))
	}

	if room.CurrentHighestBidder != nil && room.CurrentHighestBid > 0 {
		err := m.budgets.Settle(ctx, models.Settlement{
			RoomID:      m.roomID,
			PlayerIndex: idx,
			PlayerID:    playerID,
			BuyerID:     *room.CurrentHighestBidder,
			Amount:      room.CurrentHighestBid,
		})
		if err != nil {
			if errors.Is(err, ErrInvariantViolation) {
				log.Error().
					Str("room_id", m.roomID.String()).
					Str("bidder_id", room.CurrentHighestBidder.String()).
					Float64("amount", room.CurrentHighestBid).
					Str("trigger", string(trigger)).
					Msg("settlement invariant breach, advance aborted")
			}
			return err
		}
	}

	if idx+1 >= len(room.Players) {
		ok, err := m.rooms.CompleteRoom(ctx, m.roomID, idx)
		if err != nil {
			return err
		}
		if ok {
			m.publish(ctx, events.AuctionCompleted())
			log.Info().
				Str("room_id", m.roomID.String()).
				Str("trigger", string(trigger)).
				Msg("auction completed")
		}
		return nil
	}

	deadline := m.clock.Now().Add(m.countdown(room))
	ok, err = m.rooms.AdvanceToNext(ctx, m.roomID, idx, deadline)
	if err != nil {
		return err
	}
	if ok {
		nextID := room.Players[idx+1]
		m.publish(ctx, events.NextPlayer(idx+1, nextID))
		m.wakeScheduler()
		log.Info().
			Str("room_id", m.roomID.String()).
			Int("player_index", idx+1).
			Str("player_id", nextID.String()).
			Str("trigger", string(trigger)).
			Msg("advanced to next player")
	}
	return nil
}

func (m *Machine) countdown(room *models.Room) time.Duration {
	secs := room.BidTimerSec
	if secs <= 0 {
		secs = 5
	}
	return time.Duration(secs) * time.Second
}

// publish delivers an event to the fan-out. Delivery problems never fail
// the operation that produced the event.
func (m *Machine) publish(ctx context.Context, event any) {
	if err := m.publisher.Publish(ctx, m.roomID, event); err != nil {
		log.Error().Err(err).Str("room_id", m.roomID.String()).Msg("failed to publish room event")
	}
}

func (m *Machine) wakeScheduler() {
	if m.wake != nil {
		m.wake()
	}
}
