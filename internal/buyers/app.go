package buyers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/auctionpro/internal/auction"
	"github.com/mcdev12/auctionpro/internal/models"
	"github.com/rs/zerolog/log"
)

// BuyerRepository defines what the buyer app layer needs from the buyer
// repository. ApplySettlement records the settlement and the budget
// debit atomically; a false return with no error means the item was
// already settled and nothing changed.
type BuyerRepository interface {
	UpsertProfile(ctx context.Context, userID uuid.UUID, budget float64, preferred []string) (*models.BuyerProfile, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.BuyerProfile, error)
	ApplySettlement(ctx context.Context, s models.Settlement) (bool, error)
	SaveRecommendations(ctx context.Context, userID uuid.UUID, playerIDs []uuid.UUID) error
}

// App handles buyer budget records. Settlements are serialized per buyer:
// a buyer winning players in two rooms at once must not lose an update.
type App struct {
	repo BuyerRepository

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewApp(repo BuyerRepository) *App {
	return &App{
		repo:  repo,
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// CreateOrUpdateProfile creates a buyer profile or resets its budget and
// preferences. Not valid once the buyer is mid-auction; the original
// remaining budget is replaced by the new full budget.
func (a *App) CreateOrUpdateProfile(ctx context.Context, userID uuid.UUID, budget float64, preferred []string) (*models.BuyerProfile, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user_id is required")
	}
	if budget <= 0 {
		return nil, fmt.Errorf("budget must be greater than 0")
	}
	for _, pt := range preferred {
		switch models.PlayerType(pt) {
		case models.PlayerTypeBatsman, models.PlayerTypeBowler, models.PlayerTypeAllRounder, models.PlayerTypeWicketKeeper:
		default:
			return nil, fmt.Errorf("invalid preferred player type: %s", pt)
		}
	}

	profile, err := a.repo.UpsertProfile(ctx, userID, budget, preferred)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Float64("budget", budget).
		Msg("buyer profile saved")
	return profile, nil
}

// GetProfile retrieves a buyer profile by user ID.
func (a *App) GetProfile(ctx context.Context, userID uuid.UUID) (*models.BuyerProfile, error) {
	return a.repo.GetProfile(ctx, userID)
}

// SaveRecommendations stores a recommendation list on the profile.
func (a *App) SaveRecommendations(ctx context.Context, userID uuid.UUID, playerIDs []uuid.UUID) error {
	return a.repo.SaveRecommendations(ctx, userID, playerIDs)
}

// Settle awards a player to the buyer and debits their remaining budget.
//
// The bid arbiter guarantees transitively that the debit fits the budget,
// but settlement re-validates before writing: a debit that would go
// negative is an invariant breach and aborts with ErrInvariantViolation
// instead of clamping. Serialized per buyer across rooms.
//
// Idempotent on (RoomID, PlayerIndex): re-settling an already-settled
// item is a no-op success, so an advance that failed after its debit can
// be retried without double-charging the buyer.
func (a *App) Settle(ctx context.Context, s models.Settlement) error {
	lock := a.buyerLock(s.BuyerID)
	lock.Lock()
	defer lock.Unlock()

	applied, err := a.repo.ApplySettlement(ctx, s)
	if err != nil {
		if errors.Is(err, auction.ErrInvariantViolation) {
			log.Error().
				Str("room_id", s.RoomID.String()).
				Int("player_index", s.PlayerIndex).
				Str("buyer_id", s.BuyerID.String()).
				Float64("amount", s.Amount).
				Msg("settlement would drive remaining budget negative")
		}
		return err
	}
	if !applied {
		log.Info().
			Str("room_id", s.RoomID.String()).
			Int("player_index", s.PlayerIndex).
			Str("buyer_id", s.BuyerID.String()).
			Msg("item already settled, duplicate debit skipped")
		return nil
	}

	log.Info().
		Str("room_id", s.RoomID.String()).
		Int("player_index", s.PlayerIndex).
		Str("buyer_id", s.BuyerID.String()).
		Str("player_id", s.PlayerID.String()).
		Float64("amount", s.Amount).
		Msg("settlement applied")
	return nil
}

func (a *App) buyerLock(userID uuid.UUID) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[userID] = lock
	}
	return lock
}
