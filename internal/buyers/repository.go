package buyers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/auctionpro/internal/auction"
	"github.com/mcdev12/auctionpro/internal/models"
	"github.com/mcdev12/auctionpro/internal/sqlutil"
)

const profileColumns = `id, user_id, budget, remaining_budget, preferred_players,
	recommended_players, current_team, created_at`

// Repository persists buyer budget records in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertProfile creates a buyer profile or replaces its budget and
// preferences, resetting the remaining budget to the full budget.
func (r *Repository) UpsertProfile(ctx context.Context, userID uuid.UUID, budget float64, preferred []string) (*models.BuyerProfile, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO buyer_profiles (id, user_id, budget, remaining_budget, preferred_players)
		 VALUES ($1, $2, $3, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE
		 SET budget = EXCLUDED.budget,
		     remaining_budget = EXCLUDED.budget,
		     preferred_players = EXCLUDED.preferred_players
		 RETURNING `+profileColumns,
		uuid.New(), userID, budget, preferred)

	profile, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert buyer profile: %w", err)
	}
	return profile, nil
}

// GetProfile retrieves a buyer profile by user ID.
func (r *Repository) GetProfile(ctx context.Context, userID uuid.UUID) (*models.BuyerProfile, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM buyer_profiles WHERE user_id = $1`, userID)

	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auction.ErrBuyerNotFound
		}
		return nil, fmt.Errorf("failed to get buyer profile: %w", err)
	}
	return profile, nil
}

// ApplySettlement records the settlement and debits the buyer in one
// transaction. The settlements table's (room_id, player_index) unique
// key makes the whole operation idempotent: a conflicting insert means
// the item already settled, and the call returns false with no error and
// no state change. A debit that would drive the remaining budget
// negative rolls the settlement record back and returns
// ErrInvariantViolation.
func (r *Repository) ApplySettlement(ctx context.Context, s models.Settlement) (bool, error) {
	var applied bool
	err := sqlutil.Run(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`INSERT INTO settlements (id, room_id, player_index, player_id, buyer_id, amount)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (room_id, player_index) DO NOTHING`,
			uuid.New(), s.RoomID, s.PlayerIndex, s.PlayerID, s.BuyerID, s.Amount)
		if err != nil {
			return fmt.Errorf("failed to record settlement: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		var remaining float64
		err = tx.QueryRow(ctx,
			`SELECT remaining_budget FROM buyer_profiles WHERE user_id = $1 FOR UPDATE`,
			s.BuyerID).Scan(&remaining)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return auction.ErrBuyerNotFound
			}
			return fmt.Errorf("failed to lock buyer profile: %w", err)
		}
		if remaining < s.Amount {
			return auction.ErrInvariantViolation
		}

		_, err = tx.Exec(ctx,
			`UPDATE buyer_profiles
			 SET remaining_budget = remaining_budget - $3,
			     current_team = array_append(current_team, $2)
			 WHERE user_id = $1`,
			s.BuyerID, s.PlayerID, s.Amount)
		if err != nil {
			return fmt.Errorf("failed to apply settlement debit: %w", err)
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// SaveRecommendations stores the recommended player list on the profile.
func (r *Repository) SaveRecommendations(ctx context.Context, userID uuid.UUID, playerIDs []uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE buyer_profiles SET recommended_players = $2 WHERE user_id = $1`,
		userID, playerIDs)
	if err != nil {
		return fmt.Errorf("failed to save recommendations: %w", err)
	}
	return nil
}

func scanProfile(row pgx.Row) (*models.BuyerProfile, error) {
	var p models.BuyerProfile
	err := row.Scan(
		&p.ID, &p.UserID, &p.Budget, &p.RemainingBudget,
		&p.PreferredTypes, &p.Recommended, &p.CurrentTeam, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
