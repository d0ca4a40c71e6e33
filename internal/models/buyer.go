package models

import (
	"time"

	"github.com/google/uuid"
)

// BuyerProfile tracks a buyer's budget and the players they have won.
//
// Invariant: RemainingBudget == Budget minus the sum of winning bids, and
// RemainingBudget never goes negative. Settlement is the only mutation
// path once an auction is active.
type BuyerProfile struct {
	ID              uuid.UUID   `json:"id"`
	UserID          uuid.UUID   `json:"user_id"`
	Budget          float64     `json:"budget"`
	RemainingBudget float64     `json:"remaining_budget"`
	PreferredTypes  []string    `json:"preferred_players"`
	Recommended     []uuid.UUID `json:"recommended_players"`
	CurrentTeam     []uuid.UUID `json:"current_team"`
	CreatedAt       time.Time   `json:"created_at"`
}
