package models

import (
	"time"

	"github.com/google/uuid"
)

// PlayerType defines the role of a player in the catalog.
type PlayerType string

const (
	PlayerTypeBatsman      PlayerType = "batsman"
	PlayerTypeBowler       PlayerType = "bowler"
	PlayerTypeAllRounder   PlayerType = "all-rounder"
	PlayerTypeWicketKeeper PlayerType = "wicket-keeper"
)

// PlayerStats holds the raw performance numbers a player is scored on.
type PlayerStats struct {
	BattingAverage     float64 `json:"batting_average"`
	StrikeRate         float64 `json:"strike_rate"`
	Centuries          int     `json:"centuries"`
	Fifties            int     `json:"fifties"`
	WicketsTaken       int     `json:"wickets_taken"`
	EconomyRate        float64 `json:"economy_rate"`
	BestBowlingFigures string  `json:"best_bowling_figures"`
	Catches            int     `json:"catches"`
	RunOuts            int     `json:"run_outs"`
	MatchesPlayed      int     `json:"matches_played"`
	RecentFormRating   float64 `json:"recent_form_rating"`
	ExperienceYears    int     `json:"experience_years"`
}

// Player represents a player in the auction catalog.
type Player struct {
	ID               uuid.UUID   `json:"id"`
	Name             string      `json:"name"`
	ProfilePicture   *string     `json:"profile_picture,omitempty"`
	PlayerType       PlayerType  `json:"player_type"`
	Stats            PlayerStats `json:"stats"`
	PerformanceScore float64     `json:"performance_score"`
	CreatedAt        time.Time   `json:"created_at"`
}
