package players

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/auctionpro/internal/models"
	"github.com/rs/zerolog/log"
)

// PlayerRepository defines what the player app layer needs from the
// player repository.
type PlayerRepository interface {
	CreatePlayer(ctx context.Context, player models.Player) (*models.Player, error)
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
}

// CreatePlayerRequest represents a request to add a player to the catalog.
type CreatePlayerRequest struct {
	Name           string             `json:"name"`
	ProfilePicture *string            `json:"profile_picture,omitempty"`
	PlayerType     models.PlayerType  `json:"player_type"`
	Stats          models.PlayerStats `json:"stats"`
}

// App handles the player catalog.
type App struct {
	repo PlayerRepository
}

func NewApp(repo PlayerRepository) *App {
	return &App{repo: repo}
}

// CreatePlayer validates the request, scores the player, and stores it.
func (a *App) CreatePlayer(ctx context.Context, req CreatePlayerRequest) (*models.Player, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if err := validatePlayerType(req.PlayerType); err != nil {
		return nil, err
	}

	player := models.Player{
		ID:               uuid.New(),
		Name:             req.Name,
		ProfilePicture:   req.ProfilePicture,
		PlayerType:       req.PlayerType,
		Stats:            req.Stats,
		PerformanceScore: PerformanceScore(req.Stats, req.PlayerType),
	}

	created, err := a.repo.CreatePlayer(ctx, player)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("player_id", created.ID.String()).
		Str("player_type", string(created.PlayerType)).
		Float64("performance_score", created.PerformanceScore).
		Msg("player created")
	return created, nil
}

// GetPlayer retrieves a player by ID.
func (a *App) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	return a.repo.GetPlayer(ctx, id)
}

// ListPlayers returns the full catalog.
func (a *App) ListPlayers(ctx context.Context) ([]models.Player, error) {
	return a.repo.ListPlayers(ctx)
}

func validatePlayerType(pt models.PlayerType) error {
	switch pt {
	case models.PlayerTypeBatsman, models.PlayerTypeBowler, models.PlayerTypeAllRounder, models.PlayerTypeWicketKeeper:
		return nil
	default:
		return fmt.Errorf("invalid player type: %s", pt)
	}
}
