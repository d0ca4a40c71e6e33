package players

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/auctionpro/internal/auction"
	"github.com/mcdev12/auctionpro/internal/models"
)

// Repository persists the player catalog in PostgreSQL. Stats ride along
// as a JSONB document.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) CreatePlayer(ctx context.Context, player models.Player) (*models.Player, error) {
	statsBytes, err := json.Marshal(player.Stats)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player stats: %w", err)
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO players (id, name, profile_picture, player_type, stats, performance_score)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, name, profile_picture, player_type, stats, performance_score, created_at`,
		player.ID, player.Name, player.ProfilePicture, player.PlayerType, statsBytes, player.PerformanceScore)

	created, err := scanPlayer(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return created, nil
}

func (r *Repository) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, profile_picture, player_type, stats, performance_score, created_at
		 FROM players WHERE id = $1`, id)

	player, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auction.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

func (r *Repository) ListPlayers(ctx context.Context) ([]models.Player, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, profile_picture, player_type, stats, performance_score, created_at
		 FROM players ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var out []models.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		out = append(out, *player)
	}
	return out, rows.Err()
}

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var p models.Player
	var statsBytes []byte
	if err := row.Scan(&p.ID, &p.Name, &p.ProfilePicture, &p.PlayerType, &statsBytes, &p.PerformanceScore, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(statsBytes, &p.Stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player stats: %w", err)
	}
	return &p, nil
}
