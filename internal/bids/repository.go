// Package bids persists the append-only bid log. Recorded bids are never
// updated or deleted.
package bids

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/auctionpro/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// AppendBid records an accepted bid.
func (r *Repository) AppendBid(ctx context.Context, bid models.Bid) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO bids (id, room_id, player_id, bidder_id, amount, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		bid.ID, bid.RoomID, bid.PlayerID, bid.BidderID, bid.Amount, bid.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append bid: %w", err)
	}
	return nil
}

// ListBidsForRoom returns a room's bids in the order they were accepted.
func (r *Repository) ListBidsForRoom(ctx context.Context, roomID uuid.UUID) ([]models.Bid, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, room_id, player_id, bidder_id, amount, created_at
		 FROM bids WHERE room_id = $1 ORDER BY created_at ASC`,
		roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	defer rows.Close()

	var out []models.Bid
	for rows.Next() {
		var b models.Bid
		if err := rows.Scan(&b.ID, &b.RoomID, &b.PlayerID, &b.BidderID, &b.Amount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
