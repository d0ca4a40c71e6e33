package rooms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/auctionpro/internal/auction"
	"github.com/mcdev12/auctionpro/internal/models"
)

const roomColumns = `id, room_code, host_id, room_name, players, buyers,
	current_player_index, current_highest_bid, current_highest_bidder,
	status, bid_timer_sec, next_deadline, started_at, created_at`

// Repository persists auction rooms in PostgreSQL. All state-mutating
// statements are single-document atomic; compare-and-set semantics are
// expressed as UPDATEs with matching precondition filters.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) CreateRoom(ctx context.Context, req CreateRoomRequest) (*models.Room, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO auction_rooms (id, room_code, host_id, room_name, bid_timer_sec)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+roomColumns,
		req.ID, req.RoomCode, req.HostID, req.RoomName, req.BidTimerSec)

	room, err := scanRoom(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return room, nil
}

func (r *Repository) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+roomColumns+` FROM auction_rooms WHERE id = $1`, id)

	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auction.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

func (r *Repository) GetRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+roomColumns+` FROM auction_rooms WHERE room_code = $1`, code)

	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auction.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room by code: %w", err)
	}
	return room, nil
}

// AddPlayer appends a player to the room's auction sequence unless it is
// already present.
func (r *Repository) AddPlayer(ctx context.Context, roomID, playerID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE auction_rooms
		 SET players = array_append(players, $2)
		 WHERE id = $1 AND NOT ($2 = ANY(players))`,
		roomID, playerID)
	if err != nil {
		return fmt.Errorf("failed to add player to room: %w", err)
	}
	return nil
}

// AddBuyer registers a buyer in the room unless already joined.
func (r *Repository) AddBuyer(ctx context.Context, roomID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE auction_rooms
		 SET buyers = array_append(buyers, $2)
		 WHERE id = $1 AND NOT ($2 = ANY(buyers))`,
		roomID, userID)
	if err != nil {
		return fmt.Errorf("failed to add buyer to room: %w", err)
	}
	return nil
}

// StartRoom flips a waiting room to active, resetting the item index and
// highest bid. Returns false when the room was not in the waiting state.
func (r *Repository) StartRoom(ctx context.Context, roomID uuid.UUID, startedAt time.Time, deadline time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE auction_rooms
		 SET status = $2, started_at = $3, next_deadline = $4,
		     current_player_index = 0, current_highest_bid = 0, current_highest_bidder = NULL
		 WHERE id = $1 AND status = $5`,
		roomID, models.RoomStatusActive, startedAt, deadline, models.RoomStatusWaiting)
	if err != nil {
		return false, fmt.Errorf("failed to start room: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CompareAndSetHighestBid installs a new highest bid only if the room is
// still active, still on the expected player index, and the highest bid
// still matches the value the caller validated against. Returns false on
// a lost race.
func (r *Repository) CompareAndSetHighestBid(ctx context.Context, roomID uuid.UUID, playerIndex int, expectedBid, newBid float64, bidderID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE auction_rooms
		 SET current_highest_bid = $4, current_highest_bidder = $5
		 WHERE id = $1 AND status = $6
		   AND current_player_index = $2 AND current_highest_bid = $3`,
		roomID, playerIndex, expectedBid, newBid, bidderID, models.RoomStatusActive)
	if err != nil {
		return false, fmt.Errorf("failed to compare-and-set highest bid: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// AdvanceToNext moves an active room from fromIndex to the next player,
// resetting the highest bid and arming the next deadline. Returns false
// when another advance already moved the room past fromIndex.
func (r *Repository) AdvanceToNext(ctx context.Context, roomID uuid.UUID, fromIndex int, deadline time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE auction_rooms
		 SET current_player_index = current_player_index + 1,
		     current_highest_bid = 0, current_highest_bidder = NULL,
		     next_deadline = $3
		 WHERE id = $1 AND status = $4 AND current_player_index = $2`,
		roomID, fromIndex, deadline, models.RoomStatusActive)
	if err != nil {
		return false, fmt.Errorf("failed to advance room: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CompleteRoom settles the final advance: index moves past the last
// player, status becomes completed, and the deadline is cleared.
func (r *Repository) CompleteRoom(ctx context.Context, roomID uuid.UUID, fromIndex int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE auction_rooms
		 SET current_player_index = current_player_index + 1,
		     current_highest_bid = 0, current_highest_bidder = NULL,
		     status = $3, next_deadline = NULL
		 WHERE id = $1 AND status = $4 AND current_player_index = $2`,
		roomID, fromIndex, models.RoomStatusCompleted, models.RoomStatusActive)
	if err != nil {
		return false, fmt.Errorf("failed to complete room: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// NextDeadline returns the soonest settlement deadline across all active
// rooms, or auction.ErrNoDeadline when nothing is pending.
func (r *Repository) NextDeadline(ctx context.Context) (uuid.UUID, time.Time, error) {
	var roomID uuid.UUID
	var deadline time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT id, next_deadline FROM auction_rooms
		 WHERE status = $1 AND next_deadline IS NOT NULL
		 ORDER BY next_deadline ASC LIMIT 1`,
		models.RoomStatusActive).Scan(&roomID, &deadline)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, time.Time{}, auction.ErrNoDeadline
		}
		return uuid.Nil, time.Time{}, fmt.Errorf("failed to fetch next deadline: %w", err)
	}
	return roomID, deadline, nil
}

// RoomsDue returns active rooms whose deadline has elapsed.
func (r *Repository) RoomsDue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM auction_rooms
		 WHERE status = $1 AND next_deadline IS NOT NULL AND next_deadline <= $2
		 ORDER BY next_deadline ASC LIMIT $3`,
		models.RoomStatusActive, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due rooms: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan due room: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanRoom(row pgx.Row) (*models.Room, error) {
	var room models.Room
	err := row.Scan(
		&room.ID, &room.RoomCode, &room.HostID, &room.RoomName,
		&room.Players, &room.Buyers,
		&room.CurrentPlayerIndex, &room.CurrentHighestBid, &room.CurrentHighestBidder,
		&room.Status, &room.BidTimerSec, &room.NextDeadline, &room.StartedAt, &room.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &room, nil
}
