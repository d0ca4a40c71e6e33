package rooms

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mcdev12/auctionpro/internal/auction"
	"github.com/mcdev12/auctionpro/internal/models"
	"github.com/rs/zerolog/log"
)

// RoomRepository defines what the room app layer needs from the room
// repository.
type RoomRepository interface {
	CreateRoom(ctx context.Context, req CreateRoomRequest) (*models.Room, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	GetRoomByCode(ctx context.Context, code string) (*models.Room, error)
	AddPlayer(ctx context.Context, roomID, playerID uuid.UUID) error
	AddBuyer(ctx context.Context, roomID, userID uuid.UUID) error
}

// DefaultBidTimerSec is the per-player countdown applied to new rooms.
const DefaultBidTimerSec = 5

// App handles room lifecycle commands outside the live auction: creation,
// assembling the player list, and buyers joining. Live mutations (start,
// bids, settlement) go through the auction state machine instead.
type App struct {
	repo RoomRepository
}

func NewApp(repo RoomRepository) *App {
	return &App{repo: repo}
}

// CreateRoom creates a waiting room owned by the host.
func (a *App) CreateRoom(ctx context.Context, hostID uuid.UUID, roomName string) (*models.Room, error) {
	if hostID == uuid.Nil {
		return nil, fmt.Errorf("host_id is required")
	}
	if roomName == "" {
		return nil, fmt.Errorf("room_name is required")
	}

	req := CreateRoomRequest{
		ID:          uuid.New(),
		RoomCode:    newRoomCode(),
		HostID:      hostID,
		RoomName:    roomName,
		BidTimerSec: DefaultBidTimerSec,
	}

	room, err := a.repo.CreateRoom(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	log.Info().
		Str("room_id", room.ID.String()).
		Str("room_code", room.RoomCode).
		Str("host_id", hostID.String()).
		Msg("room created")
	return room, nil
}

// GetRoom retrieves a room by ID.
func (a *App) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	return a.repo.GetRoom(ctx, id)
}

// GetRoomByCode retrieves a room by its human join code.
func (a *App) GetRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	return a.repo.GetRoomByCode(ctx, strings.ToUpper(code))
}

// AddPlayer appends a player to the auction sequence. Host-only, and only
// while the room is still assembling.
func (a *App) AddPlayer(ctx context.Context, code string, hostID, playerID uuid.UUID) error {
	room, err := a.GetRoomByCode(ctx, code)
	if err != nil {
		return err
	}
	if room.HostID != hostID {
		return auction.ErrUnauthorized
	}
	if room.Status != models.RoomStatusWaiting {
		return auction.ErrAlreadyStarted
	}

	if err := a.repo.AddPlayer(ctx, room.ID, playerID); err != nil {
		return err
	}

	log.Info().
		Str("room_code", room.RoomCode).
		Str("player_id", playerID.String()).
		Msg("player added to room")
	return nil
}

// JoinRoom registers a buyer in the room. Joining is idempotent.
func (a *App) JoinRoom(ctx context.Context, code string, userID uuid.UUID) (*models.Room, error) {
	room, err := a.GetRoomByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := a.repo.AddBuyer(ctx, room.ID, userID); err != nil {
		return nil, err
	}

	log.Info().
		Str("room_code", room.RoomCode).
		Str("user_id", userID.String()).
		Msg("buyer joined room")
	return room, nil
}

// newRoomCode derives a short, human-shareable join code.
func newRoomCode() string {
	return strings.ToUpper(uuid.New().String()[:8])
}
