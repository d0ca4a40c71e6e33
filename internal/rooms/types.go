package rooms

import (
	"github.com/google/uuid"
)

// CreateRoomRequest represents a request to create a new auction room.
type CreateRoomRequest struct {
	ID          uuid.UUID `json:"id"`
	RoomCode    string    `json:"room_code"`
	HostID      uuid.UUID `json:"host_id"`
	RoomName    string    `json:"room_name"`
	BidTimerSec int       `json:"bid_timer_sec"`
}
