package events

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectRoundTrip(t *testing.T) {
	roomID := uuid.New()
	subject := Subject(DefaultSubjectPrefix, roomID)
	assert.Equal(t, "auction.events."+roomID.String(), subject)

	got, err := RoomIDFromSubject(subject)
	require.NoError(t, err)
	assert.Equal(t, roomID, got)
}

func TestRoomIDFromSubjectRejectsMalformed(t *testing.T) {
	for _, subject := range []string{"", "noseparator", "auction.events.not-a-uuid"} {
		_, err := RoomIDFromSubject(subject)
		assert.Error(t, err, "subject %q", subject)
	}
}

// The wire format carries the type discriminator inline with the
// payload, snake_case throughout.
func TestEventWireFormat(t *testing.T) {
	playerID := uuid.New()
	bidderID := uuid.New()

	data, err := json.Marshal(NewBid(playerID, 15, bidderID))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "new_bid", decoded["type"])
	assert.Equal(t, playerID.String(), decoded["player_id"])
	assert.Equal(t, 15.0, decoded["amount"])
	assert.Equal(t, bidderID.String(), decoded["bidder_id"])

	data, err = json.Marshal(NextPlayer(2, playerID))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "next_player", decoded["type"])
	assert.Equal(t, 2.0, decoded["player_index"])

	data, err = json.Marshal(AuctionStarted("AB12CD34"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "auction_started", decoded["type"])
	assert.Equal(t, "AB12CD34", decoded["room_code"])

	data, err = json.Marshal(AuctionCompleted())
	require.NoError(t, err)
	decoded = map[string]any{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, map[string]any{"type": "auction_completed"}, decoded)
}
