package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/auctionpro/internal/auction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type advanceCall struct {
	RoomID  uuid.UUID
	Trigger auction.Trigger
}

type fakeAdvancer struct {
	calls chan advanceCall
	err   error
}

func newFakeAdvancer() *fakeAdvancer {
	return &fakeAdvancer{calls: make(chan advanceCall, 16)}
}

func (f *fakeAdvancer) Advance(ctx context.Context, roomID uuid.UUID, trigger auction.Trigger) error {
	f.calls <- advanceCall{RoomID: roomID, Trigger: trigger}
	return f.err
}

type gatewayFixture struct {
	cm       *ConnectionManager
	advancer *fakeAdvancer
	server   *httptest.Server
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()

	f := &gatewayFixture{advancer: newFakeAdvancer()}
	f.cm = NewConnectionManager(DefaultConnectionConfig(), f.advancer)

	ctx, cancel := context.WithCancel(context.Background())
	go f.cm.Start(ctx)

	handler := NewWebSocketHandler(f.cm)
	f.server = httptest.NewServer(http.HandlerFunc(handler.HandleRoomConnection))

	t.Cleanup(func() {
		f.server.Close()
		cancel()
	})
	return f
}

func (f *gatewayFixture) dial(t *testing.T, roomID, userID uuid.UUID) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") +
		"?room_id=" + roomID.String() + "&user_id=" + userID.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	return data
}

func expectNoMessage(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}

func waitForSubscribers(t *testing.T, cm *ConnectionManager, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		total, _ := cm.Stats()
		return total == want
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBroadcastReachesRoomSubscribersOnly(t *testing.T) {
	f := newGatewayFixture(t)

	roomA := uuid.New()
	roomB := uuid.New()
	first := f.dial(t, roomA, uuid.New())
	second := f.dial(t, roomA, uuid.New())
	other := f.dial(t, roomB, uuid.New())
	waitForSubscribers(t, f.cm, 3)

	payload := []byte(`{"type":"new_bid","player_id":"x","amount":10}`)
	f.cm.BroadcastToRoom(roomA, payload)

	assert.Equal(t, payload, readMessage(t, first))
	assert.Equal(t, payload, readMessage(t, second))
	expectNoMessage(t, other)
}

// A subscriber that dropped off must not block delivery to the rest of
// the room.
func TestBroadcastSurvivesDisconnectedSubscriber(t *testing.T) {
	f := newGatewayFixture(t)

	roomID := uuid.New()
	gone := f.dial(t, roomID, uuid.New())
	alive := f.dial(t, roomID, uuid.New())
	waitForSubscribers(t, f.cm, 2)

	gone.Close()
	waitForSubscribers(t, f.cm, 1)

	payload := []byte(`{"type":"next_player","player_index":1}`)
	f.cm.BroadcastToRoom(roomID, payload)
	assert.Equal(t, payload, readMessage(t, alive))
}

func TestClientTimerEndTriggersAdvance(t *testing.T) {
	f := newGatewayFixture(t)

	roomID := uuid.New()
	conn := f.dial(t, roomID, uuid.New())
	waitForSubscribers(t, f.cm, 1)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bid_timer_end"}`)))

	select {
	case call := <-f.advancer.calls:
		assert.Equal(t, roomID, call.RoomID)
		assert.Equal(t, auction.TriggerClient, call.Trigger)
	case <-time.After(2 * time.Second):
		t.Fatal("advance was never triggered")
	}
}

// A rejected advance (for example the server timer won the race) must
// not drop the connection.
func TestRejectedAdvanceKeepsConnectionAlive(t *testing.T) {
	f := newGatewayFixture(t)
	f.advancer.err = auction.ErrAuctionNotActive

	roomID := uuid.New()
	conn := f.dial(t, roomID, uuid.New())
	waitForSubscribers(t, f.cm, 1)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bid_timer_end"}`)))
	<-f.advancer.calls

	payload := []byte(`{"type":"auction_completed"}`)
	f.cm.BroadcastToRoom(roomID, payload)
	assert.Equal(t, payload, readMessage(t, conn))
}

func TestUnknownClientMessagesIgnored(t *testing.T) {
	f := newGatewayFixture(t)

	roomID := uuid.New()
	conn := f.dial(t, roomID, uuid.New())
	waitForSubscribers(t, f.cm, 1)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"mystery"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not even json`)))

	select {
	case <-f.advancer.calls:
		t.Fatal("unknown message triggered an advance")
	case <-time.After(200 * time.Millisecond):
	}

	// Still subscribed and receiving.
	payload := []byte(`{"type":"auction_started"}`)
	f.cm.BroadcastToRoom(roomID, payload)
	assert.Equal(t, payload, readMessage(t, conn))
}

func TestUpgradeRejectsBadParams(t *testing.T) {
	f := newGatewayFixture(t)

	resp, err := http.Get(f.server.URL + "?room_id=not-a-uuid&user_id=" + uuid.New().String())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(f.server.URL + "?room_id=" + uuid.New().String())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// A subscriber dropping off mid-broadcast must never turn a delivery
// into a send on its closed Send channel. Deliveries happen under the
// read lock and unregister closes under the write lock, so the two can
// interleave in any order without panicking.
func TestBroadcastRacingUnregister(t *testing.T) {
	cm := NewConnectionManager(DefaultConnectionConfig(), nil)
	roomID := uuid.New()

	for i := 0; i < 500; i++ {
		conn := &Connection{
			ID:      uuid.New().String(),
			UserID:  uuid.New(),
			RoomID:  roomID,
			Send:    make(chan []byte, 1),
			Manager: cm,
		}
		cm.register(conn)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			cm.handleBroadcast(BroadcastMessage{RoomID: roomID, Data: []byte(`{"type":"new_bid"}`)})
		}()
		go func() {
			defer wg.Done()
			cm.unregister(conn)
		}()
		wg.Wait()
	}

	total, _ := cm.Stats()
	assert.Equal(t, 0, total)
}

func TestStatsCountRoomsAndConnections(t *testing.T) {
	f := newGatewayFixture(t)

	roomA := uuid.New()
	roomB := uuid.New()
	f.dial(t, roomA, uuid.New())
	f.dial(t, roomA, uuid.New())
	f.dial(t, roomB, uuid.New())
	waitForSubscribers(t, f.cm, 3)

	total, rooms := f.cm.Stats()
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, rooms)
}
