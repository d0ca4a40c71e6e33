package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/auctionpro/internal/auction"
	"github.com/rs/zerolog/log"
)

// AdvanceTrigger is what the gateway needs from the auction core to act
// on client-reported countdown expiry.
type AdvanceTrigger interface {
	Advance(ctx context.Context, roomID uuid.UUID, trigger auction.Trigger) error
}

// ConnectionManager manages WebSocket connections for auction rooms. It
// is the live subscriber set: per-room connection pools, created on
// connect and dropped on disconnect, never persisted.
type ConnectionManager struct {
	roomConnections map[uuid.UUID]map[*Connection]bool
	mu              sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
	advancer AdvanceTrigger

	broadcastCh chan BroadcastMessage
}

// Connection represents one client connection subscribed to a room.
type Connection struct {
	ID      string
	UserID  uuid.UUID
	RoomID  uuid.UUID
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time
	LastPing    time.Time
}

// ConnectionConfig holds configuration for WebSocket connections.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// BroadcastMessage is a marshaled room event headed for every subscriber
// of the room.
type BroadcastMessage struct {
	RoomID uuid.UUID
	Data   []byte
}

// clientMessage is the inbound frame envelope. Only the discriminator
// matters; unrecognized types are ignored, not fatal.
type clientMessage struct {
	Type string `json:"type"`
}

const clientMessageTimerEnd = "bid_timer_end"

// DefaultConnectionConfig returns default WebSocket configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager.
func NewConnectionManager(config ConnectionConfig, advancer AdvanceTrigger) *ConnectionManager {
	return &ConnectionManager{
		roomConnections: make(map[uuid.UUID]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		advancer:    advancer,
		broadcastCh: make(chan BroadcastMessage, 1000),
	}
}

// Start begins processing broadcast messages.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// UpgradeConnection upgrades an HTTP request to a WebSocket subscription
// on roomID.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, userID, roomID uuid.UUID) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		UserID:      userID,
		RoomID:      roomID,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Manager:     cm,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}

	cm.register(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("user_id", userID.String()).
		Str("room_id", roomID.String()).
		Msg("WebSocket connection established")
	return nil
}

// register adds a connection to its room's subscriber set.
func (cm *ConnectionManager) register(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.roomConnections[conn.RoomID] == nil {
		cm.roomConnections[conn.RoomID] = make(map[*Connection]bool)
	}
	cm.roomConnections[conn.RoomID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("room_id", conn.RoomID.String()).
		Int("subscribers", len(cm.roomConnections[conn.RoomID])).
		Msg("subscriber registered")
}

// unregister removes a connection. Idempotent: removing a connection
// that is already gone is a no-op.
func (cm *ConnectionManager) unregister(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	connections, exists := cm.roomConnections[conn.RoomID]
	if !exists {
		return
	}
	if _, exists := connections[conn]; !exists {
		return
	}

	delete(connections, conn)
	close(conn.Send)
	if len(connections) == 0 {
		delete(cm.roomConnections, conn.RoomID)
	}

	log.Info().
		Str("connection_id", conn.ID).
		Str("user_id", conn.UserID.String()).
		Str("room_id", conn.RoomID.String()).
		Msg("subscriber unregistered")
}

// BroadcastToRoom queues an already-marshaled event for every live
// subscriber of the room.
func (cm *ConnectionManager) BroadcastToRoom(roomID uuid.UUID, data []byte) {
	select {
	case cm.broadcastCh <- BroadcastMessage{RoomID: roomID, Data: data}:
	default:
		log.Warn().Str("room_id", roomID.String()).Msg("broadcast channel full, dropping message")
	}
}

// handleBroadcast delivers one message to the room's subscriber set.
// Per-subscriber failure evicts that subscriber and never aborts
// delivery to the rest.
//
// Sends happen under the read lock: unregister closes Send under the
// write lock, so a connection dropping mid-broadcast can never turn a
// delivery into a send on a closed channel. The sends never block, so
// holding the lock is cheap; slow subscribers are evicted after it is
// released.
func (cm *ConnectionManager) handleBroadcast(message BroadcastMessage) {
	cm.mu.RLock()
	connections, exists := cm.roomConnections[message.RoomID]
	if !exists {
		cm.mu.RUnlock()
		return
	}

	delivered := 0
	var slow []*Connection
	for conn := range connections {
		select {
		case conn.Send <- message.Data:
			delivered++
		default:
			slow = append(slow, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().
			Str("connection_id", conn.ID).
			Str("user_id", conn.UserID.String()).
			Msg("subscriber send buffer full, closing connection")
		cm.unregister(conn)
		conn.Conn.Close()
	}

	log.Debug().
		Str("room_id", message.RoomID.String()).
		Int("subscribers", delivered).
		Msg("event broadcast")
}

// Stats returns subscriber counts per room.
func (cm *ConnectionManager) Stats() (totalConnections int, activeRooms int) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	for _, connections := range cm.roomConnections {
		totalConnections += len(connections)
	}
	return totalConnections, len(cm.roomConnections)
}

// writePump pushes queued messages and pings to the socket.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregister(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			c.LastPing = time.Now()
		}
	}
}

// readPump consumes inbound frames until the socket dies.
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		c.LastPing = time.Now()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("unexpected WebSocket close error")
			}
			break
		}

		c.handleClientMessage(message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}

// handleClientMessage dispatches one inbound frame. bid_timer_end fires
// an advance; anything else is ignored.
func (c *Connection) handleClientMessage(message []byte) {
	var msg clientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Debug().
			Str("connection_id", c.ID).
			Msg("ignoring malformed client message")
		return
	}

	switch msg.Type {
	case clientMessageTimerEnd:
		if c.Manager.advancer == nil {
			return
		}
		if err := c.Manager.advancer.Advance(context.Background(), c.RoomID, auction.TriggerClient); err != nil {
			// Client timers race the server timer and each other; losing
			// that race is expected and never fails the connection.
			log.Debug().
				Err(err).
				Str("room_id", c.RoomID.String()).
				Str("connection_id", c.ID).
				Msg("client-triggered advance rejected")
		}
	default:
		log.Debug().
			Str("connection_id", c.ID).
			Str("type", msg.Type).
			Msg("ignoring unrecognized client message type")
	}
}
