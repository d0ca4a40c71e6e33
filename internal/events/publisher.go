package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// DefaultSubjectPrefix is the NATS subject prefix room events are
// published under. The room ID is appended as the final token.
const DefaultSubjectPrefix = "auction.events"

// Publisher delivers a room event to the notification fan-out. Publish
// failures must be handled by the caller as log-and-continue: delivery
// problems never fail the bid or advance that produced the event.
type Publisher interface {
	Publish(ctx context.Context, roomID uuid.UUID, event any) error
}

// Subject returns the NATS subject for a room's events.
func Subject(prefix string, roomID uuid.UUID) string {
	return fmt.Sprintf("%s.%s", prefix, roomID)
}

// RoomIDFromSubject extracts the room ID from an event subject.
func RoomIDFromSubject(subject string) (uuid.UUID, error) {
	idx := strings.LastIndex(subject, ".")
	if idx < 0 {
		return uuid.Nil, fmt.Errorf("malformed event subject %q", subject)
	}
	return uuid.Parse(subject[idx+1:])
}

// NATSPublisher publishes room events to NATS.
type NATSPublisher struct {
	nc            *nats.Conn
	subjectPrefix string
}

// ConnectPublisher connects to NATS and returns a publisher over the
// connection. Reconnect handling mirrors the gateway consumer.
func ConnectPublisher(url, subjectPrefix string) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return NewNATSPublisher(nc, subjectPrefix), nil
}

// NewNATSPublisher wraps an existing NATS connection.
func NewNATSPublisher(nc *nats.Conn, subjectPrefix string) *NATSPublisher {
	if subjectPrefix == "" {
		subjectPrefix = DefaultSubjectPrefix
	}
	return &NATSPublisher{nc: nc, subjectPrefix: subjectPrefix}
}

// Publish marshals the event and publishes it to the room's subject.
func (p *NATSPublisher) Publish(ctx context.Context, roomID uuid.UUID, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.nc.Publish(Subject(p.subjectPrefix, roomID), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close drains the underlying connection.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
