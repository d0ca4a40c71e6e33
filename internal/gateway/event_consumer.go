package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/mcdev12/auctionpro/internal/events"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// ConsumerConfig holds configuration for the NATS event consumer.
type ConsumerConfig struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConsumerConfig returns default NATS consumer configuration.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: events.DefaultSubjectPrefix,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// EventConsumer subscribes to room event subjects and hands each event
// to the connection manager for fan-out. Room events are ephemeral: a
// subscriber that was offline when an event fired does not get a replay,
// so a plain subscription is enough and no stream state is kept.
type EventConsumer struct {
	connectionManager *ConnectionManager
	nc                *nats.Conn
	sub               *nats.Subscription
	config            ConsumerConfig
}

// NewEventConsumer connects to NATS and prepares a consumer.
func NewEventConsumer(cm *ConnectionManager, config ConsumerConfig) (*EventConsumer, error) {
	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return &EventConsumer{
		connectionManager: cm,
		nc:                nc,
		config:            config,
	}, nil
}

// Start subscribes to all room subjects and broadcasts until ctx is
// cancelled.
func (ec *EventConsumer) Start(ctx context.Context) error {
	subject := ec.config.SubjectPrefix + ".>"

	sub, err := ec.nc.Subscribe(subject, func(msg *nats.Msg) {
		ec.handleMessage(msg)
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", subject, err)
	}
	ec.sub = sub

	log.Info().Str("subject", subject).Msg("event consumer subscribed")

	<-ctx.Done()
	log.Info().Msg("event consumer shutting down")
	return nil
}

// handleMessage routes one published event to its room's subscribers.
// The payload is already the wire format the clients expect, so it is
// forwarded as-is.
func (ec *EventConsumer) handleMessage(msg *nats.Msg) {
	roomID, err := events.RoomIDFromSubject(msg.Subject)
	if err != nil {
		log.Error().Err(err).Str("subject", msg.Subject).Msg("dropping event with bad subject")
		return
	}

	ec.connectionManager.BroadcastToRoom(roomID, msg.Data)

	log.Debug().
		Str("room_id", roomID.String()).
		Str("subject", msg.Subject).
		Msg("event routed to room subscribers")
}

// Stop unsubscribes and closes the NATS connection.
func (ec *EventConsumer) Stop() error {
	if ec.sub != nil {
		if err := ec.sub.Unsubscribe(); err != nil {
			log.Error().Err(err).Msg("failed to unsubscribe")
		}
	}
	if ec.nc != nil {
		ec.nc.Close()
	}
	return nil
}
