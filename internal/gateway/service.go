package gateway

import (
	"context"
	"fmt"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Service composes the WebSocket surface of the auction platform: the
// connection manager, the upgrade handler, and the NATS event consumer.
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	eventConsumer     *EventConsumer
}

// Config holds configuration for the gateway service.
type Config struct {
	ConnectionConfig ConnectionConfig
	ConsumerConfig   ConsumerConfig
}

// DefaultConfig returns default gateway configuration.
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		ConsumerConfig:   DefaultConsumerConfig(),
	}
}

// NewService creates the gateway. The advancer is invoked when a client
// reports its local countdown expired.
func NewService(config Config, advancer AdvanceTrigger) (*Service, error) {
	connectionManager := NewConnectionManager(config.ConnectionConfig, advancer)
	wsHandler := NewWebSocketHandler(connectionManager)

	eventConsumer, err := NewEventConsumer(connectionManager, config.ConsumerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create event consumer: %w", err)
	}

	return &Service{
		connectionManager: connectionManager,
		wsHandler:         wsHandler,
		eventConsumer:     eventConsumer,
	}, nil
}

// Start runs the gateway until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting auction gateway")

	go s.connectionManager.Start(ctx)

	go func() {
		if err := s.eventConsumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("event consumer failed")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("auction gateway shutting down")
	return s.Stop()
}

// Stop shuts down the event consumer. The connection manager stops when
// its context is cancelled.
func (s *Service) Stop() error {
	if err := s.eventConsumer.Stop(); err != nil {
		log.Error().Err(err).Msg("failed to stop event consumer")
	}
	log.Info().Msg("auction gateway stopped")
	return nil
}

// RegisterRoutes registers the WebSocket routes.
func (s *Service) RegisterRoutes(r chi.Router) {
	s.wsHandler.RegisterRoutes(r)
	log.Info().Msg("gateway routes registered")
}

// Stats returns live subscriber counts.
func (s *Service) Stats() (totalConnections int, activeRooms int) {
	return s.connectionManager.Stats()
}
