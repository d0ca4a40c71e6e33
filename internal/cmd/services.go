package main

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auctionpro/internal/api"
	"github.com/mcdev12/auctionpro/internal/auction"
	"github.com/mcdev12/auctionpro/internal/bids"
	"github.com/mcdev12/auctionpro/internal/buyers"
	"github.com/mcdev12/auctionpro/internal/events"
	"github.com/mcdev12/auctionpro/internal/gateway"
	"github.com/mcdev12/auctionpro/internal/players"
	"github.com/mcdev12/auctionpro/internal/rooms"
)

type Services struct {
	Rooms     *rooms.App
	Buyers    *buyers.App
	Players   *players.App
	Registry  *auction.Registry
	Scheduler *auction.Scheduler
	Publisher *events.NATSPublisher
	Gateway   *gateway.Service
	API       *api.Handler
}

// setupServices wires the dependency chain: repositories over the pool,
// app layers over repositories, the auction core over the app layers,
// then the transports on top.
func setupServices(pool *pgxpool.Pool, natsURL, subjectPrefix string) (*Services, error) {
	roomRepo := rooms.NewRepository(pool)
	bidRepo := bids.NewRepository(pool)
	buyerRepo := buyers.NewRepository(pool)
	playerRepo := players.NewRepository(pool)

	roomApp := rooms.NewApp(roomRepo)
	buyerApp := buyers.NewApp(buyerRepo)
	playerApp := players.NewApp(playerRepo)

	publisher, err := events.ConnectPublisher(natsURL, subjectPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to connect event publisher: %w", err)
	}

	clock := clockwork.NewRealClock()
	registry := auction.NewRegistry(roomRepo, bidRepo, buyerApp, publisher, clock)
	scheduler := auction.NewScheduler(roomRepo, registry, clock)

	// A freshly armed countdown must interrupt the scheduler's wait.
	registry.SetWaker(scheduler.Wake)

	gatewayConfig := gateway.DefaultConfig()
	gatewayConfig.ConsumerConfig.URL = natsURL
	gatewayConfig.ConsumerConfig.SubjectPrefix = subjectPrefix

	gw, err := gateway.NewService(gatewayConfig, registry)
	if err != nil {
		publisher.Close()
		return nil, fmt.Errorf("failed to create gateway: %w", err)
	}

	handler := api.NewHandler(roomApp, buyerApp, playerApp, registry, bidRepo)

	return &Services{
		Rooms:     roomApp,
		Buyers:    buyerApp,
		Players:   playerApp,
		Registry:  registry,
		Scheduler: scheduler,
		Publisher: publisher,
		Gateway:   gw,
		API:       handler,
	}, nil
}
