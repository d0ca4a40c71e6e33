package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mcdev12/auctionpro/internal/auction"
	"github.com/mcdev12/auctionpro/internal/models"
	"github.com/mcdev12/auctionpro/internal/players"
	"github.com/mcdev12/auctionpro/internal/recommend"
	"github.com/rs/zerolog/log"
)

// RoomApp is what the handlers need from the room command layer.
type RoomApp interface {
	CreateRoom(ctx context.Context, hostID uuid.UUID, roomName string) (*models.Room, error)
	GetRoomByCode(ctx context.Context, code string) (*models.Room, error)
	AddPlayer(ctx context.Context, code string, hostID, playerID uuid.UUID) error
	JoinRoom(ctx context.Context, code string, userID uuid.UUID) (*models.Room, error)
}

// BuyerApp is what the handlers need from the buyer profile layer.
type BuyerApp interface {
	CreateOrUpdateProfile(ctx context.Context, userID uuid.UUID, budget float64, preferred []string) (*models.BuyerProfile, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.BuyerProfile, error)
	SaveRecommendations(ctx context.Context, userID uuid.UUID, playerIDs []uuid.UUID) error
}

// PlayerApp is what the handlers need from the player catalog.
type PlayerApp interface {
	CreatePlayer(ctx context.Context, req players.CreatePlayerRequest) (*models.Player, error)
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
}

// AuctionRegistry is what the handlers need from the live auction core.
type AuctionRegistry interface {
	Start(ctx context.Context, roomID, hostID uuid.UUID) error
	SubmitBid(ctx context.Context, roomID, playerID, bidderID uuid.UUID, amount float64) error
}

// BidHistory is what the handlers need from the bid log.
type BidHistory interface {
	ListBidsForRoom(ctx context.Context, roomID uuid.UUID) ([]models.Bid, error)
}

// Handler serves the REST command surface. Every route is a thin
// adapter: decode, call the app layer, map the error taxonomy to a
// status code.
type Handler struct {
	rooms    RoomApp
	buyers   BuyerApp
	players  PlayerApp
	registry AuctionRegistry
	bids     BidHistory
}

func NewHandler(rooms RoomApp, buyers BuyerApp, playerApp PlayerApp, registry AuctionRegistry, bids BidHistory) *Handler {
	return &Handler{
		rooms:    rooms,
		buyers:   buyers,
		players:  playerApp,
		registry: registry,
		bids:     bids,
	}
}

// RegisterRoutes mounts the API under /api plus the health probe.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/players", h.handleCreatePlayer)
		r.Get("/players", h.handleListPlayers)
		r.Get("/players/{id}", h.handleGetPlayer)

		r.Post("/buyer-profile", h.handleUpsertProfile)
		r.Get("/buyer-profile/{userID}", h.handleGetProfile)
		r.Get("/buyer-profile/{userID}/recommendations", h.handleRecommendations)

		r.Post("/auction-rooms", h.handleCreateRoom)
		r.Get("/auction-rooms/{code}", h.handleGetRoom)
		r.Get("/auction-rooms/{code}/bids", h.handleListBids)
		r.Post("/auction-rooms/{code}/add-player", h.handleAddPlayer)
		r.Post("/auction-rooms/{code}/join", h.handleJoinRoom)
		r.Post("/auction-rooms/{code}/start", h.handleStartRoom)

		r.Post("/bids", h.handleSubmitBid)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req players.CreatePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	player, err := h.players.CreatePlayer(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, player)
}

func (h *Handler) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.players.ListPlayers(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

func (h *Handler) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	player, err := h.players.GetPlayer(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

type upsertProfileRequest struct {
	UserID         uuid.UUID `json:"user_id"`
	Budget         float64   `json:"budget"`
	PreferredTypes []string  `json:"preferred_types"`
}

func (h *Handler) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	var req upsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.buyers.CreateOrUpdateProfile(r.Context(), req.UserID, req.Budget, req.PreferredTypes)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(w, r, "userID")
	if !ok {
		return
	}

	profile, err := h.buyers.GetProfile(r.Context(), userID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// handleRecommendations computes a fresh ranking from the current
// catalog, persists it on the profile, and returns it.
func (h *Handler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(w, r, "userID")
	if !ok {
		return
	}

	profile, err := h.buyers.GetProfile(r.Context(), userID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	catalog, err := h.players.ListPlayers(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}

	recommended := recommend.TopPlayers(profile, catalog, recommend.DefaultLimit)
	if err := h.buyers.SaveRecommendations(r.Context(), userID, recommended); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to persist recommendations")
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":     userID,
		"recommended": recommended,
	})
}

type createRoomRequest struct {
	HostID   uuid.UUID `json:"host_id"`
	RoomName string    `json:"room_name"`
}

func (h *Handler) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.rooms.CreateRoom(r.Context(), req.HostID, req.RoomName)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

func (h *Handler) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	room, err := h.rooms.GetRoomByCode(r.Context(), code)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *Handler) handleListBids(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	room, err := h.rooms.GetRoomByCode(r.Context(), code)
	if err != nil {
		writeAppError(w, err)
		return
	}

	bids, err := h.bids.ListBidsForRoom(r.Context(), room.ID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bids)
}

type addPlayerRequest struct {
	HostID   uuid.UUID `json:"host_id"`
	PlayerID uuid.UUID `json:"player_id"`
}

func (h *Handler) handleAddPlayer(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var req addPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.rooms.AddPlayer(r.Context(), code, req.HostID, req.PlayerID); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

type joinRoomRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

func (h *Handler) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var req joinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.rooms.JoinRoom(r.Context(), code, req.UserID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

type startRoomRequest struct {
	HostID uuid.UUID `json:"host_id"`
}

func (h *Handler) handleStartRoom(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var req startRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.rooms.GetRoomByCode(r.Context(), code)
	if err != nil {
		writeAppError(w, err)
		return
	}

	if err := h.registry.Start(r.Context(), room.ID, req.HostID); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

type submitBidRequest struct {
	RoomID   uuid.UUID `json:"room_id"`
	PlayerID uuid.UUID `json:"player_id"`
	BidderID uuid.UUID `json:"bidder_id"`
	Amount   float64   `json:"amount"`
}

func (h *Handler) handleSubmitBid(w http.ResponseWriter, r *http.Request) {
	var req submitBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.registry.SubmitBid(r.Context(), req.RoomID, req.PlayerID, req.BidderID, req.Amount); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// writeAppError maps the error taxonomy onto HTTP status codes.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auction.ErrRoomNotFound),
		errors.Is(err, auction.ErrBuyerNotFound),
		errors.Is(err, auction.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, auction.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, auction.ErrAlreadyStarted),
		errors.Is(err, auction.ErrAuctionNotActive),
		errors.Is(err, auction.ErrStalePlayer),
		errors.Is(err, auction.ErrConcurrentBidConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auction.ErrBidTooLow),
		errors.Is(err, auction.ErrInsufficientBudget),
		errors.Is(err, auction.ErrNoPlayers):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Error().Err(err).Msg("unhandled API error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
