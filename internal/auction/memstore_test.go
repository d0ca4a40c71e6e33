package auction

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/auctionpro/internal/models"
)

// memRoomStore is an in-memory RoomStore and DeadlineStore with the same
// compare-and-set semantics as the SQL repository.
type memRoomStore struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*models.Room
}

func newMemRoomStore() *memRoomStore {
	return &memRoomStore{rooms: make(map[uuid.UUID]*models.Room)}
}

func (s *memRoomStore) put(room *models.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room
}

func (s *memRoomStore) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	snapshot := *room
	snapshot.Players = append([]uuid.UUID(nil), room.Players...)
	snapshot.Buyers = append([]uuid.UUID(nil), room.Buyers...)
	if room.CurrentHighestBidder != nil {
		bidder := *room.CurrentHighestBidder
		snapshot.CurrentHighestBidder = &bidder
	}
	return &snapshot, nil
}

func (s *memRoomStore) StartRoom(ctx context.Context, roomID uuid.UUID, startedAt, deadline time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok || room.Status != models.RoomStatusWaiting {
		return false, nil
	}
	room.Status = models.RoomStatusActive
	room.StartedAt = &startedAt
	room.NextDeadline = &deadline
	room.CurrentPlayerIndex = 0
	room.CurrentHighestBid = 0
	room.CurrentHighestBidder = nil
	return true, nil
}

func (s *memRoomStore) CompareAndSetHighestBid(ctx context.Context, roomID uuid.UUID, playerIndex int, expectedBid, newBid float64, bidderID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok || room.Status != models.RoomStatusActive ||
		room.CurrentPlayerIndex != playerIndex || room.CurrentHighestBid != expectedBid {
		return false, nil
	}
	room.CurrentHighestBid = newBid
	bidder := bidderID
	room.CurrentHighestBidder = &bidder
	return true, nil
}

func (s *memRoomStore) AdvanceToNext(ctx context.Context, roomID uuid.UUID, fromIndex int, deadline time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok || room.Status != models.RoomStatusActive || room.CurrentPlayerIndex != fromIndex {
		return false, nil
	}
	room.CurrentPlayerIndex++
	room.CurrentHighestBid = 0
	room.CurrentHighestBidder = nil
	room.NextDeadline = &deadline
	return true, nil
}

func (s *memRoomStore) CompleteRoom(ctx context.Context, roomID uuid.UUID, fromIndex int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok || room.Status != models.RoomStatusActive || room.CurrentPlayerIndex != fromIndex {
		return false, nil
	}
	room.CurrentPlayerIndex++
	room.CurrentHighestBid = 0
	room.CurrentHighestBidder = nil
	room.Status = models.RoomStatusCompleted
	room.NextDeadline = nil
	return true, nil
}

func (s *memRoomStore) NextDeadline(ctx context.Context) (uuid.UUID, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var bestID uuid.UUID
	var best time.Time
	found := false
	for id, room := range s.rooms {
		if room.Status != models.RoomStatusActive || room.NextDeadline == nil {
			continue
		}
		if !found || room.NextDeadline.Before(best) {
			bestID, best, found = id, *room.NextDeadline, true
		}
	}
	if !found {
		return uuid.Nil, time.Time{}, ErrNoDeadline
	}
	return bestID, best, nil
}

func (s *memRoomStore) RoomsDue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []uuid.UUID
	for id, room := range s.rooms {
		if room.Status != models.RoomStatusActive || room.NextDeadline == nil {
			continue
		}
		if !room.NextDeadline.After(now) {
			due = append(due, id)
			if len(due) == limit {
				break
			}
		}
	}
	return due, nil
}

// memBidLog records accepted bids in memory.
type memBidLog struct {
	mu   sync.Mutex
	bids []models.Bid
}

func (l *memBidLog) AppendBid(ctx context.Context, bid models.Bid) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bids = append(l.bids, bid)
	return nil
}

func (l *memBidLog) all() []models.Bid {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Bid(nil), l.bids...)
}

// memBudgetStore is an in-memory BudgetStore with the same re-validation
// and (room, item index) idempotency that the buyer app performs.
type memBudgetStore struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*models.BuyerProfile
	settled  []models.Settlement
	keys     map[settlementKey]bool
}

type settlementKey struct {
	roomID      uuid.UUID
	playerIndex int
}

func newMemBudgetStore() *memBudgetStore {
	return &memBudgetStore{
		profiles: make(map[uuid.UUID]*models.BuyerProfile),
		keys:     make(map[settlementKey]bool),
	}
}

func (s *memBudgetStore) putProfile(userID uuid.UUID, budget, remaining float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = &models.BuyerProfile{
		ID:              uuid.New(),
		UserID:          userID,
		Budget:          budget,
		RemainingBudget: remaining,
	}
}

func (s *memBudgetStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.BuyerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrBuyerNotFound
	}
	snapshot := *p
	return &snapshot, nil
}

func (s *memBudgetStore) Settle(ctx context.Context, st models.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := settlementKey{roomID: st.RoomID, playerIndex: st.PlayerIndex}
	if s.keys[key] {
		return nil
	}

	p, ok := s.profiles[st.BuyerID]
	if !ok {
		return ErrBuyerNotFound
	}
	if p.RemainingBudget < st.Amount {
		return ErrInvariantViolation
	}
	s.keys[key] = true
	p.RemainingBudget -= st.Amount
	p.CurrentTeam = append(p.CurrentTeam, st.PlayerID)
	s.settled = append(s.settled, st)
	return nil
}

func (s *memBudgetStore) settlements() []models.Settlement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Settlement(nil), s.settled...)
}

// capturePublisher records published events per room.
type capturePublisher struct {
	mu     sync.Mutex
	events map[uuid.UUID][]any
	err    error
}

func newCapturePublisher() *capturePublisher {
	return &capturePublisher{events: make(map[uuid.UUID][]any)}
}

func (p *capturePublisher) Publish(ctx context.Context, roomID uuid.UUID, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events[roomID] = append(p.events[roomID], event)
	return nil
}

func (p *capturePublisher) forRoom(roomID uuid.UUID) []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]any(nil), p.events[roomID]...)
}
