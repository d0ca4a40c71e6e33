package auction

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auctionpro/internal/events"
)

// Registry maps room IDs to live state-machine instances. Machines are
// instantiated lazily on first reference and live for the lifetime of
// the process; there is no teardown beyond process shutdown.
type Registry struct {
	rooms     RoomStore
	bids      BidLog
	budgets   BudgetStore
	publisher events.Publisher
	clock     clockwork.Clock

	mu       sync.Mutex
	machines map[uuid.UUID]*Machine
	wake     func()
}

func NewRegistry(rooms RoomStore, bids BidLog, budgets BudgetStore, publisher events.Publisher, clock clockwork.Clock) *Registry {
	return &Registry{
		rooms:     rooms,
		bids:      bids,
		budgets:   budgets,
		publisher: publisher,
		clock:     clock,
		machines:  make(map[uuid.UUID]*Machine),
	}
}

// SetWaker installs the scheduler wake callback handed to machines, so a
// freshly armed countdown can interrupt the scheduler's idle wait. Must
// be wired before the first machine is created.
func (r *Registry) SetWaker(wake func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wake = wake
}

// Machine returns the state machine owning roomID, creating it on first
// reference.
func (r *Registry) Machine(roomID uuid.UUID) *Machine {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.machines[roomID]
	if !ok {
		m = &Machine{
			roomID:    roomID,
			rooms:     r.rooms,
			budgets:   r.budgets,
			arbiter:   NewArbiter(r.rooms, r.bids, r.budgets, r.publisher, r.clock),
			publisher: r.publisher,
			clock:     r.clock,
			wake:      r.wake,
		}
		r.machines[roomID] = m
	}
	return m
}

// Start starts the auction in roomID on behalf of hostID.
func (r *Registry) Start(ctx context.Context, roomID, hostID uuid.UUID) error {
	return r.Machine(roomID).Start(ctx, hostID)
}

// SubmitBid submits a bid to roomID's machine.
func (r *Registry) SubmitBid(ctx context.Context, roomID, playerID, bidderID uuid.UUID, amount float64) error {
	return r.Machine(roomID).SubmitBid(ctx, playerID, bidderID, amount)
}

// Advance fires an advance on roomID's machine.
func (r *Registry) Advance(ctx context.Context, roomID uuid.UUID, trigger Trigger) error {
	return r.Machine(roomID).Advance(ctx, trigger)
}
