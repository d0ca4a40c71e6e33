package auction

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Scheduler is the server-side authoritative countdown. It sleeps until
// the soonest deadline across all active rooms, then fires advances for
// the rooms that are due. Client bid_timer_end messages remain a valid
// trigger, but a missing or malicious client cannot starve advancement.
type Scheduler struct {
	store    DeadlineStore
	registry *Registry
	clock    clockwork.Clock
	wakeCh   chan struct{}

	batchSize  int
	numWorkers int
	workCh     chan uuid.UUID

	// Track in-flight work to prevent duplicate processing.
	inFlight   map[uuid.UUID]bool
	inFlightMu sync.Mutex
}

func NewScheduler(store DeadlineStore, registry *Registry, clock clockwork.Clock) *Scheduler {
	numWorkers := 4
	return &Scheduler{
		store:      store,
		registry:   registry,
		clock:      clock,
		wakeCh:     make(chan struct{}, 1),
		batchSize:  32,
		numWorkers: numWorkers,
		workCh:     make(chan uuid.UUID, numWorkers*2),
		inFlight:   make(map[uuid.UUID]bool),
	}
}

// Wake interrupts the scheduler's wait in case a new, sooner deadline was
// just armed.
func (s *Scheduler) Wake() {
	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
}

// Run loops until ctx is cancelled, sleeping until the next deadline and
// firing timeouts through the room registry.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Info().Int("workers", s.numWorkers).Msg("auction scheduler started")

	var wg sync.WaitGroup
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer func() {
		cancelWorkers()
		close(s.workCh)
		wg.Wait()
		log.Info().Msg("auction scheduler stopped")
	}()

	for i := 0; i < s.numWorkers; i++ {
		wg.Add(1)
		go s.worker(workerCtx, &wg, i)
	}

	timer := s.clock.NewTimer(0)
	defer timer.Stop()

	const idlePollDuration = 5 * time.Second

	for {
		select {
		case <-s.wakeCh:
		default:
		}

		roomID, deadline, err := s.store.NextDeadline(ctx)
		if err != nil {
			if errors.Is(err, ErrNoDeadline) {
				timer.Reset(idlePollDuration)
				select {
				case <-timer.Chan():
					continue
				case <-s.wakeCh:
					continue
				case <-ctx.Done():
					return nil
				}
			}
			log.Error().Err(err).Msg("error fetching next deadline")
			timer.Reset(time.Second)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				return nil
			}
		}

		if wait := deadline.Sub(s.clock.Now()); wait > 0 {
			timer.Reset(wait)
			select {
			case <-timer.Chan():
			case <-s.wakeCh:
				// A sooner deadline may have been armed; re-fetch.
				continue
			case <-ctx.Done():
				return nil
			}
		}

		due, err := s.store.RoomsDue(ctx, s.clock.Now(), s.batchSize)
		if err != nil {
			log.Error().Err(err).Msg("error fetching due rooms")
			timer.Reset(time.Second)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				return nil
			}
		}

		if len(due) == 0 {
			log.Debug().Str("room_id", roomID.String()).Msg("deadline fired but no rooms due")
			continue
		}

		for _, id := range due {
			s.inFlightMu.Lock()
			if s.inFlight[id] {
				s.inFlightMu.Unlock()
				continue
			}
			s.inFlight[id] = true
			s.inFlightMu.Unlock()

			select {
			case s.workCh <- id:
			case <-ctx.Done():
				s.inFlightMu.Lock()
				delete(s.inFlight, id)
				s.inFlightMu.Unlock()
				return nil
			}
		}
	}
}

// worker fires advances for due rooms. Per-room ordering is preserved by
// the in-flight dedup plus the machine's own lock.
func (s *Scheduler) worker(ctx context.Context, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case roomID, ok := <-s.workCh:
			if !ok {
				return
			}

			if err := s.registry.Advance(ctx, roomID, TriggerTimer); err != nil {
				// ErrAuctionNotActive here just means a client trigger
				// beat the timer to the last item.
				if !errors.Is(err, ErrAuctionNotActive) {
					log.Error().
						Err(err).
						Str("room_id", roomID.String()).
						Int("worker_id", workerID).
						Msg("timer advance failed")
				}
			}

			s.inFlightMu.Lock()
			delete(s.inFlight, roomID)
			s.inFlightMu.Unlock()
		}
	}
}
