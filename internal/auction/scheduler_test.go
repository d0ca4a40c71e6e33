package auction

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auctionpro/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schedulerFixture struct {
	rooms     *memRoomStore
	budgets   *memBudgetStore
	registry  *Registry
	scheduler *Scheduler
	clock     *clockwork.FakeClock
}

func newSchedulerFixture(t *testing.T) *schedulerFixture {
	t.Helper()

	f := &schedulerFixture{
		rooms:   newMemRoomStore(),
		budgets: newMemBudgetStore(),
		clock:   clockwork.NewFakeClock(),
	}
	f.registry = NewRegistry(f.rooms, &memBidLog{}, f.budgets, newCapturePublisher(), f.clock)
	f.scheduler = NewScheduler(f.rooms, f.registry, f.clock)
	f.registry.SetWaker(f.scheduler.Wake)
	return f
}

func (f *schedulerFixture) run(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = f.scheduler.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func (f *schedulerFixture) addActiveRoom(t *testing.T, players int, deadline time.Time) *models.Room {
	t.Helper()
	ids := make([]uuid.UUID, players)
	for i := range ids {
		ids[i] = uuid.New()
	}
	started := f.clock.Now()
	room := &models.Room{
		ID:                 uuid.New(),
		RoomCode:           "SCHED001",
		HostID:             uuid.New(),
		Players:            ids,
		Status:             models.RoomStatusActive,
		BidTimerSec:        5,
		CurrentPlayerIndex: 0,
		NextDeadline:       &deadline,
		StartedAt:          &started,
	}
	f.rooms.put(room)
	return room
}

func TestSchedulerFiresAdvanceAtDeadline(t *testing.T) {
	f := newSchedulerFixture(t)
	room := f.addActiveRoom(t, 2, f.clock.Now().Add(5*time.Second))

	f.run(t)

	// Wait for the scheduler to arm its timer on the deadline, then let
	// the countdown elapse.
	f.clock.BlockUntil(1)
	f.clock.Advance(6 * time.Second)

	require.Eventually(t, func() bool {
		got, err := f.rooms.GetRoom(context.Background(), room.ID)
		return err == nil && got.CurrentPlayerIndex == 1
	}, 2*time.Second, 10*time.Millisecond, "scheduler never advanced the room")

	got, err := f.rooms.GetRoom(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusActive, got.Status)
	require.NotNil(t, got.NextDeadline)
	assert.True(t, got.NextDeadline.After(f.clock.Now().Add(-time.Second)))
}

func TestSchedulerCompletesRoomOnLastDeadline(t *testing.T) {
	f := newSchedulerFixture(t)
	room := f.addActiveRoom(t, 1, f.clock.Now().Add(5*time.Second))

	f.run(t)

	f.clock.BlockUntil(1)
	f.clock.Advance(6 * time.Second)

	require.Eventually(t, func() bool {
		got, err := f.rooms.GetRoom(context.Background(), room.ID)
		return err == nil && got.Status == models.RoomStatusCompleted
	}, 2*time.Second, 10*time.Millisecond, "scheduler never completed the room")
}

// Wake interrupts the idle poll so a newly armed deadline is noticed
// without waiting out the poll interval.
func TestSchedulerWakesForNewDeadline(t *testing.T) {
	f := newSchedulerFixture(t)

	f.run(t)

	// Scheduler is idle: no active rooms. Park it on the idle timer.
	f.clock.BlockUntil(1)

	room := f.addActiveRoom(t, 2, f.clock.Now())
	f.scheduler.Wake()

	require.Eventually(t, func() bool {
		got, err := f.rooms.GetRoom(context.Background(), room.ID)
		return err == nil && got.CurrentPlayerIndex == 1
	}, 2*time.Second, 10*time.Millisecond, "wake did not trigger an advance")
}

// A deadline that was already handled by a client trigger is absorbed:
// the timer fires, finds the room completed, and moves on.
func TestSchedulerAbsorbsAlreadyCompletedRoom(t *testing.T) {
	f := newSchedulerFixture(t)
	room := f.addActiveRoom(t, 1, f.clock.Now().Add(5*time.Second))

	f.run(t)
	f.clock.BlockUntil(1)

	// Client trigger wins the race: its countdown reports expiry just
	// inside the grace window, before the server timer fires.
	f.clock.Advance(4500 * time.Millisecond)
	require.NoError(t, f.registry.Advance(context.Background(), room.ID, TriggerClient))

	f.clock.Advance(1500 * time.Millisecond)

	// The scheduler keeps running and ends up idle again; the completed
	// room stays completed.
	require.Eventually(t, func() bool {
		got, err := f.rooms.GetRoom(context.Background(), room.ID)
		return err == nil && got.Status == models.RoomStatusCompleted && got.CurrentPlayerIndex == 1
	}, 2*time.Second, 10*time.Millisecond)
}
