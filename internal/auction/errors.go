package auction

import "errors"

// Lookup errors. Surfaced to the caller, never retried.
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrBuyerNotFound  = errors.New("buyer profile not found")
	ErrPlayerNotFound = errors.New("player not found")
)

// State errors. The caller may re-fetch room state and decide to resubmit.
var (
	ErrUnauthorized     = errors.New("caller is not the room host")
	ErrAuctionNotActive = errors.New("auction is not active")
	ErrAlreadyStarted   = errors.New("auction already started")
	ErrStalePlayer      = errors.New("bid targets a player that is no longer up for auction")
	ErrNoPlayers        = errors.New("room has no players to auction")
)

// Bid rejection errors. Terminal for the submitted bid.
var (
	ErrBidTooLow          = errors.New("bid must be higher than current highest bid")
	ErrInsufficientBudget = errors.New("insufficient remaining budget")
)

// ErrConcurrentBidConflict means the bid lost a race on the highest-bid
// update and re-validation against fresh state also failed. Retryable:
// the caller should re-read the current highest bid and resubmit.
var ErrConcurrentBidConflict = errors.New("concurrent bid conflict, resubmit against fresh state")

// ErrNoDeadline is returned by the room store when no active room has a
// pending settlement deadline.
var ErrNoDeadline = errors.New("no pending deadline")

// ErrInvariantViolation means settlement would have corrupted a budget
// record (debit past zero). It is a fatal internal error: the settlement
// is aborted, the breach is logged, and operator attention is required.
// It is never silently clamped.
var ErrInvariantViolation = errors.New("settlement would violate budget invariant")
