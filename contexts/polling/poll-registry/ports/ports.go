package ports

import (
	"context"
	"time"

	"agora/contexts/polling/poll-registry/domain/entities"
	"agora/internal/shared/events"
)

// PollRepository owns poll records, the id counter, the active listing, and
// the question fingerprint set. Every call is atomic with respect to every
// other call on the same repository; use cases never compose two calls into
// one invariant check.
type PollRepository interface {
	// CreatePoll allocates the next id, stores the poll with zeroed tallies,
	// and appends it to the active listing. Fails with ErrDuplicateQuestion
	// when the question fingerprint is already registered.
	CreatePoll(ctx context.Context, poll entities.Poll) (entities.Poll, error)
	// GetPoll returns a detached snapshot of an active poll. Inactive and
	// unknown ids are indistinguishable: both fail with ErrPollNotFound.
	GetPoll(ctx context.Context, pollID uint64) (entities.Poll, error)
	// CountPolls returns the current active listing size, not the lifetime
	// creation count.
	CountPolls(ctx context.Context) (int, error)
	// ListActive returns tallies in listing order. The order is insertion
	// order until the first delete; deletes swap the last entry into the gap.
	ListActive(ctx context.Context) ([]entities.LeaderboardEntry, error)
	// DeletePoll unlists and deactivates a poll. Fails with ErrPollNotFound
	// for inactive/unknown ids and ErrNotCreator when requester is not the
	// creator. Returns the deactivated record for notification payloads.
	DeletePoll(ctx context.Context, pollID uint64, requester string) (entities.Poll, error)
	// ResetAll deactivates every listed poll, empties the listing, clears the
	// ballot ledger, and restarts the id counter at zero. The question
	// fingerprint set survives. Returns the number of polls unlisted.
	ResetAll(ctx context.Context) (int, error)
}

// VoteLedger enforces the one-ballot-per-identity rule.
type VoteLedger interface {
	// CastVote checks, in order: poll active (ErrPollNotFound), option index
	// in range (ErrInvalidOption), identity has no ballot yet
	// (ErrAlreadyVoted); then increments exactly one counter plus the total
	// and records the ballot, all in one step. Returns the updated poll.
	CastVote(ctx context.Context, voterID string, pollID uint64, optionIndex int) (entities.Poll, error)
	// HasVoted is a pure lookup; never-seen pairs report false, never error.
	HasVoted(ctx context.Context, voterID string, pollID uint64) (bool, error)
}

type Clock interface {
	Now() time.Time
}

// EventPublisher is the best-effort notification side channel. Publish
// failures never affect committed registry state.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}
