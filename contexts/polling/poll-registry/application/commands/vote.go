package commands

import (
	"context"
	"log/slog"
	"time"

	application "agora/contexts/polling/poll-registry/application"
	"agora/contexts/polling/poll-registry/domain/entities"
	"agora/contexts/polling/poll-registry/ports"
)

// CastVoteCommand records one ballot for an opaque identity. A cast ballot
// is permanent for that (identity, poll) pair; there is no retraction or
// vote-change operation.
type CastVoteCommand struct {
	VoterID     string
	PollID      uint64
	OptionIndex int
}

// VoteUseCase orchestrates ballot casting. The precondition chain (poll
// active, option in range, no prior ballot) and the counter mutation run as
// one atomic ledger call, so concurrent votes on the same poll serialize
// inside the store.
type VoteUseCase struct {
	Ledger ports.VoteLedger
	Events ports.EventPublisher
	Clock  ports.Clock
	Logger *slog.Logger
}

// CastVote applies the ballot and emits vote.cast on success.
func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (entities.Poll, error) {
	logger := application.ResolveLogger(uc.Logger)
	poll, err := uc.Ledger.CastVote(ctx, cmd.VoterID, cmd.PollID, cmd.OptionIndex)
	if err != nil {
		logger.Warn("vote rejected",
			"event", "vote_rejected",
			"module", "polling/poll-registry",
			"layer", "application",
			"poll_id", cmd.PollID,
			"option_index", cmd.OptionIndex,
			"error", err.Error(),
		)
		return entities.Poll{}, err
	}

	publishEnvelope(ctx, uc.Events, logger, TopicVoteCast, newPollEnvelope(TopicVoteCast, poll.ID, uc.now(), map[string]any{
		"poll_id":      poll.ID,
		"option_index": cmd.OptionIndex,
		"total_votes":  poll.TotalVotes,
	}))

	logger.Info("vote cast",
		"event", "vote_cast",
		"module", "polling/poll-registry",
		"layer", "application",
		"poll_id", poll.ID,
		"option_index", cmd.OptionIndex,
		"total_votes", poll.TotalVotes,
	)
	return poll, nil
}

func (uc VoteUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
