package queries

import (
	"context"

	"agora/contexts/polling/poll-registry/domain/entities"
	"agora/contexts/polling/poll-registry/ports"
)

// PollsUseCase serves the read side of the registry. Reads observe a
// consistent snapshot: the store copies records under its lock, so vote
// counts and totals are never torn.
type PollsUseCase struct {
	Polls  ports.PollRepository
	Ledger ports.VoteLedger
}

func (uc PollsUseCase) GetPoll(ctx context.Context, pollID uint64) (entities.Poll, error) {
	return uc.Polls.GetPoll(ctx, pollID)
}

func (uc PollsUseCase) PollCount(ctx context.Context) (int, error) {
	return uc.Polls.CountPolls(ctx)
}

func (uc PollsUseCase) HasUserVoted(ctx context.Context, voterID string, pollID uint64) (bool, error) {
	return uc.Ledger.HasVoted(ctx, voterID, pollID)
}
