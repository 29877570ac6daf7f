package queries

import (
	"context"
	"sort"

	"agora/contexts/polling/poll-registry/domain/entities"
	"agora/contexts/polling/poll-registry/ports"
)

// LeaderboardUseCase ranks the active listing by popularity.
type LeaderboardUseCase struct {
	Polls ports.PollRepository
}

// Leaderboard sorts a snapshot of the active listing by descending total
// votes. The sort is stable: polls with equal totals keep their relative
// listing order. Deleted polls are already absent from the listing.
func (uc LeaderboardUseCase) Leaderboard(ctx context.Context) ([]entities.LeaderboardEntry, error) {
	entries, err := uc.Polls.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalVotes > entries[j].TotalVotes
	})
	return entries, nil
}
