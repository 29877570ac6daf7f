package httpadapter

import (
	"context"
	"log/slog"

	"agora/contexts/polling/poll-registry/application/commands"
	"agora/contexts/polling/poll-registry/application/queries"
	"agora/contexts/polling/poll-registry/domain/entities"
	httptransport "agora/contexts/polling/poll-registry/transport/http"
)

type Handler struct {
	Polls       commands.PollUseCase
	Votes       commands.VoteUseCase
	Queries     queries.PollsUseCase
	Leaderboard queries.LeaderboardUseCase
	Logger      *slog.Logger
}

// CreatePollHandler godoc
// @Summary Create a poll
// @Description Creates a poll with 2-10 options; question text must be unused.
// @Tags poll-registry
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Creator identity token"
// @Param request body httptransport.CreatePollRequest true "Poll payload"
// @Success 200 {object} httptransport.CreatePollResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/polls [post]
func (h Handler) CreatePollHandler(
	ctx context.Context,
	creator string,
	req httptransport.CreatePollRequest,
) (httptransport.CreatePollResponse, error) {
	poll, err := h.Polls.CreatePoll(ctx, commands.CreatePollCommand{
		Creator:  creator,
		Question: req.Question,
		Options:  req.Options,
	})
	if err != nil {
		return httptransport.CreatePollResponse{}, err
	}
	return httptransport.CreatePollResponse{PollID: poll.ID}, nil
}

// GetPollHandler godoc
// @Summary Get a poll snapshot
// @Tags poll-registry
// @Produce json
// @Param poll_id path int true "Poll id"
// @Success 200 {object} httptransport.PollResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/polls/{poll_id} [get]
func (h Handler) GetPollHandler(ctx context.Context, pollID uint64) (httptransport.PollResponse, error) {
	poll, err := h.Queries.GetPoll(ctx, pollID)
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return mapPoll(poll), nil
}

// PollCountHandler godoc
// @Summary Count listed polls
// @Tags poll-registry
// @Produce json
// @Success 200 {object} httptransport.PollCountResponse
// @Router /v1/polls/count [get]
func (h Handler) PollCountHandler(ctx context.Context) (httptransport.PollCountResponse, error) {
	count, err := h.Queries.PollCount(ctx)
	if err != nil {
		return httptransport.PollCountResponse{}, err
	}
	return httptransport.PollCountResponse{Count: count}, nil
}

// CastVoteHandler godoc
// @Summary Cast a vote
// @Description One ballot per identity per poll; ballots are permanent.
// @Tags poll-registry
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Voter identity token"
// @Param poll_id path int true "Poll id"
// @Param request body httptransport.CastVoteRequest true "Vote payload"
// @Success 200 {object} httptransport.CastVoteResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/polls/{poll_id}/votes [post]
func (h Handler) CastVoteHandler(
	ctx context.Context,
	voterID string,
	pollID uint64,
	req httptransport.CastVoteRequest,
) (httptransport.CastVoteResponse, error) {
	poll, err := h.Votes.CastVote(ctx, commands.CastVoteCommand{
		VoterID:     voterID,
		PollID:      pollID,
		OptionIndex: req.OptionIndex,
	})
	if err != nil {
		return httptransport.CastVoteResponse{}, err
	}
	return httptransport.CastVoteResponse{
		PollID:     poll.ID,
		VoteCounts: poll.VoteCounts,
		TotalVotes: poll.TotalVotes,
	}, nil
}

// BallotHandler godoc
// @Summary Check whether an identity has voted
// @Tags poll-registry
// @Produce json
// @Param X-User-Id header string true "Voter identity token"
// @Param poll_id path int true "Poll id"
// @Success 200 {object} httptransport.BallotResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Router /v1/polls/{poll_id}/ballot [get]
func (h Handler) BallotHandler(
	ctx context.Context,
	voterID string,
	pollID uint64,
) (httptransport.BallotResponse, error) {
	voted, err := h.Queries.HasUserVoted(ctx, voterID, pollID)
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	return httptransport.BallotResponse{PollID: pollID, HasVoted: voted}, nil
}

// DeletePollHandler godoc
// @Summary Delete a poll
// @Description Soft delete; only the creator may delete.
// @Tags poll-registry
// @Produce json
// @Param X-User-Id header string true "Requester identity token"
// @Param poll_id path int true "Poll id"
// @Success 204
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/polls/{poll_id} [delete]
func (h Handler) DeletePollHandler(ctx context.Context, pollID uint64, requester string) error {
	return h.Polls.DeletePoll(ctx, commands.DeletePollCommand{
		PollID:    pollID,
		Requester: requester,
	})
}

// ResetHandler godoc
// @Summary Reset the registry
// @Description Unlists every poll, clears ballots, restarts the id counter.
// @Tags poll-registry
// @Produce json
// @Param X-User-Id header string true "Acting identity token (logged, not authorized)"
// @Success 204
// @Failure 401 {object} httptransport.ErrorResponse
// @Router /v1/polls/reset [post]
func (h Handler) ResetHandler(ctx context.Context, requestedBy string) error {
	return h.Polls.ResetAll(ctx, requestedBy)
}

// LeaderboardHandler godoc
// @Summary Popularity leaderboard
// @Description Active polls by descending total votes; ties keep listing order.
// @Tags poll-registry
// @Produce json
// @Success 200 {object} httptransport.LeaderboardResponse
// @Router /v1/leaderboard [get]
func (h Handler) LeaderboardHandler(ctx context.Context) (httptransport.LeaderboardResponse, error) {
	entries, err := h.Leaderboard.Leaderboard(ctx)
	if err != nil {
		return httptransport.LeaderboardResponse{}, err
	}
	items := make([]httptransport.LeaderboardItem, 0, len(entries))
	for i, entry := range entries {
		items = append(items, httptransport.LeaderboardItem{
			Rank:       i + 1,
			PollID:     entry.PollID,
			Question:   entry.Question,
			TotalVotes: entry.TotalVotes,
		})
	}
	return httptransport.LeaderboardResponse{Items: items}, nil
}

func mapPoll(poll entities.Poll) httptransport.PollResponse {
	return httptransport.PollResponse{
		PollID:     poll.ID,
		Creator:    poll.Creator,
		Question:   poll.Question,
		Options:    poll.Options,
		VoteCounts: poll.VoteCounts,
		TotalVotes: poll.TotalVotes,
		CreatedAt:  poll.CreatedAt,
	}
}
