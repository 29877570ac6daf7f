package commands

import (
	"context"
	"log/slog"
	"time"

	application "agora/contexts/polling/poll-registry/application"
	"agora/contexts/polling/poll-registry/domain/entities"
	domainerrors "agora/contexts/polling/poll-registry/domain/errors"
	"agora/contexts/polling/poll-registry/ports"
)

// CreatePollCommand is the write-model input for poll creation. Creator and
// question are opaque text: the registry compares questions byte-exact and
// never normalizes identities.
type CreatePollCommand struct {
	Creator  string
	Question string
	Options  []string
}

// DeletePollCommand requests a creator-owned soft delete.
type DeletePollCommand struct {
	PollID    uint64
	Requester string
}

// PollUseCase orchestrates poll lifecycle commands: option-count validation,
// repository calls, and best-effort notification emission. Invariants that
// depend on registry state (duplicate questions, creator ownership, index
// bookkeeping) live inside the repository so each check-and-mutate is one
// atomic step.
type PollUseCase struct {
	Polls  ports.PollRepository
	Events ports.EventPublisher
	Clock  ports.Clock
	Logger *slog.Logger
}

// CreatePoll validates the option list, stores the poll, and emits
// poll.created. The new poll's id comes from the repository's monotonic
// counter.
func (uc PollUseCase) CreatePoll(ctx context.Context, cmd CreatePollCommand) (entities.Poll, error) {
	logger := application.ResolveLogger(uc.Logger)
	if len(cmd.Options) < entities.MinOptions || len(cmd.Options) > entities.MaxOptions {
		logger.Warn("poll create validation failed",
			"event", "poll_create_validation_failed",
			"module", "polling/poll-registry",
			"layer", "application",
			"creator", cmd.Creator,
			"option_count", len(cmd.Options),
		)
		return entities.Poll{}, domainerrors.ErrInvalidOptionCount
	}

	now := uc.now()
	poll, err := uc.Polls.CreatePoll(ctx, entities.Poll{
		Creator:    cmd.Creator,
		Question:   cmd.Question,
		Options:    append([]string(nil), cmd.Options...),
		VoteCounts: make([]uint64, len(cmd.Options)),
		Active:     true,
		CreatedAt:  now,
	})
	if err != nil {
		logger.Warn("poll create rejected",
			"event", "poll_create_rejected",
			"module", "polling/poll-registry",
			"layer", "application",
			"creator", cmd.Creator,
			"error", err.Error(),
		)
		return entities.Poll{}, err
	}

	publishEnvelope(ctx, uc.Events, logger, TopicPollCreated, newPollEnvelope(TopicPollCreated, poll.ID, now, map[string]any{
		"poll_id":  poll.ID,
		"creator":  poll.Creator,
		"question": poll.Question,
	}))

	logger.Info("poll created",
		"event", "poll_created",
		"module", "polling/poll-registry",
		"layer", "application",
		"poll_id", poll.ID,
		"creator", poll.Creator,
		"option_count", len(poll.Options),
	)
	return poll, nil
}

// DeletePoll soft-deletes a poll on behalf of its creator and emits
// poll.deleted. The record stays in the keyed store; only the active listing
// shrinks.
func (uc PollUseCase) DeletePoll(ctx context.Context, cmd DeletePollCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	poll, err := uc.Polls.DeletePoll(ctx, cmd.PollID, cmd.Requester)
	if err != nil {
		logger.Warn("poll delete rejected",
			"event", "poll_delete_rejected",
			"module", "polling/poll-registry",
			"layer", "application",
			"poll_id", cmd.PollID,
			"requester", cmd.Requester,
			"error", err.Error(),
		)
		return err
	}

	publishEnvelope(ctx, uc.Events, logger, TopicPollDeleted, newPollEnvelope(TopicPollDeleted, poll.ID, uc.now(), map[string]any{
		"poll_id":  poll.ID,
		"creator":  poll.Creator,
		"question": poll.Question,
	}))

	logger.Info("poll deleted",
		"event", "poll_deleted",
		"module", "polling/poll-registry",
		"layer", "application",
		"poll_id", poll.ID,
		"requester", cmd.Requester,
	)
	return nil
}

// ResetAll wipes the active listing, the ballot ledger, and the id counter.
// There is deliberately no authorization check here: the registry contract
// lets any caller reset, and that permissive behavior stands until a product
// decision overrides it. Question fingerprints survive the reset, so used
// questions stay blocked afterwards.
func (uc PollUseCase) ResetAll(ctx context.Context, requestedBy string) error {
	logger := application.ResolveLogger(uc.Logger)
	unlisted, err := uc.Polls.ResetAll(ctx)
	if err != nil {
		logger.Error("registry reset failed",
			"event", "registry_reset_failed",
			"module", "polling/poll-registry",
			"layer", "application",
			"requested_by", requestedBy,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("registry reset",
		"event", "registry_reset",
		"module", "polling/poll-registry",
		"layer", "application",
		"requested_by", requestedBy,
		"polls_unlisted", unlisted,
	)
	return nil
}

func (uc PollUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
