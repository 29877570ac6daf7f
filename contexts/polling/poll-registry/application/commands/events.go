package commands

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"agora/contexts/polling/poll-registry/ports"
	"agora/internal/shared/events"

	"github.com/google/uuid"
)

// Notification topics. Subscribers are observers only: losing a notification
// never affects registry state.
const (
	TopicPollCreated = "poll.created"
	TopicVoteCast    = "vote.cast"
	TopicPollDeleted = "poll.deleted"
)

func newPollEnvelope(
	eventType string,
	pollID uint64,
	occurredAt time.Time,
	payload map[string]any,
) events.Envelope {
	return events.Envelope{
		EventID:        uuid.NewString(),
		EventType:      eventType,
		OccurredAtUTC:  occurredAt.UTC(),
		EntityType:     "poll",
		EntityID:       strconv.FormatUint(pollID, 10),
		PayloadVersion: 1,
		Payload:        payload,
	}
}

// publishEnvelope is best-effort: the mutation already committed, so a
// publish failure is logged and swallowed.
func publishEnvelope(
	ctx context.Context,
	publisher ports.EventPublisher,
	logger *slog.Logger,
	topic string,
	envelope events.Envelope,
) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, topic, envelope); err != nil {
		logger.Warn("notification publish failed",
			"event", "notification_publish_failed",
			"module", "polling/poll-registry",
			"layer", "application",
			"topic", topic,
			"event_id", envelope.EventID,
			"error", err.Error(),
		)
	}
}
