package postgresadapter

import (
	"time"

	"agora/contexts/polling/poll-registry/domain/entities"
)

// unlistedPosition marks rows removed from the active listing. Listed rows
// hold their 0-based slot so the swap-with-last contract survives a round
// trip through the database.
const unlistedPosition = -1

const idCounterName = "poll_id"

type pollModel struct {
	ID         uint64    `gorm:"column:id;primaryKey"`
	Creator    string    `gorm:"column:creator;not null"`
	Question   string    `gorm:"column:question;not null"`
	Options    []string  `gorm:"column:options;serializer:json;not null"`
	VoteCounts []uint64  `gorm:"column:vote_counts;serializer:json;not null"`
	TotalVotes uint64    `gorm:"column:total_votes;not null"`
	Active     bool      `gorm:"column:active;not null;index"`
	Position   int       `gorm:"column:position;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

func (pollModel) TableName() string { return "polls" }

func (m pollModel) toEntity() entities.Poll {
	return entities.Poll{
		ID:         m.ID,
		Creator:    m.Creator,
		Question:   m.Question,
		Options:    append([]string(nil), m.Options...),
		VoteCounts: append([]uint64(nil), m.VoteCounts...),
		TotalVotes: m.TotalVotes,
		Active:     m.Active,
		CreatedAt:  m.CreatedAt,
	}
}

func pollModelFromEntity(poll entities.Poll, position int) pollModel {
	return pollModel{
		ID:         poll.ID,
		Creator:    poll.Creator,
		Question:   poll.Question,
		Options:    append([]string(nil), poll.Options...),
		VoteCounts: append([]uint64(nil), poll.VoteCounts...),
		TotalVotes: poll.TotalVotes,
		Active:     poll.Active,
		Position:   position,
		CreatedAt:  poll.CreatedAt,
	}
}

// questionModel rows are append-only: ResetAll never touches this table, so
// a used question stays blocked across reset epochs.
type questionModel struct {
	Fingerprint string    `gorm:"column:fingerprint;primaryKey"`
	Question    string    `gorm:"column:question;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

func (questionModel) TableName() string { return "poll_questions" }

type ballotModel struct {
	VoterID   string    `gorm:"column:voter_id;primaryKey"`
	PollID    uint64    `gorm:"column:poll_id;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (ballotModel) TableName() string { return "poll_ballots" }

type counterModel struct {
	Name   string `gorm:"column:name;primaryKey"`
	NextID uint64 `gorm:"column:next_id;not null"`
}

func (counterModel) TableName() string { return "poll_counters" }
